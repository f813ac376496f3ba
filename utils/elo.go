package utils

import "math"

// K-factors used by the tournament replay. The final match of a session is
// weighted nearly double so the tournament winner gets a visible rating jump.
const (
	DefaultKFactor = 32
	FinaleKFactor  = 60
)

// CalculateElo computes the new ratings after a match using the standard ELO
// formula. Each side is rounded independently (math.Round, half away from
// zero), so the two deltas are not guaranteed to sum to zero.
// Returns (newWinnerElo, newLoserElo).
func CalculateElo(winnerElo, loserElo, kFactor int) (int, int) {
	// Expected scores
	expectedWinner := 1.0 / (1.0 + math.Pow(10, float64(loserElo-winnerElo)/400))
	expectedLoser := 1.0 / (1.0 + math.Pow(10, float64(winnerElo-loserElo)/400))

	// R_new = R_old + K * (actual - expected), actual is 1 for the winner, 0 for the loser
	newWinnerElo := int(math.Round(float64(winnerElo) + float64(kFactor)*(1.0-expectedWinner)))
	newLoserElo := int(math.Round(float64(loserElo) + float64(kFactor)*(0.0-expectedLoser)))

	return newWinnerElo, newLoserElo
}
