package services

import (
	"errors"
	"strings"
	"time"

	"voting-bracket-api/models"
	"voting-bracket-api/utils"

	"gorm.io/gorm"
)

const maxCommentLength = 500

// VoteService handles the permanent votes ledger: direct vote casting, user
// sync from the verified identity, history and matchup queries.
type VoteService struct {
	db *gorm.DB
}

func NewVoteService(db *gorm.DB) *VoteService {
	return &VoteService{
		db: db,
	}
}

// SyncUser upserts the user row from the identity layer's verified data and
// touches last_vote_at. Called on tournament start and completion.
func (s *VoteService) SyncUser(tgID int64, username, fullName *string) error {
	now := time.Now()

	var existing models.User
	err := s.db.First(&existing, "tg_id = ?", tgID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user := models.User{
			TgID:       tgID,
			Username:   username,
			FullName:   fullName,
			LastVoteAt: now,
		}
		return s.db.Create(&user).Error
	}
	if err != nil {
		return err
	}

	return s.db.Model(&existing).Updates(map[string]interface{}{
		"username":     username,
		"full_name":    fullName,
		"last_vote_at": now,
	}).Error
}

// CastVote writes a single comparison straight to the permanent ledger and
// updates both candidates' ratings with the default K-factor, all in one
// transaction. This is the non-tournament path; buffered votes go through
// SessionService instead.
func (s *VoteService) CastVote(userTgID int64, winnerID, loserID uint, comment *string) (uint, error) {
	if winnerID == loserID {
		return 0, ErrSameCandidate
	}

	var winner, loser models.Candidate
	if err := s.db.First(&winner, winnerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCandidateNotFound
		}
		return 0, err
	}
	if err := s.db.First(&loser, loserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrCandidateNotFound
		}
		return 0, err
	}

	if !winner.IsActive || !loser.IsActive {
		return 0, ErrCandidateInactive
	}

	var user models.User
	if err := s.db.First(&user, "tg_id = ?", userTgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, err
	}

	comment = NormalizeComment(comment)

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	vote := models.Vote{
		UserTgID: userTgID,
		WinnerID: winnerID,
		LoserID:  loserID,
		Comment:  comment,
	}
	if err := tx.Create(&vote).Error; err != nil {
		tx.Rollback()
		return 0, err
	}

	newWinnerElo, newLoserElo := utils.CalculateElo(winner.EloRating, loser.EloRating, utils.DefaultKFactor)

	if err := tx.Model(&models.Candidate{}).
		Where("id = ?", winnerID).
		UpdateColumns(map[string]interface{}{
			"wins":       gorm.Expr("wins + 1"),
			"matches":    gorm.Expr("matches + 1"),
			"elo_rating": newWinnerElo,
		}).Error; err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Model(&models.Candidate{}).
		Where("id = ?", loserID).
		UpdateColumns(map[string]interface{}{
			"matches":    gorm.Expr("matches + 1"),
			"elo_rating": newLoserElo,
		}).Error; err != nil {
		tx.Rollback()
		return 0, err
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}

	return vote.ID, nil
}

// NormalizeComment trims whitespace, collapses empty comments to nil and caps
// the length at 500 characters.
func NormalizeComment(comment *string) *string {
	if comment == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*comment)
	if trimmed == "" {
		return nil
	}
	runes := []rune(trimmed)
	if len(runes) > maxCommentLength {
		trimmed = string(runes[:maxCommentLength])
	}
	return &trimmed
}

// GetUserStats returns ledger totals for a user. Active days are counted in Go
// rather than SQL so the query stays portable between postgres and sqlite.
func (s *VoteService) GetUserStats(userTgID int64) (*models.UserStats, error) {
	var user models.User
	if err := s.db.First(&user, "tg_id = ?", userTgID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var timestamps []time.Time
	if err := s.db.Model(&models.Vote{}).
		Where("user_tg_id = ?", userTgID).
		Pluck("created_at", &timestamps).Error; err != nil {
		return nil, err
	}

	days := make(map[string]struct{}, len(timestamps))
	for _, ts := range timestamps {
		days[ts.Format("2006-01-02")] = struct{}{}
	}

	return &models.UserStats{
		TgID:       user.TgID,
		Username:   user.Username,
		FullName:   user.FullName,
		LastVoteAt: user.LastVoteAt,
		TotalVotes: int64(len(timestamps)),
		ActiveDays: len(days),
	}, nil
}

// GetUserVoteHistory returns the user's most recent ledger entries with both
// candidates preloaded.
func (s *VoteService) GetUserVoteHistory(userTgID int64, limit int) ([]models.Vote, error) {
	var votes []models.Vote

	result := s.db.Where("user_tg_id = ?", userTgID).
		Order("created_at DESC").
		Limit(limit).
		Preload("Winner").
		Preload("Loser").
		Find(&votes)
	if result.Error != nil {
		return nil, result.Error
	}

	return votes, nil
}

// GetRandomPair picks two distinct random active candidates for the next
// comparison. RANDOM() works on both postgres and sqlite.
func (s *VoteService) GetRandomPair() ([]models.Candidate, error) {
	var candidates []models.Candidate

	result := s.db.Where("is_active = ?", true).
		Order("RANDOM()").
		Limit(2).
		Find(&candidates)
	if result.Error != nil {
		return nil, result.Error
	}

	if len(candidates) < 2 {
		return nil, ErrNotEnoughCandidates
	}

	return candidates, nil
}

// GetMatchupStats returns head-to-head counts between two candidates.
func (s *VoteService) GetMatchupStats(candidateID1, candidateID2 uint) (*models.MatchupStats, error) {
	var wins1, wins2 int64

	if err := s.db.Model(&models.Vote{}).
		Where("winner_id = ? AND loser_id = ?", candidateID1, candidateID2).
		Count(&wins1).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Vote{}).
		Where("winner_id = ? AND loser_id = ?", candidateID2, candidateID1).
		Count(&wins2).Error; err != nil {
		return nil, err
	}

	stats := &models.MatchupStats{
		Candidate1Wins: wins1,
		Candidate2Wins: wins2,
		TotalMatches:   wins1 + wins2,
	}
	if stats.TotalMatches > 0 {
		stats.Candidate1Winrate = float64(wins1) * 100 / float64(stats.TotalMatches)
	}

	return stats, nil
}
