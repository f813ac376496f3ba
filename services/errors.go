package services

import "errors"

var (
	ErrSessionNotFound   = errors.New("tournament session not found")
	ErrCandidateNotFound = errors.New("candidate not found")
	ErrUserNotFound      = errors.New("user not found")

	// ErrInvalidReference covers foreign keys the caller layer should have
	// validated before reaching the service.
	ErrInvalidReference = errors.New("invalid candidate reference")

	ErrSameCandidate     = errors.New("winner and loser cannot be the same candidate")
	ErrCandidateInactive = errors.New("candidate is not active")

	// ErrTournamentCompleted is a terminal-state signal, not a failure: the
	// user's tournament has already been committed to the ledger.
	ErrTournamentCompleted = errors.New("tournament already completed")

	// ErrEmptySession means completion was attempted with no buffered votes.
	ErrEmptySession = errors.New("no votes found in session")

	// ErrCompletionFailed wraps any failure inside the completion transaction.
	// The transaction is always rolled back in full before it is returned.
	ErrCompletionFailed = errors.New("failed to complete tournament")

	ErrNotEnoughCandidates = errors.New("not enough active candidates")
)
