package services

import (
	"encoding/json"
	"errors"
	"time"

	"voting-bracket-api/models"

	"gorm.io/gorm"
)

// SessionService owns the lifecycle of buffered tournament sessions: creation,
// resumption, abandonment and append-only vote buffering. It never touches the
// permanent votes table; that is CompletionService's job.
type SessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{
		db: db,
	}
}

type initialSessionData struct {
	StartedAt       int64 `json:"started_at"`
	TotalCandidates int   `json:"total_candidates"`
	VotesCount      int   `json:"votes_count"`
}

// GetOrCreateSession returns the user's active session, creating one if
// needed. When the user already finished a tournament it returns
// (nil, true, nil): that is a legitimate terminal state, not an error.
// Calling it twice without completing returns the same session both times.
func (s *SessionService) GetOrCreateSession(userTgID int64) (*models.TournamentSession, bool, error) {
	var completed models.TournamentSession
	err := s.db.Where("user_tg_id = ? AND is_completed = ?", userTgID, true).First(&completed).Error
	if err == nil {
		return nil, true, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	var session models.TournamentSession
	err = s.db.Where("user_tg_id = ? AND is_completed = ?", userTgID, false).First(&session).Error
	if err == nil {
		return &session, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	initialData, err := json.Marshal(initialSessionData{StartedAt: time.Now().Unix()})
	if err != nil {
		return nil, false, err
	}

	session = models.TournamentSession{
		UserTgID:    userTgID,
		SessionData: string(initialData),
	}
	if err := s.db.Create(&session).Error; err != nil {
		return nil, false, err
	}

	return &session, false, nil
}

// ResetActiveSession deletes the user's non-completed session and its buffered
// votes. A no-op when there is none. Completed sessions are never touched:
// resetting cannot un-complete a finished tournament.
func (s *SessionService) ResetActiveSession(userTgID int64) error {
	var session models.TournamentSession
	err := s.db.Where("user_tg_id = ? AND is_completed = ?", userTgID, false).First(&session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("session_id = ?", session.ID).Delete(&models.SessionVote{}).Error; err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Delete(&session).Error; err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit().Error
}

// AddVoteToSession buffers one comparison without writing the permanent votes
// table. Duplicate or out-of-order vote_order values are accepted; replay
// sorts them at completion time. Candidate activity is the caller's concern,
// only existence is checked here.
func (s *SessionService) AddVoteToSession(sessionID, winnerID, loserID uint, voteOrder int, comment *string) (uint, error) {
	var session models.TournamentSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}

	for _, id := range []uint{winnerID, loserID} {
		var candidate models.Candidate
		if err := s.db.Select("id").First(&candidate, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return 0, ErrInvalidReference
			}
			return 0, err
		}
	}

	vote := models.SessionVote{
		SessionID: sessionID,
		WinnerID:  winnerID,
		LoserID:   loserID,
		VoteOrder: voteOrder,
		Comment:   comment,
	}
	if err := s.db.Create(&vote).Error; err != nil {
		return 0, err
	}

	return vote.ID, nil
}

// ReplaceSessionState overwrites the opaque client-state blob. Last writer
// wins; there is no optimistic concurrency check.
func (s *SessionService) ReplaceSessionState(sessionID uint, state json.RawMessage) error {
	var session models.TournamentSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	return s.db.Model(&session).Update("session_data", string(state)).Error
}

// GetSessionState returns the opaque client-state blob byte-for-byte as it was
// stored.
func (s *SessionService) GetSessionState(sessionID uint) (json.RawMessage, error) {
	var session models.TournamentSession
	if err := s.db.First(&session, sessionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	return json.RawMessage(session.SessionData), nil
}

func (s *SessionService) CountSessionVotes(sessionID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.SessionVote{}).Where("session_id = ?", sessionID).Count(&count).Error
	return count, err
}

func (s *SessionService) IsTournamentCompleted(userTgID int64) (bool, error) {
	var count int64
	err := s.db.Model(&models.TournamentSession{}).
		Where("user_tg_id = ? AND is_completed = ?", userTgID, true).
		Count(&count).Error
	return count > 0, err
}

// CleanupStaleSessions deletes non-completed sessions older than maxAge along
// with their buffered votes. Completed sessions are permanent and never
// cleaned up.
func (s *SessionService) CleanupStaleSessions(maxAge time.Duration) (int64, error) {
	cutoff := time.Now().Add(-maxAge)

	var stale []models.TournamentSession
	if err := s.db.Where("is_completed = ? AND created_at < ?", false, cutoff).Find(&stale).Error; err != nil {
		return 0, err
	}
	if len(stale) == 0 {
		return 0, nil
	}

	ids := make([]uint, 0, len(stale))
	for _, session := range stale {
		ids = append(ids, session.ID)
	}

	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Where("session_id IN ?", ids).Delete(&models.SessionVote{}).Error; err != nil {
		tx.Rollback()
		return 0, err
	}

	result := tx.Where("id IN ?", ids).Delete(&models.TournamentSession{})
	if result.Error != nil {
		tx.Rollback()
		return 0, result.Error
	}

	if err := tx.Commit().Error; err != nil {
		return 0, err
	}

	return result.RowsAffected, nil
}
