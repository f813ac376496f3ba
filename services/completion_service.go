package services

import (
	"errors"
	"fmt"
	"time"

	"voting-bracket-api/models"
	"voting-bracket-api/utils"

	"gorm.io/gorm"
)

// CompletionService performs the single non-completed -> completed transition.
// The whole replay runs inside one transaction: either every buffered vote is
// ledgered and every rating updated, or nothing changes and the session stays
// non-completed.
type CompletionService struct {
	db *gorm.DB
}

func NewCompletionService(db *gorm.DB) *CompletionService {
	return &CompletionService{
		db: db,
	}
}

// CompleteTournament replays the session's buffered votes into the votes table
// in vote_order (ties broken by insertion order), updating candidate ratings
// as it goes. The last vote of the sequence gets the finale K-factor and, when
// it carries no comment of its own, the caller-supplied final comment.
//
// The completed flag is re-checked inside the transaction, so invoking this
// twice can commit at most once; the second call gets ErrTournamentCompleted.
func (s *CompletionService) CompleteTournament(sessionID uint, userTgID int64, finalComment *string) error {
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	var session models.TournamentSession
	if err := tx.First(&session, sessionID).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSessionNotFound
		}
		return err
	}

	if session.IsCompleted {
		tx.Rollback()
		return ErrTournamentCompleted
	}

	var sessionVotes []models.SessionVote
	if err := tx.Where("session_id = ?", sessionID).
		Order("vote_order ASC, id ASC").
		Find(&sessionVotes).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	if len(sessionVotes) == 0 {
		tx.Rollback()
		return ErrEmptySession
	}

	for index, sessionVote := range sessionVotes {
		isFinal := index == len(sessionVotes)-1

		// The vote's own comment wins; the final comment only applies to the
		// last vote of the sequence.
		comment := sessionVote.Comment
		if (comment == nil || *comment == "") && isFinal {
			comment = finalComment
		}

		vote := models.Vote{
			UserTgID: userTgID,
			WinnerID: sessionVote.WinnerID,
			LoserID:  sessionVote.LoserID,
			Comment:  comment,
		}
		if err := tx.Create(&vote).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}

		winnerElo, err := candidateElo(tx, sessionVote.WinnerID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}
		loserElo, err := candidateElo(tx, sessionVote.LoserID)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}

		kFactor := utils.DefaultKFactor
		if isFinal {
			kFactor = utils.FinaleKFactor
		}

		newWinnerElo, newLoserElo := utils.CalculateElo(winnerElo, loserElo, kFactor)

		if err := tx.Model(&models.Candidate{}).
			Where("id = ?", sessionVote.WinnerID).
			UpdateColumns(map[string]interface{}{
				"wins":       gorm.Expr("wins + 1"),
				"matches":    gorm.Expr("matches + 1"),
				"elo_rating": newWinnerElo,
			}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}

		if err := tx.Model(&models.Candidate{}).
			Where("id = ?", sessionVote.LoserID).
			UpdateColumns(map[string]interface{}{
				"matches":    gorm.Expr("matches + 1"),
				"elo_rating": newLoserElo,
			}).Error; err != nil {
			tx.Rollback()
			return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
		}
	}

	if err := tx.Model(&models.User{}).
		Where("tg_id = ?", userTgID).
		UpdateColumn("last_vote_at", time.Now()).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	if err := tx.Model(&session).Update("is_completed", true).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("%w: %v", ErrCompletionFailed, err)
	}

	return nil
}

// candidateElo reads a candidate's current rating inside the transaction.
// Missing candidates fall back to the 1200 baseline; the aggregate updates for
// them simply affect zero rows.
func candidateElo(tx *gorm.DB, candidateID uint) (int, error) {
	var candidate models.Candidate
	err := tx.Select("id", "elo_rating").First(&candidate, candidateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1200, nil
	}
	if err != nil {
		return 0, err
	}
	return candidate.EloRating, nil
}
