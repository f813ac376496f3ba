package models

import (
	"encoding/json"
	"time"
)

// TournamentSession buffers one user's in-progress tournament. At most one
// non-completed session may exist per user; the partial unique index on
// user_tg_id enforces that even under concurrent first requests.
type TournamentSession struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserTgID    int64     `gorm:"column:user_tg_id;not null;index:uix_sessions_active_user,unique,where:is_completed = false" json:"user_tg_id"`
	IsCompleted bool      `gorm:"default:false" json:"is_completed"`
	SessionData string    `gorm:"type:text" json:"session_data"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (TournamentSession) TableName() string {
	return "tournament_sessions"
}

// SessionVote is a buffered comparison. Rows are append-only while the session
// is active and are replayed in vote_order (ties broken by id) on completion.
// vote_order comes from the client and is not checked for uniqueness.
type SessionVote struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID uint      `gorm:"not null;index" json:"session_id"`
	WinnerID  uint      `gorm:"not null" json:"winner_id"`
	LoserID   uint      `gorm:"not null" json:"loser_id"`
	VoteOrder int       `gorm:"not null" json:"vote_order"`
	Comment   *string   `gorm:"size:500" json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (SessionVote) TableName() string {
	return "session_votes"
}

type StartTournamentRequest struct {
	Reset bool `json:"reset"`
}

type SaveStateRequest struct {
	SessionID uint            `json:"session_id" binding:"required"`
	State     json.RawMessage `json:"state" binding:"required"`
}

type SessionVoteRequest struct {
	SessionID uint    `json:"session_id" binding:"required"`
	WinnerID  uint    `json:"winner_id" binding:"required"`
	LoserID   uint    `json:"loser_id" binding:"required"`
	VoteOrder *int    `json:"vote_order" binding:"required"`
	Comment   *string `json:"comment"`
}

type CompleteTournamentRequest struct {
	SessionID uint    `json:"session_id" binding:"required"`
	Comment   *string `json:"comment"`
}
