package models

import (
	"time"
)

// Vote is the permanent ledger entry. Rows are only ever appended: the ledger
// is the durable history a full rating recomputation would start from.
type Vote struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserTgID  int64     `gorm:"column:user_tg_id;not null;index" json:"user_tg_id"`
	WinnerID  uint      `gorm:"not null;index" json:"winner_id"`
	LoserID   uint      `gorm:"not null;index" json:"loser_id"`
	Comment   *string   `gorm:"size:500" json:"comment"`
	CreatedAt time.Time `json:"created_at"`

	// Relationships
	User   User      `gorm:"foreignKey:UserTgID;references:TgID" json:"user,omitempty"`
	Winner Candidate `gorm:"foreignKey:WinnerID;references:ID" json:"winner,omitempty"`
	Loser  Candidate `gorm:"foreignKey:LoserID;references:ID" json:"loser,omitempty"`
}

func (Vote) TableName() string {
	return "votes"
}

type CastVoteRequest struct {
	WinnerID uint    `json:"winner_id" binding:"required"`
	LoserID  uint    `json:"loser_id" binding:"required"`
	Comment  *string `json:"comment"`
}

type MatchupStats struct {
	Candidate1Wins    int64   `json:"candidate1_wins"`
	Candidate2Wins    int64   `json:"candidate2_wins"`
	TotalMatches      int64   `json:"total_matches"`
	Candidate1Winrate float64 `json:"candidate1_winrate"`
}

type PaginatedVotesResponse struct {
	Data       []Vote `json:"data"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"pageSize"`
	TotalPages int    `json:"totalPages"`
}
