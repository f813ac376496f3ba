package models

import (
	"time"
)

// User is a Telegram caller. The primary key is the Telegram id supplied by
// the identity layer, not an auto-incremented one.
type User struct {
	TgID       int64     `gorm:"primaryKey;autoIncrement:false;column:tg_id" json:"tg_id"`
	Username   *string   `gorm:"size:255" json:"username"`
	FullName   *string   `gorm:"size:255" json:"full_name"`
	LastVoteAt time.Time `json:"last_vote_at"`
}

func (User) TableName() string {
	return "users"
}

type UserStats struct {
	TgID       int64     `json:"tg_id"`
	Username   *string   `json:"username"`
	FullName   *string   `json:"full_name"`
	LastVoteAt time.Time `json:"last_vote_at"`
	TotalVotes int64     `json:"total_votes"`
	ActiveDays int       `json:"active_days"`
}
