package models

import (
	"time"
)

type Candidate struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	ImagePath   string    `gorm:"size:512;not null" json:"image_path"`
	EloRating   int       `gorm:"default:1200" json:"elo_rating"`
	Wins        int       `gorm:"default:0" json:"wins"`
	Matches     int       `gorm:"default:0" json:"matches"`
	IsActive    bool      `gorm:"default:true" json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Candidate) TableName() string {
	return "candidates"
}

type CreateCandidateRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	ImagePath   string `json:"image_path" binding:"required"`
}

type UpdateCandidateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// TierListEntry is a candidate with its computed winrate, as returned by the
// tier list ranking.
type TierListEntry struct {
	Candidate
	Winrate float64 `json:"winrate"`
}
