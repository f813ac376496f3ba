package services

import (
	"errors"
	"time"

	"voting-bracket-api/models"

	"gorm.io/gorm"
)

// StatsService backs the admin dashboard: the paginated vote log and overall
// totals. Read-only.
type StatsService struct {
	db *gorm.DB
}

func NewStatsService(db *gorm.DB) *StatsService {
	return &StatsService{
		db: db,
	}
}

func (s *StatsService) GetLogsCount() (int64, error) {
	var count int64
	err := s.db.Model(&models.Vote{}).Count(&count).Error
	return count, err
}

// GetLogs returns a page of the vote ledger, newest first, with user and
// candidate relations preloaded.
func (s *StatsService) GetLogs(page, perPage int) (*models.PaginatedVotesResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 100
	}

	total, err := s.GetLogsCount()
	if err != nil {
		return nil, err
	}

	var votes []models.Vote
	if err := s.db.Order("created_at DESC").
		Limit(perPage).
		Offset((page - 1) * perPage).
		Preload("User").
		Preload("Winner").
		Preload("Loser").
		Find(&votes).Error; err != nil {
		return nil, err
	}

	totalPages := int((total + int64(perPage) - 1) / int64(perPage))

	return &models.PaginatedVotesResponse{
		Data:       votes,
		Total:      total,
		Page:       page,
		PageSize:   perPage,
		TotalPages: totalPages,
	}, nil
}

func (s *StatsService) GetOverallStats() (*models.OverallStats, error) {
	stats := &models.OverallStats{}

	if err := s.db.Model(&models.Candidate{}).Where("is_active = ?", true).Count(&stats.TotalCandidates).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Vote{}).Count(&stats.TotalVotes).Error; err != nil {
		return nil, err
	}

	now := time.Now()
	if err := s.db.Model(&models.Vote{}).
		Where("created_at >= ?", now.AddDate(0, 0, -1)).
		Count(&stats.Votes24h).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.Vote{}).
		Where("created_at >= ?", now.AddDate(0, 0, -7)).
		Count(&stats.Votes7d).Error; err != nil {
		return nil, err
	}

	topUser, err := s.topUser()
	if err != nil {
		return nil, err
	}
	stats.TopUser = topUser

	var topCandidate models.Candidate
	err = s.db.Where("is_active = ?", true).
		Order("elo_rating DESC").
		First(&topCandidate).Error
	if err == nil {
		stats.TopCandidate = &topCandidate
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	return stats, nil
}

func (s *StatsService) topUser() (*models.TopUser, error) {
	var top models.TopUser

	err := s.db.Model(&models.Vote{}).
		Select("votes.user_tg_id AS tg_id, users.username, users.full_name, COUNT(votes.id) AS vote_count").
		Joins("LEFT JOIN users ON users.tg_id = votes.user_tg_id").
		Group("votes.user_tg_id, users.username, users.full_name").
		Order("vote_count DESC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}

	if top.TgID == 0 {
		return nil, nil
	}
	return &top, nil
}
