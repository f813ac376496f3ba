package services

import (
	"errors"
	"math"
	"sort"
	"strings"

	"voting-bracket-api/models"

	"gorm.io/gorm"
)

// CandidateService manages the candidate catalog. Image upload and storage
// live outside this service; candidates arrive with their image path already
// resolved.
type CandidateService struct {
	db *gorm.DB
}

func NewCandidateService(db *gorm.DB) *CandidateService {
	return &CandidateService{
		db: db,
	}
}

func (s *CandidateService) CreateCandidate(req models.CreateCandidateRequest) (*models.Candidate, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, errors.New("name cannot be empty")
	}

	candidate := &models.Candidate{
		Name:        req.Name,
		Description: req.Description,
		ImagePath:   req.ImagePath,
		EloRating:   1200,
		IsActive:    true,
	}

	if err := s.db.Create(candidate).Error; err != nil {
		return nil, err
	}

	return candidate, nil
}

func (s *CandidateService) GetAllCandidates(activeOnly bool) ([]models.Candidate, error) {
	var candidates []models.Candidate

	query := s.db.Order("created_at DESC")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	if err := query.Find(&candidates).Error; err != nil {
		return nil, err
	}

	return candidates, nil
}

func (s *CandidateService) GetCandidateByID(id uint) (*models.Candidate, error) {
	var candidate models.Candidate

	result := s.db.First(&candidate, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrCandidateNotFound
		}
		return nil, result.Error
	}

	return &candidate, nil
}

func (s *CandidateService) UpdateCandidate(id uint, req models.UpdateCandidateRequest) (*models.Candidate, error) {
	candidate, err := s.GetCandidateByID(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
	}

	if len(updates) == 0 {
		return candidate, nil
	}

	if err := s.db.Model(candidate).Updates(updates).Error; err != nil {
		return nil, err
	}

	return candidate, nil
}

// DeleteCandidate hard-deletes a candidate row. The ledger keeps its votes;
// deletion is an explicit admin operation, never implicit.
func (s *CandidateService) DeleteCandidate(id uint) error {
	result := s.db.Delete(&models.Candidate{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCandidateNotFound
	}
	return nil
}

// GetTierList ranks active candidates by elo, then winrate, then wins. Winrate
// is computed here instead of SQL so the ordering works the same on postgres
// and sqlite.
func (s *CandidateService) GetTierList() ([]models.TierListEntry, error) {
	candidates, err := s.GetAllCandidates(true)
	if err != nil {
		return nil, err
	}

	entries := make([]models.TierListEntry, 0, len(candidates))
	for _, candidate := range candidates {
		entry := models.TierListEntry{Candidate: candidate}
		if candidate.Matches > 0 {
			entry.Winrate = math.Round(float64(candidate.Wins)*10000/float64(candidate.Matches)) / 100
		}
		entries = append(entries, entry)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].EloRating != entries[j].EloRating {
			return entries[i].EloRating > entries[j].EloRating
		}
		if entries[i].Winrate != entries[j].Winrate {
			return entries[i].Winrate > entries[j].Winrate
		}
		return entries[i].Wins > entries[j].Wins
	})

	return entries, nil
}
