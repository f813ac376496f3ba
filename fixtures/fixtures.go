package fixtures

import (
	"fmt"
	"log"
	"math/rand"

	"voting-bracket-api/models"
	"voting-bracket-api/services"

	"gorm.io/gorm"
)

type Fixtures struct {
	db *gorm.DB
}

func NewFixtures(db *gorm.DB) *Fixtures {
	return &Fixtures{db: db}
}

// GenerateTestData creates 12 candidates and 8 users, then plays a full
// tournament for most of the users through the real session and completion
// services so ratings, aggregates and the ledger stay consistent.
func (f *Fixtures) GenerateTestData() error {
	log.Println("Starting fixtures generation...")

	candidates, err := f.generateCandidates()
	if err != nil {
		return fmt.Errorf("failed to generate candidates: %w", err)
	}

	users, err := f.generateUsers()
	if err != nil {
		return fmt.Errorf("failed to generate users: %w", err)
	}

	completed, err := f.playTournaments(candidates, users)
	if err != nil {
		return fmt.Errorf("failed to play tournaments: %w", err)
	}

	log.Printf("Fixtures generated successfully! Created %d candidates, %d users, %d completed tournaments",
		len(candidates), len(users), completed)
	return nil
}

// ClearAllData wipes every fixture-managed table.
func (f *Fixtures) ClearAllData() error {
	tables := []string{"session_votes", "tournament_sessions", "votes", "users", "candidates"}
	for _, table := range tables {
		if err := f.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

func (f *Fixtures) generateCandidates() ([]models.Candidate, error) {
	names := []string{
		"Sunset Pier", "Mountain Cabin", "City Lights", "Forest Trail",
		"Ocean Cliff", "Desert Dunes", "Northern Lights", "Old Harbor",
		"Autumn Park", "Snowy Peak", "River Bend", "Lavender Field",
	}

	var candidates []models.Candidate

	for i, name := range names {
		candidate := models.Candidate{
			Name:        name,
			Description: fmt.Sprintf("Fixture photo #%d", i+1),
			ImagePath:   fmt.Sprintf("/uploads/fixture_%02d.jpg", i+1),
			EloRating:   1200,
			IsActive:    true,
		}

		if err := f.db.Create(&candidate).Error; err != nil {
			return nil, err
		}

		candidates = append(candidates, candidate)
		log.Printf("Created candidate: %s (ID: %d)", name, candidate.ID)
	}

	return candidates, nil
}

func (f *Fixtures) generateUsers() ([]models.User, error) {
	usernames := []string{
		"alexandre", "marie", "julien", "sophie",
		"thomas", "camille", "nicolas", "laura",
	}

	var users []models.User

	for i, username := range usernames {
		name := username
		user := models.User{
			TgID:     int64(100000 + i), // #nosec G115 -- deterministic fixture ids
			Username: &name,
		}

		if err := f.db.Create(&user).Error; err != nil {
			return nil, err
		}

		users = append(users, user)
		log.Printf("Created user: %s (tg_id: %d)", username, user.TgID)
	}

	return users, nil
}

// playTournaments runs a buffered tournament of 6 random comparisons for all
// but the last two users and completes it, leaving those two with an active
// session so the in-progress path has data too.
func (f *Fixtures) playTournaments(candidates []models.Candidate, users []models.User) (int, error) {
	sessionService := services.NewSessionService(f.db)
	completionService := services.NewCompletionService(f.db)

	completed := 0

	for i, user := range users {
		session, alreadyCompleted, err := sessionService.GetOrCreateSession(user.TgID)
		if err != nil {
			return completed, err
		}
		if alreadyCompleted {
			continue
		}

		for order := 0; order < 6; order++ {
			winner := candidates[rand.Intn(len(candidates))] // #nosec G404
			var loser models.Candidate
			for {
				loser = candidates[rand.Intn(len(candidates))] // #nosec G404
				if loser.ID != winner.ID {
					break
				}
			}

			if _, err := sessionService.AddVoteToSession(session.ID, winner.ID, loser.ID, order, nil); err != nil {
				return completed, err
			}
		}

		// Leave the last two tournaments in progress
		if i >= len(users)-2 {
			continue
		}

		finalComment := fmt.Sprintf("fixture tournament #%d", i+1)
		if err := completionService.CompleteTournament(session.ID, user.TgID, &finalComment); err != nil {
			return completed, err
		}
		completed++
	}

	return completed, nil
}
