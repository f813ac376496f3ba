package services

import (
	"errors"
	"testing"

	"voting-bracket-api/models"
	"voting-bracket-api/testhelpers"
)

func TestCreateCandidateDefaults(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	service := NewCandidateService(db)

	candidate, err := service.CreateCandidate(models.CreateCandidateRequest{
		Name:      "newcomer",
		ImagePath: "/uploads/newcomer.jpg",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if candidate.EloRating != 1200 {
		t.Errorf("rating = %d, want the 1200 baseline", candidate.EloRating)
	}
	if !candidate.IsActive {
		t.Error("new candidates start active")
	}

	if _, err := service.CreateCandidate(models.CreateCandidateRequest{Name: "   "}); err == nil {
		t.Error("blank name must be rejected")
	}
}

func TestUpdateCandidatePartial(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	service := NewCandidateService(db)
	seeded := testhelpers.SeedCandidate(t, db, "original", 1200)

	isActive := false
	updated, err := service.UpdateCandidate(seeded.ID, models.UpdateCandidateRequest{IsActive: &isActive})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.IsActive {
		t.Error("is_active not applied")
	}

	var reloaded models.Candidate
	db.First(&reloaded, seeded.ID)
	if reloaded.Name != "original" {
		t.Errorf("untouched field changed: name = %q", reloaded.Name)
	}

	if _, err := service.UpdateCandidate(9999, models.UpdateCandidateRequest{}); !errors.Is(err, ErrCandidateNotFound) {
		t.Errorf("expected ErrCandidateNotFound, got %v", err)
	}
}

func TestDeleteCandidate(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	service := NewCandidateService(db)
	seeded := testhelpers.SeedCandidate(t, db, "doomed", 1200)

	if err := service.DeleteCandidate(seeded.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := service.GetCandidateByID(seeded.ID); !errors.Is(err, ErrCandidateNotFound) {
		t.Errorf("candidate still readable after delete: %v", err)
	}
	if err := service.DeleteCandidate(seeded.ID); !errors.Is(err, ErrCandidateNotFound) {
		t.Errorf("expected ErrCandidateNotFound on repeat delete, got %v", err)
	}
}

func TestGetAllCandidatesActiveFilter(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	service := NewCandidateService(db)
	testhelpers.SeedCandidate(t, db, "a", 1200)
	inactive := models.Candidate{Name: "b", EloRating: 1200, IsActive: false}
	if err := db.Create(&inactive).Error; err != nil {
		t.Fatalf("failed to seed inactive candidate: %v", err)
	}

	all, err := service.GetAllCandidates(false)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 candidates, got %d", len(all))
	}

	active, err := service.GetAllCandidates(true)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(active) != 1 || active[0].Name != "a" {
		t.Errorf("active filter broken: %+v", active)
	}
}

func TestGetTierListOrdering(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	service := NewCandidateService(db)

	seed := func(name string, elo, wins, matches int) models.Candidate {
		candidate := models.Candidate{
			Name:      name,
			EloRating: elo,
			Wins:      wins,
			Matches:   matches,
			IsActive:  true,
		}
		if err := db.Create(&candidate).Error; err != nil {
			t.Fatalf("failed to seed %s: %v", name, err)
		}
		return candidate
	}

	seed("low", 1100, 1, 4)
	seed("top", 1300, 5, 8)
	// Equal elo, winrate breaks the tie.
	seed("mid_weak", 1200, 1, 4)
	seed("mid_strong", 1200, 3, 4)
	// Inactive candidates never appear.
	hidden := models.Candidate{Name: "hidden", EloRating: 1500, IsActive: false}
	if err := db.Create(&hidden).Error; err != nil {
		t.Fatalf("failed to seed hidden: %v", err)
	}

	entries, err := service.GetTierList()
	if err != nil {
		t.Fatalf("tier list failed: %v", err)
	}

	wantOrder := []string{"top", "mid_strong", "mid_weak", "low"}
	if len(entries) != len(wantOrder) {
		t.Fatalf("expected %d entries, got %d", len(wantOrder), len(entries))
	}
	for i, want := range wantOrder {
		if entries[i].Name != want {
			t.Errorf("entries[%d] = %q, want %q", i, entries[i].Name, want)
		}
	}

	if entries[1].Winrate != 75 {
		t.Errorf("winrate = %v, want 75", entries[1].Winrate)
	}
	if entries[3].Winrate != 25 {
		t.Errorf("winrate = %v, want 25", entries[3].Winrate)
	}
}
