package testhelpers

import (
	"fmt"
	"testing"

	"voting-bracket-api/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// SetupTestDB creates an isolated in-memory SQLite database with the full
// schema migrated.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.Candidate{},
		&models.User{},
		&models.TournamentSession{},
		&models.SessionVote{},
		&models.Vote{},
	); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// DropTable removes a table mid-test to force write failures.
func DropTable(t *testing.T, db *gorm.DB, model interface{}) {
	t.Helper()
	if err := db.Migrator().DropTable(model); err != nil {
		t.Fatalf("failed to drop table: %v", err)
	}
}

// SeedCandidate inserts an active candidate with the given rating.
func SeedCandidate(t *testing.T, db *gorm.DB, name string, elo int) models.Candidate {
	t.Helper()

	candidate := models.Candidate{
		Name:      name,
		ImagePath: "/uploads/" + name + ".jpg",
		EloRating: elo,
		IsActive:  true,
	}
	if err := db.Create(&candidate).Error; err != nil {
		t.Fatalf("failed to seed candidate %s: %v", name, err)
	}
	return candidate
}

// SeedUser inserts a user row for the given Telegram id.
func SeedUser(t *testing.T, db *gorm.DB, tgID int64) models.User {
	t.Helper()

	username := fmt.Sprintf("user_%d", tgID)
	user := models.User{TgID: tgID, Username: &username}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %d: %v", tgID, err)
	}
	return user
}
