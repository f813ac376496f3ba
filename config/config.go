package config

import (
	"fmt"
	"os"
	"strconv"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Config carries the env-driven application settings. godotenv is loaded by
// the entrypoints before this is read.
type Config struct {
	Port       string
	AdminToken string
	// SessionTTLHours controls when the cleanup job reaps abandoned
	// non-completed sessions.
	SessionTTLHours int
}

func Load() Config {
	cfg := Config{
		Port:            os.Getenv("PORT"),
		AdminToken:      os.Getenv("ADMIN_TOKEN"),
		SessionTTLHours: 24,
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	if ttl := os.Getenv("SESSION_TTL_HOURS"); ttl != "" {
		if hours, err := strconv.Atoi(ttl); err == nil && hours > 0 {
			cfg.SessionTTLHours = hours
		}
	}

	return cfg
}

// ConnectDatabase opens the postgres connection and returns the handle. The
// handle is injected into every service; there is no package-level connection.
func ConnectDatabase() (*gorm.DB, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		dsn = fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			envOr("DB_HOST", "localhost"),
			envOr("DB_USER", "postgres"),
			os.Getenv("DB_PASSWORD"),
			envOr("DB_NAME", "voting_bracket"),
			envOr("DB_PORT", "5432"),
			envOr("DB_SSLMODE", "disable"),
		)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
