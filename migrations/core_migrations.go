package migrations

import "gorm.io/gorm"

func GetCoreMigrations() []MigrationDefinition {
	return []MigrationDefinition{
		{
			Name: "2025_01_10_000000_create_voting_tables",
			Up: func(db *gorm.DB) error {
				// Create candidates table
				if err := db.Exec(`
					CREATE TABLE IF NOT EXISTS candidates (
						id BIGSERIAL PRIMARY KEY,
						name VARCHAR(255) NOT NULL,
						description TEXT,
						image_path VARCHAR(512) NOT NULL,
						elo_rating INT DEFAULT 1200,
						wins INT DEFAULT 0,
						matches INT DEFAULT 0,
						is_active BOOLEAN DEFAULT TRUE,
						created_at TIMESTAMP DEFAULT NOW(),
						updated_at TIMESTAMP DEFAULT NOW()
					);
					CREATE INDEX IF NOT EXISTS idx_candidates_is_active ON candidates(is_active);
					CREATE INDEX IF NOT EXISTS idx_candidates_elo_rating ON candidates(elo_rating);
				`).Error; err != nil {
					return err
				}

				// Create users table (Telegram id is the primary key)
				if err := db.Exec(`
					CREATE TABLE IF NOT EXISTS users (
						tg_id BIGINT PRIMARY KEY,
						username VARCHAR(255),
						full_name VARCHAR(255),
						last_vote_at TIMESTAMP DEFAULT NOW()
					);
				`).Error; err != nil {
					return err
				}

				// Create votes table (permanent ledger, append-only)
				if err := db.Exec(`
					CREATE TABLE IF NOT EXISTS votes (
						id BIGSERIAL PRIMARY KEY,
						user_tg_id BIGINT NOT NULL,
						winner_id BIGINT NOT NULL,
						loser_id BIGINT NOT NULL,
						comment VARCHAR(500),
						created_at TIMESTAMP DEFAULT NOW(),
						FOREIGN KEY (user_tg_id) REFERENCES users(tg_id)
					);
					CREATE INDEX IF NOT EXISTS idx_votes_user_tg_id ON votes(user_tg_id);
					CREATE INDEX IF NOT EXISTS idx_votes_winner_id ON votes(winner_id);
					CREATE INDEX IF NOT EXISTS idx_votes_loser_id ON votes(loser_id);
					CREATE INDEX IF NOT EXISTS idx_votes_created_at ON votes(created_at);
				`).Error; err != nil {
					return err
				}

				return nil
			},
			Down: func(db *gorm.DB) error {
				if err := db.Exec("DROP TABLE IF EXISTS votes CASCADE").Error; err != nil {
					return err
				}
				if err := db.Exec("DROP TABLE IF EXISTS users CASCADE").Error; err != nil {
					return err
				}
				return db.Exec("DROP TABLE IF EXISTS candidates CASCADE").Error
			},
		},
		{
			Name: "2025_01_10_000001_create_session_tables",
			Up: func(db *gorm.DB) error {
				// Create tournament_sessions table. The partial unique index
				// enforces "at most one non-completed session per user" at the
				// store level, closing the concurrent-first-request race.
				if err := db.Exec(`
					CREATE TABLE IF NOT EXISTS tournament_sessions (
						id BIGSERIAL PRIMARY KEY,
						user_tg_id BIGINT NOT NULL,
						is_completed BOOLEAN DEFAULT FALSE,
						session_data TEXT,
						created_at TIMESTAMP DEFAULT NOW(),
						updated_at TIMESTAMP DEFAULT NOW(),
						FOREIGN KEY (user_tg_id) REFERENCES users(tg_id)
					);
					CREATE INDEX IF NOT EXISTS idx_sessions_user_tg_id ON tournament_sessions(user_tg_id);
					CREATE UNIQUE INDEX IF NOT EXISTS uix_sessions_active_user
						ON tournament_sessions(user_tg_id) WHERE is_completed = FALSE;
				`).Error; err != nil {
					return err
				}

				// Create session_votes table (buffered votes, replayed on completion)
				if err := db.Exec(`
					CREATE TABLE IF NOT EXISTS session_votes (
						id BIGSERIAL PRIMARY KEY,
						session_id BIGINT NOT NULL,
						winner_id BIGINT NOT NULL,
						loser_id BIGINT NOT NULL,
						vote_order INT NOT NULL,
						comment VARCHAR(500),
						created_at TIMESTAMP DEFAULT NOW(),
						FOREIGN KEY (session_id) REFERENCES tournament_sessions(id) ON DELETE CASCADE
					);
					CREATE INDEX IF NOT EXISTS idx_session_votes_session_id ON session_votes(session_id);
				`).Error; err != nil {
					return err
				}

				return nil
			},
			Down: func(db *gorm.DB) error {
				if err := db.Exec("DROP TABLE IF EXISTS session_votes CASCADE").Error; err != nil {
					return err
				}
				return db.Exec("DROP TABLE IF EXISTS tournament_sessions CASCADE").Error
			},
		},
	}
}
