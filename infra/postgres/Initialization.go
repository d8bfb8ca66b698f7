package postgres

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

const (
	createUsersTable = `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(50) NOT NULL,
			email VARCHAR(100),
			created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
		);`

	createCirclesTable = `
		CREATE TABLE IF NOT EXISTS circles (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			created_by UUID NOT NULL,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			participant_count INT NOT NULL DEFAULT 0,
			max_participants INT NOT NULL,
			focus_duration INT NOT NULL, -- dakika
			category VARCHAR(50) NOT NULL DEFAULT 'general',
			current_session_start TIMESTAMP WITH TIME ZONE, -- NULL => oturum yok
			CHECK (participant_count >= 0 AND participant_count <= max_participants)
		);`

	createParticipantsTable = `
		CREATE TABLE IF NOT EXISTS circle_participants (
			room_id UUID REFERENCES circles(id) ON DELETE CASCADE NOT NULL,
			user_id UUID NOT NULL,
			display_name VARCHAR(100) NOT NULL DEFAULT '',
			joined_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			total_focus_minutes INT NOT NULL DEFAULT 0,
			trees_planted INT NOT NULL DEFAULT 0,
			is_ready BOOLEAN NOT NULL DEFAULT FALSE,
			PRIMARY KEY (room_id, user_id)
		);`

	// One row per tree so concurrent plants are independent inserts.
	createTreesTable = `
		CREATE TABLE IF NOT EXISTS circle_trees (
			id UUID PRIMARY KEY,
			room_id UUID REFERENCES circles(id) ON DELETE CASCADE NOT NULL,
			category VARCHAR(50) NOT NULL,
			planted_at TIMESTAMP WITH TIME ZONE NOT NULL,
			growth_stage SMALLINT NOT NULL,
			focus_minutes INT NOT NULL CHECK (focus_minutes > 0),
			is_alive BOOLEAN NOT NULL DEFAULT TRUE,
			planted_by UUID NOT NULL,
			planted_by_name VARCHAR(100) NOT NULL DEFAULT '',
			variety JSONB
		);`

	// Performans için indeksler
	createIndexes = `
		CREATE INDEX IF NOT EXISTS idx_circles_active_created ON circles(is_active, created_at DESC);
		CREATE INDEX IF NOT EXISTS idx_circles_running ON circles(current_session_start) WHERE current_session_start IS NOT NULL;
		CREATE INDEX IF NOT EXISTS idx_circle_participants_user_id ON circle_participants(user_id);
		CREATE INDEX IF NOT EXISTS idx_circle_trees_room_planted ON circle_trees(room_id, planted_at);`
)

// initDB, tüm veritabanı tablolarını oluşturur.
func initDB(db *sql.DB) error {
	tables := []struct {
		name  string
		query string
	}{
		{"users", createUsersTable},
		{"circles", createCirclesTable},
		{"circle_participants", createParticipantsTable},
		{"circle_trees", createTreesTable},
	}

	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create '%s' table: %w", table.name, err)
		}
		zap.L().Debug("Table ready", zap.String("table", table.name))
	}

	if _, err := db.Exec(createIndexes); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	zap.L().Info("Database initialized successfully with all tables and indexes")
	return nil
}
