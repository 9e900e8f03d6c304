package store

import (
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

var postgresDialect = dialect{
	name: "postgres",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS ` + TableName + ` (
			id UUID PRIMARY KEY,
			gmail_message_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			received_at TIMESTAMPTZ NOT NULL,
			classification TEXT NOT NULL,
			confidence_score SMALLINT NOT NULL CHECK (confidence_score BETWEEN 0 AND 100),
			llm_reasoning TEXT,
			llm_summary TEXT,
			suggested_action TEXT NOT NULL,
			action_taken TEXT NOT NULL,
			processed_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_email_classifications_user_id ON ` + TableName + `(user_id)`,
	},
	insert: `INSERT INTO ` + TableName + ` ` + insertColumns + `
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
	selectByID: `SELECT ` + selectColumns + ` FROM ` + TableName + ` WHERE id = $1`,
	returning:  true,
}

// NewPostgresStore connects to PostgreSQL (including a Supabase database) and
// optionally creates the classification table
func NewPostgresStore(dsn string, autoMigrate bool, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open PostgreSQL database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to PostgreSQL database: %w", err)
	}

	return newSQLStore(db, postgresDialect, autoMigrate, logger)
}
