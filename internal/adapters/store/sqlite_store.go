package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var sqliteDialect = dialect{
	name: "sqlite",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS ` + TableName + ` (
			id TEXT PRIMARY KEY,
			gmail_message_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			received_at TIMESTAMP NOT NULL,
			classification TEXT NOT NULL,
			confidence_score INTEGER NOT NULL CHECK (confidence_score BETWEEN 0 AND 100),
			llm_reasoning TEXT,
			llm_summary TEXT,
			suggested_action TEXT NOT NULL,
			action_taken TEXT NOT NULL,
			processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_email_classifications_user_id ON ` + TableName + `(user_id)`,
	},
	insert:     `INSERT INTO ` + TableName + ` ` + insertColumns + ` VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	selectByID: `SELECT ` + selectColumns + ` FROM ` + TableName + ` WHERE id = ?`,
}

// NewSQLiteStore opens (and optionally migrates) a SQLite classification log
func NewSQLiteStore(dbPath string, autoMigrate bool, logger *zap.Logger) (*SQLStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// SQLite serializes writers; one connection avoids "database is locked"
	db.SetMaxOpenConns(1)

	return newSQLStore(db, sqliteDialect, autoMigrate, logger)
}
