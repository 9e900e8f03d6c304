package store

import (
	"database/sql"
	"fmt"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var mysqlDialect = dialect{
	name: "mysql",
	migrations: []string{
		`CREATE TABLE IF NOT EXISTS ` + TableName + ` (
			id CHAR(36) PRIMARY KEY,
			gmail_message_id VARCHAR(255) NOT NULL,
			user_id VARCHAR(255) NOT NULL,
			received_at DATETIME(6) NOT NULL,
			classification VARCHAR(32) NOT NULL,
			confidence_score TINYINT UNSIGNED NOT NULL,
			llm_reasoning TEXT,
			llm_summary TEXT,
			suggested_action VARCHAR(32) NOT NULL,
			action_taken VARCHAR(32) NOT NULL,
			processed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			INDEX idx_user_id (user_id)
		)`,
	},
	insert:     `INSERT INTO ` + TableName + ` ` + insertColumns + ` VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
	selectByID: `SELECT ` + selectColumns + ` FROM ` + TableName + ` WHERE id = ?`,
}

// NewMySQLStore connects to MySQL and optionally creates the classification table
func NewMySQLStore(dsn string, autoMigrate bool, logger *zap.Logger) (*SQLStore, error) {
	mysqlCfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid MySQL DSN: %w", err)
	}
	// received_at is scanned into time.Time
	mysqlCfg.ParseTime = true

	db, err := sql.Open("mysql", mysqlCfg.FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open MySQL database: %w", err)
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	return newSQLStore(db, mysqlDialect, autoMigrate, logger)
}
