package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

// TableName is the classification log table shared by every SQL backend
const TableName = "email_classifications"

// dialect captures the statements that differ between SQL backends
type dialect struct {
	name       string
	migrations []string
	insert     string
	selectByID string
	returning  bool
}

// SQLStore is a database/sql implementation of the ClassificationStore interface
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

func newSQLStore(db *sql.DB, d dialect, autoMigrate bool, logger *zap.Logger) (*SQLStore, error) {
	if autoMigrate {
		for _, stmt := range d.migrations {
			if _, err := db.Exec(stmt); err != nil {
				db.Close()
				return nil, fmt.Errorf("failed to migrate %s schema: %w", d.name, err)
			}
		}
	}

	return &SQLStore{
		db:      db,
		dialect: d,
		logger:  logger,
	}, nil
}

// Insert writes a new row and returns its id
func (s *SQLStore) Insert(ctx context.Context, record *core.ClassificationRecord) (string, error) {
	id := uuid.NewString()
	args := []interface{}{
		id,
		record.GmailMessageID,
		record.UserID,
		record.ReceivedAt.UTC(),
		string(record.Classification),
		record.ConfidenceScore,
		record.LLMReasoning,
		record.LLMSummary,
		string(record.SuggestedAction),
		string(record.ActionTaken),
	}

	if s.dialect.returning {
		var returned string
		if err := s.db.QueryRowContext(ctx, s.dialect.insert, args...).Scan(&returned); err != nil {
			return "", fmt.Errorf("failed to insert classification record: %w", err)
		}
		return returned, nil
	}

	if _, err := s.db.ExecContext(ctx, s.dialect.insert, args...); err != nil {
		return "", fmt.Errorf("failed to insert classification record: %w", err)
	}
	return id, nil
}

// Get retrieves a row by id
func (s *SQLStore) Get(ctx context.Context, id string) (*core.ClassificationRecord, error) {
	var rec core.ClassificationRecord
	var classification, suggested, taken string
	var reasoning, summary sql.NullString
	var receivedAt time.Time

	err := s.db.QueryRowContext(ctx, s.dialect.selectByID, id).Scan(
		&rec.ID,
		&rec.GmailMessageID,
		&rec.UserID,
		&receivedAt,
		&classification,
		&rec.ConfidenceScore,
		&reasoning,
		&summary,
		&suggested,
		&taken,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to query classification record: %w", err)
	}

	rec.ReceivedAt = receivedAt.UTC()
	rec.Classification = core.ClassificationLabel(classification)
	rec.LLMReasoning = reasoning.String
	rec.LLMSummary = summary.String
	rec.SuggestedAction = core.SuggestedAction(suggested)
	rec.ActionTaken = core.SuggestedAction(taken)
	return &rec, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	if err := s.db.Close(); err != nil {
		s.logger.Error("Failed to close database", zap.String("dialect", s.dialect.name), zap.Error(err))
		return err
	}
	return nil
}

const selectColumns = `id, gmail_message_id, user_id, received_at, classification, confidence_score,
	llm_reasoning, llm_summary, suggested_action, action_taken`

const insertColumns = `(id, gmail_message_id, user_id, received_at, classification, confidence_score,
	llm_reasoning, llm_summary, suggested_action, action_taken)`
