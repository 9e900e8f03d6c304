package core

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
)

// ResultLogger writes classification outcomes to the store on a best-effort basis
type ResultLogger struct {
	store   ClassificationStore
	timeout time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// NewResultLogger creates a result logger. A nil store disables logging.
func NewResultLogger(store ClassificationStore, timeout time.Duration, logger *zap.Logger) *ResultLogger {
	return &ResultLogger{
		store:   store,
		timeout: timeout,
		logger:  logger,
		now:     time.Now,
	}
}

// Enabled reports whether a store is configured
func (l *ResultLogger) Enabled() bool {
	return l.store != nil
}

// Log persists the outcome and returns the generated record id, or "" when the
// write could not be completed. It never returns an error.
func (l *ResultLogger) Log(ctx context.Context, req *EmailRequest, result *ClassificationResult, actionTaken SuggestedAction) string {
	if !l.Enabled() {
		l.logger.Debug("Store not available, skipping classification log", zap.String("message_id", req.ID))
		return ""
	}

	// received_at is the log time; the true delivery time is not known here
	record := &ClassificationRecord{
		GmailMessageID:  req.ID,
		UserID:          req.UserID,
		ReceivedAt:      l.now().UTC(),
		Classification:  result.Classification,
		ConfidenceScore: result.HumanProbabilityScore,
		LLMReasoning:    result.Reasoning,
		LLMSummary:      result.Summary,
		SuggestedAction: result.SuggestedAction,
		ActionTaken:     actionTaken,
	}

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	id, err := l.store.Insert(ctx, record)
	if err == nil && id == "" {
		err = errors.New("store did not return a record id")
	}
	if err != nil {
		l.logger.Warn("Failed to log classification",
			zap.Error(&PersistenceError{Op: "insert", Err: err}),
			zap.String("message_id", req.ID),
			zap.String("user_id", req.UserID))
		return ""
	}

	l.logger.Info("Logged classification",
		zap.String("message_id", req.ID),
		zap.String("log_id", id))
	return id
}
