package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/mailparse"
)

// classifyRunner feeds parsed messages through the classification service and
// writes one JSON response per line
type classifyRunner struct {
	service *core.ClassificationService
	logger  *zap.Logger
	userID  string
	enc     *json.Encoder
}

func newClassifyRunner(service *core.ClassificationService, logger *zap.Logger, userID string, out io.Writer) *classifyRunner {
	return &classifyRunner{
		service: service,
		logger:  logger,
		userID:  userID,
		enc:     json.NewEncoder(out),
	}
}

func (c *classifyRunner) classifyMessage(ctx context.Context, r io.Reader) error {
	msg, err := mailparse.Parse(r)
	if err != nil {
		return fmt.Errorf("failed to parse email: %w", err)
	}
	return c.classify(ctx, msg)
}

// classifyMbox stops at the first message that fails
func (c *classifyRunner) classifyMbox(ctx context.Context, r io.Reader) error {
	return mailparse.EachMboxMessage(r, func(n int, msg *mailparse.Message) error {
		if err := c.classify(ctx, msg); err != nil {
			return fmt.Errorf("message %d: %w", n, err)
		}
		return nil
	})
}

func (c *classifyRunner) classify(ctx context.Context, msg *mailparse.Message) error {
	start := time.Now()
	resp, err := c.service.Classify(ctx, msg.Request(c.userID))
	if err != nil {
		return err
	}

	c.logger.Debug("Classified message",
		zap.String("message_id", msg.MessageID),
		zap.String("classification", string(resp.Classification)),
		zap.Duration("duration", time.Since(start)))

	return c.enc.Encode(resp)
}
