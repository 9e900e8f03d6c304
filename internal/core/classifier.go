package core

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Classifier obtains a structured classification for one email from the model
type Classifier struct {
	llmClient     LLMClient
	bodyProcessor BodyProcessor
	provider      string
	maxBodyChars  int
	logger        *zap.Logger
}

// NewClassifier creates a classifier. A nil llmClient leaves the classifier
// unavailable; every call then fails with ErrServiceUnavailable.
func NewClassifier(
	llmClient LLMClient,
	bodyProcessor BodyProcessor,
	provider string,
	maxBodyChars int,
	logger *zap.Logger,
) *Classifier {
	return &Classifier{
		llmClient:     llmClient,
		bodyProcessor: bodyProcessor,
		provider:      provider,
		maxBodyChars:  maxBodyChars,
		logger:        logger,
	}
}

// Available reports whether a model client is configured
func (c *Classifier) Available() bool {
	return c.llmClient != nil
}

// Classify builds the prompt, calls the model once and validates the tool call
func (c *Classifier) Classify(ctx context.Context, req *EmailRequest) (*ClassificationResult, error) {
	if !c.Available() {
		return nil, ErrServiceUnavailable
	}

	excerpt := c.bodyProcessor.Excerpt(req.Body, c.maxBodyChars)
	toolReq := BuildToolRequest(req, excerpt, c.maxBodyChars)

	c.logger.Debug("Requesting classification",
		zap.String("provider", c.provider),
		zap.String("message_id", req.ID),
		zap.Int("excerpt_chars", len([]rune(excerpt))))

	calls, err := c.llmClient.CallTool(ctx, toolReq)
	if err != nil {
		return nil, err
	}

	if len(calls) != 1 {
		return nil, &UpstreamProtocolError{
			Provider: c.provider,
			Reason:   fmt.Sprintf("expected exactly one tool call, got %d", len(calls)),
		}
	}
	if calls[0].Name != ClassificationToolName {
		return nil, &UpstreamProtocolError{
			Provider: c.provider,
			Reason:   fmt.Sprintf("unexpected tool %q", calls[0].Name),
		}
	}

	result, err := DecodeClassification(req.ID, calls[0].Arguments)
	if err != nil {
		c.logger.Error("Failed to validate model arguments",
			zap.Error(err),
			zap.String("message_id", req.ID),
			zap.ByteString("arguments", calls[0].Arguments))
		return nil, err
	}

	return result, nil
}
