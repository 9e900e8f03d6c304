package core

import (
	"context"
)

// LLMClient defines the interface for interacting with LLM services
type LLMClient interface {
	// CallTool sends the prompt pair and returns the tool calls found in the first choice
	CallTool(ctx context.Context, req *ToolRequest) ([]ToolCall, error)
}

// ClassificationStore persists classification records
type ClassificationStore interface {
	// Insert writes a new record and returns its generated identifier
	Insert(ctx context.Context, record *ClassificationRecord) (string, error)

	// Get retrieves a record by identifier
	Get(ctx context.Context, id string) (*ClassificationRecord, error)

	// Close releases the underlying connection
	Close() error
}

// BodyProcessor prepares email bodies for the prompt
type BodyProcessor interface {
	Excerpt(text string, maxChars int) string
}
