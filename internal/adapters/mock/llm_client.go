package mock

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/mikey/email-classifier/internal/core"
)

// LLMClient is a programmable core.LLMClient for tests
type LLMClient struct {
	CallToolFunc func(ctx context.Context, req *core.ToolRequest) ([]core.ToolCall, error)

	mu       sync.Mutex
	requests []*core.ToolRequest
}

// NewLLMClient returns a client that answers with the given tool arguments
func NewLLMClient(args map[string]interface{}) *LLMClient {
	return &LLMClient{
		CallToolFunc: func(ctx context.Context, req *core.ToolRequest) ([]core.ToolCall, error) {
			raw, err := json.Marshal(args)
			if err != nil {
				return nil, err
			}
			return []core.ToolCall{{Name: req.Tool.Name, Arguments: raw}}, nil
		},
	}
}

// CallTool records the request and delegates to CallToolFunc
func (m *LLMClient) CallTool(ctx context.Context, req *core.ToolRequest) ([]core.ToolCall, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()

	if m.CallToolFunc == nil {
		return nil, nil
	}
	return m.CallToolFunc(ctx, req)
}

// Calls returns how many times CallTool was invoked
func (m *LLMClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// LastRequest returns the most recent request, or nil
func (m *LLMClient) LastRequest() *core.ToolRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}
