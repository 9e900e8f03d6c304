package core_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/mock"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/utils"
)

var testRequest = &core.EmailRequest{
	ID:      "m1",
	UserID:  "u1",
	Sender:  "jane@acme.com",
	Subject: "Quick question",
	Body:    "Hi there, are you free for a call next week?",
}

var validToolArgs = map[string]interface{}{
	"classification":               "human_pitch",
	"real_human_probability_score": 72,
	"summary":                      "Asks for a call.",
	"reasoning":                    "Personal tone.",
	"suggested_action":             "review_manually",
}

func newClassifier(llm core.LLMClient, maxChars int) *core.Classifier {
	logger := zap.NewNop()
	return core.NewClassifier(llm, utils.NewTextProcessor(logger), "test", maxChars, logger)
}

func toolCalls(calls ...core.ToolCall) *mock.LLMClient {
	return &mock.LLMClient{
		CallToolFunc: func(ctx context.Context, req *core.ToolRequest) ([]core.ToolCall, error) {
			return calls, nil
		},
	}
}

func TestClassifierSuccess(t *testing.T) {
	llm := mock.NewLLMClient(validToolArgs)
	result, err := newClassifier(llm, 2000).Classify(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, "m1", result.ID)
	assert.Equal(t, core.LabelHumanPitch, result.Classification)
	assert.Equal(t, 72, result.HumanProbabilityScore)
	assert.Equal(t, 1, llm.Calls())

	req := llm.LastRequest()
	assert.Contains(t, req.UserPrompt, "Sender: jane@acme.com")
	assert.Contains(t, req.UserPrompt, "Body Excerpt (first 2000 chars):")
	assert.Equal(t, core.ClassificationToolName, req.Tool.Name)
}

func TestClassifierTruncatesBody(t *testing.T) {
	llm := mock.NewLLMClient(validToolArgs)
	req := *testRequest
	req.Body = strings.Repeat("a", 50)

	_, err := newClassifier(llm, 10).Classify(context.Background(), &req)
	require.NoError(t, err)

	prompt := llm.LastRequest().UserPrompt
	assert.Contains(t, prompt, "(first 10 chars):\n")
	assert.NotContains(t, prompt, strings.Repeat("a", 11))
}

func TestClassifierUnavailable(t *testing.T) {
	c := newClassifier(nil, 2000)
	assert.False(t, c.Available())

	_, err := c.Classify(context.Background(), testRequest)
	assert.ErrorIs(t, err, core.ErrServiceUnavailable)
}

func TestClassifierProtocolErrors(t *testing.T) {
	args := []byte(`{"classification":"spam"}`)
	tests := []struct {
		name  string
		calls []core.ToolCall
	}{
		{"no tool call", nil},
		{"two tool calls", []core.ToolCall{
			{Name: core.ClassificationToolName, Arguments: args},
			{Name: core.ClassificationToolName, Arguments: args},
		}},
		{"wrong tool", []core.ToolCall{{Name: "send_email", Arguments: args}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := toolCalls(tt.calls...)
			_, err := newClassifier(llm, 2000).Classify(context.Background(), testRequest)

			var pErr *core.UpstreamProtocolError
			require.True(t, errors.As(err, &pErr))
			assert.Equal(t, "test", pErr.Provider)
			assert.Equal(t, 1, llm.Calls())
		})
	}
}

func TestClassifierDecodeError(t *testing.T) {
	llm := toolCalls(core.ToolCall{Name: core.ClassificationToolName, Arguments: []byte(`{"classification":"spam"}`)})
	_, err := newClassifier(llm, 2000).Classify(context.Background(), testRequest)

	var dErr *core.UpstreamDecodeError
	require.True(t, errors.As(err, &dErr))
}

func TestClassifierPropagatesCallErrors(t *testing.T) {
	upstream := &core.UpstreamNetworkError{Provider: "test", Err: context.DeadlineExceeded}
	llm := &mock.LLMClient{
		CallToolFunc: func(ctx context.Context, req *core.ToolRequest) ([]core.ToolCall, error) {
			return nil, upstream
		},
	}

	_, err := newClassifier(llm, 2000).Classify(context.Background(), testRequest)
	assert.Same(t, upstream, err)
	assert.Equal(t, 1, llm.Calls())
}

func TestWrapTransportError(t *testing.T) {
	var netErr *core.UpstreamNetworkError
	assert.True(t, errors.As(core.WrapTransportError("p", context.DeadlineExceeded), &netErr))

	var callErr *core.UpstreamCallError
	assert.True(t, errors.As(core.WrapTransportError("p", errors.New("bad request")), &callErr))
	assert.True(t, errors.As(core.WrapTransportError("p", context.Canceled), &callErr))

	assert.NoError(t, core.WrapTransportError("p", nil))
}
