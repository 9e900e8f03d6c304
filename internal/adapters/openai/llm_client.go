package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

const providerName = "OpenAI"

// OpenAIClient is an implementation of the LLMClient interface using OpenAI
type OpenAIClient struct {
	client      *openai.Client
	modelName   string
	maxTokens   int
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client. baseURL may be empty to use the
// public API endpoint.
func NewOpenAIClient(
	apiKey string,
	baseURL string,
	modelName string,
	maxTokens int,
	temperature float32,
	timeout time.Duration,
	logger *zap.Logger,
) *OpenAIClient {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientCfg),
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

// CallTool sends a chat completion that forces the given tool
func (c *OpenAIClient) CallTool(ctx context.Context, toolReq *core.ToolRequest) ([]core.ToolCall, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: toolReq.SystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: toolReq.UserPrompt,
			},
		},
		Tools: []openai.Tool{
			{
				Type:     openai.ToolTypeFunction,
				Function: functionDefinition(toolReq.Tool),
			},
		},
		ToolChoice: openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: toolReq.Tool.Name},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, wrapError(err)
	}

	if len(resp.Choices) == 0 {
		c.logger.Warn("Empty response from OpenAI", zap.String("response_id", resp.ID))
		return nil, nil
	}

	message := resp.Choices[0].Message
	calls := make([]core.ToolCall, 0, len(message.ToolCalls))
	for _, tc := range message.ToolCalls {
		calls = append(calls, core.ToolCall{
			Name:      tc.Function.Name,
			Arguments: []byte(tc.Function.Arguments),
		})
	}

	c.logger.Debug("OpenAI response received",
		zap.String("response_id", resp.ID),
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("tool_calls", len(calls)),
		zap.Int("total_tokens", resp.Usage.TotalTokens))

	return calls, nil
}

// functionDefinition converts the shared tool spec into an OpenAI function
func functionDefinition(spec core.ToolSpec) *openai.FunctionDefinition {
	properties := make(map[string]jsonschema.Definition, len(spec.Fields))
	required := make([]string, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		def := jsonschema.Definition{
			Type:        jsonschema.DataType(f.Type),
			Description: f.Description,
			Enum:        f.Enum,
		}
		properties[f.Name] = def
		required = append(required, f.Name)
	}

	return &openai.FunctionDefinition{
		Name:        spec.Name,
		Description: spec.Description,
		Parameters: jsonschema.Definition{
			Type:       jsonschema.Object,
			Properties: properties,
			Required:   required,
		},
	}
}

// wrapError maps go-openai errors onto the upstream error taxonomy
func wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &core.UpstreamCallError{
			Provider:   providerName,
			StatusCode: apiErr.HTTPStatusCode,
			Err:        fmt.Errorf("failed to create chat completion: %w", err),
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &core.UpstreamCallError{
			Provider:   providerName,
			StatusCode: reqErr.HTTPStatusCode,
			Err:        fmt.Errorf("failed to create chat completion: %w", err),
		}
	}

	return core.WrapTransportError(providerName, err)
}
