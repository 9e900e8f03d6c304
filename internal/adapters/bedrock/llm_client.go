package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/smithy-go"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

const (
	providerName     = "Bedrock"
	anthropicVersion = "bedrock-2023-05-31"
)

// InvokeModelAPI is the subset of the Bedrock runtime client used here
type InvokeModelAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockClient is an implementation of the LLMClient interface using Amazon
// Bedrock with Anthropic Claude models
type BedrockClient struct {
	client      InvokeModelAPI
	modelID     string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

type messagesRequest struct {
	AnthropicVersion string          `json:"anthropic_version"`
	MaxTokens        int             `json:"max_tokens"`
	Temperature      float32         `json:"temperature"`
	System           string          `json:"system"`
	Messages         []message       `json:"messages"`
	Tools            []toolSchema    `json:"tools"`
	ToolChoice       toolChoiceParam `json:"tool_choice"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type toolSchema struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"input_schema"`
}

type toolChoiceParam struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

type messagesResponse struct {
	ID         string         `json:"id"`
	StopReason string         `json:"stop_reason"`
	Content    []contentBlock `json:"content"`
}

type contentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// NewBedrockClient creates a new Bedrock client
func NewBedrockClient(
	client InvokeModelAPI,
	modelID string,
	maxTokens int,
	temperature float32,
	timeout time.Duration,
	logger *zap.Logger,
) *BedrockClient {
	return &BedrockClient{
		client:      client,
		modelID:     modelID,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}
}

// CallTool invokes the model with a forced tool choice
func (c *BedrockClient) CallTool(ctx context.Context, toolReq *core.ToolRequest) ([]core.ToolCall, error) {
	payload, err := buildPayload(toolReq, c.maxTokens, c.temperature)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(c.modelID),
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, wrapError(err)
	}

	calls, stopReason, err := parseToolCalls(resp.Body)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Bedrock response received",
		zap.String("model_id", c.modelID),
		zap.String("stop_reason", stopReason),
		zap.Int("tool_calls", len(calls)))

	return calls, nil
}

// buildPayload renders an Anthropic Messages body that forces the tool
func buildPayload(toolReq *core.ToolRequest, maxTokens int, temperature float32) ([]byte, error) {
	return json.Marshal(messagesRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        maxTokens,
		Temperature:      temperature,
		System:           toolReq.SystemPrompt,
		Messages: []message{
			{Role: "user", Content: toolReq.UserPrompt},
		},
		Tools: []toolSchema{
			{
				Name:        toolReq.Tool.Name,
				Description: toolReq.Tool.Description,
				InputSchema: toolReq.Tool.JSONSchema(),
			},
		},
		ToolChoice: toolChoiceParam{Type: "tool", Name: toolReq.Tool.Name},
	})
}

// parseToolCalls extracts tool_use blocks from a Messages response body
func parseToolCalls(body []byte) ([]core.ToolCall, string, error) {
	var resp messagesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, "", &core.UpstreamProtocolError{
			Provider: providerName,
			Reason:   fmt.Sprintf("failed to unmarshal response: %v", err),
		}
	}

	var calls []core.ToolCall
	for _, block := range resp.Content {
		if block.Type != "tool_use" {
			continue
		}
		calls = append(calls, core.ToolCall{Name: block.Name, Arguments: []byte(block.Input)})
	}
	return calls, resp.StopReason, nil
}

// wrapError maps AWS SDK errors onto the upstream error taxonomy
func wrapError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		status := 0
		var respErr *awshttp.ResponseError
		if errors.As(err, &respErr) {
			status = respErr.HTTPStatusCode()
		}
		return &core.UpstreamCallError{
			Provider:   providerName,
			StatusCode: status,
			Err:        fmt.Errorf("failed to invoke Bedrock model: %s: %w", apiErr.ErrorCode(), err),
		}
	}

	return core.WrapTransportError(providerName, err)
}
