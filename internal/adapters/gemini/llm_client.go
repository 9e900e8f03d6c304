package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/googleapis/gax-go/v2/apierror"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
)

const providerName = "Gemini"

// GeminiClient is an implementation of the LLMClient interface using Google Gemini
type GeminiClient struct {
	client      *genai.Client
	modelName   string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	logger      *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	timeout time.Duration,
	logger *zap.Logger,
) (*GeminiClient, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		modelName:   modelName,
		maxTokens:   maxTokens,
		temperature: temperature,
		timeout:     timeout,
		logger:      logger,
	}, nil
}

// Close closes the Gemini client
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// CallTool asks the model for a function call restricted to the given tool
func (c *GeminiClient) CallTool(ctx context.Context, toolReq *core.ToolRequest) ([]core.ToolCall, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.client.GenerativeModel(c.modelName)
	model.SetTemperature(c.temperature)
	model.SetMaxOutputTokens(int32(c.maxTokens))
	model.SystemInstruction = genai.NewUserContent(genai.Text(toolReq.SystemPrompt))
	model.Tools = []*genai.Tool{
		{FunctionDeclarations: []*genai.FunctionDeclaration{functionDeclaration(toolReq.Tool)}},
	}
	model.ToolConfig = forcedToolConfig(toolReq.Tool.Name)

	resp, err := model.GenerateContent(ctx, genai.Text(toolReq.UserPrompt))
	if err != nil {
		return nil, wrapError(err)
	}

	calls, err := toolCalls(resp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("Gemini response received",
		zap.String("model", c.modelName),
		zap.Int("tool_calls", len(calls)))

	return calls, nil
}

// functionDeclaration converts the shared tool spec into a Gemini declaration
func functionDeclaration(spec core.ToolSpec) *genai.FunctionDeclaration {
	properties := make(map[string]*genai.Schema, len(spec.Fields))
	required := make([]string, 0, len(spec.Fields))
	for _, f := range spec.Fields {
		schema := &genai.Schema{
			Type:        genai.TypeString,
			Description: f.Description,
		}
		if f.Type == "integer" {
			schema.Type = genai.TypeInteger
		}
		if len(f.Enum) > 0 {
			schema.Format = "enum"
			schema.Enum = f.Enum
		}
		properties[f.Name] = schema
		required = append(required, f.Name)
	}

	return &genai.FunctionDeclaration{
		Name:        spec.Name,
		Description: spec.Description,
		Parameters: &genai.Schema{
			Type:       genai.TypeObject,
			Properties: properties,
			Required:   required,
		},
	}
}

func forcedToolConfig(name string) *genai.ToolConfig {
	return &genai.ToolConfig{
		FunctionCallingConfig: &genai.FunctionCallingConfig{
			Mode:                 genai.FunctionCallingAny,
			AllowedFunctionNames: []string{name},
		},
	}
}

// toolCalls collects the function-call parts of the first candidate
func toolCalls(resp *genai.GenerateContentResponse) ([]core.ToolCall, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, nil
	}

	var calls []core.ToolCall
	for _, part := range resp.Candidates[0].Content.Parts {
		var fc genai.FunctionCall
		switch p := part.(type) {
		case genai.FunctionCall:
			fc = p
		case *genai.FunctionCall:
			if p == nil {
				continue
			}
			fc = *p
		default:
			continue
		}

		args, err := json.Marshal(fc.Args)
		if err != nil {
			return nil, &core.UpstreamDecodeError{Reason: "function call arguments are not serialisable", Err: err}
		}
		calls = append(calls, core.ToolCall{Name: fc.Name, Arguments: args})
	}
	return calls, nil
}

// wrapError maps Google API errors onto the upstream error taxonomy
func wrapError(err error) error {
	var apiErr *apierror.APIError
	if errors.As(err, &apiErr) {
		if st := apiErr.GRPCStatus(); st != nil {
			switch st.Code() {
			case codes.Unavailable, codes.DeadlineExceeded:
				return &core.UpstreamNetworkError{Provider: providerName, Err: err}
			}
		}

		status := apiErr.HTTPCode()
		if status < 0 {
			status = 0
		}
		return &core.UpstreamCallError{
			Provider:   providerName,
			StatusCode: status,
			Err:        fmt.Errorf("failed to generate content with Gemini: %w", err),
		}
	}

	return core.WrapTransportError(providerName, err)
}
