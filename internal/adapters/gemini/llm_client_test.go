package gemini

import (
	"errors"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFunctionDeclaration(t *testing.T) {
	decl := functionDeclaration(core.ClassificationTool())

	assert.Equal(t, core.ClassificationToolName, decl.Name)
	require.NotNil(t, decl.Parameters)
	assert.Equal(t, genai.TypeObject, decl.Parameters.Type)
	assert.Len(t, decl.Parameters.Required, 5)

	score := decl.Parameters.Properties["real_human_probability_score"]
	require.NotNil(t, score)
	assert.Equal(t, genai.TypeInteger, score.Type)

	label := decl.Parameters.Properties["classification"]
	require.NotNil(t, label)
	assert.Equal(t, genai.TypeString, label.Type)
	assert.Equal(t, "enum", label.Format)
	assert.Contains(t, label.Enum, "warm_intro")

	assert.Empty(t, decl.Parameters.Properties["summary"].Enum)
}

func TestForcedToolConfig(t *testing.T) {
	cfg := forcedToolConfig(core.ClassificationToolName)
	require.NotNil(t, cfg.FunctionCallingConfig)
	assert.Equal(t, genai.FunctionCallingAny, cfg.FunctionCallingConfig.Mode)
	assert.Equal(t, []string{core.ClassificationToolName}, cfg.FunctionCallingConfig.AllowedFunctionNames)
}

func TestToolCalls(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: "model",
				Parts: []genai.Part{
					genai.Text("thinking"),
					genai.FunctionCall{
						Name: core.ClassificationToolName,
						Args: map[string]any{
							"classification":               "warm_intro",
							"real_human_probability_score": float64(95),
						},
					},
				},
			},
		}},
	}

	calls, err := toolCalls(resp)
	require.NoError(t, err)
	require.Len(t, calls, 1)
	assert.Equal(t, core.ClassificationToolName, calls[0].Name)
	assert.JSONEq(t, `{"classification":"warm_intro","real_human_probability_score":95}`, string(calls[0].Arguments))
}

func TestToolCallsEmptyResponse(t *testing.T) {
	calls, err := toolCalls(&genai.GenerateContentResponse{})
	require.NoError(t, err)
	assert.Empty(t, calls)

	calls, err = toolCalls(nil)
	require.NoError(t, err)
	assert.Empty(t, calls)
}

func TestWrapErrorFallsBackToCallError(t *testing.T) {
	err := wrapError(errors.New("boom"))

	var callErr *core.UpstreamCallError
	assert.ErrorAs(t, err, &callErr)
}
