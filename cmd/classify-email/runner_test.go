package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/adapters/mock"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/utils"
)

const mboxFixture = "From jane@acme.com Mon Jan  1 00:00:00 2024\n" +
	"From: Jane <jane@acme.com>\n" +
	"Subject: First\n" +
	"Message-Id: <one@acme.com>\n" +
	"\n" +
	"Hello once.\n" +
	"\n" +
	"From bot@spam.biz Mon Jan  1 00:00:00 2024\n" +
	"From: bot@spam.biz\n" +
	"Subject: Second\n" +
	"Message-Id: <two@spam.biz>\n" +
	"\n" +
	"Buy now.\n"

func newTestRunner(llm core.LLMClient, out *bytes.Buffer) *classifyRunner {
	logger := zap.NewNop()
	classifier := core.NewClassifier(llm, utils.NewTextProcessor(logger), "test", 2000, logger)
	service := core.NewClassificationService(classifier, core.NewResultLogger(nil, time.Second, logger), nil, logger)
	return newClassifyRunner(service, logger, "cli", out)
}

func spamClient() *mock.LLMClient {
	return mock.NewLLMClient(map[string]interface{}{
		"classification":               "spam",
		"real_human_probability_score": 3,
		"summary":                      "Bulk promotion.",
		"reasoning":                    "Generic sales copy.",
		"suggested_action":             "delete",
	})
}

func TestClassifyMessageWritesJSONLine(t *testing.T) {
	var out bytes.Buffer
	r := newTestRunner(spamClient(), &out)

	raw := "From: bot@spam.biz\r\nSubject: Deal\r\nMessage-Id: <x1@spam.biz>\r\n\r\nBuy now.\r\n"
	require.NoError(t, r.classifyMessage(context.Background(), strings.NewReader(raw)))

	var resp core.ClassificationResponse
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	assert.Equal(t, "x1@spam.biz", resp.ID)
	assert.Equal(t, core.LabelSpam, resp.Classification)
	assert.Nil(t, resp.ClassificationLogID)
	assert.Contains(t, out.String(), `"classificationLogId":null`)
}

func TestClassifyMboxWritesOneLinePerMessage(t *testing.T) {
	var out bytes.Buffer
	llm := spamClient()
	r := newTestRunner(llm, &out)

	require.NoError(t, r.classifyMbox(context.Background(), strings.NewReader(mboxFixture)))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"id":"one@acme.com"`)
	assert.Contains(t, lines[1], `"id":"two@spam.biz"`)
	assert.Equal(t, 2, llm.Calls())
}

func TestClassifyMboxStopsOnError(t *testing.T) {
	var out bytes.Buffer
	llm := &mock.LLMClient{
		CallToolFunc: func(ctx context.Context, req *core.ToolRequest) ([]core.ToolCall, error) {
			return nil, &core.UpstreamCallError{Provider: "test", StatusCode: 500, Err: errors.New("boom")}
		},
	}
	r := newTestRunner(llm, &out)

	err := r.classifyMbox(context.Background(), strings.NewReader(mboxFixture))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "message 1")
	assert.Empty(t, out.String())
}
