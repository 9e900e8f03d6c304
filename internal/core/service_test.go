package core_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/mikey/email-classifier/internal/adapters/mock"
	"github.com/mikey/email-classifier/internal/core"
)

type fakeStore struct {
	mu      sync.Mutex
	records []*core.ClassificationRecord
	id      string
	err     error
	block   bool
}

func (s *fakeStore) Insert(ctx context.Context, record *core.ClassificationRecord) (string, error) {
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return s.id, s.err
}

func (s *fakeStore) Get(ctx context.Context, id string) (*core.ClassificationRecord, error) {
	return nil, core.ErrRecordNotFound
}

func (s *fakeStore) Close() error { return nil }

func newService(llm core.LLMClient, st core.ClassificationStore, policy core.ActionPolicy, logger *zap.Logger) *core.ClassificationService {
	classifier := newClassifier(llm, 2000)
	return core.NewClassificationService(classifier, core.NewResultLogger(st, 50*time.Millisecond, logger), policy, logger)
}

func TestServiceClassifyLogsResult(t *testing.T) {
	st := &fakeStore{id: "log-1"}
	svc := newService(mock.NewLLMClient(validToolArgs), st, nil, zap.NewNop())

	resp, err := svc.Classify(context.Background(), testRequest)
	require.NoError(t, err)

	require.NotNil(t, resp.ClassificationLogID)
	assert.Equal(t, "log-1", *resp.ClassificationLogID)
	assert.Equal(t, "m1", resp.ID)
	assert.Equal(t, core.ActionReviewManually, resp.SuggestedAction)

	require.Len(t, st.records, 1)
	rec := st.records[0]
	assert.Equal(t, "m1", rec.GmailMessageID)
	assert.Equal(t, "u1", rec.UserID)
	assert.Equal(t, 72, rec.ConfidenceScore)
	assert.Equal(t, "Personal tone.", rec.LLMReasoning)
	assert.Equal(t, "Asks for a call.", rec.LLMSummary)
	assert.Equal(t, core.ActionReviewManually, rec.ActionTaken)
	assert.False(t, rec.ReceivedAt.IsZero())
}

func TestServiceActionPolicy(t *testing.T) {
	st := &fakeStore{id: "log-1"}
	archive := func(*core.ClassificationResult) core.SuggestedAction { return core.ActionArchive }
	svc := newService(mock.NewLLMClient(validToolArgs), st, archive, zap.NewNop())

	resp, err := svc.Classify(context.Background(), testRequest)
	require.NoError(t, err)

	assert.Equal(t, core.ActionReviewManually, resp.SuggestedAction)
	assert.Equal(t, core.ActionArchive, st.records[0].ActionTaken)
}

func TestServiceStoreFailureIsNotFatal(t *testing.T) {
	obs, logs := observer.New(zapcore.WarnLevel)
	st := &fakeStore{err: errors.New("connection reset")}
	svc := newService(mock.NewLLMClient(validToolArgs), st, nil, zap.New(obs))

	resp, err := svc.Classify(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Nil(t, resp.ClassificationLogID)

	warnings := logs.FilterMessage("Failed to log classification").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "m1", warnings[0].ContextMap()["message_id"])
}

func TestServiceStoreTimeoutIsNotFatal(t *testing.T) {
	st := &fakeStore{block: true}
	svc := newService(mock.NewLLMClient(validToolArgs), st, nil, zap.NewNop())

	start := time.Now()
	resp, err := svc.Classify(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Nil(t, resp.ClassificationLogID)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestServiceEmptyIDFromStore(t *testing.T) {
	svc := newService(mock.NewLLMClient(validToolArgs), &fakeStore{}, nil, zap.NewNop())

	resp, err := svc.Classify(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Nil(t, resp.ClassificationLogID)
}

func TestServiceWithoutStore(t *testing.T) {
	svc := newService(mock.NewLLMClient(validToolArgs), nil, nil, zap.NewNop())

	resp, err := svc.Classify(context.Background(), testRequest)
	require.NoError(t, err)
	assert.Nil(t, resp.ClassificationLogID)
}

func TestServiceFailureWritesNoRecord(t *testing.T) {
	st := &fakeStore{id: "log-1"}
	args := map[string]interface{}{}
	for k, v := range validToolArgs {
		args[k] = v
	}
	args["real_human_probability_score"] = 150
	svc := newService(mock.NewLLMClient(args), st, nil, zap.NewNop())

	_, err := svc.Classify(context.Background(), testRequest)
	require.Error(t, err)
	assert.Empty(t, st.records)
}

func TestServiceUnavailable(t *testing.T) {
	st := &fakeStore{id: "log-1"}
	svc := newService(nil, st, nil, zap.NewNop())
	assert.False(t, svc.Available())

	_, err := svc.Classify(context.Background(), testRequest)
	assert.ErrorIs(t, err, core.ErrServiceUnavailable)
	assert.Empty(t, st.records)
}

func TestAssembleResponse(t *testing.T) {
	result := &core.ClassificationResult{
		ID:                    "m1",
		Classification:        core.LabelSpam,
		HumanProbabilityScore: 5,
		Summary:               "s",
		Reasoning:             "r",
		SuggestedAction:       core.ActionDelete,
	}

	resp := core.AssembleResponse(result, "")
	assert.Nil(t, resp.ClassificationLogID)
	assert.Equal(t, core.LabelSpam, resp.Classification)

	resp = core.AssembleResponse(result, "log-9")
	require.NotNil(t, resp.ClassificationLogID)
	assert.Equal(t, "log-9", *resp.ClassificationLogID)
}
