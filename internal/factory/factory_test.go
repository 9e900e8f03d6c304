package factory

import (
	"path/filepath"
	"testing"

	"github.com/mikey/email-classifier/internal/adapters/httpapi"
	"github.com/mikey/email-classifier/internal/adapters/smtp"
	"github.com/mikey/email-classifier/internal/adapters/store"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestConfig(t *testing.T, values map[string]interface{}) *config.Config {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("SUPABASE_URL", "")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "")
	cfg := config.NewFromViper(config.NewEmptyViper())
	for k, v := range values {
		cfg.Set(k, v)
	}
	return cfg
}

func TestOpenAIClientRequiresKey(t *testing.T) {
	f := NewLLMFactory(newTestConfig(t, nil), zap.NewNop())

	_, err := f.CreateLLMClient()
	assert.ErrorIs(t, err, ErrMissingCredentials)
	assert.Nil(t, f.CreateOptionalLLMClient())
}

func TestOpenAIClientCreated(t *testing.T) {
	f := NewLLMFactory(newTestConfig(t, map[string]interface{}{"openai.api_key": "sk-test"}), zap.NewNop())

	client := f.CreateOptionalLLMClient()
	assert.NotNil(t, client)
	assert.Equal(t, "openai", f.ProviderName())
}

func TestGeminiClientRequiresKey(t *testing.T) {
	f := NewLLMFactory(newTestConfig(t, map[string]interface{}{"llm.provider": "gemini"}), zap.NewNop())

	_, err := f.CreateLLMClient()
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestUnsupportedProvider(t *testing.T) {
	f := NewLLMFactory(newTestConfig(t, map[string]interface{}{"llm.provider": "llama"}), zap.NewNop())

	_, err := f.CreateLLMClient()
	assert.Error(t, err)
	assert.Nil(t, f.CreateOptionalLLMClient())
}

func TestStoreTypes(t *testing.T) {
	st, err := NewStoreFactory(newTestConfig(t, map[string]interface{}{"store.type": "none"}), zap.NewNop()).CreateStore()
	require.NoError(t, err)
	assert.Nil(t, st)

	st, err = NewStoreFactory(newTestConfig(t, map[string]interface{}{"store.type": "memory"}), zap.NewNop()).CreateStore()
	require.NoError(t, err)
	assert.IsType(t, &store.MemoryStore{}, st)

	path := filepath.Join(t.TempDir(), "nested", "log.db")
	st, err = NewStoreFactory(newTestConfig(t, map[string]interface{}{"store.type": "sqlite", "store.sqlite_path": path}), zap.NewNop()).CreateStore()
	require.NoError(t, err)
	assert.IsType(t, &store.SQLStore{}, st)
	require.NoError(t, st.Close())

	_, err = NewStoreFactory(newTestConfig(t, map[string]interface{}{"store.type": "redis"}), zap.NewNop()).CreateStore()
	assert.Error(t, err)
}

func TestSupabaseStoreWithoutCredentialsDisablesLogging(t *testing.T) {
	f := NewStoreFactory(newTestConfig(t, nil), zap.NewNop())

	_, err := f.CreateStore()
	assert.ErrorIs(t, err, ErrMissingCredentials)

	// interface must be a true nil so the result logger sees it as disabled
	st := f.CreateOptionalStore()
	assert.True(t, st == nil)
}

func TestCreateIngresses(t *testing.T) {
	logger := zap.NewNop()
	classifier := core.NewClassifier(nil, nil, "openai", 2000, logger)
	service := core.NewClassificationService(classifier, core.NewResultLogger(nil, 0, logger), nil, logger)

	ingresses := NewIngressFactory(newTestConfig(t, nil), logger, service).CreateIngresses()
	require.Len(t, ingresses, 1)
	assert.IsType(t, &httpapi.Server{}, ingresses[0])

	ingresses = NewIngressFactory(newTestConfig(t, map[string]interface{}{"smtp.enabled": true}), logger, service).CreateIngresses()
	require.Len(t, ingresses, 2)
	assert.IsType(t, &smtp.Relay{}, ingresses[1])
}
