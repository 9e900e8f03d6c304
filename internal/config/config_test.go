package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "openai", cfg.GetLLM().Provider)
	assert.Equal(t, 2000, cfg.GetClassifier().MaxBodyChars)

	openai := cfg.GetOpenAI()
	assert.Equal(t, 250, openai.MaxTokens)
	assert.InDelta(t, 0.1, openai.Temperature, 0.0001)
	assert.Equal(t, 30*time.Second, openai.Timeout)

	st := cfg.GetStore()
	assert.Equal(t, "supabase", st.Type)
	assert.Equal(t, 5*time.Second, st.Timeout)
	assert.True(t, st.AutoMigrate)

	assert.False(t, cfg.GetSMTP().Enabled)
	assert.Equal(t, "0.0.0.0:8000", cfg.GetServer().ListenAddress())
}

func TestWellKnownEnvironmentVariables(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("SUPABASE_URL", "https://project.supabase.co")
	t.Setenv("SUPABASE_SERVICE_ROLE_KEY", "service-key")
	t.Setenv("PORT", "9090")

	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "sk-test", cfg.GetOpenAI().APIKey)
	assert.Equal(t, "https://project.supabase.co", cfg.GetStore().Supabase.URL)
	assert.Equal(t, "service-key", cfg.GetStore().Supabase.ServiceRoleKey)
	assert.Equal(t, 9090, cfg.GetServer().Port)
}

func TestPrefixedEnvironmentVariables(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-plain")
	t.Setenv("EMAIL_CLASSIFIER_OPENAI_API_KEY", "sk-prefixed")
	t.Setenv("EMAIL_CLASSIFIER_STORE_TYPE", "sqlite")

	cfg := NewFromViper(NewEmptyViper())

	assert.Equal(t, "sk-prefixed", cfg.GetOpenAI().APIKey)
	assert.Equal(t, "sqlite", cfg.GetStore().Type)
}

func TestNewFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm:
  provider: gemini
classifier:
  max_body_chars: 500
store:
  type: memory
  timeout: 2s
smtp:
  enabled: true
  default_user_id: owner-1
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := NewFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.GetLLM().Provider)
	assert.Equal(t, 500, cfg.GetClassifier().MaxBodyChars)
	assert.Equal(t, "memory", cfg.GetStore().Type)
	assert.Equal(t, 2*time.Second, cfg.GetStore().Timeout)
	assert.True(t, cfg.GetSMTP().Enabled)
	assert.Equal(t, "owner-1", cfg.GetSMTP().DefaultUserID)
}

func TestGetDurationFallsBack(t *testing.T) {
	cfg := NewFromViper(NewEmptyViper())
	cfg.Set("store.timeout", "soon")
	assert.Equal(t, 5*time.Second, cfg.GetStore().Timeout)
}
