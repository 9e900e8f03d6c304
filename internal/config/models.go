package config

import (
	"fmt"
	"time"
)

// LLMConfig represents the configuration for the LLM provider
type LLMConfig struct {
	Provider string
}

// ClassifierConfig controls prompt construction
type ClassifierConfig struct {
	MaxBodyChars int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	ModelName   string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// SupabaseConfig holds the Supabase project credentials
type SupabaseConfig struct {
	URL            string
	ServiceRoleKey string
}

// StoreConfig represents the configuration of the classification log store
type StoreConfig struct {
	Type        string
	Timeout     time.Duration
	AutoMigrate bool
	Supabase    SupabaseConfig
	PostgresDSN string
	MySQLDSN    string
	SQLitePath  string
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
}

// ListenAddress returns host:port
func (s ServerConfig) ListenAddress() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// SMTPConfig represents the SMTP relay configuration
type SMTPConfig struct {
	Enabled         bool
	ListenAddress   string
	NextHopAddress  string
	DefaultUserID   string
	ClassifyTimeout time.Duration
}

// GetLLM returns the LLM configuration
func (c *Config) GetLLM() LLMConfig {
	return LLMConfig{
		Provider: c.GetString("llm.provider"),
	}
}

// GetClassifier returns the classifier configuration
func (c *Config) GetClassifier() ClassifierConfig {
	return ClassifierConfig{
		MaxBodyChars: c.GetInt("classifier.max_body_chars"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		BaseURL:     c.GetString("openai.base_url"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		Timeout:     c.GetDuration("openai.timeout", 30*time.Second),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		Timeout:     c.GetDuration("gemini.timeout", 30*time.Second),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		Timeout:     c.GetDuration("bedrock.timeout", 30*time.Second),
	}
}

// GetStore returns the store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:        c.GetString("store.type"),
		Timeout:     c.GetDuration("store.timeout", 5*time.Second),
		AutoMigrate: c.GetBool("store.auto_migrate"),
		Supabase: SupabaseConfig{
			URL:            c.GetString("store.supabase.url"),
			ServiceRoleKey: c.GetString("store.supabase.service_role_key"),
		},
		PostgresDSN: c.GetString("store.postgres_dsn"),
		MySQLDSN:    c.GetString("store.mysql_dsn"),
		SQLitePath:  c.GetString("store.sqlite_path"),
	}
}

// GetServer returns the HTTP server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		Host:            c.GetString("server.host"),
		Port:            c.GetInt("server.port"),
		ShutdownTimeout: c.GetDuration("server.shutdown_timeout", 10*time.Second),
	}
}

// GetSMTP returns the SMTP relay configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		Enabled:         c.GetBool("smtp.enabled"),
		ListenAddress:   c.GetString("smtp.listen_address"),
		NextHopAddress:  c.GetString("smtp.next_hop_address"),
		DefaultUserID:   c.GetString("smtp.default_user_id"),
		ClassifyTimeout: c.GetDuration("smtp.classify_timeout", 45*time.Second),
	}
}
