package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// well-known environment variables bound in addition to the EMAIL_CLASSIFIER_ prefix
var envBindings = map[string]string{
	"openai.api_key":                  "OPENAI_API_KEY",
	"gemini.api_key":                  "GEMINI_API_KEY",
	"store.supabase.url":              "SUPABASE_URL",
	"store.supabase.service_role_key": "SUPABASE_SERVICE_ROLE_KEY",
	"store.postgres_dsn":              "DATABASE_URL",
	"server.port":                     "PORT",
}

// New creates a new configuration instance. A .env file in the working
// directory is loaded first when present.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := NewEmptyViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/email-classifier/")
	v.AddConfigPath("$HOME/.email-classifier")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromFile creates a configuration instance from an explicit config file
func NewFromFile(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := NewEmptyViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults and environment bindings
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("EMAIL_CLASSIFIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		// prefixed variable wins over the well-known one
		_ = v.BindEnv(key, "EMAIL_CLASSIFIER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env)
	}

	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// LLM provider defaults
	v.SetDefault("llm.provider", "openai")

	// Classifier defaults
	v.SetDefault("classifier.max_body_chars", 2000)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.shutdown_timeout", "10s")

	// SMTP relay defaults
	v.SetDefault("smtp.enabled", false)
	v.SetDefault("smtp.listen_address", "0.0.0.0:10025")
	v.SetDefault("smtp.next_hop_address", "localhost:10026")
	v.SetDefault("smtp.default_user_id", "")
	v.SetDefault("smtp.classify_timeout", "45s")

	// OpenAI defaults
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.base_url", "")
	v.SetDefault("openai.model_name", "gpt-4o-mini")
	v.SetDefault("openai.max_tokens", 250)
	v.SetDefault("openai.temperature", 0.1)
	v.SetDefault("openai.timeout", "30s")

	// Gemini defaults
	v.SetDefault("gemini.api_key", "")
	v.SetDefault("gemini.model_name", "gemini-1.5-flash")
	v.SetDefault("gemini.max_tokens", 250)
	v.SetDefault("gemini.temperature", 0.1)
	v.SetDefault("gemini.timeout", "30s")

	// Bedrock defaults
	v.SetDefault("bedrock.region", "us-east-1")
	v.SetDefault("bedrock.model_id", "anthropic.claude-3-haiku-20240307-v1:0")
	v.SetDefault("bedrock.max_tokens", 250)
	v.SetDefault("bedrock.temperature", 0.1)
	v.SetDefault("bedrock.timeout", "30s")

	// Store defaults
	v.SetDefault("store.type", "supabase")
	v.SetDefault("store.timeout", "5s")
	v.SetDefault("store.auto_migrate", true)
	v.SetDefault("store.supabase.url", "")
	v.SetDefault("store.supabase.service_role_key", "")
	v.SetDefault("store.postgres_dsn", "")
	v.SetDefault("store.mysql_dsn", "user:password@tcp(localhost:3306)/email_classifier")
	v.SetDefault("store.sqlite_path", "/data/email_classifications.db")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetFloat64 gets a float64 value from the configuration
func (c *Config) GetFloat64(key string) float64 {
	return c.v.GetFloat64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetDuration gets a duration value from the configuration, falling back to
// def when the value is missing or malformed
func (c *Config) GetDuration(key string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil || d <= 0 {
		return def
	}
	return d
}

// Set overrides a configuration value
func (c *Config) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
