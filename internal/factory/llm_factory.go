package factory

import (
	"errors"
	"fmt"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

// ErrMissingCredentials is returned when a provider has no API credentials configured
var ErrMissingCredentials = errors.New("missing provider credentials")

// LLMFactory creates LLM clients
type LLMFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewLLMFactory creates a new LLM factory
func NewLLMFactory(cfg *config.Config, logger *zap.Logger) *LLMFactory {
	return &LLMFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// ProviderName returns the configured provider
func (f *LLMFactory) ProviderName() string {
	return f.cfg.GetLLM().Provider
}

// CreateLLMClient creates a new LLM client based on the configuration
func (f *LLMFactory) CreateLLMClient() (core.LLMClient, error) {
	provider := f.ProviderName()

	switch provider {
	case "openai":
		return NewOpenAIFactory(f.cfg, f.logger).CreateLLMClient()
	case "gemini":
		return NewGeminiFactory(f.cfg, f.logger).CreateLLMClient()
	case "bedrock":
		return NewBedrockFactory(f.cfg, f.logger).CreateLLMClient()
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}

// CreateOptionalLLMClient is like CreateLLMClient but logs failures and returns
// nil, which leaves the service reporting itself unavailable
func (f *LLMFactory) CreateOptionalLLMClient() core.LLMClient {
	client, err := f.CreateLLMClient()
	if err != nil {
		f.logger.Warn("Model client not initialized, classification is unavailable",
			zap.String("provider", f.ProviderName()),
			zap.Error(err))
		return nil
	}

	f.logger.Info("Model client initialized", zap.String("provider", f.ProviderName()))
	return client
}
