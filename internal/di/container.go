package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/factory"
	"github.com/mikey/email-classifier/internal/logging"
	"github.com/mikey/email-classifier/internal/ports"
	"github.com/mikey/email-classifier/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideService(container); err != nil {
		return nil, err
	}

	// Register ingress points
	if err := container.Provide(factory.NewIngressFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.IngressFactory) []ports.Ingress {
		return f.CreateIngresses()
	}); err != nil {
		return nil, err
	}

	return container, nil
}

// provideService registers everything from the model client and store up to
// the classification service. Config and logger must already be provided.
func provideService(container *dig.Container) error {
	// Register factories
	if err := container.Provide(factory.NewLLMFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return err
	}

	// Register LLM client; nil when the provider is not configured
	if err := container.Provide(func(f *factory.LLMFactory) core.LLMClient {
		return f.CreateOptionalLLMClient()
	}); err != nil {
		return err
	}

	// Register store; nil when logging is disabled or unavailable
	if err := container.Provide(func(f *factory.StoreFactory) core.ClassificationStore {
		return f.CreateOptionalStore()
	}); err != nil {
		return err
	}

	// Register classifier
	if err := container.Provide(func(
		llmClient core.LLMClient,
		textProcessor *utils.TextProcessor,
		f *factory.LLMFactory,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.Classifier {
		return core.NewClassifier(
			llmClient,
			textProcessor,
			f.ProviderName(),
			cfg.GetClassifier().MaxBodyChars,
			logger,
		)
	}); err != nil {
		return err
	}

	// Register result logger
	if err := container.Provide(func(
		store core.ClassificationStore,
		f *factory.StoreFactory,
		logger *zap.Logger,
	) *core.ResultLogger {
		return core.NewResultLogger(store, f.StoreTimeout(), logger)
	}); err != nil {
		return err
	}

	// Register action policy
	if err := container.Provide(func() core.ActionPolicy {
		return core.PassThroughActionPolicy
	}); err != nil {
		return err
	}

	// Register classification service
	if err := container.Provide(core.NewClassificationService); err != nil {
		return err
	}

	return nil
}

// Resources groups the handles that need closing at shutdown
type Resources struct {
	dig.In

	Logger    *zap.Logger
	LLMClient core.LLMClient
	Store     core.ClassificationStore
}

// Close releases the model client and store
func (r Resources) Close() {
	if closer, ok := r.LLMClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			r.Logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(); err != nil {
			r.Logger.Error("Failed to close store", zap.Error(err))
		}
	}
}
