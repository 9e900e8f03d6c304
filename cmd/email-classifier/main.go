package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/di"
	"github.com/mikey/email-classifier/internal/ports"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	ingresses []ports.Ingress,
	service *core.ClassificationService,
	resources di.Resources,
) error {
	defer logger.Sync()

	if !service.Available() {
		logger.Warn("Starting without a model client, /classify will answer 503")
	}

	started := make([]ports.Ingress, 0, len(ingresses))
	for _, ingress := range ingresses {
		if err := ingress.Start(); err != nil {
			logger.Error("Failed to start ingress", zap.Error(err))
			stopAll(logger, started)
			resources.Close()
			return err
		}
		started = append(started, ingress)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	stopAll(logger, started)
	resources.Close()

	logger.Info("Shutdown complete")
	return nil
}

func stopAll(logger *zap.Logger, ingresses []ports.Ingress) {
	for i := len(ingresses) - 1; i >= 0; i-- {
		if err := ingresses[i].Stop(); err != nil {
			logger.Error("Failed to stop ingress", zap.Error(err))
		}
	}
}
