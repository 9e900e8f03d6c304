package factory

import (
	"github.com/mikey/email-classifier/internal/adapters/httpapi"
	"github.com/mikey/email-classifier/internal/adapters/smtp"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"github.com/mikey/email-classifier/internal/ports"
	"go.uber.org/zap"
)

// IngressFactory creates the service entry points based on configuration
type IngressFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	service *core.ClassificationService
}

// NewIngressFactory creates a new ingress factory
func NewIngressFactory(cfg *config.Config, logger *zap.Logger, service *core.ClassificationService) *IngressFactory {
	return &IngressFactory{
		cfg:     cfg,
		logger:  logger,
		service: service,
	}
}

// CreateIngresses returns the HTTP API and, when enabled, the SMTP relay
func (f *IngressFactory) CreateIngresses() []ports.Ingress {
	serverCfg := f.cfg.GetServer()
	ingresses := []ports.Ingress{
		httpapi.NewServer(
			f.service,
			f.logger.Named("http"),
			serverCfg.ListenAddress(),
			serverCfg.ShutdownTimeout,
		),
	}

	smtpCfg := f.cfg.GetSMTP()
	if smtpCfg.Enabled {
		ingresses = append(ingresses, smtp.NewRelay(
			f.service,
			f.logger.Named("smtp"),
			smtpCfg.ListenAddress,
			smtpCfg.NextHopAddress,
			smtpCfg.DefaultUserID,
			smtpCfg.ClassifyTimeout,
		))
	}

	return ingresses
}
