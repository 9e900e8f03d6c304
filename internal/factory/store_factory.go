package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mikey/email-classifier/internal/adapters/store"
	"github.com/mikey/email-classifier/internal/config"
	"github.com/mikey/email-classifier/internal/core"
	"go.uber.org/zap"
)

// StoreFactory creates classification stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates a store based on the configuration. It returns nil, nil
// when logging is switched off.
func (f *StoreFactory) CreateStore() (core.ClassificationStore, error) {
	storeCfg := f.cfg.GetStore()

	switch storeCfg.Type {
	case "none", "":
		return nil, nil
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "supabase":
		s, err := store.NewSupabaseStore(storeCfg.Supabase.URL, storeCfg.Supabase.ServiceRoleKey, storeCfg.Timeout, f.logger)
		if err != nil {
			return nil, fmt.Errorf("%v: %w", err, ErrMissingCredentials)
		}
		return s, nil
	case "postgres":
		if storeCfg.PostgresDSN == "" {
			return nil, fmt.Errorf("postgres DSN is required: %w", ErrMissingCredentials)
		}
		return sqlStore(store.NewPostgresStore(storeCfg.PostgresDSN, storeCfg.AutoMigrate, f.logger))
	case "mysql":
		return sqlStore(store.NewMySQLStore(storeCfg.MySQLDSN, storeCfg.AutoMigrate, f.logger))
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return sqlStore(store.NewSQLiteStore(storeCfg.SQLitePath, storeCfg.AutoMigrate, f.logger))
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}

// sqlStore avoids handing out a typed nil inside the interface
func sqlStore(s *store.SQLStore, err error) (core.ClassificationStore, error) {
	if err != nil {
		return nil, err
	}
	return s, nil
}

// CreateOptionalStore is like CreateStore but a failure only disables logging
func (f *StoreFactory) CreateOptionalStore() core.ClassificationStore {
	st, err := f.CreateStore()
	if err != nil {
		f.logger.Warn("Classification store not initialized, results will not be logged",
			zap.String("type", f.cfg.GetStore().Type),
			zap.Error(err))
		return nil
	}
	if st == nil {
		f.logger.Info("Classification logging disabled")
		return nil
	}

	f.logger.Info("Classification store initialized", zap.String("type", f.cfg.GetStore().Type))
	return st
}

// StoreTimeout returns the per-write timeout
func (f *StoreFactory) StoreTimeout() time.Duration {
	return f.cfg.GetStore().Timeout
}
