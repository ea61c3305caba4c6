package cache

import (
	"fmt"

	"github.com/erp/manufacturing/internal/domain/warning"
	"github.com/erp/manufacturing/internal/infrastructure/config"
	"go.uber.org/zap"
)

// WarningStoreFactory creates warning acknowledgement stores based on configuration
type WarningStoreFactory struct {
	redisConfig           config.RedisConfig
	warningConfig         config.WarningConfig
	databaseStore         warning.Store
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// WarningStoreFactoryOption is a functional option for configuring the factory
type WarningStoreFactoryOption func(*WarningStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) WarningStoreFactoryOption {
	return func(f *WarningStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store when Redis is unavailable.
// Default is false.
func WithInMemoryFallback(allow bool) WarningStoreFactoryOption {
	return func(f *WarningStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// WithDatabaseStore supplies the store used when the configured store is "database"
func WithDatabaseStore(store warning.Store) WarningStoreFactoryOption {
	return func(f *WarningStoreFactory) {
		f.databaseStore = store
	}
}

// NewWarningStoreFactory creates a new factory
func NewWarningStoreFactory(redisCfg config.RedisConfig, warningCfg config.WarningConfig, opts ...WarningStoreFactoryOption) *WarningStoreFactory {
	f := &WarningStoreFactory{
		redisConfig:   redisCfg,
		warningConfig: warningCfg,
		logger:        zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateStore creates the store selected by warning.store
func (f *WarningStoreFactory) CreateStore() (warning.Store, error) {
	switch f.warningConfig.Store {
	case config.WarningStoreMemory:
		f.logger.Warn("using in-memory warning store; acknowledgements are not shared between instances")
		return NewInMemoryWarningStore(f.warningConfig.TTL), nil

	case config.WarningStoreDatabase:
		if f.databaseStore == nil {
			return nil, fmt.Errorf("database warning store selected but not provided")
		}
		f.logger.Info("using database warning store")
		return f.databaseStore, nil

	case config.WarningStoreRedis, "":
		client, err := NewRedisClient(f.redisConfig)
		if err == nil {
			f.logger.Info("using Redis warning store", zap.String("addr", f.redisConfig.Addr()))
			return NewRedisWarningStore(client, "", f.warningConfig.TTL), nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for warning store but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory warning store", zap.Error(err))
		return NewInMemoryWarningStore(f.warningConfig.TTL), nil

	default:
		return nil, fmt.Errorf("unknown warning store %q", f.warningConfig.Store)
	}
}
