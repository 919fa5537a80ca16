package dependency

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/expense-tracker/backend/config"
	"github.com/expense-tracker/backend/internal/application/adapter"
	"github.com/expense-tracker/backend/internal/infra/cache"
	"github.com/expense-tracker/backend/internal/infra/db"
	"github.com/expense-tracker/backend/internal/integration/persistence"
)

// Backend is the storage selected by STORE_BACKEND.
type Backend struct {
	Name        string
	Store       adapter.ExpenseStore
	Ledger      adapter.AlertLedger
	HealthCheck func() bool
	Close       func() error
}

// OpenBackend connects to the configured store and prepares its schema.
func OpenBackend(cfg *config.Config) (*Backend, error) {
	switch cfg.Store.Backend {
	case config.StoreBackendPostgres:
		database, err := db.NewPostgresConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewSQLBackend(config.StoreBackendPostgres, database)
	case config.StoreBackendSQLite:
		database, err := db.NewSQLiteConnection(&cfg.Database)
		if err != nil {
			return nil, err
		}
		return NewSQLBackend(config.StoreBackendSQLite, database)
	case config.StoreBackendRedis:
		client, err := cache.NewRedisClient(&cfg.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedisBackend(client, cfg.Redis.KeyPrefix), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}
}

// NewSQLBackend migrates the schema and serves the store from database.
// Alert records are kept in memory.
func NewSQLBackend(name string, database *db.Database) (*Backend, error) {
	if err := persistence.AutoMigrate(database.DB()); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}
	return &Backend{
		Name:        name,
		Store:       persistence.NewGormStore(database.DB()),
		Ledger:      persistence.NewMemoryAlertLedger(),
		HealthCheck: database.HealthCheck,
		Close:       database.Close,
	}, nil
}

// NewRedisBackend serves the store and the alert ledger from redis.
func NewRedisBackend(client *redis.Client, prefix string) *Backend {
	return &Backend{
		Name:        config.StoreBackendRedis,
		Store:       persistence.NewRedisStore(client, prefix),
		Ledger:      persistence.NewRedisAlertLedger(client, prefix),
		HealthCheck: func() bool { return cache.HealthCheck(client) },
		Close:       client.Close,
	}
}
