// Package database defines the database adapter interface and the factory
// that selects an adapter by provider name.
package database

import (
	"context"
	"fmt"

	"github.com/satishbabariya/nestql/internal/core/database/pool"
	"github.com/satishbabariya/nestql/internal/core/query/render"
)

// Adapter binds one database engine: its sql driver, its connection pool and
// the dialect statements are rendered in.
type Adapter interface {
	// Connect establishes the connection pool.
	Connect(ctx context.Context) error

	// Disconnect closes the connection pool.
	Disconnect(ctx context.Context) error

	// Ping checks the database connection.
	Ping(ctx context.Context) error

	// Pool returns the adapter's connection pool. Valid after Connect.
	Pool() *pool.Pool

	// Dialect returns the rendering dialect for this engine.
	Dialect() render.Dialect

	// Provider returns the provider name.
	Provider() string
}

// Config holds database connection configuration.
type Config struct {
	// Provider is one of "postgres", "mysql", "sqlite".
	Provider string
	// URL is the driver-specific data source name.
	URL string
	// Pool configures the connection pool; zero value means defaults.
	Pool pool.Config
}

func (c Config) poolConfig() pool.Config {
	if c.Pool == (pool.Config{}) {
		return pool.DefaultConfig()
	}
	return c.Pool
}

// New returns the adapter for the configured provider.
func New(cfg Config) (Adapter, error) {
	switch cfg.Provider {
	case "postgres", "postgresql":
		return NewPostgres(cfg), nil
	case "mysql":
		return NewMySQL(cfg), nil
	case "sqlite", "sqlite3":
		return NewSQLite(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", cfg.Provider)
	}
}
