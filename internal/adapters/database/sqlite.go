package database

import (
	"context"
	"fmt"

	_ "github.com/mattn/go-sqlite3" // sqlite driver
	"github.com/satishbabariya/nestql/internal/core/database/pool"
	"github.com/satishbabariya/nestql/internal/core/query/render"
)

// SQLite is the SQLite adapter.
type SQLite struct {
	cfg  Config
	pool *pool.Pool
}

var _ Adapter = (*SQLite)(nil)

// NewSQLite creates a SQLite adapter.
func NewSQLite(cfg Config) *SQLite {
	return &SQLite{cfg: cfg}
}

// Connect establishes the pool.
func (a *SQLite) Connect(ctx context.Context) error {
	p, err := pool.New("sqlite3", a.cfg.URL, a.cfg.poolConfig())
	if err != nil {
		return fmt.Errorf("failed to create sqlite pool: %w", err)
	}
	if err := p.HealthCheck(ctx); err != nil {
		_ = p.Close()
		return err
	}
	a.pool = p
	return nil
}

// Disconnect closes the pool.
func (a *SQLite) Disconnect(context.Context) error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Close()
}

// Ping checks the database connection.
func (a *SQLite) Ping(ctx context.Context) error {
	return a.pool.HealthCheck(ctx)
}

// Pool returns the connection pool.
func (a *SQLite) Pool() *pool.Pool { return a.pool }

// Dialect returns the SQLite rendering dialect.
func (a *SQLite) Dialect() render.Dialect { return render.SQLite{} }

// Provider returns "sqlite".
func (a *SQLite) Provider() string { return "sqlite" }
