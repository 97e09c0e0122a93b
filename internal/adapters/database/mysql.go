package database

import (
	"context"
	"fmt"

	_ "github.com/go-sql-driver/mysql" // mysql driver
	"github.com/satishbabariya/nestql/internal/core/database/pool"
	"github.com/satishbabariya/nestql/internal/core/query/render"
)

// MySQL is the MySQL adapter.
type MySQL struct {
	cfg  Config
	pool *pool.Pool
}

var _ Adapter = (*MySQL)(nil)

// NewMySQL creates a MySQL adapter.
func NewMySQL(cfg Config) *MySQL {
	return &MySQL{cfg: cfg}
}

// Connect establishes the pool.
func (a *MySQL) Connect(ctx context.Context) error {
	p, err := pool.New("mysql", a.cfg.URL, a.cfg.poolConfig())
	if err != nil {
		return fmt.Errorf("failed to create mysql pool: %w", err)
	}
	if err := p.HealthCheck(ctx); err != nil {
		_ = p.Close()
		return err
	}
	a.pool = p
	return nil
}

// Disconnect closes the pool.
func (a *MySQL) Disconnect(context.Context) error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Close()
}

// Ping checks the database connection.
func (a *MySQL) Ping(ctx context.Context) error {
	return a.pool.HealthCheck(ctx)
}

// Pool returns the connection pool.
func (a *MySQL) Pool() *pool.Pool { return a.pool }

// Dialect returns the MySQL rendering dialect.
func (a *MySQL) Dialect() render.Dialect { return render.MySQL{} }

// Provider returns "mysql".
func (a *MySQL) Provider() string { return "mysql" }
