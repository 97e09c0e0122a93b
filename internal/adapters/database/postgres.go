package database

import (
	"context"
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
	_ "github.com/lib/pq" // postgres driver
	"github.com/satishbabariya/nestql/internal/core/database/pool"
	"github.com/satishbabariya/nestql/internal/core/query/render"
	"github.com/satishbabariya/nestql/internal/debug"
)

// minPostgresVersion is the oldest server the renderer's SQL is tested
// against.
const minPostgresVersion = "12.0"

// Postgres is the PostgreSQL adapter.
type Postgres struct {
	cfg  Config
	pool *pool.Pool
}

var _ Adapter = (*Postgres)(nil)

// NewPostgres creates a PostgreSQL adapter.
func NewPostgres(cfg Config) *Postgres {
	return &Postgres{cfg: cfg}
}

// Connect establishes the pool and verifies the server version.
func (a *Postgres) Connect(ctx context.Context) error {
	p, err := pool.New("postgres", a.cfg.URL, a.cfg.poolConfig())
	if err != nil {
		return fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := p.HealthCheck(ctx); err != nil {
		_ = p.Close()
		return err
	}
	if err := checkPostgresVersion(ctx, p); err != nil {
		_ = p.Close()
		return err
	}
	a.pool = p
	return nil
}

// Disconnect closes the pool.
func (a *Postgres) Disconnect(context.Context) error {
	if a.pool == nil {
		return nil
	}
	return a.pool.Close()
}

// Ping checks the database connection.
func (a *Postgres) Ping(ctx context.Context) error {
	return a.pool.HealthCheck(ctx)
}

// Pool returns the connection pool.
func (a *Postgres) Pool() *pool.Pool { return a.pool }

// Dialect returns the PostgreSQL rendering dialect.
func (a *Postgres) Dialect() render.Dialect { return render.Postgres{} }

// Provider returns "postgres".
func (a *Postgres) Provider() string { return "postgres" }

func checkPostgresVersion(ctx context.Context, p *pool.Pool) error {
	var raw string
	if err := p.DB().QueryRowContext(ctx, "SHOW server_version").Scan(&raw); err != nil {
		return fmt.Errorf("failed to read server version: %w", err)
	}
	// Strip build suffixes like "16.2 (Debian 16.2-1)".
	if i := strings.IndexByte(raw, ' '); i > 0 {
		raw = raw[:i]
	}
	current, err := goversion.NewVersion(raw)
	if err != nil {
		debug.Warn("could not parse postgres server version", "version", raw, "error", err)
		return nil
	}
	minimum := goversion.Must(goversion.NewVersion(minPostgresVersion))
	if current.LessThan(minimum) {
		return fmt.Errorf("postgres server %s is older than the minimum supported %s", current, minimum)
	}
	return nil
}
