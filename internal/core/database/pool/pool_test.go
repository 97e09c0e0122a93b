package pool

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func newTestPool(t *testing.T, cfg Config) *Pool {
	t.Helper()
	p, err := New("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })
	return p
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 5, cfg.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxLifetime)
	assert.Equal(t, time.Minute, cfg.HealthCheckInterval)
}

func TestAcquireDedicatedConnection(t *testing.T) {
	p := newTestPool(t, Config{MaxOpenConns: 3, MaxIdleConns: 3})

	conn, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, p.Stats().InUse)

	second, err := p.Acquire(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, p.Stats().InUse)

	require.NoError(t, conn.Close())
	require.NoError(t, second.Close())
	assert.Equal(t, 0, p.Stats().InUse)
}

func TestHealthCheck(t *testing.T) {
	p := newTestPool(t, Config{MaxOpenConns: 1, MaxIdleConns: 1})

	require.NoError(t, p.HealthCheck(context.Background()))

	stats := p.Stats()
	assert.False(t, stats.LastHealthCheck.IsZero())
	assert.Zero(t, stats.FailedHealthChecks)
}

func TestCloseStopsHealthCheckLoop(t *testing.T) {
	p, err := New("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared", Config{
		MaxOpenConns:        1,
		MaxIdleConns:        1,
		HealthCheckInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	time.Sleep(30 * time.Millisecond)
	require.NoError(t, p.Close())
}
