// Package driver executes rendered statements against a database and exposes
// the result as a lazy cursor. A cursor holds one dedicated connection for
// its whole lifetime; rows are fetched on demand, never buffered in full.
package driver

import (
	"context"
	"database/sql"

	"github.com/satishbabariya/nestql/internal/core/database/pool"
	"github.com/satishbabariya/nestql/internal/core/query/render"
	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
)

// Conn is a dedicated database connection. *sql.Conn satisfies it.
type Conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	Close() error
}

// Connector hands out dedicated connections.
type Connector interface {
	Acquire(ctx context.Context) (Conn, error)
}

// PoolConnector adapts a *pool.Pool to the Connector interface.
type PoolConnector struct {
	Pool *pool.Pool
}

var _ Connector = PoolConnector{}

// Acquire checks a connection out of the pool.
func (c PoolConnector) Acquire(ctx context.Context) (Conn, error) {
	return c.Pool.Acquire(ctx)
}

// Driver renders abstract statements for one dialect and executes them.
type Driver struct {
	connector Connector
	dialect   render.Dialect
}

// New builds a driver bound to one connector and one dialect.
func New(connector Connector, dialect render.Dialect) *Driver {
	return &Driver{connector: connector, dialect: dialect}
}

// Dialect returns the dialect the driver renders for.
func (d *Driver) Dialect() render.Dialect { return d.dialect }

// Execute renders and runs a statement. The returned cursor owns one pooled
// connection until it is drained, errors, or is closed, whichever comes
// first; ctx cancellation aborts the underlying query and surfaces through
// Err.
func (d *Driver) Execute(ctx context.Context, stmt *sqlast.Statement) (*Cursor, error) {
	query, args, err := render.Render(stmt, d.dialect)
	if err != nil {
		return nil, err
	}

	conn, err := d.connector.Acquire(ctx)
	if err != nil {
		return nil, &ConnectionError{Err: err}
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		_ = conn.Close()
		return nil, &QueryExecutionError{Query: query, Err: err}
	}

	cols, err := rows.Columns()
	if err != nil {
		_ = rows.Close()
		_ = conn.Close()
		return nil, &QueryExecutionError{Query: query, Err: err}
	}

	return &Cursor{conn: conn, rows: rows, query: query, cols: cols}, nil
}

// Cursor streams the rows of one executed statement.
type Cursor struct {
	conn  Conn
	rows  *sql.Rows
	query string
	cols  []string

	row map[string]any
	err error
}

// Next advances to the next row. It returns false at the end of the result
// or on error; Err distinguishes the two.
func (c *Cursor) Next() bool {
	if c.err != nil || c.rows == nil {
		return false
	}
	if !c.rows.Next() {
		if err := c.rows.Err(); err != nil {
			c.err = &QueryExecutionError{Query: c.query, Err: err}
		}
		_ = c.release()
		return false
	}

	values := make([]any, len(c.cols))
	ptrs := make([]any, len(c.cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	if err := c.rows.Scan(ptrs...); err != nil {
		c.err = &QueryExecutionError{Query: c.query, Err: err}
		_ = c.release()
		return false
	}

	row := make(map[string]any, len(c.cols))
	for i, col := range c.cols {
		// Drivers hand text columns back as []byte.
		if b, ok := values[i].([]byte); ok {
			row[col] = string(b)
		} else {
			row[col] = values[i]
		}
	}
	c.row = row
	return true
}

// Row returns the current row. Each row is a fresh map owned by the caller.
func (c *Cursor) Row() map[string]any { return c.row }

// Err returns the first error encountered while streaming.
func (c *Cursor) Err() error { return c.err }

// Close releases the result set and returns the connection to the pool. It
// is safe to call more than once, and is a no-op after the cursor has been
// drained; the connection is already back in the pool by then.
func (c *Cursor) Close() error {
	return c.release()
}

// release closes the result set and returns the connection exactly once.
// Called on end of data, on a streaming error, and from Close.
func (c *Cursor) release() error {
	if c.rows == nil {
		return nil
	}
	err := c.rows.Close()
	if cerr := c.conn.Close(); err == nil {
		err = cerr
	}
	c.rows = nil
	return err
}
