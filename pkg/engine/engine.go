// Package engine wires the query pipeline together: graph compilation,
// dialect rendering, driver execution, row expansion and nested-relation
// merging, exposed as a single pull-based stream.
package engine

import (
	"context"

	"github.com/satishbabariya/nestql/internal/core/query/compiler"
	"github.com/satishbabariya/nestql/internal/core/query/driver"
	"github.com/satishbabariya/nestql/internal/core/query/expand"
	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/satishbabariya/nestql/internal/core/query/merge"
	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
	"github.com/satishbabariya/nestql/internal/debug"
)

// Engine executes query graphs end to end.
type Engine struct {
	driver *driver.Driver
	merger *merge.Merger
}

// Option configures an engine.
type Option func(*Engine)

// WithBatchSize sets the number of parent rows per nested child query.
func WithBatchSize(n int) Option {
	return func(e *Engine) { e.merger.BatchSize = n }
}

// New builds an engine on top of a driver.
func New(d *driver.Driver, opts ...Option) *Engine {
	e := &Engine{driver: d, merger: merge.New()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Query compiles and executes a query graph. The returned stream is finite
// and single-pass; closing it before exhaustion cancels in-flight work and
// releases all connections.
func (e *Engine) Query(ctx context.Context, g *graph.Graph) (*Rows, error) {
	stmt, err := compiler.Compile(g)
	if err != nil {
		return nil, err
	}
	debug.Debug("query compiled",
		"collection", g.Collection,
		"columns", len(stmt.Select),
		"params", len(stmt.Params),
		"nested", len(stmt.Nested))

	ctx, cancel := context.WithCancel(ctx)
	src, err := e.execute(ctx, stmt)
	if err != nil {
		cancel()
		return nil, err
	}
	return &Rows{src: src, cancel: cancel}, nil
}

// execute runs one statement through the full pipeline. It is also the exec
// callback handed to the merger, so nested child statements recurse through
// the same path and grandchildren merge transparently.
func (e *Engine) execute(ctx context.Context, stmt *sqlast.Statement) (merge.RowSource, error) {
	cur, err := e.driver.Execute(ctx, stmt)
	if err != nil {
		return nil, err
	}
	var src merge.RowSource = &expandSource{cur: cur, aliasMap: stmt.AliasMap}
	return e.merger.Stream(ctx, src, stmt.Nested, e.execute), nil
}

// expandSource wraps a driver cursor, nesting each flat row via the
// statement's alias map.
type expandSource struct {
	cur      *driver.Cursor
	aliasMap map[string][]string

	row map[string]any
	err error
}

var _ merge.RowSource = (*expandSource)(nil)

func (s *expandSource) Next() bool {
	if s.err != nil {
		return false
	}
	if !s.cur.Next() {
		return false
	}
	row, err := expand.Row(s.cur.Row(), s.aliasMap)
	if err != nil {
		s.err = err
		return false
	}
	s.row = row
	return true
}

func (s *expandSource) Row() map[string]any { return s.row }

func (s *expandSource) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.cur.Err()
}

func (s *expandSource) Close() error { return s.cur.Close() }

// Rows is the consumer-facing result stream.
type Rows struct {
	src    merge.RowSource
	cancel context.CancelFunc

	count  int
	closed bool
}

// Next advances to the next merged row.
func (r *Rows) Next() bool {
	if r.closed {
		return false
	}
	if !r.src.Next() {
		return false
	}
	r.count++
	return true
}

// Row returns the current row. Rows already handed out stand even if the
// stream fails later.
func (r *Rows) Row() map[string]any { return r.src.Row() }

// Err returns the first error the stream hit.
func (r *Rows) Err() error { return r.src.Err() }

// Close cancels in-flight work and releases the stream's connections. Safe
// to call more than once.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.cancel()
	err := r.src.Close()
	debug.Debug("query stream closed", "rows", r.count)
	return err
}
