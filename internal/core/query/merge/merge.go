// Package merge grafts to-many relation results onto their parent rows.
// Parents are consumed in batches; for each batch and relation the child
// statement is built with the batch's key set injected, executed once, and
// its rows grouped back onto the parents. Parent order is preserved.
package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
)

// DefaultBatchSize is the number of parent rows merged per child query.
const DefaultBatchSize = 100

// RowSource is a pull-based stream of result rows. The driver cursor and the
// merge stream both satisfy it.
type RowSource interface {
	Next() bool
	Row() map[string]any
	Err() error
	Close() error
}

// ExecFunc executes a compiled child statement and returns its row stream.
// The engine supplies an implementation that expands and, for deeper
// nesting, merges the child rows before they reach this layer.
type ExecFunc func(ctx context.Context, stmt *sqlast.Statement) (RowSource, error)

// Error reports a failure while resolving one nested relation. It aborts
// the merged stream.
type Error struct {
	Relation string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("merge: relation %q: %v", e.Relation, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Merger configures nested relation resolution.
type Merger struct {
	// BatchSize is the number of parent rows per child query.
	BatchSize int
}

// New returns a merger with the default batch size.
func New() *Merger {
	return &Merger{BatchSize: DefaultBatchSize}
}

// Stream wraps a parent row source so that every row leaving it carries its
// nested relation slices. With no nested relations the parent source is
// returned unchanged.
func (m *Merger) Stream(ctx context.Context, parent RowSource, nested []sqlast.NestedRelation, exec ExecFunc) RowSource {
	if len(nested) == 0 {
		return parent
	}
	size := m.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}
	return &stream{ctx: ctx, src: parent, nested: nested, exec: exec, size: size}
}

type stream struct {
	ctx    context.Context
	src    RowSource
	nested []sqlast.NestedRelation
	exec   ExecFunc
	size   int

	buf  []map[string]any
	idx  int
	err  error
	done bool
}

var _ RowSource = (*stream)(nil)

func (s *stream) Next() bool {
	if s.err != nil {
		return false
	}
	if s.idx+1 < len(s.buf) {
		s.idx++
		return true
	}
	if s.done {
		return false
	}
	if err := s.fill(); err != nil {
		s.err = err
		return false
	}
	if len(s.buf) == 0 {
		return false
	}
	s.idx = 0
	return true
}

func (s *stream) Row() map[string]any {
	if s.idx < len(s.buf) {
		return s.buf[s.idx]
	}
	return nil
}

func (s *stream) Err() error { return s.err }

func (s *stream) Close() error { return s.src.Close() }

// fill reads the next parent batch and resolves every nested relation for it.
func (s *stream) fill() error {
	s.buf = s.buf[:0]
	for len(s.buf) < s.size && s.src.Next() {
		s.buf = append(s.buf, s.src.Row())
	}
	if err := s.src.Err(); err != nil {
		return err
	}
	if len(s.buf) == 0 {
		s.done = true
		return nil
	}
	if len(s.buf) < s.size {
		s.done = true
	}

	for _, n := range s.nested {
		if err := s.resolve(n); err != nil {
			return err
		}
	}
	return nil
}

// resolve runs one nested relation's child query for the buffered batch and
// grafts the grouped children onto their parents. A row missing a join key
// aborts the whole merge; partially merged output would misrepresent the
// requested shape.
func (s *stream) resolve(n sqlast.NestedRelation) error {
	// Distinct parent key tuples, in first-seen order.
	var tuples [][]any
	seen := make(map[string]bool)
	for _, row := range s.buf {
		tuple, err := keyTuple(row, n.ParentKeys)
		if err != nil {
			return &Error{Relation: n.Alias, Err: err}
		}
		k := tupleKey(tuple)
		if !seen[k] {
			seen[k] = true
			tuples = append(tuples, tuple)
		}
	}

	groups := make(map[string][]map[string]any)
	if len(tuples) > 0 {
		stmt, err := n.Build(tuples)
		if err != nil {
			return &Error{Relation: n.Alias, Err: err}
		}
		children, err := s.exec(s.ctx, stmt)
		if err != nil {
			return &Error{Relation: n.Alias, Err: err}
		}
		defer children.Close()

		for children.Next() {
			child := children.Row()
			tuple, err := keyTuple(child, n.ChildKeys)
			if err != nil {
				return &Error{Relation: n.Alias, Err: err}
			}
			for _, h := range n.HiddenKeys {
				delete(child, h)
			}
			k := tupleKey(tuple)
			groups[k] = append(groups[k], child)
		}
		if err := children.Err(); err != nil {
			return &Error{Relation: n.Alias, Err: err}
		}
	}

	for _, row := range s.buf {
		tuple, err := keyTuple(row, n.ParentKeys)
		if err != nil {
			return &Error{Relation: n.Alias, Err: err}
		}
		matched := groups[tupleKey(tuple)]
		if matched == nil {
			matched = []map[string]any{}
		}
		row[n.Alias] = matched
	}
	return nil
}

func keyTuple(row map[string]any, keys []string) ([]any, error) {
	tuple := make([]any, len(keys))
	for i, k := range keys {
		v, ok := row[k]
		if !ok || v == nil {
			return nil, fmt.Errorf("row is missing join key %q", k)
		}
		tuple[i] = v
	}
	return tuple, nil
}

// tupleKey normalizes a key tuple for map lookup. Formatting the values
// makes int64 parents match string-scanned children and vice versa.
func tupleKey(tuple []any) string {
	parts := make([]string, len(tuple))
	for i, v := range tuple {
		parts[i] = fmt.Sprintf("%v", v)
	}
	return strings.Join(parts, "\x1f")
}
