// Package render turns an abstract statement into dialect-specific SQL text.
// Rendering never reorders parameters: references are emitted in the order
// the compiler allocated them, so the statement's Params slice binds as-is
// for positional dialects.
package render

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
)

// Dialect renders the pieces of SQL that differ between engines.
type Dialect interface {
	// Name identifies the dialect in error messages.
	Name() string
	// Placeholder renders the parameter reference for the given 0-based index.
	Placeholder(i int) string
	// QuoteIdent quotes a single identifier.
	QuoteIdent(s string) string
	// Fn renders a function application over an already-rendered expression.
	Fn(fn, expr string) (string, error)
	// GeoIntersects renders an intersection predicate over an
	// already-rendered column and geometry placeholder.
	GeoIntersects(col, placeholder string, bbox bool) (string, error)
}

// Error reports a statement the dialect cannot express.
type Error struct {
	Dialect string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("render [%s]: %s", e.Dialect, e.Message)
}

func errorf(d Dialect, format string, args ...any) *Error {
	return &Error{Dialect: d.Name(), Message: fmt.Sprintf(format, args...)}
}

// Render produces the SQL text for a statement and the arguments to bind,
// which are the statement's Params unchanged.
func Render(stmt *sqlast.Statement, d Dialect) (string, []any, error) {
	r := renderer{d: d}
	if err := r.statement(stmt); err != nil {
		return "", nil, err
	}
	return r.sb.String(), stmt.Params, nil
}

type renderer struct {
	d  Dialect
	sb strings.Builder
}

func (r *renderer) statement(stmt *sqlast.Statement) error {
	r.sb.WriteString("SELECT ")
	for i, s := range stmt.Select {
		if i > 0 {
			r.sb.WriteString(", ")
		}
		expr := r.col(s.Col)
		if s.Fn != "" {
			var err error
			if expr, err = r.d.Fn(s.Fn, expr); err != nil {
				return err
			}
		}
		r.sb.WriteString(expr)
		r.sb.WriteString(" AS ")
		r.sb.WriteString(r.d.QuoteIdent(s.Alias))
	}

	r.sb.WriteString(" FROM ")
	r.sb.WriteString(r.d.QuoteIdent(stmt.From))

	for _, j := range stmt.Joins {
		r.sb.WriteString(" LEFT JOIN ")
		r.sb.WriteString(r.d.QuoteIdent(j.Table))
		r.sb.WriteString(" AS ")
		r.sb.WriteString(r.d.QuoteIdent(j.Alias))
		r.sb.WriteString(" ON ")
		for i, on := range j.On {
			if i > 0 {
				r.sb.WriteString(" AND ")
			}
			r.sb.WriteString(r.col(on.Left))
			r.sb.WriteString(" = ")
			if on.Param != nil {
				r.sb.WriteString(r.d.Placeholder(int(*on.Param)))
			} else {
				r.sb.WriteString(r.col(on.Right))
			}
		}
	}

	if stmt.Where != nil {
		where, err := r.cond(stmt.Where)
		if err != nil {
			return err
		}
		r.sb.WriteString(" WHERE ")
		r.sb.WriteString(where)
	}

	if len(stmt.OrderBy) > 0 {
		r.sb.WriteString(" ORDER BY ")
		for i, o := range stmt.OrderBy {
			if i > 0 {
				r.sb.WriteString(", ")
			}
			expr := r.col(o.Col)
			if o.Fn != "" {
				var err error
				if expr, err = r.d.Fn(o.Fn, expr); err != nil {
					return err
				}
			}
			r.sb.WriteString(expr)
			if o.Desc {
				r.sb.WriteString(" DESC")
			}
		}
	}

	if stmt.Limit != nil {
		r.sb.WriteString(" LIMIT ")
		r.sb.WriteString(r.d.Placeholder(int(*stmt.Limit)))
	}
	if stmt.Offset != nil {
		r.sb.WriteString(" OFFSET ")
		r.sb.WriteString(r.d.Placeholder(int(*stmt.Offset)))
	}
	return nil
}

func (r *renderer) col(c sqlast.ColRef) string {
	return r.d.QuoteIdent(c.Table) + "." + r.d.QuoteIdent(c.Column)
}

func (r *renderer) cond(c sqlast.Cond) (string, error) {
	switch n := c.(type) {
	case sqlast.Logical:
		parts := make([]string, 0, len(n.Children))
		for _, child := range n.Children {
			s, err := r.cond(child)
			if err != nil {
				return "", err
			}
			parts = append(parts, s)
		}
		return "(" + strings.Join(parts, " "+string(n.Op)+" ") + ")", nil
	case sqlast.Cmp:
		return r.cmp(n)
	default:
		return "", errorf(r.d, "unsupported condition node %T", c)
	}
}

func (r *renderer) cmp(c sqlast.Cmp) (string, error) {
	col := r.col(c.Col)
	var expr string
	switch c.Op {
	case sqlast.CmpEq:
		expr = col + " = " + r.ph(c.Params[0])
	case sqlast.CmpLt:
		expr = col + " < " + r.ph(c.Params[0])
	case sqlast.CmpLte:
		expr = col + " <= " + r.ph(c.Params[0])
	case sqlast.CmpGt:
		expr = col + " > " + r.ph(c.Params[0])
	case sqlast.CmpGte:
		expr = col + " >= " + r.ph(c.Params[0])
	case sqlast.CmpLike:
		expr = col + " LIKE " + r.ph(c.Params[0])
	case sqlast.CmpBetween:
		expr = col + " BETWEEN " + r.ph(c.Params[0]) + " AND " + r.ph(c.Params[1])
	case sqlast.CmpIn:
		phs := make([]string, len(c.Params))
		for i, p := range c.Params {
			phs[i] = r.ph(p)
		}
		expr = col + " IN (" + strings.Join(phs, ", ") + ")"
	case sqlast.CmpEmpty:
		expr = "(" + col + " IS NULL OR " + col + " = '')"
	case sqlast.CmpGeoIntersects, sqlast.CmpGeoIntersectsB:
		var err error
		expr, err = r.d.GeoIntersects(col, r.ph(c.Params[0]), c.Op == sqlast.CmpGeoIntersectsB)
		if err != nil {
			return "", err
		}
	default:
		return "", errorf(r.d, "unsupported comparison %q", c.Op)
	}
	if c.Negate {
		expr = "NOT (" + expr + ")"
	}
	return expr, nil
}

func (r *renderer) ph(p sqlast.ParamRef) string {
	return r.d.Placeholder(int(p))
}
