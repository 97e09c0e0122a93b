// Package filterdsl parses a small textual filter language into a condition
// tree, so callers can attach ad-hoc restrictions without constructing trees
// by hand. The compiler sees only the resulting tree; the language has no
// standing anywhere below this package.
//
//	age >= 18 and (name contains "smith" or not email empty)
//	status in ["published", "draft"]
//	location intersects "POLYGON((0 0, 0 1, 1 1, 0 0))"
package filterdsl

import (
	"fmt"
	"math"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/satishbabariya/nestql/internal/core/query/graph"
)

var filterLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `-?\d+(?:\.\d+)?`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Cmp", Pattern: `<=|>=|!=|[<>=]`},
	{Name: "Punct", Pattern: `[()\[\],]`},
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
})

var parser = participle.MustBuild[expression](
	participle.Lexer(filterLexer),
	participle.Elide("Whitespace"),
	participle.Unquote("String"),
	participle.UseLookahead(2),
)

type expression struct {
	Or []*andExpr `parser:"@@ ( 'or' @@ )*"`
}

type andExpr struct {
	And []*unary `parser:"@@ ( 'and' @@ )*"`
}

type unary struct {
	Not *comparison `parser:"'not' @@"`
	Sub *expression `parser:"| '(' @@ ')'"`
	Cmp *comparison `parser:"| @@"`
}

type comparison struct {
	Field  string   `parser:"@Ident"`
	Op     string   `parser:"@(Cmp | 'contains' | 'startswith' | 'endswith' | 'empty' | 'in' | 'between' | 'intersects' | 'bbox')"`
	Values []*value `parser:"( '[' @@ ( ',' @@ )* ']' | @@ )?"`
}

type value struct {
	Str *string  `parser:"@String"`
	Num *float64 `parser:"| @Number"`
}

// Parse turns a filter expression into a condition tree.
func Parse(src string) (graph.ConditionTree, error) {
	expr, err := parser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("filter: %w", err)
	}
	return buildOr(expr)
}

func buildOr(e *expression) (graph.ConditionTree, error) {
	children := make([]graph.ConditionTree, 0, len(e.Or))
	for _, a := range e.Or {
		c, err := buildAnd(a)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return graph.Logical{Op: graph.Or, Children: children}, nil
}

func buildAnd(a *andExpr) (graph.ConditionTree, error) {
	children := make([]graph.ConditionTree, 0, len(a.And))
	for _, u := range a.And {
		c, err := buildUnary(u)
		if err != nil {
			return nil, err
		}
		children = append(children, c)
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return graph.Logical{Op: graph.And, Children: children}, nil
}

func buildUnary(u *unary) (graph.ConditionTree, error) {
	switch {
	case u.Not != nil:
		cond, err := buildComparison(u.Not)
		if err != nil {
			return nil, err
		}
		cond.Negate = true
		return cond, nil
	case u.Sub != nil:
		return buildOr(u.Sub)
	default:
		return buildComparison(u.Cmp)
	}
}

func buildComparison(c *comparison) (graph.Condition, error) {
	path := strings.Split(c.Field, ".")
	vals := make([]any, len(c.Values))
	allStrings := len(c.Values) > 0
	for i, v := range c.Values {
		if v.Str != nil {
			vals[i] = *v.Str
		} else {
			vals[i] = numeric(*v.Num)
			allStrings = false
		}
	}

	var (
		op     graph.Operator
		typ    graph.ValueType
		value  any
		negate bool
	)
	switch c.Op {
	case "<", "<=", ">", ">=":
		if len(vals) != 1 {
			return graph.Condition{}, fmt.Errorf("filter: %q takes one value", c.Op)
		}
		typ, value = graph.TypeNumber, vals[0]
		switch c.Op {
		case "<":
			op = graph.NumLt
		case "<=":
			op = graph.NumLte
		case ">":
			op = graph.NumGt
		default:
			op = graph.NumGte
		}
	case "=", "!=":
		if len(vals) != 1 {
			return graph.Condition{}, fmt.Errorf("filter: %q takes one value", c.Op)
		}
		negate = c.Op == "!="
		value = vals[0]
		if _, ok := value.(string); ok {
			op, typ = graph.StrEq, graph.TypeString
		} else {
			op, typ = graph.NumEq, graph.TypeNumber
		}
	case "contains", "startswith", "endswith":
		if len(vals) != 1 {
			return graph.Condition{}, fmt.Errorf("filter: %q takes one string", c.Op)
		}
		typ, value = graph.TypeString, vals[0]
		switch c.Op {
		case "contains":
			op = graph.StrContains
		case "startswith":
			op = graph.StrStartsWith
		default:
			op = graph.StrEndsWith
		}
	case "empty":
		if len(vals) != 0 {
			return graph.Condition{}, fmt.Errorf("filter: empty takes no value")
		}
		op, typ = graph.StrEmpty, graph.TypeString
	case "in":
		if len(vals) == 0 {
			return graph.Condition{}, fmt.Errorf("filter: in takes a non-empty list")
		}
		value = vals
		if allStrings {
			op, typ = graph.StrIn, graph.TypeString
		} else {
			op, typ = graph.NumIn, graph.TypeNumber
		}
	case "between":
		if len(vals) != 2 {
			return graph.Condition{}, fmt.Errorf("filter: between takes exactly two values")
		}
		op, typ, value = graph.NumBetween, graph.TypeNumber, vals
	case "intersects":
		if len(vals) != 1 {
			return graph.Condition{}, fmt.Errorf("filter: intersects takes one geometry")
		}
		op, typ, value = graph.GeoIntersects, graph.TypeGeo, vals[0]
	case "bbox":
		if len(vals) != 1 {
			return graph.Condition{}, fmt.Errorf("filter: bbox takes one geometry")
		}
		op, typ, value = graph.GeoIntersectsBBox, graph.TypeGeo, vals[0]
	default:
		return graph.Condition{}, fmt.Errorf("filter: unsupported operator %q", c.Op)
	}

	return graph.Condition{
		Target: graph.FieldRef{Path: path, Type: typ},
		Op:     op,
		Value:  value,
		Negate: negate,
	}, nil
}

// numeric keeps whole numbers integral so they bind naturally to integer
// columns.
func numeric(f float64) any {
	if f == math.Trunc(f) {
		return int(f)
	}
	return f
}
