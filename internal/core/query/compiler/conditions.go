package compiler

import (
	"fmt"

	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
)

// where builds the statement's where-tree. The injected parent-key filter,
// when present, is ANDed ahead of the user filter so its parameters come
// first.
func (b *build) where(filter graph.ConditionTree, kf *keyFilter) error {
	var conds []sqlast.Cond

	if kf != nil {
		refs := make([]sqlast.ParamRef, len(kf.values))
		for i, v := range kf.values {
			refs[i] = b.param(v)
		}
		conds = append(conds, sqlast.Cmp{
			Col:    sqlast.ColRef{Table: b.stmt.From, Column: kf.column},
			Op:     sqlast.CmpIn,
			Params: refs,
		})
		if kf.discrCol != "" {
			ref := b.param(kf.discrValue)
			conds = append(conds, sqlast.Cmp{
				Col:    sqlast.ColRef{Table: b.stmt.From, Column: kf.discrCol},
				Op:     sqlast.CmpEq,
				Params: []sqlast.ParamRef{ref},
			})
		}
	}

	if filter != nil {
		c, err := b.condTree(filter)
		if err != nil {
			return err
		}
		if c != nil {
			conds = append(conds, c)
		}
	}

	switch len(conds) {
	case 0:
	case 1:
		b.stmt.Where = conds[0]
	default:
		b.stmt.Where = sqlast.Logical{Op: sqlast.OpAnd, Children: conds}
	}
	return nil
}

// condTree compiles one condition tree node. An empty logical node compiles
// to no predicate at all: an empty Or means "no restriction", not "false".
func (b *build) condTree(t graph.ConditionTree) (sqlast.Cond, error) {
	switch n := t.(type) {
	case graph.Logical:
		var children []sqlast.Cond
		for _, c := range n.Children {
			cc, err := b.condTree(c)
			if err != nil {
				return nil, err
			}
			if cc != nil {
				children = append(children, cc)
			}
		}
		switch len(children) {
		case 0:
			return nil, nil
		case 1:
			return children[0], nil
		}
		op := sqlast.OpAnd
		if n.Op == graph.Or {
			op = sqlast.OpOr
		}
		return sqlast.Logical{Op: op, Children: children}, nil
	case graph.Condition:
		return b.condition(n)
	default:
		return nil, compileErrorf("unsupported condition tree node %T", t)
	}
}

func (b *build) condition(c graph.Condition) (sqlast.Cond, error) {
	col, err := b.resolveTarget(c.Target)
	if err != nil {
		return nil, err
	}

	cmp := sqlast.Cmp{Col: col, Negate: c.Negate}
	switch op := c.Op.(type) {
	case graph.StringOp:
		cmp.Op, cmp.Params, err = b.stringCmp(op, c.Value)
	case graph.NumberOp:
		cmp.Op, cmp.Params, err = b.numberCmp(op, c.Value)
	case graph.GeoOp:
		cmp.Op, cmp.Params, err = b.geoCmp(op, c.Value)
	default:
		err = compileErrorf("unsupported operator %v", c.Op)
	}
	if err != nil {
		return nil, err
	}
	return cmp, nil
}

func (b *build) stringCmp(op graph.StringOp, value any) (sqlast.CmpOp, []sqlast.ParamRef, error) {
	switch op {
	case graph.StrEq:
		return sqlast.CmpEq, []sqlast.ParamRef{b.param(value)}, nil
	case graph.StrContains:
		return sqlast.CmpLike, []sqlast.ParamRef{b.param(fmt.Sprintf("%%%v%%", value))}, nil
	case graph.StrStartsWith:
		return sqlast.CmpLike, []sqlast.ParamRef{b.param(fmt.Sprintf("%v%%", value))}, nil
	case graph.StrEndsWith:
		return sqlast.CmpLike, []sqlast.ParamRef{b.param(fmt.Sprintf("%%%v", value))}, nil
	case graph.StrEmpty:
		return sqlast.CmpEmpty, nil, nil
	case graph.StrIn:
		return b.inParams(value)
	}
	return "", nil, compileErrorf("unsupported string operator %q", op)
}

func (b *build) numberCmp(op graph.NumberOp, value any) (sqlast.CmpOp, []sqlast.ParamRef, error) {
	switch op {
	case graph.NumEq:
		return sqlast.CmpEq, []sqlast.ParamRef{b.param(value)}, nil
	case graph.NumLt:
		return sqlast.CmpLt, []sqlast.ParamRef{b.param(value)}, nil
	case graph.NumLte:
		return sqlast.CmpLte, []sqlast.ParamRef{b.param(value)}, nil
	case graph.NumGt:
		return sqlast.CmpGt, []sqlast.ParamRef{b.param(value)}, nil
	case graph.NumGte:
		return sqlast.CmpGte, []sqlast.ParamRef{b.param(value)}, nil
	case graph.NumBetween:
		vs, ok := value.([]any)
		if !ok || len(vs) != 2 {
			return "", nil, compileErrorf("between requires exactly two values")
		}
		return sqlast.CmpBetween, []sqlast.ParamRef{b.param(vs[0]), b.param(vs[1])}, nil
	case graph.NumIn:
		return b.inParams(value)
	}
	return "", nil, compileErrorf("unsupported number operator %q", op)
}

func (b *build) geoCmp(op graph.GeoOp, value any) (sqlast.CmpOp, []sqlast.ParamRef, error) {
	switch op {
	case graph.GeoIntersects:
		return sqlast.CmpGeoIntersects, []sqlast.ParamRef{b.param(value)}, nil
	case graph.GeoIntersectsBBox:
		return sqlast.CmpGeoIntersectsB, []sqlast.ParamRef{b.param(value)}, nil
	}
	return "", nil, compileErrorf("unsupported geo operator %q", op)
}

func (b *build) inParams(value any) (sqlast.CmpOp, []sqlast.ParamRef, error) {
	vs, ok := value.([]any)
	if !ok {
		return "", nil, compileErrorf("in requires a list of values, got %T", value)
	}
	if len(vs) == 0 {
		return "", nil, compileErrorf("in requires at least one value")
	}
	refs := make([]sqlast.ParamRef, len(vs))
	for i, v := range vs {
		refs[i] = b.param(v)
	}
	return sqlast.CmpIn, refs, nil
}
