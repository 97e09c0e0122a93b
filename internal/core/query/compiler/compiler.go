package compiler

import (
	"strings"

	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
)

// Compile compiles a query graph into an abstract statement. The graph is
// validated in full before the first parameter is allocated, so an error
// never leaves a half-built statement behind.
func Compile(g *graph.Graph) (*sqlast.Statement, error) {
	return compile(g, nil)
}

// keyFilter is the parent-key restriction injected into nested sub-queries.
// Its parameters are allocated ahead of the user filter so parameter indices
// stay in rendering order.
type keyFilter struct {
	column     string
	values     []any
	discrCol   string // optional polymorphic discriminator column
	discrValue string
}

func compile(g *graph.Graph, kf *keyFilter) (*sqlast.Statement, error) {
	if err := validate(g); err != nil {
		return nil, err
	}

	b := &build{
		stmt: &sqlast.Statement{
			From:     g.Collection,
			AliasMap: make(map[string][]string),
		},
		exprByPath:     make(map[string]sqlast.SelectExpr),
		tableByRelPath: map[string]string{"": g.Collection},
	}

	// Parameters are allocated in rendering order: joins, where, limit,
	// offset. Positional dialects depend on this.
	if err := b.fields(g.Collection, g.Collection, nil, g.Fields); err != nil {
		return nil, err
	}
	if err := b.where(g.Filter, kf); err != nil {
		return nil, err
	}
	if err := b.orderBy(g.Sort); err != nil {
		return nil, err
	}
	if g.Limit != nil {
		ref := b.param(*g.Limit)
		b.stmt.Limit = &ref
	}
	if g.Offset != nil {
		ref := b.param(*g.Offset)
		b.stmt.Offset = &ref
	}
	return b.stmt, nil
}

// build carries the mutable state of one compilation.
type build struct {
	stmt *sqlast.Statement

	// exprByPath maps a selected field's dotted path to its select
	// expression, for sort resolution.
	exprByPath map[string]sqlast.SelectExpr
	// tableByRelPath maps a dotted to-one relation path to its join alias,
	// for filter target resolution. "" is the root collection.
	tableByRelPath map[string]string
}

func (b *build) param(v any) sqlast.ParamRef {
	b.stmt.Params = append(b.stmt.Params, v)
	return sqlast.ParamRef(len(b.stmt.Params) - 1)
}

// fields walks one selection level, emitting select expressions for
// primitives and functions, joins for to-one relations and nested-relation
// descriptors for to-many relations.
func (b *build) fields(collection, table string, path []string, fields []graph.FieldNode) error {
	for _, f := range fields {
		switch n := f.(type) {
		case graph.Primitive:
			b.selectCol(sqlast.ColRef{Table: table, Column: n.Field}, "", append(path, n.Name()))
		case graph.Function:
			b.selectCol(sqlast.ColRef{Table: table, Column: n.Field}, string(n.Fn), append(path, n.Name()))
		case graph.RelationOne:
			if err := b.relationOne(table, path, n); err != nil {
				return err
			}
		case graph.RelationMany:
			b.stmt.Nested = append(b.stmt.Nested, nestedRelation(collection, n))
		}
	}
	return nil
}

func (b *build) selectCol(col sqlast.ColRef, fn string, path []string) {
	path = append([]string(nil), path...)
	alias := strings.Join(path, ".")
	expr := sqlast.SelectExpr{Col: col, Fn: fn, Alias: alias}
	b.stmt.Select = append(b.stmt.Select, expr)
	b.stmt.AliasMap[alias] = path
	b.exprByPath[alias] = expr
}

func (b *build) relationOne(parentTable string, path []string, rel graph.RelationOne) error {
	alias := parentTable + "_" + rel.Field
	relPath := append(append([]string(nil), path...), rel.Field)

	join := sqlast.Join{Alias: alias}
	switch j := rel.Join.(type) {
	case graph.ManyToOne:
		join.Table = j.Collection
		join.On = []sqlast.JoinCond{{
			Left:  sqlast.ColRef{Table: alias, Column: j.RelatedKey},
			Right: sqlast.ColRef{Table: parentTable, Column: j.ForeignKey},
		}}
	case graph.AnyToOne:
		join.Table = j.Collection
		discr := b.param(j.Collection)
		join.On = []sqlast.JoinCond{
			{
				Left:  sqlast.ColRef{Table: alias, Column: j.RelatedKey},
				Right: sqlast.ColRef{Table: parentTable, Column: j.ForeignKey},
			},
			{
				Left:  sqlast.ColRef{Table: parentTable, Column: j.CollectionField},
				Param: &discr,
			},
		}
	}
	b.stmt.Joins = append(b.stmt.Joins, join)
	b.tableByRelPath[strings.Join(relPath, ".")] = alias

	return b.fields(join.Table, alias, relPath, rel.Fields)
}

// orderBy resolves sort paths against the selected fields. Validation
// already guaranteed each path is selected.
func (b *build) orderBy(sort []graph.Sort) error {
	for _, s := range sort {
		expr, ok := b.exprByPath[strings.Join(s.Path, ".")]
		if !ok {
			return compileErrorf("sort target %q is not selected", strings.Join(s.Path, "."))
		}
		b.stmt.OrderBy = append(b.stmt.OrderBy, sqlast.OrderExpr{Col: expr.Col, Fn: expr.Fn, Desc: s.Desc})
	}
	return nil
}

// resolveTarget resolves a filter target to a column reference. Leading path
// segments must name to-one relations present in the selection.
func (b *build) resolveTarget(ref graph.FieldRef) (sqlast.ColRef, error) {
	if len(ref.Path) == 0 {
		return sqlast.ColRef{}, compileErrorf("filter condition has an empty target path")
	}
	relPath := strings.Join(ref.Path[:len(ref.Path)-1], ".")
	table, ok := b.tableByRelPath[relPath]
	if !ok {
		return sqlast.ColRef{}, compileErrorf("filter target %q references relation %q which is not selected",
			strings.Join(ref.Path, "."), relPath)
	}
	return sqlast.ColRef{Table: table, Column: ref.Column()}, nil
}
