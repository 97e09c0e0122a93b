// Package sqlast defines the abstract statement: the compiled, parameterized,
// dialect-independent intermediate form between the query graph compiler and
// the statement renderer. No literal value ever appears inside a statement;
// values live in Params and are referenced by index.
package sqlast

// ParamRef is an index into Statement.Params. The index set of a compiled
// statement is dense and contiguous from 0, and references appear in the
// rendered statement in ascending order so positional dialects can bind
// Params unchanged.
type ParamRef int

// Statement is the compiler output consumed by exactly one renderer and one
// driver execution.
type Statement struct {
	Select   []SelectExpr
	From     string
	Joins    []Join
	Where    Cond // nil means no restriction
	OrderBy  []OrderExpr
	Limit    *ParamRef
	Offset   *ParamRef
	Params   []any
	AliasMap map[string][]string
	Nested   []NestedRelation
}

// ColRef names a column of an aliased table.
type ColRef struct {
	Table  string
	Column string
}

// SelectExpr is one output column. Fn, when set, wraps the column in a
// dialect-rendered function. Alias is the flat output column name the
// expander maps back to a nested path via Statement.AliasMap.
type SelectExpr struct {
	Col   ColRef
	Fn    string
	Alias string
}

// Join is a left join implied by a to-one relation traversal.
type Join struct {
	Table string
	Alias string
	On    []JoinCond
}

// JoinCond is one join predicate: a column-to-column equality, or, when
// Param is set, a column-to-parameter equality (polymorphic discriminators).
type JoinCond struct {
	Left  ColRef
	Right ColRef
	Param *ParamRef
}

// Cond is a node of the compiled where-tree. The closed set of
// implementations is Logical and Cmp.
type Cond interface{ cond() }

// Logical combines child conditions with AND or OR.
type Logical struct {
	Op       LogicalOp
	Children []Cond
}

func (Logical) cond() {}

// LogicalOp is a rendered logical combinator.
type LogicalOp string

const (
	OpAnd LogicalOp = "AND"
	OpOr  LogicalOp = "OR"
)

// Cmp compares a column against zero or more parameters. Negate wraps the
// rendered predicate in NOT (...).
type Cmp struct {
	Col    ColRef
	Op     CmpOp
	Params []ParamRef
	Negate bool
}

func (Cmp) cond() {}

// CmpOp is a dialect-independent comparison tag; the renderer maps it to
// concrete SQL per dialect.
type CmpOp string

const (
	CmpEq             CmpOp = "eq"
	CmpLt             CmpOp = "lt"
	CmpLte            CmpOp = "lte"
	CmpGt             CmpOp = "gt"
	CmpGte            CmpOp = "gte"
	CmpLike           CmpOp = "like"
	CmpIn             CmpOp = "in"
	CmpBetween        CmpOp = "between"
	CmpEmpty          CmpOp = "empty"
	CmpGeoIntersects  CmpOp = "geo_intersects"
	CmpGeoIntersectsB CmpOp = "geo_intersects_bbox"
)

// OrderExpr is one ORDER BY term. Fn, when set, orders by the same rendered
// function expression the select list uses.
type OrderExpr struct {
	Col  ColRef
	Fn   string
	Desc bool
}

// NestedRelation describes a child collection resolved after the root rows
// are available. Build closes over the nested portion of the original query
// graph: given one batch of parent key tuples (aligned with ParentKeys) it
// compiles the child statement with the key filter injected, so the merge
// engine never touches compiler internals.
type NestedRelation struct {
	Alias           string
	ParentKeys      []string
	ChildKeys       []string
	ChildCollection string
	// HiddenKeys lists child output fields the compiler injected for
	// grouping; the merge engine strips them from child rows after grafting.
	HiddenKeys []string
	Build      func(parentKeys [][]any) (*Statement, error)
}
