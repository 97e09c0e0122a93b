// Package graph defines the dialect-independent query graph: the structured
// description of what to fetch (collection, fields, filter, sort, relations)
// that the compiler turns into an abstract statement.
package graph

// Graph is the root of one query request. It is owned by the caller for the
// duration of a single compile call and must not be mutated afterwards.
type Graph struct {
	Collection string
	Fields     []FieldNode
	Filter     ConditionTree // nil means no restriction
	Sort       []Sort
	Limit      *int
	Offset     *int
}

// FieldNode is one requested output field. The closed set of implementations
// is Primitive, Function, RelationOne and RelationMany.
type FieldNode interface {
	// Name returns the output key this node produces on result rows.
	Name() string

	fieldNode()
}

// Primitive selects a scalar column of the current collection.
type Primitive struct {
	Field string
}

func (p Primitive) Name() string { return p.Field }
func (Primitive) fieldNode()     {}

// Function applies a scalar or aggregate function to a column.
type Function struct {
	Fn    Func
	Field string
	// Alias overrides the default output key of fn + "_" + field.
	Alias string
}

func (f Function) Name() string {
	if f.Alias != "" {
		return f.Alias
	}
	return string(f.Fn) + "_" + f.Field
}
func (Function) fieldNode() {}

// Func enumerates the supported field functions.
type Func string

const (
	FnCount Func = "count"
	FnSum   Func = "sum"
	FnAvg   Func = "avg"
	FnMin   Func = "min"
	FnMax   Func = "max"
	FnYear  Func = "year"
	FnMonth Func = "month"
	FnDay   Func = "day"
	FnLower Func = "lower"
	FnUpper Func = "upper"
)

// RelationOne selects a single related record, resolved via a join at compile
// time. Join is either ManyToOne or AnyToOne.
type RelationOne struct {
	Field  string
	Join   OneJoin
	Fields []FieldNode
}

func (r RelationOne) Name() string { return r.Field }
func (RelationOne) fieldNode()     {}

// OneJoin is the join shape of a to-one relation. Each kind carries only the
// fields relevant to it, so invalid combinations are unrepresentable.
type OneJoin interface{ oneJoin() }

// ManyToOne joins parent.ForeignKey against Collection.RelatedKey.
type ManyToOne struct {
	ForeignKey string
	Collection string
	RelatedKey string
}

func (ManyToOne) oneJoin() {}

// AnyToOne is a polymorphic to-one relation. The parent stores the related
// key in ForeignKey and the target collection name in CollectionField; one
// AnyToOne node resolves the branch scoped to a single Collection.
type AnyToOne struct {
	ForeignKey      string
	CollectionField string
	Collection      string
	RelatedKey      string
}

func (AnyToOne) oneJoin() {}

// RelationMany selects a child collection, resolved through an independent
// sub-query after the parent rows are available. It is never a join.
type RelationMany struct {
	Field string
	Join  ManyJoin
	Query *Graph
}

func (r RelationMany) Name() string { return r.Field }
func (RelationMany) fieldNode()     {}

// ManyJoin is the key shape of a to-many relation.
type ManyJoin interface{ manyJoin() }

// OneToMany matches child rows whose ChildKey equals the parent's ParentKey.
type OneToMany struct {
	ParentKey string
	ChildKey  string
}

func (OneToMany) manyJoin() {}

// OneToAny matches child rows whose ChildKey equals the parent's ParentKey
// and whose CollectionField names the parent collection.
type OneToAny struct {
	ParentKey       string
	ChildKey        string
	CollectionField string
}

func (OneToAny) manyJoin() {}

// Sort orders the result by a selected field. Path addresses a root primitive
// or a primitive reached through to-one relations present in Fields.
type Sort struct {
	Path []string
	Desc bool
}
