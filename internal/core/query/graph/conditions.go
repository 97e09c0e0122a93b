package graph

// ConditionTree is a filter expression. The closed set of implementations is
// Logical and Condition.
type ConditionTree interface{ conditionTree() }

// Logical combines child trees with a logical operator. An empty child list
// denotes no restriction, for Or as well as for And.
type Logical struct {
	Op       LogicalOp
	Children []ConditionTree
}

func (Logical) conditionTree() {}

// LogicalOp is a logical combinator.
type LogicalOp string

const (
	And LogicalOp = "and"
	Or  LogicalOp = "or"
)

// Condition compares one field against a value or value list. Negate inverts
// exactly this condition, never its siblings.
type Condition struct {
	Target FieldRef
	Op     Operator
	Value  any
	Negate bool
}

func (Condition) conditionTree() {}

// FieldRef addresses a column. Path holds relation fields followed by the
// column name; Type declares the column's comparator family.
type FieldRef struct {
	Path []string
	Type ValueType
}

// Column returns the final path segment.
func (r FieldRef) Column() string {
	if len(r.Path) == 0 {
		return ""
	}
	return r.Path[len(r.Path)-1]
}

// ValueType is the semantic type of a filter target. It selects the
// comparator family a condition may use.
type ValueType string

const (
	TypeString ValueType = "string"
	TypeNumber ValueType = "number"
	TypeGeo    ValueType = "geo"
)

// Family identifies a comparator family.
type Family string

const (
	FamilyString Family = "string"
	FamilyNumber Family = "number"
	FamilyGeo    Family = "geo"
)

// FamilyOf returns the comparator family for a value type.
func FamilyOf(t ValueType) Family {
	switch t {
	case TypeNumber:
		return FamilyNumber
	case TypeGeo:
		return FamilyGeo
	default:
		return FamilyString
	}
}

// Operator is a comparison operator. The three implementations (StringOp,
// NumberOp, GeoOp) keep the per-family operator sets disjoint: an operator of
// one family can never be applied to a target of another.
type Operator interface {
	Family() Family
	String() string
}

// StringOp is a comparator of the string family.
type StringOp string

// String family operators.
const (
	StrEq         StringOp = "eq"
	StrContains   StringOp = "contains"
	StrStartsWith StringOp = "starts_with"
	StrEndsWith   StringOp = "ends_with"
	StrEmpty      StringOp = "empty"
	StrIn         StringOp = "in"
)

func (o StringOp) Family() Family { return FamilyString }
func (o StringOp) String() string { return string(o) }

// NumberOp is a comparator of the number family.
type NumberOp string

// Number family operators.
const (
	NumEq      NumberOp = "eq"
	NumLt      NumberOp = "lt"
	NumLte     NumberOp = "lte"
	NumGt      NumberOp = "gt"
	NumGte     NumberOp = "gte"
	NumBetween NumberOp = "between"
	NumIn      NumberOp = "in"
)

func (o NumberOp) Family() Family { return FamilyNumber }
func (o NumberOp) String() string { return string(o) }

// GeoOp is a comparator of the geo family. Values are WKT strings.
type GeoOp string

// Geo family operators.
const (
	GeoIntersects     GeoOp = "intersects"
	GeoIntersectsBBox GeoOp = "intersects_bbox"
)

func (o GeoOp) Family() Family { return FamilyGeo }
func (o GeoOp) String() string { return string(o) }
