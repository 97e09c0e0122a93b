package compiler

import (
	"strings"

	"github.com/satishbabariya/nestql/internal/core/query/graph"
)

// validate checks a query graph in full before compilation allocates its
// first parameter. Nested to-many queries are validated along with their
// parent so a bad child graph fails at compile time, not at merge time.
func validate(g *graph.Graph) error {
	if g == nil {
		return compileErrorf("query graph is nil")
	}
	if g.Collection == "" {
		return compileErrorf("query graph has no collection")
	}
	if len(g.Fields) == 0 {
		return compileErrorf("query on %q selects no fields", g.Collection)
	}

	v := &validator{
		selected: make(map[string]bool),
		relPaths: map[string]bool{"": true},
	}
	if err := v.fields(nil, g.Fields, false); err != nil {
		return err
	}
	if err := v.filter(g.Filter); err != nil {
		return err
	}
	for _, s := range g.Sort {
		if !v.selected[strings.Join(s.Path, ".")] {
			return compileErrorf("sort target %q is not selected", strings.Join(s.Path, "."))
		}
	}
	return nil
}

// validator accumulates what one graph level tree makes addressable:
// selected output paths for sort targets and to-one relation paths for
// filter targets.
type validator struct {
	selected map[string]bool
	relPaths map[string]bool
}

func (v *validator) fields(path []string, fields []graph.FieldNode, underRelation bool) error {
	names := make(map[string]bool, len(fields))
	for _, f := range fields {
		name := f.Name()
		if name == "" {
			return compileErrorf("field at %q has an empty output name", strings.Join(path, "."))
		}
		if names[name] {
			return compileErrorf("duplicate output name %q at %q", name, strings.Join(path, "."))
		}
		names[name] = true

		switch n := f.(type) {
		case graph.Primitive, graph.Function:
			v.selected[strings.Join(append(path, name), ".")] = true
		case graph.RelationOne:
			if n.Join == nil {
				return compileErrorf("to-one relation %q has no join", name)
			}
			if len(n.Fields) == 0 {
				return compileErrorf("to-one relation %q selects no fields", name)
			}
			relPath := append(append([]string(nil), path...), name)
			v.relPaths[strings.Join(relPath, ".")] = true
			if err := v.fields(relPath, n.Fields, true); err != nil {
				return err
			}
		case graph.RelationMany:
			if underRelation {
				return compileErrorf("to-many relation %q cannot be nested under a to-one relation", name)
			}
			if err := v.relationMany(fields, n); err != nil {
				return err
			}
		default:
			return compileErrorf("unsupported field node %T", f)
		}
	}
	return nil
}

func (v *validator) relationMany(siblings []graph.FieldNode, n graph.RelationMany) error {
	if n.Query == nil {
		return compileErrorf("to-many relation %q has no query", n.Field)
	}
	var parentKey string
	switch j := n.Join.(type) {
	case graph.OneToMany:
		parentKey = j.ParentKey
	case graph.OneToAny:
		parentKey = j.ParentKey
	default:
		return compileErrorf("to-many relation %q has no join", n.Field)
	}
	// Grouping needs the parent key on every parent row.
	if !selectsColumn(siblings, parentKey) {
		return compileErrorf("to-many relation %q requires parent key %q to be selected", n.Field, parentKey)
	}
	return validate(n.Query)
}

func (v *validator) filter(t graph.ConditionTree) error {
	switch n := t.(type) {
	case nil:
		return nil
	case graph.Logical:
		if n.Op != graph.And && n.Op != graph.Or {
			return compileErrorf("unsupported logical operator %q", n.Op)
		}
		for _, c := range n.Children {
			if err := v.filter(c); err != nil {
				return err
			}
		}
		return nil
	case graph.Condition:
		return v.condition(n)
	default:
		return compileErrorf("unsupported condition tree node %T", t)
	}
}

func (v *validator) condition(c graph.Condition) error {
	if len(c.Target.Path) == 0 {
		return compileErrorf("filter condition has an empty target path")
	}
	if c.Op == nil {
		return compileErrorf("filter condition on %q has no operator", strings.Join(c.Target.Path, "."))
	}
	if got, want := c.Op.Family(), graph.FamilyOf(c.Target.Type); got != want {
		return compileErrorf("operator %q of family %s cannot apply to %s target %q",
			c.Op, got, want, strings.Join(c.Target.Path, "."))
	}
	relPath := strings.Join(c.Target.Path[:len(c.Target.Path)-1], ".")
	if !v.relPaths[relPath] {
		return compileErrorf("filter target %q references relation %q which is not selected",
			strings.Join(c.Target.Path, "."), relPath)
	}
	switch c.Op {
	case graph.StrIn, graph.NumIn:
		vs, ok := c.Value.([]any)
		if !ok {
			return compileErrorf("in requires a list of values, got %T", c.Value)
		}
		if len(vs) == 0 {
			return compileErrorf("in requires at least one value")
		}
	case graph.NumBetween:
		if vs, ok := c.Value.([]any); !ok || len(vs) != 2 {
			return compileErrorf("between requires exactly two values")
		}
	}
	return nil
}
