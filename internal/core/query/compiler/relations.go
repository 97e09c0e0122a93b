package compiler

import (
	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
)

// nestedRelation builds the descriptor for a to-many relation. The child
// query is never joined; Build compiles it independently per parent-key
// batch, with the key restriction injected ahead of the child's own filter.
func nestedRelation(parentCollection string, n graph.RelationMany) sqlast.NestedRelation {
	var parentKey, childKey, discrCol string
	switch j := n.Join.(type) {
	case graph.OneToMany:
		parentKey, childKey = j.ParentKey, j.ChildKey
	case graph.OneToAny:
		parentKey, childKey, discrCol = j.ParentKey, j.ChildKey, j.CollectionField
	}

	// The child key must appear in child rows for grouping. When the caller
	// did not select it, the compiler injects it and the merge engine strips
	// it back out after grafting.
	var hidden []string
	if !selectsColumn(n.Query.Fields, childKey) {
		hidden = []string{childKey}
	}

	return sqlast.NestedRelation{
		Alias:           n.Field,
		ParentKeys:      []string{parentKey},
		ChildKeys:       []string{childKey},
		ChildCollection: n.Query.Collection,
		HiddenKeys:      hidden,
		Build: func(parentKeys [][]any) (*sqlast.Statement, error) {
			values := make([]any, 0, len(parentKeys))
			for _, tuple := range parentKeys {
				if len(tuple) != 1 {
					return nil, compileErrorf("nested relation %q expects single-column key tuples, got %d columns",
						n.Field, len(tuple))
				}
				values = append(values, tuple[0])
			}
			q := n.Query.Clone()
			for _, h := range hidden {
				q.Fields = append(q.Fields, graph.Primitive{Field: h})
			}
			return compile(q, &keyFilter{
				column:     childKey,
				values:     values,
				discrCol:   discrCol,
				discrValue: parentCollection,
			})
		},
	}
}

func selectsColumn(fields []graph.FieldNode, column string) bool {
	for _, f := range fields {
		if p, ok := f.(graph.Primitive); ok && p.Field == column {
			return true
		}
	}
	return false
}
