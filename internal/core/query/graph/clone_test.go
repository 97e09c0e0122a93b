package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleGraph() *Graph {
	limit := 5
	return &Graph{
		Collection: "articles",
		Fields: []FieldNode{
			Primitive{Field: "id"},
			RelationOne{
				Field:  "author",
				Join:   ManyToOne{ForeignKey: "author_id", Collection: "users", RelatedKey: "id"},
				Fields: []FieldNode{Primitive{Field: "name"}},
			},
			RelationMany{
				Field: "comments",
				Join:  OneToMany{ParentKey: "id", ChildKey: "article_id"},
				Query: &Graph{
					Collection: "comments",
					Fields:     []FieldNode{Primitive{Field: "body"}},
				},
			},
		},
		Filter: Condition{
			Target: FieldRef{Path: []string{"status"}, Type: TypeString},
			Op:     StrIn,
			Value:  []any{"published"},
		},
		Sort:  []Sort{{Path: []string{"id"}}},
		Limit: &limit,
	}
}

func TestCloneIsDeep(t *testing.T) {
	g := sampleGraph()
	c := g.Clone()

	require.Equal(t, g, c)

	// Mutating the clone leaves the original untouched.
	c.Fields[0] = Primitive{Field: "other"}
	nested := c.Fields[2].(RelationMany)
	nested.Query.Fields[0] = Primitive{Field: "changed"}
	cond := c.Filter.(Condition)
	cond.Target.Path[0] = "mutated"
	c.Sort[0].Path[0] = "mutated"
	*c.Limit = 99

	assert.Equal(t, Primitive{Field: "id"}, g.Fields[0])
	assert.Equal(t, Primitive{Field: "body"}, g.Fields[2].(RelationMany).Query.Fields[0])
	assert.Equal(t, "status", g.Filter.(Condition).Target.Path[0])
	assert.Equal(t, "id", g.Sort[0].Path[0])
	assert.Equal(t, 5, *g.Limit)
}

func TestWithFilterDoesNotMutate(t *testing.T) {
	g := sampleGraph()
	extra := Condition{
		Target: FieldRef{Path: []string{"views"}, Type: TypeNumber},
		Op:     NumGt,
		Value:  10,
	}

	annotated := g.WithFilter(extra)

	and, ok := annotated.Filter.(Logical)
	require.True(t, ok)
	assert.Equal(t, And, and.Op)
	require.Len(t, and.Children, 2)

	// Original filter unchanged.
	_, ok = g.Filter.(Condition)
	assert.True(t, ok)
}

func TestWithFilterNilExtra(t *testing.T) {
	g := sampleGraph()
	annotated := g.WithFilter(nil)
	assert.Equal(t, g.Filter, annotated.Filter)
}

func TestWithFilterOnUnfilteredGraph(t *testing.T) {
	g := sampleGraph()
	g.Filter = nil
	extra := Condition{
		Target: FieldRef{Path: []string{"views"}, Type: TypeNumber},
		Op:     NumGt,
		Value:  10,
	}
	annotated := g.WithFilter(extra)
	assert.Equal(t, ConditionTree(extra), annotated.Filter)
}

func TestFunctionDefaultAlias(t *testing.T) {
	assert.Equal(t, "count_id", Function{Fn: FnCount, Field: "id"}.Name())
	assert.Equal(t, "total", Function{Fn: FnCount, Field: "id", Alias: "total"}.Name())
}
