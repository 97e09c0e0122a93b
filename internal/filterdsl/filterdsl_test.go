package filterdsl

import (
	"testing"

	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseComparisons(t *testing.T) {
	tests := []struct {
		src  string
		want graph.Condition
	}{
		{
			src: `age >= 18`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"age"}, Type: graph.TypeNumber},
				Op:     graph.NumGte,
				Value:  18,
			},
		},
		{
			src: `name = "ada"`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"name"}, Type: graph.TypeString},
				Op:     graph.StrEq,
				Value:  "ada",
			},
		},
		{
			src: `name != "ada"`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"name"}, Type: graph.TypeString},
				Op:     graph.StrEq,
				Value:  "ada",
				Negate: true,
			},
		},
		{
			src: `score = 1.5`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"score"}, Type: graph.TypeNumber},
				Op:     graph.NumEq,
				Value:  1.5,
			},
		},
		{
			src: `author.name contains "smith"`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"author", "name"}, Type: graph.TypeString},
				Op:     graph.StrContains,
				Value:  "smith",
			},
		},
		{
			src: `email empty`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"email"}, Type: graph.TypeString},
				Op:     graph.StrEmpty,
			},
		},
		{
			src: `status in ["published", "draft"]`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"status"}, Type: graph.TypeString},
				Op:     graph.StrIn,
				Value:  []any{"published", "draft"},
			},
		},
		{
			src: `views between [10, 20]`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"views"}, Type: graph.TypeNumber},
				Op:     graph.NumBetween,
				Value:  []any{10, 20},
			},
		},
		{
			src: `location intersects "POINT(1 2)"`,
			want: graph.Condition{
				Target: graph.FieldRef{Path: []string{"location"}, Type: graph.TypeGeo},
				Op:     graph.GeoIntersects,
				Value:  "POINT(1 2)",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			tree, err := Parse(tt.src)
			require.NoError(t, err)
			assert.Equal(t, graph.ConditionTree(tt.want), tree)
		})
	}
}

func TestParsePrecedence(t *testing.T) {
	tree, err := Parse(`age > 18 and name contains "a" or email empty`)
	require.NoError(t, err)

	or, ok := tree.(graph.Logical)
	require.True(t, ok)
	assert.Equal(t, graph.Or, or.Op)
	require.Len(t, or.Children, 2)

	and, ok := or.Children[0].(graph.Logical)
	require.True(t, ok)
	assert.Equal(t, graph.And, and.Op)
	assert.Len(t, and.Children, 2)
}

func TestParseParenthesesAndNot(t *testing.T) {
	tree, err := Parse(`age > 18 and (email empty or not name = "x")`)
	require.NoError(t, err)

	and, ok := tree.(graph.Logical)
	require.True(t, ok)
	require.Len(t, and.Children, 2)

	or, ok := and.Children[1].(graph.Logical)
	require.True(t, ok)
	require.Len(t, or.Children, 2)

	neg, ok := or.Children[1].(graph.Condition)
	require.True(t, ok)
	assert.True(t, neg.Negate)
}

func TestParseErrors(t *testing.T) {
	for _, src := range []string{
		``,
		`age >`,
		`age between [1]`,
		`status in []`,
		`name glows "x"`,
	} {
		t.Run(src, func(t *testing.T) {
			_, err := Parse(src)
			assert.Error(t, err)
		})
	}
}
