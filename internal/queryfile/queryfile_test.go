package queryfile

import (
	"testing"

	"github.com/satishbabariya/nestql/internal/core/query/compiler"
	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const articlesDoc = `{
  "collection": "articles",
  "fields": [
    "id",
    "title",
    {"fn": "year", "field": "published_at", "alias": "published_year"},
    {"relation": "author", "kind": "m2o", "foreign_key": "author_id",
     "collection": "users", "related_key": "id", "fields": ["name"]},
    {"relation": "comments", "kind": "o2m", "parent_key": "id", "child_key": "article_id",
     "query": {"collection": "comments", "fields": ["body"], "sort": ["-body"]}}
  ],
  "filter": "title contains \"go\" and views > 10",
  "sort": ["-published_year", "title"],
  "limit": 25,
  "offset": 5
}`

func TestParseDocument(t *testing.T) {
	g, err := Parse([]byte(articlesDoc))
	require.NoError(t, err)

	assert.Equal(t, "articles", g.Collection)
	require.Len(t, g.Fields, 5)

	assert.Equal(t, graph.Primitive{Field: "id"}, g.Fields[0])
	assert.Equal(t, graph.Function{Fn: graph.FnYear, Field: "published_at", Alias: "published_year"}, g.Fields[2])

	author, ok := g.Fields[3].(graph.RelationOne)
	require.True(t, ok)
	assert.Equal(t, graph.ManyToOne{ForeignKey: "author_id", Collection: "users", RelatedKey: "id"}, author.Join)

	comments, ok := g.Fields[4].(graph.RelationMany)
	require.True(t, ok)
	assert.Equal(t, graph.OneToMany{ParentKey: "id", ChildKey: "article_id"}, comments.Join)
	require.NotNil(t, comments.Query)
	assert.Equal(t, "comments", comments.Query.Collection)
	assert.Equal(t, []graph.Sort{{Path: []string{"body"}, Desc: true}}, comments.Query.Sort)

	require.NotNil(t, g.Filter)
	and, ok := g.Filter.(graph.Logical)
	require.True(t, ok)
	assert.Len(t, and.Children, 2)

	assert.Equal(t, []graph.Sort{
		{Path: []string{"published_year"}, Desc: true},
		{Path: []string{"title"}},
	}, g.Sort)
	require.NotNil(t, g.Limit)
	assert.Equal(t, 25, *g.Limit)
	require.NotNil(t, g.Offset)
	assert.Equal(t, 5, *g.Offset)

	// The document compiles as-is.
	_, err = compiler.Compile(g)
	require.NoError(t, err)
}

func TestLoadFromFilesystem(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "query.json", []byte(articlesDoc), 0o644))

	g, err := Load(fs, "query.json")
	require.NoError(t, err)
	assert.Equal(t, "articles", g.Collection)

	_, err = Load(fs, "missing.json")
	assert.Error(t, err)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"invalid json", `{`},
		{"bad relation kind", `{"collection":"a","fields":[{"relation":"r","kind":"wat"}]}`},
		{"relation without query", `{"collection":"a","fields":[{"relation":"r","kind":"o2m","parent_key":"id","child_key":"a_id"}]}`},
		{"function without field", `{"collection":"a","fields":[{"fn":"count"}]}`},
		{"bad filter", `{"collection":"a","fields":["id"],"filter":"title ??"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
