package render

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/satishbabariya/nestql/internal/core/query/compiler"
	"github.com/satishbabariya/nestql/internal/core/query/graph"
	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func compileGraph(t *testing.T, g *graph.Graph) *sqlast.Statement {
	t.Helper()
	stmt, err := compiler.Compile(g)
	require.NoError(t, err)
	return stmt
}

func filteredGraph() *graph.Graph {
	limit := 10
	return &graph.Graph{
		Collection: "articles",
		Fields: []graph.FieldNode{
			graph.Primitive{Field: "id"},
			graph.Primitive{Field: "title"},
		},
		Filter: graph.Logical{Op: graph.Or, Children: []graph.ConditionTree{
			graph.Condition{
				Target: graph.FieldRef{Path: []string{"title"}, Type: graph.TypeString},
				Op:     graph.StrContains,
				Value:  "go",
			},
			graph.Condition{
				Target: graph.FieldRef{Path: []string{"views"}, Type: graph.TypeNumber},
				Op:     graph.NumGte,
				Value:  100,
			},
		}},
		Sort:  []graph.Sort{{Path: []string{"title"}, Desc: true}},
		Limit: &limit,
	}
}

func TestRenderPostgres(t *testing.T) {
	stmt := compileGraph(t, filteredGraph())

	sql, args, err := Render(stmt, Postgres{})
	require.NoError(t, err)

	assert.Equal(t,
		`SELECT "articles"."id" AS "id", "articles"."title" AS "title"`+
			` FROM "articles"`+
			` WHERE ("articles"."title" LIKE $1 OR "articles"."views" >= $2)`+
			` ORDER BY "articles"."title" DESC`+
			` LIMIT $3`,
		sql)
	assert.Equal(t, []any{"%go%", 100, 10}, args)
}

func TestRenderMySQLPlaceholders(t *testing.T) {
	stmt := compileGraph(t, filteredGraph())

	sql, args, err := Render(stmt, MySQL{})
	require.NoError(t, err)

	assert.Contains(t, sql, "`articles`.`title` LIKE ?")
	assert.Contains(t, sql, "LIMIT ?")
	assert.Equal(t, []any{"%go%", 100, 10}, args)
}

// Placeholder numbers must appear in ascending order so the positional
// dialects can bind Params without rewriting.
func TestRenderPlaceholderOrderAscending(t *testing.T) {
	offset := 5
	g := filteredGraph()
	g.Offset = &offset
	g.Fields = append(g.Fields, graph.RelationOne{
		Field:  "author",
		Join:   graph.AnyToOne{ForeignKey: "author_id", CollectionField: "author_type", Collection: "users", RelatedKey: "id"},
		Fields: []graph.FieldNode{graph.Primitive{Field: "name"}},
	})
	stmt := compileGraph(t, g)

	sql, args, err := Render(stmt, Postgres{})
	require.NoError(t, err)
	require.Len(t, args, len(stmt.Params))

	matches := regexp.MustCompile(`\$(\d+)`).FindAllStringSubmatch(sql, -1)
	require.Len(t, matches, len(args))
	for i, m := range matches {
		n, err := strconv.Atoi(m[1])
		require.NoError(t, err)
		assert.Equal(t, i+1, n)
	}
}

func TestRenderJoin(t *testing.T) {
	g := &graph.Graph{
		Collection: "articles",
		Fields: []graph.FieldNode{
			graph.Primitive{Field: "id"},
			graph.RelationOne{
				Field:  "author",
				Join:   graph.ManyToOne{ForeignKey: "author_id", Collection: "users", RelatedKey: "id"},
				Fields: []graph.FieldNode{graph.Primitive{Field: "name"}},
			},
		},
	}
	stmt := compileGraph(t, g)

	sql, _, err := Render(stmt, Postgres{})
	require.NoError(t, err)
	assert.Contains(t, sql,
		`LEFT JOIN "users" AS "articles_author" ON "articles_author"."id" = "articles"."author_id"`)
	assert.Contains(t, sql, `"articles_author"."name" AS "author.name"`)
}

func TestRenderFunctionsPerDialect(t *testing.T) {
	g := &graph.Graph{
		Collection: "articles",
		Fields: []graph.FieldNode{
			graph.Function{Fn: graph.FnYear, Field: "published_at"},
		},
	}
	stmt := compileGraph(t, g)

	tests := []struct {
		dialect Dialect
		want    string
	}{
		{Postgres{}, `EXTRACT(YEAR FROM "articles"."published_at")`},
		{MySQL{}, "YEAR(`articles`.`published_at`)"},
		{SQLite{}, `CAST(strftime('%Y', "articles"."published_at") AS INTEGER)`},
	}
	for _, tt := range tests {
		t.Run(tt.dialect.Name(), func(t *testing.T) {
			sql, _, err := Render(stmt, tt.dialect)
			require.NoError(t, err)
			assert.Contains(t, sql, tt.want)
		})
	}
}

func TestRenderNegateAndEmpty(t *testing.T) {
	g := &graph.Graph{
		Collection: "users",
		Fields:     []graph.FieldNode{graph.Primitive{Field: "id"}},
		Filter: graph.Condition{
			Target: graph.FieldRef{Path: []string{"email"}, Type: graph.TypeString},
			Op:     graph.StrEmpty,
			Negate: true,
		},
	}
	stmt := compileGraph(t, g)

	sql, args, err := Render(stmt, Postgres{})
	require.NoError(t, err)
	assert.Contains(t, sql, `NOT (("users"."email" IS NULL OR "users"."email" = ''))`)
	assert.Empty(t, args)
}

func TestRenderGeo(t *testing.T) {
	g := &graph.Graph{
		Collection: "places",
		Fields:     []graph.FieldNode{graph.Primitive{Field: "id"}},
		Filter: graph.Condition{
			Target: graph.FieldRef{Path: []string{"location"}, Type: graph.TypeGeo},
			Op:     graph.GeoIntersects,
			Value:  "POINT(1 2)",
		},
	}
	stmt := compileGraph(t, g)

	sql, _, err := Render(stmt, Postgres{})
	require.NoError(t, err)
	assert.Contains(t, sql, `ST_Intersects("places"."location", ST_GeomFromText($1))`)

	_, _, err = Render(stmt, SQLite{})
	require.Error(t, err)
	var rerr *Error
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "sqlite", rerr.Dialect)
}
