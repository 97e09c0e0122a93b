package driver

import (
	"context"
	"testing"

	"github.com/satishbabariya/nestql/internal/core/database/pool"
	"github.com/satishbabariya/nestql/internal/core/query/render"
	"github.com/satishbabariya/nestql/internal/core/query/sqlast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "github.com/mattn/go-sqlite3"
)

func newTestDriver(t *testing.T) (*Driver, *pool.Pool) {
	t.Helper()
	p, err := pool.New("sqlite3", "file:"+t.Name()+"?mode=memory&cache=shared", pool.Config{
		MaxOpenConns: 5,
		MaxIdleConns: 5,
	})
	require.NoError(t, err)
	t.Cleanup(func() { p.Close() })

	_, err = p.DB().Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY, label TEXT)`)
	require.NoError(t, err)
	_, err = p.DB().Exec(`INSERT INTO items (id, label) VALUES (1, 'one'), (2, 'two')`)
	require.NoError(t, err)

	return New(PoolConnector{Pool: p}, render.SQLite{}), p
}

func itemsStatement() *sqlast.Statement {
	return &sqlast.Statement{
		Select: []sqlast.SelectExpr{
			{Col: sqlast.ColRef{Table: "items", Column: "id"}, Alias: "id"},
			{Col: sqlast.ColRef{Table: "items", Column: "label"}, Alias: "label"},
		},
		From:    "items",
		OrderBy: []sqlast.OrderExpr{{Col: sqlast.ColRef{Table: "items", Column: "id"}}},
	}
}

func TestExecuteStreamsRows(t *testing.T) {
	d, _ := newTestDriver(t)

	cur, err := d.Execute(context.Background(), itemsStatement())
	require.NoError(t, err)
	defer cur.Close()

	var rows []map[string]any
	for cur.Next() {
		rows = append(rows, cur.Row())
	}
	require.NoError(t, cur.Err())

	require.Len(t, rows, 2)
	assert.Equal(t, int64(1), rows[0]["id"])
	assert.Equal(t, "one", rows[0]["label"])
	assert.Equal(t, "two", rows[1]["label"])

	// Each row is a fresh map.
	assert.NotSame(t, &rows[0], &rows[1])
}

func TestExecuteHoldsOneConnection(t *testing.T) {
	d, p := newTestDriver(t)

	before := p.Stats().InUse
	cur, err := d.Execute(context.Background(), itemsStatement())
	require.NoError(t, err)

	assert.Equal(t, before+1, p.Stats().InUse)
	require.NoError(t, cur.Close())
	assert.Equal(t, before, p.Stats().InUse)

	// Close twice is fine.
	require.NoError(t, cur.Close())
}

func TestExecuteReleasesConnectionOnDrain(t *testing.T) {
	d, p := newTestDriver(t)

	before := p.Stats().InUse
	cur, err := d.Execute(context.Background(), itemsStatement())
	require.NoError(t, err)

	for cur.Next() {
	}
	require.NoError(t, cur.Err())

	// End of data hands the connection back without waiting for Close.
	assert.Equal(t, before, p.Stats().InUse)
	require.NoError(t, cur.Close())
	assert.Equal(t, before, p.Stats().InUse)
	assert.False(t, cur.Next())
}

func TestExecuteRejectedStatement(t *testing.T) {
	d, _ := newTestDriver(t)

	stmt := &sqlast.Statement{
		Select: []sqlast.SelectExpr{{Col: sqlast.ColRef{Table: "nope", Column: "id"}, Alias: "id"}},
		From:   "nope",
	}
	cur, err := d.Execute(context.Background(), stmt)
	require.Error(t, err)
	assert.Nil(t, cur)
	assert.ErrorIs(t, err, ErrExecution)

	var qerr *QueryExecutionError
	require.ErrorAs(t, err, &qerr)
	assert.Contains(t, qerr.Query, `"nope"`)
}

func TestExecuteParamsBind(t *testing.T) {
	d, _ := newTestDriver(t)

	ref := sqlast.ParamRef(0)
	stmt := itemsStatement()
	stmt.Where = sqlast.Cmp{
		Col:    sqlast.ColRef{Table: "items", Column: "label"},
		Op:     sqlast.CmpEq,
		Params: []sqlast.ParamRef{ref},
	}
	stmt.Params = []any{"two"}

	cur, err := d.Execute(context.Background(), stmt)
	require.NoError(t, err)
	defer cur.Close()

	require.True(t, cur.Next())
	assert.Equal(t, int64(2), cur.Row()["id"])
	assert.False(t, cur.Next())
	require.NoError(t, cur.Err())
}
