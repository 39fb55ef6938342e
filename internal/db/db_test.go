package db

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabula/internal/model"
)

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadTable(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	_, err := db.ExecContext(ctx, `
		CREATE TABLE "odd ""name""" (id INTEGER PRIMARY KEY, label TEXT, score REAL, raw BLOB);
		INSERT INTO "odd ""name""" VALUES (1, 'first', 2.5, x'00ff10');
		INSERT INTO "odd ""name""" VALUES (2, NULL, NULL, CAST('text' AS BLOB));
	`)
	require.NoError(t, err)

	tables, err := ListTables(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{`odd "name"`}, tables)

	ds, err := LoadTable(ctx, db, `odd "name"`)
	require.NoError(t, err)
	assert.Equal(t, `odd "name"`, ds.Name)
	assert.Equal(t, []string{"id", "label", "score", "raw"}, ds.ColumnNames())
	assert.Equal(t, "INTEGER", ds.Columns[0].DeclType)
	assert.Equal(t, "REAL", ds.Columns[2].DeclType)

	require.Len(t, ds.Rows, 2)
	assert.Equal(t, []any{int64(1), "first", 2.5, "[blob 3 B]"}, ds.Rows[0])
	assert.Equal(t, []any{int64(2), nil, nil, "text"}, ds.Rows[1])
}

func TestLoadTableUnknown(t *testing.T) {
	db := openMemory(t)

	_, err := LoadTable(context.Background(), db, "missing; DROP TABLE x")
	assert.ErrorIs(t, err, ErrNoSuchTable)
}

func TestLoadQuery(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)

	ds, err := LoadQuery(ctx, db, "numbers", `
		WITH RECURSIVE n(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM n WHERE x < 5)
		SELECT x, x * x AS square FROM n
	`)
	require.NoError(t, err)
	assert.Equal(t, []string{"x", "square"}, ds.ColumnNames())
	require.Len(t, ds.Rows, 5)
	assert.Equal(t, []any{int64(5), int64(25)}, ds.Rows[4])

	_, err = LoadQuery(ctx, db, "bad", "SELEKT nothing")
	assert.Error(t, err)

	_, err = LoadQuery(ctx, db, "blank", "   ")
	assert.Error(t, err)
}

func TestLoadSource(t *testing.T) {
	ctx := context.Background()
	db := openMemory(t)
	_, err := db.ExecContext(ctx, `CREATE TABLE t (v TEXT); INSERT INTO t VALUES ('a'), ('b');`)
	require.NoError(t, err)

	ds, err := Load(ctx, db, model.Source{Table: "t"})
	require.NoError(t, err)
	assert.Len(t, ds.Rows, 2)

	ds, err = Load(ctx, db, model.Source{Query: "SELECT v FROM t WHERE v = 'b'"})
	require.NoError(t, err)
	assert.Equal(t, "query", ds.Name)
	assert.Equal(t, [][]any{{"b"}}, ds.Rows)
}

func TestOpenDemo(t *testing.T) {
	ctx := context.Background()
	db, err := OpenDemo(ctx)
	require.NoError(t, err)
	defer db.Close()

	tables, err := ListTables(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []string{"restaurants", DemoTable, "visits"}, tables)

	ds, err := LoadTable(ctx, db, DemoTable)
	require.NoError(t, err)
	assert.Equal(t, []string{"visited_on", "restaurant", "city", "cuisine", "price", "rating", "would_return", "notes"}, ds.ColumnNames())
	assert.Len(t, ds.Rows, demoVisitCount)

	restaurants, err := LoadTable(ctx, db, "restaurants")
	require.NoError(t, err)
	assert.Len(t, restaurants.Rows, len(demoRestaurants))
}

func TestOpenBadPath(t *testing.T) {
	_, err := Open(t.TempDir() + "/missing/dir/data.db")
	assert.Error(t, err)
}
