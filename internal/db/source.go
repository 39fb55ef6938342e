package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"tabula/internal/model"
)

// ErrNoSuchTable is returned when a requested table or view does not exist.
var ErrNoSuchTable = errors.New("no such table")

// ListTables returns the user tables and views, sorted by name.
func ListTables(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `
		SELECT name
		FROM sqlite_master
		WHERE type IN ('table', 'view') AND name NOT LIKE 'sqlite_%'
		ORDER BY name
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tables: %w", err)
	}

	return names, nil
}

// LoadTable reads every row of a table or view.
func LoadTable(ctx context.Context, db *sql.DB, table string) (model.Dataset, error) {
	tables, err := ListTables(ctx, db)
	if err != nil {
		return model.Dataset{}, err
	}
	if !slices.Contains(tables, table) {
		return model.Dataset{}, fmt.Errorf("failed to load %q: %w", table, ErrNoSuchTable)
	}

	return loadRows(ctx, db, table, "SELECT * FROM "+quoteIdent(table))
}

// LoadQuery runs an arbitrary read query and returns its rows.
func LoadQuery(ctx context.Context, db *sql.DB, name, query string) (model.Dataset, error) {
	if strings.TrimSpace(query) == "" {
		return model.Dataset{}, errors.New("failed to load query: empty query")
	}
	return loadRows(ctx, db, name, query)
}

// Load reads whatever src names.
func Load(ctx context.Context, db *sql.DB, src model.Source) (model.Dataset, error) {
	if src.Query != "" {
		return LoadQuery(ctx, db, src.Label(), src.Query)
	}
	return LoadTable(ctx, db, src.Table)
}

func loadRows(ctx context.Context, db *sql.DB, name, query string) (model.Dataset, error) {
	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to query %s: %w", name, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return model.Dataset{}, fmt.Errorf("failed to read columns: %w", err)
	}

	ds := model.Dataset{Name: name, Columns: make([]model.Column, len(types))}
	for i, ct := range types {
		ds.Columns[i] = model.Column{Name: ct.Name(), DeclType: strings.ToUpper(ct.DatabaseTypeName())}
	}

	for rows.Next() {
		values := make([]any, len(types))
		dest := make([]any, len(types))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return model.Dataset{}, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = cellValue(v)
		}
		ds.Rows = append(ds.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return model.Dataset{}, fmt.Errorf("error iterating rows: %w", err)
	}

	return ds, nil
}

// cellValue turns driver values into values the table can format. Text
// stored as BLOB becomes a string; binary data becomes a size marker.
func cellValue(v any) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	if utf8.Valid(b) {
		return string(b)
	}
	return "[blob " + humanize.Bytes(uint64(len(b))) + "]"
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
