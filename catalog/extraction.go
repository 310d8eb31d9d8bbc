package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/alc6/pgtables/postgres"
)

// Querier is satisfied by *sql.DB, *sql.Tx and postgres.Cursor.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

const columnsQuery = `
	SELECT
		c.column_name,
		c.data_type,
		c.is_nullable = 'YES' AS is_nullable,
		c.column_default,
		EXISTS (
			SELECT 1
			FROM information_schema.key_column_usage kcu
			JOIN information_schema.table_constraints tc
				ON tc.constraint_name = kcu.constraint_name
				AND tc.table_schema = kcu.table_schema
				AND tc.constraint_type = 'PRIMARY KEY'
			WHERE kcu.table_schema = c.table_schema
			AND kcu.table_name = c.table_name
			AND kcu.column_name = c.column_name
		) AS is_primary_key,
		c.character_maximum_length,
		c.numeric_precision,
		c.numeric_scale
	FROM information_schema.columns c
	WHERE c.table_schema = COALESCE(NULLIF($1::text, ''), current_schema()::text)
	AND c.table_name = $2
	ORDER BY c.ordinal_position`

// Columns returns the columns of table in ordinal order. table may be schema-qualified.
// A table without columns, or one that does not exist, yields an empty slice.
func Columns(ctx context.Context, q Querier, table string) ([]Column, error) {
	schema, name := postgres.SplitQualifiedName(table)

	rows, err := q.QueryContext(ctx, columnsQuery, schema, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer func() { _ = rows.Close() }()

	var columns []Column
	for rows.Next() {
		var col Column
		if err := rows.Scan(&col.Name, &col.DataType, &col.IsNullable, &col.DefaultValue,
			&col.IsPrimaryKey, &col.CharacterLength, &col.NumericPrecision, &col.NumericScale); err != nil {
			return nil, fmt.Errorf("failed to scan column of %s: %w", table, err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns of %s: %w", table, err)
	}
	return columns, nil
}

// Inspect reads every named table. Tables without any column are reported as not found.
func Inspect(ctx context.Context, q Querier, tables []string) ([]Table, error) {
	slog.Debug("starting catalog inspection", "tables", len(tables))

	result := make([]Table, 0, len(tables))
	for _, table := range tables {
		columns, err := Columns(ctx, q, table)
		if err != nil {
			return nil, err
		}
		if len(columns) == 0 {
			return nil, fmt.Errorf("table %s not found", table)
		}
		schema, name := postgres.SplitQualifiedName(table)
		slog.Debug("inspected table", "table", table, "columns", len(columns))
		result = append(result, Table{Schema: schema, Name: name, Columns: columns})
	}
	return result, nil
}
