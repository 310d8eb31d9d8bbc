package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var columnHeaders = []string{
	"column_name", "data_type", "is_nullable", "column_default",
	"is_primary_key", "character_maximum_length", "numeric_precision", "numeric_scale",
}

func TestColumns(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("", "users").
		WillReturnRows(sqlmock.NewRows(columnHeaders).
			AddRow("id", "integer", false, "nextval('users_id_seq'::regclass)", true, nil, 32, 0).
			AddRow("email", "character varying", false, nil, false, 255, nil, nil).
			AddRow("created_at", "timestamp without time zone", true, "CURRENT_TIMESTAMP", false, nil, nil, nil))

	columns, err := Columns(context.Background(), db, "users")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	assert.Equal(t, "id", columns[0].Name)
	assert.True(t, columns[0].IsPrimaryKey)
	assert.False(t, columns[0].IsNullable)
	assert.True(t, columns[0].DefaultValue.Valid)

	assert.Equal(t, "character varying", columns[1].DataType)
	assert.Equal(t, int64(255), columns[1].CharacterLength.Int64)
	assert.False(t, columns[1].DefaultValue.Valid)

	assert.True(t, columns[2].IsNullable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnsQualifiedName(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").
		WithArgs("app", "users").
		WillReturnRows(sqlmock.NewRows(columnHeaders))

	columns, err := Columns(context.Background(), db, "app.users")
	require.NoError(t, err)
	assert.Empty(t, columns)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestColumnsQueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("FROM information_schema.columns").WillReturnError(errors.New("permission denied"))

	_, err = Columns(context.Background(), db, "users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to query columns of users")
}

func TestInspect(t *testing.T) {
	t.Run("found_tables", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("FROM information_schema.columns").
			WithArgs("", "users").
			WillReturnRows(sqlmock.NewRows(columnHeaders).
				AddRow("id", "integer", false, nil, true, nil, 32, 0))
		mock.ExpectQuery("FROM information_schema.columns").
			WithArgs("app", "posts").
			WillReturnRows(sqlmock.NewRows(columnHeaders).
				AddRow("id", "bigint", false, nil, true, nil, 64, 0).
				AddRow("body", "text", true, nil, false, nil, nil, nil))

		tables, err := Inspect(context.Background(), db, []string{"users", "app.posts"})
		require.NoError(t, err)
		require.Len(t, tables, 2)
		assert.Equal(t, "users", tables[0].Name)
		assert.Empty(t, tables[0].Schema)
		assert.Equal(t, "app", tables[1].Schema)
		assert.Len(t, tables[1].Columns, 2)
	})

	t.Run("missing_table", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectQuery("FROM information_schema.columns").
			WithArgs("", "ghosts").
			WillReturnRows(sqlmock.NewRows(columnHeaders))

		_, err = Inspect(context.Background(), db, []string{"ghosts"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "table ghosts not found")
	})
}
