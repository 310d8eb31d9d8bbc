package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/alc6/pgtables/catalog"
	"github.com/alc6/pgtables/mocks"
	"github.com/alc6/pgtables/postgres"
	"github.com/alc6/pgtables/tables"
)

const usersDocument = `
tables:
  - name: users
    columns:
      - {name: id, type: serial}
      - {name: email, type: character varying, modifiers: "(255) NOT NULL UNIQUE"}
      - {name: created_at, type: timestamp, modifiers: DEFAULT CURRENT_TIMESTAMP}
    key_columns: ["PRIMARY KEY (id)"]
  - name: posts
    column_spec:
      column_names: [id, title, user_id]
      data_types: [serial, text, integer]
      other_args: ["", NOT NULL, NOT NULL]
      key_columns: ["PRIMARY KEY (id)", "FOREIGN KEY (user_id) REFERENCES users (id)"]
`

func writeSpecFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func usersDefinitions() []tables.Definition {
	return []tables.Definition{
		{Name: "users", Spec: tables.Spec{
			Columns:    []tables.Column{{Name: "id", DataType: "integer"}, {Name: "name", DataType: "text"}},
			KeyClauses: []string{"PRIMARY KEY (id)"},
		}},
		{Name: "posts", Spec: tables.Spec{
			Columns: []tables.Column{{Name: "id", DataType: "integer"}},
		}},
	}
}

func createdExecutor(t *testing.T) *mocks.MockExecutor {
	t.Helper()
	ctrl := gomock.NewController(t)
	exec := mocks.NewMockExecutor(ctrl)
	cursor := mocks.NewMockCursor(ctrl)

	exec.EXPECT().TableExists(gomock.Any(), gomock.Any()).Return(false, nil).AnyTimes()
	exec.EXPECT().WithCursor(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, fn func(postgres.Cursor) error) error {
			return fn(cursor)
		}).AnyTimes()
	cursor.EXPECT().ExecContext(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	cursor.EXPECT().Commit().Return(nil).AnyTimes()
	return exec
}

func TestRun(t *testing.T) {
	t.Run("help", func(t *testing.T) {
		t.Chdir(t.TempDir())
		require.NoError(t, run([]string{"--help"}))
	})

	t.Run("unknown_command", func(t *testing.T) {
		t.Chdir(t.TempDir())
		assert.Error(t, run([]string{"drop"}))
	})

	t.Run("render_without_database", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := writeSpecFile(t, dir, "users.yaml", usersDocument)
		require.NoError(t, run([]string{"render", path}))
	})

	t.Run("create_requires_database", func(t *testing.T) {
		dir := t.TempDir()
		t.Chdir(dir)
		path := writeSpecFile(t, dir, "users.yaml", usersDocument)

		err := run([]string{"create", path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no database configured")
	})

	t.Run("invalid_driver", func(t *testing.T) {
		t.Chdir(t.TempDir())
		err := run([]string{"--driver", "mysql", "exists", "users"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `unknown driver "mysql"`)
	})
}

func TestCreateTablesCoreUnit(t *testing.T) {
	ctx := context.Background()

	t.Run("creates_in_order", func(t *testing.T) {
		var order []string
		ctrl := gomock.NewController(t)
		exec := mocks.NewMockExecutor(ctrl)
		cursor := mocks.NewMockCursor(ctrl)
		exec.EXPECT().TableExists(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, name string) (bool, error) {
				order = append(order, name)
				return false, nil
			}).Times(2)
		exec.EXPECT().WithCursor(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, fn func(postgres.Cursor) error) error {
				return fn(cursor)
			}).Times(2)
		cursor.EXPECT().ExecContext(gomock.Any(), gomock.Any()).Return(nil, nil).Times(2)
		cursor.EXPECT().Commit().Return(nil).Times(2)

		mockDB := &MockDatabaseManager{ExecutorFunc: func() tables.Executor { return exec }}
		mockReader := &MockSpecReader{DiscoverDefinitionsFunc: func(string) ([]tables.Definition, error) {
			return usersDefinitions(), nil
		}}

		created, err := createTablesCore(ctx, "specs", false, mockReader, mockDB)
		require.NoError(t, err)
		require.Len(t, created, 2)
		assert.Equal(t, []string{"users", "posts"}, order)
		assert.True(t, mockDB.SetupCalled)
		assert.True(t, mockDB.CloseCalled)
	})

	t.Run("reader_error", func(t *testing.T) {
		mockDB := &MockDatabaseManager{}
		mockReader := &MockSpecReader{DiscoverDefinitionsFunc: func(string) ([]tables.Definition, error) {
			return nil, errors.New("permission denied")
		}}

		_, err := createTablesCore(ctx, "specs", false, mockReader, mockDB)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read table definitions")
		assert.False(t, mockDB.SetupCalled)
	})

	t.Run("no_definitions", func(t *testing.T) {
		mockDB := &MockDatabaseManager{}
		_, err := createTablesCore(ctx, "specs", false, &MockSpecReader{}, mockDB)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no table definitions found in specs")
		assert.False(t, mockDB.SetupCalled)
	})

	t.Run("invalid_definition_never_connects", func(t *testing.T) {
		mockDB := &MockDatabaseManager{}
		mockReader := &MockSpecReader{DiscoverDefinitionsFunc: func(string) ([]tables.Definition, error) {
			defs := usersDefinitions()
			defs[1].Spec.Columns[0].Name = "12abc"
			return defs, nil
		}}

		_, err := createTablesCore(ctx, "specs", false, mockReader, mockDB)
		var verr *tables.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, "posts", verr.Table)
		assert.Equal(t, tables.RuleFirstChar, verr.Rule)
		assert.False(t, mockDB.SetupCalled)
	})

	t.Run("setup_error", func(t *testing.T) {
		mockDB := &MockDatabaseManager{SetupFunc: func(context.Context) error {
			return &postgres.ConnectError{Handle: `database "app"`, Err: errors.New("connection refused")}
		}}
		mockReader := &MockSpecReader{DiscoverDefinitionsFunc: func(string) ([]tables.Definition, error) {
			return usersDefinitions(), nil
		}}

		_, err := createTablesCore(ctx, "specs", false, mockReader, mockDB)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to setup database")
		assert.Equal(t, `failed to connect to database: database "app" with error: connection refused`, exitMessage(err))
		assert.False(t, mockDB.CloseCalled)
	})

	t.Run("stops_at_first_failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		exec := mocks.NewMockExecutor(ctrl)
		exec.EXPECT().TableExists(gomock.Any(), "users").Return(false, postgres.ErrNotConnected)

		mockDB := &MockDatabaseManager{ExecutorFunc: func() tables.Executor { return exec }}
		mockReader := &MockSpecReader{DiscoverDefinitionsFunc: func(string) ([]tables.Definition, error) {
			return usersDefinitions(), nil
		}}

		created, err := createTablesCore(ctx, "specs", false, mockReader, mockDB)
		assert.ErrorIs(t, err, postgres.ErrNotConnected)
		assert.Empty(t, created)
		assert.True(t, mockDB.CloseCalled)
	})
}

func TestRenderCore(t *testing.T) {
	t.Run("renders_every_definition", func(t *testing.T) {
		mockReader := &MockSpecReader{DiscoverDefinitionsFunc: func(string) ([]tables.Definition, error) {
			return usersDefinitions(), nil
		}}

		out, err := renderCore("specs", mockReader)
		require.NoError(t, err)
		assert.Equal(t,
			"CREATE TABLE IF NOT EXISTS users ( id integer ,\nname text ,\nPRIMARY KEY (id)\n);\n\n"+
				"CREATE TABLE IF NOT EXISTS posts ( id integer \n);\n\n",
			out)
	})

	t.Run("invalid_type", func(t *testing.T) {
		mockReader := &MockSpecReader{DiscoverDefinitionsFunc: func(string) ([]tables.Definition, error) {
			return []tables.Definition{{Name: "users", Spec: tables.Spec{
				Columns: []tables.Column{{Name: "id", DataType: "int4"}},
			}}}, nil
		}}

		_, err := renderCore("specs", mockReader)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "requested data type 'int4' is not supported")
	})
}

func TestExistsCore(t *testing.T) {
	ctx := context.Background()

	t.Run("reports_each_table", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		exec := mocks.NewMockExecutor(ctrl)
		exec.EXPECT().TableExists(gomock.Any(), "users").Return(true, nil)
		exec.EXPECT().TableExists(gomock.Any(), "app.posts").Return(false, nil)

		mockDB := &MockDatabaseManager{ExecutorFunc: func() tables.Executor { return exec }}
		out, err := existsCore(ctx, []string{"users", "app.posts"}, mockDB)
		require.NoError(t, err)
		assert.Equal(t, "users: true\napp.posts: false\n", out)
		assert.True(t, mockDB.CloseCalled)
	})

	t.Run("invalid_name_never_connects", func(t *testing.T) {
		mockDB := &MockDatabaseManager{}
		_, err := existsCore(ctx, []string{"users; DROP TABLE users"}, mockDB)
		require.Error(t, err)
		assert.False(t, mockDB.SetupCalled)
	})

	t.Run("query_error", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		exec := mocks.NewMockExecutor(ctrl)
		exec.EXPECT().TableExists(gomock.Any(), "users").Return(false, errors.New("connection reset"))

		mockDB := &MockDatabaseManager{ExecutorFunc: func() tables.Executor { return exec }}
		_, err := existsCore(ctx, []string{"users"}, mockDB)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "connection reset")
	})
}

func TestDescribeCore(t *testing.T) {
	ctx := context.Background()

	mockDB := &MockDatabaseManager{}
	mockInspector := &MockSchemaInspector{
		InspectTablesFunc: func(_ context.Context, _ tables.Executor, names []string) ([]catalog.Table, error) {
			assert.Equal(t, []string{"users"}, names)
			return []catalog.Table{{Name: "users", Columns: []catalog.Column{{Name: "id", DataType: "integer"}}}}, nil
		},
		FormatTablesFunc: func(tbls []catalog.Table) string {
			return "Table: " + tbls[0].Name
		},
	}

	out, err := describeCore(ctx, []string{"users"}, mockDB, mockInspector)
	require.NoError(t, err)
	assert.Equal(t, "Table: users", out)
	assert.True(t, mockDB.SetupCalled)
	assert.True(t, mockDB.CloseCalled)

	mockInspector.InspectTablesFunc = func(context.Context, tables.Executor, []string) ([]catalog.Table, error) {
		return nil, errors.New("table users not found")
	}
	_, err = describeCore(ctx, []string{"users"}, mockDB, mockInspector)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to inspect tables: table users not found")
}

func TestCheckCoreUnit(t *testing.T) {
	ctx := context.Background()
	exec := createdExecutor(t)

	mockDB := &MockDatabaseManager{ExecutorFunc: func() tables.Executor { return exec }}
	mockReader := &MockSpecReader{DiscoverDefinitionsFunc: func(string) ([]tables.Definition, error) {
		return usersDefinitions(), nil
	}}
	mockInspector := &MockSchemaInspector{
		InspectTablesFunc: func(_ context.Context, _ tables.Executor, names []string) ([]catalog.Table, error) {
			assert.Equal(t, []string{"users", "posts"}, names)
			return []catalog.Table{{Name: "users"}, {Name: "posts"}}, nil
		},
		FormatTablesFunc: catalog.FormatInfo,
	}

	out, err := checkCore(ctx, "specs", mockReader, mockDB, mockInspector)
	require.NoError(t, err)
	assert.Contains(t, out, "Table: users")
	assert.Contains(t, out, "Table: posts")
	assert.True(t, mockDB.CloseCalled)
}

func TestFormatCreateResults(t *testing.T) {
	out := formatCreateResults([]*tables.Table{
		{Name: "users"},
		{Name: "posts", Existed: true, Drifts: []tables.Drift{
			{Kind: tables.DriftMissing, Column: "title", Declared: "text"},
		}},
	})

	assert.Contains(t, out, "users")
	assert.Contains(t, out, "created")
	assert.Contains(t, out, "exists")
	assert.Contains(t, out, "column title (text) is declared but missing")
}

func isDockerAvailable() bool {
	if os.Getenv("DOCKER_HOST") != "" {
		return true
	}
	_, err := os.Stat("/var/run/docker.sock")
	return err == nil
}

func TestExitMessage(t *testing.T) {
	connErr := &postgres.ConnectError{Handle: `database "app"`, Err: errors.New("connection refused")}

	wrapped := fmt.Errorf("failed to setup database: %w", connErr)
	assert.Equal(t, connErr.Error(), exitMessage(wrapped))
	assert.NotEqual(t, wrapped.Error(), exitMessage(wrapped))

	plain := errors.New("spec path does not exist: specs")
	assert.Equal(t, plain.Error(), exitMessage(plain))
}
