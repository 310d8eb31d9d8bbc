package main

import (
	"context"

	"github.com/alc6/pgtables/catalog"
	"github.com/alc6/pgtables/tables"
)

// MockDatabaseManager is a mock implementation of DatabaseManager for testing
type MockDatabaseManager struct {
	SetupFunc    func(ctx context.Context) error
	CloseFunc    func(ctx context.Context) error
	ExecutorFunc func() tables.Executor

	// Track calls for verification
	SetupCalled    bool
	CloseCalled    bool
	ExecutorCalled bool
}

func (m *MockDatabaseManager) Setup(ctx context.Context) error {
	m.SetupCalled = true
	if m.SetupFunc != nil {
		return m.SetupFunc(ctx)
	}
	return nil
}

func (m *MockDatabaseManager) Close(ctx context.Context) error {
	m.CloseCalled = true
	if m.CloseFunc != nil {
		return m.CloseFunc(ctx)
	}
	return nil
}

func (m *MockDatabaseManager) Executor() tables.Executor {
	m.ExecutorCalled = true
	if m.ExecutorFunc != nil {
		return m.ExecutorFunc()
	}
	return nil
}

// MockSpecReader is a mock implementation of SpecReader for testing
type MockSpecReader struct {
	DiscoverDefinitionsFunc func(path string) ([]tables.Definition, error)
}

func (m *MockSpecReader) DiscoverDefinitions(path string) ([]tables.Definition, error) {
	if m.DiscoverDefinitionsFunc != nil {
		return m.DiscoverDefinitionsFunc(path)
	}
	return []tables.Definition{}, nil
}

// MockSchemaInspector is a mock implementation of SchemaInspector for testing
type MockSchemaInspector struct {
	InspectTablesFunc func(ctx context.Context, exec tables.Executor, names []string) ([]catalog.Table, error)
	FormatTablesFunc  func(tables []catalog.Table) string
}

func (m *MockSchemaInspector) InspectTables(ctx context.Context, exec tables.Executor, names []string) ([]catalog.Table, error) {
	if m.InspectTablesFunc != nil {
		return m.InspectTablesFunc(ctx, exec, names)
	}
	return []catalog.Table{}, nil
}

func (m *MockSchemaInspector) FormatTables(tables []catalog.Table) string {
	if m.FormatTablesFunc != nil {
		return m.FormatTablesFunc(tables)
	}
	return ""
}
