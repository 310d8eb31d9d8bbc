package main

import (
	"context"

	"github.com/alc6/pgtables/catalog"
	"github.com/alc6/pgtables/tables"
)

// DatabaseManager handles the lifecycle of the database tables are created in
type DatabaseManager interface {
	// Setup connects to the database, starting it first when it is ephemeral
	Setup(ctx context.Context) error
	// Close releases the connection and any database started by Setup
	Close(ctx context.Context) error
	// Executor returns the connection statements run through; valid after Setup
	Executor() tables.Executor
}

// SpecReader handles reading table definition documents
type SpecReader interface {
	// DiscoverDefinitions reads the definitions in a file, or in every document of a directory
	DiscoverDefinitions(path string) ([]tables.Definition, error)
}

// SchemaInspector reads back what the catalog holds for a set of tables
type SchemaInspector interface {
	// InspectTables returns catalog information for each named table
	InspectTables(ctx context.Context, exec tables.Executor, names []string) ([]catalog.Table, error)
	// FormatTables renders tables as human-readable text
	FormatTables(tables []catalog.Table) string
}
