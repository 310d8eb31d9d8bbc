package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/alc6/pgtables/postgres"
	"github.com/alc6/pgtables/tables"
)

// createTablesCore creates every table defined under specPath, in order, and stops at the
// first failure.
func createTablesCore(ctx context.Context, specPath string, strict bool,
	reader SpecReader, dbManager DatabaseManager) ([]*tables.Table, error) {
	defs, err := reader.DiscoverDefinitions(specPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read table definitions: %w", err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("no table definitions found in %s", specPath)
	}

	// Validate everything before touching the database.
	for _, def := range defs {
		if err := tables.ValidateTable(def.Name, def.Spec); err != nil {
			return nil, err
		}
	}

	if err := dbManager.Setup(ctx); err != nil {
		return nil, fmt.Errorf("failed to setup database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(ctx); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	return createAll(ctx, dbManager.Executor(), defs, strict)
}

func createAll(ctx context.Context, exec tables.Executor, defs []tables.Definition, strict bool) ([]*tables.Table, error) {
	created := make([]*tables.Table, 0, len(defs))
	for _, def := range defs {
		t, err := tables.Create(ctx, exec, def.Name, def.Spec,
			tables.WithLogger(slog.Default()),
			tables.WithStrictDrift(strict))
		if err != nil {
			return created, err
		}
		created = append(created, t)
	}
	return created, nil
}

// formatCreateResults renders one row per table with its outcome and any drift.
func formatCreateResults(created []*tables.Table) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Table", "Status", "Drift"})
	for _, t := range created {
		status := "created"
		if t.Existed {
			status = "exists"
		}
		drift := make([]string, len(t.Drifts))
		for i, d := range t.Drifts {
			drift[i] = d.String()
		}
		tw.AppendRow(table.Row{t.Name, status, strings.Join(drift, "\n")})
	}
	return tw.Render() + "\n"
}

// renderCore validates every definition under specPath and returns their statements.
func renderCore(specPath string, reader SpecReader) (string, error) {
	defs, err := reader.DiscoverDefinitions(specPath)
	if err != nil {
		return "", fmt.Errorf("failed to read table definitions: %w", err)
	}
	if len(defs) == 0 {
		return "", fmt.Errorf("no table definitions found in %s", specPath)
	}

	var sb strings.Builder
	for _, def := range defs {
		if err := tables.ValidateTable(def.Name, def.Spec); err != nil {
			return "", err
		}
		sb.WriteString(tables.BuildCreateQuery(def.Name, def.Spec))
		sb.WriteString(";\n\n")
	}
	return sb.String(), nil
}

// existsCore reports whether each named table exists, one "name: true|false" line each.
func existsCore(ctx context.Context, names []string, dbManager DatabaseManager) (string, error) {
	for _, name := range names {
		if err := tables.ValidateTableName(name); err != nil {
			return "", err
		}
	}

	if err := dbManager.Setup(ctx); err != nil {
		return "", fmt.Errorf("failed to setup database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(ctx); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	var sb strings.Builder
	exec := dbManager.Executor()
	for _, name := range names {
		exists, err := exec.TableExists(ctx, name)
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "%s: %t\n", name, exists)
	}
	return sb.String(), nil
}

// describeCore prints the catalog view of each named table.
func describeCore(ctx context.Context, names []string, dbManager DatabaseManager, inspector SchemaInspector) (string, error) {
	if err := dbManager.Setup(ctx); err != nil {
		return "", fmt.Errorf("failed to setup database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(ctx); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	inspected, err := inspector.InspectTables(ctx, dbManager.Executor(), names)
	if err != nil {
		return "", fmt.Errorf("failed to inspect tables: %w", err)
	}
	return inspector.FormatTables(inspected), nil
}

// checkCore creates the definitions under specPath in a database owned by dbManager,
// normally an ephemeral one, and returns the resulting catalog view.
func checkCore(ctx context.Context, specPath string, reader SpecReader,
	dbManager DatabaseManager, inspector SchemaInspector) (string, error) {
	defs, err := reader.DiscoverDefinitions(specPath)
	if err != nil {
		return "", fmt.Errorf("failed to read table definitions: %w", err)
	}
	if len(defs) == 0 {
		return "", fmt.Errorf("no table definitions found in %s", specPath)
	}
	for _, def := range defs {
		if err := tables.ValidateTable(def.Name, def.Spec); err != nil {
			return "", err
		}
	}

	if err := dbManager.Setup(ctx); err != nil {
		return "", fmt.Errorf("failed to setup database: %w", err)
	}
	defer func() {
		if err := dbManager.Close(ctx); err != nil {
			slog.Error("failed to cleanup", "error", err)
		}
	}()

	exec := dbManager.Executor()
	if _, err := createAll(ctx, exec, defs, true); err != nil {
		return "", err
	}

	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	inspected, err := inspector.InspectTables(ctx, exec, names)
	if err != nil {
		return "", fmt.Errorf("failed to inspect tables: %w", err)
	}
	return inspector.FormatTables(inspected), nil
}

// exitMessage is what a failed run prints before exiting. A connection failure is printed
// as the handle reported it, without the wrapping added on the way up.
func exitMessage(err error) string {
	var connErr *postgres.ConnectError
	if errors.As(err, &connErr) {
		return connErr.Error()
	}
	return err.Error()
}
