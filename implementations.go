package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alc6/pgtables/catalog"
	"github.com/alc6/pgtables/postgres"
	"github.com/alc6/pgtables/secrets"
	"github.com/alc6/pgtables/tables"
)

// TargetManager connects to the configured database.
type TargetManager struct {
	params   postgres.Params
	password secrets.Source
	opts     []postgres.Option
	handle   *postgres.Handle
}

func NewTargetManager(cfg DatabaseConfig, opts ...postgres.Option) DatabaseManager {
	return &TargetManager{
		params:   cfg.Params(),
		password: secrets.Resolve(cfg.Password, cfg.PasswordEnv, cfg.PasswordService, cfg.User),
		opts:     append([]postgres.Option{postgres.WithLogger(slog.Default())}, opts...),
	}
}

func (m *TargetManager) Setup(ctx context.Context) error {
	password, err := m.password.Password(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve database password: %w", err)
	}
	params := m.params
	params.Password = password

	m.handle = postgres.New(params, m.opts...)
	slog.Info("connecting to database", "database", params.Database, "host", params.Host, "driver", params.Driver)
	return m.handle.Connect(ctx)
}

func (m *TargetManager) Close(_ context.Context) error {
	if m.handle == nil {
		return nil
	}
	return m.handle.Close()
}

func (m *TargetManager) Executor() tables.Executor {
	return m.handle
}

type FileSpecReader struct{}

func NewFileSpecReader() SpecReader {
	return &FileSpecReader{}
}

func (r *FileSpecReader) DiscoverDefinitions(path string) ([]tables.Definition, error) {
	return ParseSpecFiles(path)
}

type CatalogInspector struct{}

func NewCatalogInspector() SchemaInspector {
	return &CatalogInspector{}
}

func (i *CatalogInspector) InspectTables(ctx context.Context, exec tables.Executor, names []string) ([]catalog.Table, error) {
	var result []catalog.Table
	err := exec.WithCursor(ctx, func(c postgres.Cursor) error {
		var err error
		result, err = catalog.Inspect(ctx, c, names)
		return err
	})
	return result, err
}

func (i *CatalogInspector) FormatTables(tables []catalog.Table) string {
	return catalog.FormatInfo(tables)
}
