package tables

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alc6/pgtables/catalog"
	"github.com/alc6/pgtables/postgres"
)

//go:generate mockgen -source=table.go -destination=../mocks/mock_executor.go -package=mocks

// Executor is the part of a connection handle that table creation needs.
// *postgres.Handle implements it.
type Executor interface {
	// WithCursor runs fn with a scoped cursor that is released on every exit path.
	WithCursor(ctx context.Context, fn func(postgres.Cursor) error) error
	// TableExists reports whether the named table is in the catalog.
	TableExists(ctx context.Context, name string) (bool, error)
	// String describes the connection for error messages.
	String() string
}

var _ Executor = (*postgres.Handle)(nil)

// Table is a table definition that has been validated and created.
type Table struct {
	Name  string
	Spec  Spec
	Query string
	// Existed is true when the table was already present before creation.
	Existed bool
	// Drifts lists differences from an existing table; always empty when Existed is false.
	Drifts []Drift
}

type options struct {
	logger      *slog.Logger
	strictDrift bool
}

// Option configures Create.
type Option func(*options)

// WithLogger sets the logger used by Create. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStrictDrift makes Create fail with *DriftError when an existing table differs from spec.
// Otherwise drift is only logged.
func WithStrictDrift(strict bool) Option {
	return func(o *options) {
		o.strictDrift = strict
	}
}

// Create validates spec and creates the table if it does not exist yet. An existing table is
// never altered; differences from spec are reported as drift.
func Create(ctx context.Context, exec Executor, name string, spec Spec, opts ...Option) (*Table, error) {
	o := options{logger: slog.New(slog.DiscardHandler)}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger.With(slog.String("table", name))

	logger.Info("checking the table specification is valid")
	if err := ValidateTable(name, spec); err != nil {
		logger.Error("invalid table specification", slog.String("error", err.Error()))
		return nil, err
	}

	existed, err := exec.TableExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create table %s: %w", name, err)
	}

	t := &Table{
		Name:    name,
		Spec:    spec,
		Query:   BuildCreateQuery(name, spec),
		Existed: existed,
	}

	logger.Info("creating table", slog.Bool("existed", existed))
	logger.Debug("create table query", slog.String("query", t.Query))

	err = exec.WithCursor(ctx, func(c postgres.Cursor) error {
		if _, err := c.ExecContext(ctx, t.Query); err != nil {
			return err
		}
		return c.Commit()
	})
	if err != nil {
		cerr := &CreateError{Table: name, Conn: exec.String(), Err: err}
		cerr.SQLState, _ = postgres.SQLState(err)
		logger.Error("failed to create table", slog.String("error", cerr.Error()))
		return nil, cerr
	}

	if !existed {
		logger.Info("table created")
		return t, nil
	}

	if err := exec.WithCursor(ctx, func(c postgres.Cursor) error {
		actual, err := catalog.Columns(ctx, c, name)
		if err != nil {
			return err
		}
		t.Drifts = CompareColumns(spec.Columns, actual)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to compare existing table %s: %w", name, err)
	}

	if len(t.Drifts) == 0 {
		logger.Info("table already exists")
		return t, nil
	}

	derr := &DriftError{Table: name, Drifts: t.Drifts}
	if o.strictDrift {
		logger.Error("existing table differs from specification", slog.String("error", derr.Error()))
		return nil, derr
	}
	logger.Warn("existing table differs from specification, leaving it unchanged",
		slog.String("drift", derr.Error()))
	return t, nil
}
