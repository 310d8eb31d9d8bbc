// Package postgres owns the connection to a single PostgreSQL database: its parameters,
// its lifecycle state and the scoped cursors statements are executed through.
//
// A Handle pins exactly one connection. Cursors are serialized per handle and are not
// reentrant: calling a Handle method from inside a WithCursor callback deadlocks.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	// Registers the "pgx" driver.
	_ "github.com/jackc/pgx/v5/stdlib"
	// Registers the "postgres" driver.
	_ "github.com/lib/pq"
)

// State is the lifecycle state of a Handle.
type State int

const (
	StateDisconnected State = iota
	StateConnected
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "disconnected"
	}
}

// Opener opens a *sql.DB for a driver name and DSN. sql.Open by default.
type Opener func(driverName, dsn string) (*sql.DB, error)

// Option configures a Handle.
type Option func(*Handle)

// WithLogger sets the handle's logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handle) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithOpener replaces sql.Open, mainly for tests.
func WithOpener(open Opener) Option {
	return func(h *Handle) {
		if open != nil {
			h.open = open
		}
	}
}

// Handle is a stateful wrapper around one database connection.
type Handle struct {
	params Params
	open   Opener
	logger *slog.Logger

	mu    sync.Mutex
	db    *sql.DB
	conn  *sql.Conn
	state State
}

// New stores params without doing any I/O. The handle starts disconnected.
func New(params Params, opts ...Option) *Handle {
	h := &Handle{
		params: params,
		open:   sql.Open,
		logger: slog.New(slog.DiscardHandler),
		state:  StateDisconnected,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Params returns a copy of the connection parameters.
func (h *Handle) Params() Params {
	return h.params
}

// State returns the state observed by the last Connect, Close or CheckIsConnected.
func (h *Handle) State() State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// String describes the target and state. The password is never included.
func (h *Handle) String() string {
	return fmt.Sprintf("database %q at %s:%s (status: %s)",
		h.params.Database, h.params.Host, h.params.Port, h.State())
}

func (h *Handle) describe() string {
	return fmt.Sprintf("database %q at %s:%s (status: %s)",
		h.params.Database, h.params.Host, h.params.Port, h.state)
}

// Connect opens the configured target, replacing any previous connection.
func (h *Handle) Connect(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.logger.Info("connecting to database",
		slog.String("database", h.params.Database),
		slog.String("host", h.params.Host),
		slog.String("port", h.params.Port),
		slog.String("driver", h.params.driver()))

	if err := h.closeLocked(); err != nil {
		h.logger.Warn("failed to close previous connection", slog.String("error", err.Error()))
	}

	if err := h.connectLocked(ctx); err != nil {
		h.state = StateFailed
		cerr := &ConnectError{Handle: h.describe(), Err: err}
		h.logger.Error("failed to connect to database", slog.String("error", cerr.Error()))
		return cerr
	}

	if !h.checkLocked(ctx) {
		if err := h.closeLocked(); err != nil {
			h.logger.Warn("failed to close unready connection", slog.String("error", err.Error()))
		}
		cerr := &ConnectError{Handle: h.describe(), Err: errors.New("connection is not ready")}
		h.logger.Error("failed to connect to database", slog.String("error", cerr.Error()))
		return cerr
	}
	return nil
}

func (h *Handle) connectLocked(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.params.connectTimeout())
	defer cancel()

	db, err := h.open(h.params.driver(), h.params.DSN())
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", h.params.driver(), err)
	}

	conn, err := db.Conn(ctx)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to acquire connection: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		_ = db.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	h.db = db
	h.conn = conn
	return nil
}

// CheckIsConnected pings the pinned connection and records the result.
// It reports true only when the connection answers.
func (h *Handle) CheckIsConnected(ctx context.Context) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.checkLocked(ctx)
}

func (h *Handle) checkLocked(ctx context.Context) bool {
	h.logger.Debug("checking connection status")
	if h.conn == nil {
		if h.state != StateFailed {
			h.state = StateDisconnected
		}
		h.logger.Debug("not connected", slog.String("state", h.state.String()))
		return false
	}
	if err := h.conn.PingContext(ctx); err != nil {
		h.state = StateFailed
		h.logger.Warn("connection is not ready", slog.String("error", err.Error()))
		return false
	}
	h.state = StateConnected
	h.logger.Debug("connected")
	return true
}

// WithCursor runs fn with a cursor on the pinned connection. The cursor is released on
// every exit path; work fn did not commit is rolled back.
func (h *Handle) WithCursor(ctx context.Context, fn func(Cursor) error) (err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.conn == nil {
		return ErrNotConnected
	}

	tx, err := h.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to open cursor: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			h.logger.Warn("failed to release cursor", slog.String("error", rbErr.Error()))
			if err == nil {
				err = fmt.Errorf("failed to release cursor: %w", rbErr)
			}
		}
	}()

	return fn(&txCursor{Tx: tx})
}

const tableExistsQuery = `
	SELECT EXISTS (
		SELECT 1
		FROM information_schema.tables
		WHERE table_schema = COALESCE(NULLIF($1::text, ''), current_schema()::text)
		AND table_name = $2
	)`

// TableExists reports whether a table named name is visible in the catalog. name may carry
// a schema qualifier; otherwise the current schema is searched.
func (h *Handle) TableExists(ctx context.Context, name string) (bool, error) {
	schema, table := SplitQualifiedName(name)
	h.logger.Debug("checking table existence", slog.String("table", name))

	var exists bool
	err := h.WithCursor(ctx, func(c Cursor) error {
		return c.QueryRowContext(ctx, tableExistsQuery, schema, table).Scan(&exists)
	})
	if err != nil {
		return false, fmt.Errorf("failed to check whether table %s exists: %w", name, err)
	}
	return exists, nil
}

// Close releases the pinned connection and the pool behind it.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	err := h.closeLocked()
	h.state = StateDisconnected
	return err
}

func (h *Handle) closeLocked() error {
	var errs []error
	if h.conn != nil {
		h.logger.Debug("closing database connection")
		errs = append(errs, h.conn.Close())
		h.conn = nil
	}
	if h.db != nil {
		errs = append(errs, h.db.Close())
		h.db = nil
	}
	return errors.Join(errs...)
}

// SplitQualifiedName splits "schema.table" into its parts. The schema is empty when absent.
// Both parts are folded to lower case, the way PostgreSQL stores unquoted identifiers.
func SplitQualifiedName(name string) (schema, table string) {
	name = strings.ToLower(name)
	if i := strings.IndexByte(name, '.'); i >= 0 {
		return name[:i], name[i+1:]
	}
	return "", name
}
