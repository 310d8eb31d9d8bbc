package postgres

import (
	"context"
	"database/sql"
)

//go:generate mockgen -source=cursor.go -destination=../mocks/mock_cursor.go -package=mocks

// Cursor is a statement-execution scope bound to the handle's connection.
// It is only valid inside the WithCursor callback that produced it.
type Cursor interface {
	// ExecContext runs a statement that returns no rows.
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	// QueryContext runs a statement that returns rows.
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	// QueryRowContext runs a statement expected to return at most one row.
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	// Commit makes the cursor's work durable. Uncommitted work is rolled back on release.
	Commit() error
}

type txCursor struct {
	*sql.Tx
}

var _ Cursor = (*txCursor)(nil)
