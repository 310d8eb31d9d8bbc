package postgres

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// ErrNotConnected is returned by operations that need a live connection.
var ErrNotConnected = errors.New("database connection not established")

// ConnectError reports a failed Connect together with the handle it was attempted on.
type ConnectError struct {
	Handle string
	Err    error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("failed to connect to database: %s with error: %v", e.Handle, e.Err)
}

func (e *ConnectError) Unwrap() error {
	return e.Err
}

// SQLState extracts the SQLSTATE code from a lib/pq or pgx error.
func SQLState(err error) (string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code), true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code, true
	}
	return "", false
}

// DescribeError appends the SQLSTATE and condition name to lib/pq errors.
// pgx already carries the SQLSTATE in its message.
func DescribeError(err error) string {
	if err == nil {
		return ""
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return fmt.Sprintf("%v (SQLSTATE %s %s)", err, pqErr.Code, pqErr.Code.Name())
	}
	return err.Error()
}
