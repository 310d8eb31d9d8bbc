package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestSQLState(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		wantOK bool
	}{
		{name: "lib_pq_error", err: &pq.Error{Code: "42P07", Message: `relation "users" already exists`}, code: "42P07", wantOK: true},
		{name: "pgx_error", err: &pgconn.PgError{Code: "42601", Message: "syntax error"}, code: "42601", wantOK: true},
		{name: "wrapped_pq_error", err: fmt.Errorf("exec: %w", &pq.Error{Code: "42501"}), code: "42501", wantOK: true},
		{name: "plain_error", err: errors.New("boom"), wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := SQLState(tt.err)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestDescribeError(t *testing.T) {
	assert.Empty(t, DescribeError(nil))
	assert.Equal(t, "boom", DescribeError(errors.New("boom")))

	described := DescribeError(&pq.Error{Code: "42P07", Message: `relation "users" already exists`})
	assert.Contains(t, described, "42P07")
	assert.Contains(t, described, "duplicate_table")
}

func TestConnectError(t *testing.T) {
	inner := errors.New("password authentication failed")
	err := &ConnectError{Handle: `database "db" at localhost:5432 (status: failed)`, Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Equal(t, `failed to connect to database: database "db" at localhost:5432 (status: failed) with error: password authentication failed`, err.Error())
}
