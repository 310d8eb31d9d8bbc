// Package catalog reads table structure back from information_schema.
package catalog

import "database/sql"

// Table is a table as the catalog reports it.
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Column is a catalog column. DataType uses information_schema spelling,
// e.g. "timestamp without time zone".
type Column struct {
	Name             string
	DataType         string
	IsNullable       bool
	DefaultValue     sql.NullString
	IsPrimaryKey     bool
	CharacterLength  sql.NullInt64
	NumericPrecision sql.NullInt64
	NumericScale     sql.NullInt64
}
