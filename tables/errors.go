package tables

import (
	"fmt"
	"strings"

	"github.com/alc6/pgtables/postgres"
)

// Rule names the validation rule a ValidationError broke.
type Rule string

const (
	RuleKeys      Rule = "keys"
	RuleShape     Rule = "shape"
	RuleDuplicate Rule = "duplicate"
	RuleQuote     Rule = "quote"
	RuleLength    Rule = "length"
	RuleReserved  Rule = "reserved"
	RuleFirstChar Rule = "first_char"
	RuleChars     Rule = "chars"
	RuleDataType  Rule = "data_type"
)

// ValidationError reports the first rule a table specification violates.
type ValidationError struct {
	Table string
	Rule  Rule
	Value string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Table == "" {
		return fmt.Sprintf("invalid table specification: %s", e.Msg)
	}
	return fmt.Sprintf("invalid table specification for %s: %s", e.Table, e.Msg)
}

// CreateError reports a CREATE TABLE statement that failed to execute or commit.
type CreateError struct {
	Table string
	Conn  string
	// SQLState is set when the driver reported one.
	SQLState string
	Err      error
}

func (e *CreateError) Error() string {
	return fmt.Sprintf("failed to create table %s in %s. Error: %s", e.Table, e.Conn, postgres.DescribeError(e.Err))
}

func (e *CreateError) Unwrap() error {
	return e.Err
}

// DriftKind classifies a difference between a declared and an existing table.
type DriftKind string

const (
	DriftMissing    DriftKind = "missing"
	DriftUnexpected DriftKind = "unexpected"
	DriftType       DriftKind = "type"
)

// Drift is one difference between a Spec and the table found in the catalog.
type Drift struct {
	Kind     DriftKind
	Column   string
	Declared string
	Actual   string
}

func (d Drift) String() string {
	switch d.Kind {
	case DriftMissing:
		return fmt.Sprintf("column %s (%s) is declared but missing", d.Column, d.Declared)
	case DriftUnexpected:
		return fmt.Sprintf("column %s (%s) exists but is not declared", d.Column, d.Actual)
	default:
		return fmt.Sprintf("column %s is declared as %s but is %s", d.Column, d.Declared, d.Actual)
	}
}

// DriftError is returned in strict mode when an existing table does not match its Spec.
type DriftError struct {
	Table  string
	Drifts []Drift
}

func (e *DriftError) Error() string {
	parts := make([]string, len(e.Drifts))
	for i, d := range e.Drifts {
		parts[i] = d.String()
	}
	return fmt.Sprintf("table %s already exists with a different structure: %s", e.Table, strings.Join(parts, "; "))
}
