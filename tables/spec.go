// Package tables validates declarative table specifications and creates the tables they
// describe with CREATE TABLE IF NOT EXISTS.
package tables

import "fmt"

// Keys of the legacy column map.
const (
	KeyColumnNames = "column_names"
	KeyDataTypes   = "data_types"
	KeyOtherArgs   = "other_args"
	KeyKeyColumns  = "key_columns"
)

var columnMapKeys = []string{KeyColumnNames, KeyDataTypes, KeyOtherArgs, KeyKeyColumns}

// Column is one column entry of a Spec.
type Column struct {
	Name      string `yaml:"name"`
	DataType  string `yaml:"type"`
	Modifiers string `yaml:"modifiers,omitempty"`
}

// Spec describes the structure of one table. Columns and KeyClauses keep input order.
// Empty key clauses are rendered as blank lines and add no clause.
type Spec struct {
	Columns    []Column
	KeyClauses []string
}

// ColumnNames returns the column names in order.
func (s Spec) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// FromColumnMap converts the legacy parallel-list shape into a Spec. The map must hold
// exactly the keys column_names, data_types, other_args and key_columns, and the three
// per-column lists must have equal lengths.
func FromColumnMap(m map[string][]string) (Spec, error) {
	for key := range m {
		if !contains(columnMapKeys, key) {
			return Spec{}, &ValidationError{
				Rule:  RuleKeys,
				Value: key,
				Msg:   fmt.Sprintf("unrecognized key %q, expected exactly %v", key, columnMapKeys),
			}
		}
	}
	for _, key := range columnMapKeys {
		if _, ok := m[key]; !ok {
			return Spec{}, &ValidationError{
				Rule:  RuleKeys,
				Value: key,
				Msg:   fmt.Sprintf("missing key %q, expected exactly %v", key, columnMapKeys),
			}
		}
	}

	names, types, args := m[KeyColumnNames], m[KeyDataTypes], m[KeyOtherArgs]
	if len(types) != len(names) || len(args) != len(names) {
		return Spec{}, &ValidationError{
			Rule:  RuleShape,
			Value: fmt.Sprintf("%d/%d/%d", len(names), len(types), len(args)),
			Msg: fmt.Sprintf("%s, %s and %s must have the same length, got %d, %d and %d",
				KeyColumnNames, KeyDataTypes, KeyOtherArgs, len(names), len(types), len(args)),
		}
	}

	spec := Spec{
		Columns:    make([]Column, len(names)),
		KeyClauses: append([]string(nil), m[KeyKeyColumns]...),
	}
	for i := range names {
		spec.Columns[i] = Column{Name: names[i], DataType: types[i], Modifiers: args[i]}
	}
	return spec, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
