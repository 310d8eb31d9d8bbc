package tables

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	maxColumnNameLength = 31
	maxTableNameLength  = 63
)

// Validate checks spec in rule order and returns the first violation.
func Validate(spec Spec) error {
	names := spec.ColumnNames()
	if dup, ok := findDuplicate(names); ok {
		return &ValidationError{
			Rule:  RuleDuplicate,
			Value: dup,
			Msg:   fmt.Sprintf("duplicate column name %q, note that 'FOO' and 'foo' are duplicates", dup),
		}
	}
	for _, name := range names {
		if err := ValidateColumnName(name); err != nil {
			return err
		}
	}
	for _, c := range spec.Columns {
		if err := ValidateDataType(c.DataType); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTable checks the table name, then spec. A spec violation carries the table name.
func ValidateTable(name string, spec Spec) error {
	if err := ValidateTableName(name); err != nil {
		return err
	}
	if err := Validate(spec); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			verr.Table = name
		}
		return err
	}
	return nil
}

// findDuplicate returns the first name that repeats an earlier one, ignoring case.
func findDuplicate(names []string) (string, bool) {
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return name, true
		}
		seen[key] = struct{}{}
	}
	return "", false
}

// ValidateColumnName applies the column identifier rules.
func ValidateColumnName(name string) error {
	if err := validateIdentifier(name, "column name", maxColumnNameLength, ReservedColumnNames); err != nil {
		return err
	}
	return nil
}

func validateIdentifier(name, what string, maxLength int, reserved []string) *ValidationError {
	if strings.Contains(name, `"`) {
		return &ValidationError{Rule: RuleQuote, Value: name,
			Msg: fmt.Sprintf("%s %q must not contain quotes", what, name)}
	}
	if utf8.RuneCountInString(name) > maxLength {
		return &ValidationError{Rule: RuleLength, Value: name,
			Msg: fmt.Sprintf("%s %q must be at most %d characters", what, name, maxLength)}
	}
	if contains(reserved, name) {
		return &ValidationError{Rule: RuleReserved, Value: name,
			Msg: fmt.Sprintf("invalid %s, '%s' is a reserved word", what, name)}
	}
	if name == "" || !isIdentStart(name[0]) {
		first := ""
		if name != "" {
			r, _ := utf8.DecodeRuneInString(name)
			first = string(r)
		}
		return &ValidationError{Rule: RuleFirstChar, Value: name,
			Msg: fmt.Sprintf("%s first character '%s' is not allowed, must be a letter (a-z) or '_'", what, first)}
	}
	for i := 1; i < len(name); i++ {
		if !isIdentPart(name[i]) {
			return &ValidationError{Rule: RuleChars, Value: name,
				Msg: fmt.Sprintf("%s %q must only contain letters (a-z), digits (0-9), or underscores", what, name)}
		}
	}
	return nil
}

// ValidateTableName applies the identifier rules to a table name with an optional
// "schema." qualifier.
func ValidateTableName(name string) error {
	parts := strings.Split(name, ".")
	if len(parts) > 2 {
		return &ValidationError{Table: name, Rule: RuleChars, Value: name,
			Msg: fmt.Sprintf("table name %q may have at most one schema qualifier", name)}
	}
	for _, part := range parts {
		if err := validateIdentifier(part, "table name", maxTableNameLength, nil); err != nil {
			err.Table = name
			return err
		}
	}
	return nil
}

// ValidateDataType checks dataType against SupportedTypes.
func ValidateDataType(dataType string) error {
	if IsSupportedType(dataType) {
		return nil
	}
	return &ValidationError{Rule: RuleDataType, Value: dataType,
		Msg: fmt.Sprintf("requested data type '%s' is not supported, valid types are: %s",
			dataType, strings.Join(SupportedTypes, ", "))}
}

func isIdentStart(b byte) bool {
	return b == '_' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

func isIdentPart(b byte) bool {
	return isIdentStart(b) || ('0' <= b && b <= '9')
}
