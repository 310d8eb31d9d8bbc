package tables

import "strings"

// BuildCreateQuery renders the CREATE TABLE IF NOT EXISTS statement for spec.
//
// Each column takes one line as "<name> <type> <modifiers>", followed by one line per key
// clause. Every non-blank line but the last one ends with a comma, so the statement stays
// well formed for any number of key clauses. Blank key clauses become blank lines.
func BuildCreateQuery(name string, spec Spec) string {
	lines := make([]string, 0, len(spec.Columns)+len(spec.KeyClauses))
	for _, c := range spec.Columns {
		line := c.Name + " " + c.DataType + " "
		if c.Modifiers != "" {
			line += c.Modifiers
		}
		lines = append(lines, line)
	}
	lines = append(lines, spec.KeyClauses...)

	last := -1
	for i, line := range lines {
		if !isBlank(line) {
			last = i
		}
	}

	var sb strings.Builder
	sb.WriteString("CREATE TABLE IF NOT EXISTS ")
	sb.WriteString(name)
	sb.WriteString(" ( ")
	for i, line := range lines {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(line)
		if !isBlank(line) && i < last {
			sb.WriteString(",")
		}
	}
	sb.WriteString("\n)")
	return sb.String()
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
