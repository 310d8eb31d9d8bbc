package catalog

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// FormatInfo renders tables as human-readable text, one box per table.
func FormatInfo(tables []Table) string {
	var sb strings.Builder

	for _, t := range tables {
		tw := table.NewWriter()
		tw.SetStyle(table.StyleLight)
		tw.SetTitle("Table: " + qualifiedName(t))
		tw.AppendHeader(table.Row{"Column", "Type", "Nullable", "Default", "Key"})

		for _, col := range t.Columns {
			nullable := "NOT NULL"
			if col.IsNullable {
				nullable = "NULL"
			}
			key := ""
			if col.IsPrimaryKey {
				key = "PRIMARY KEY"
			}
			defaultVal := ""
			if col.DefaultValue.Valid {
				defaultVal = col.DefaultValue.String
			}
			tw.AppendRow(table.Row{col.Name, DisplayType(col), nullable, defaultVal, key})
		}

		sb.WriteString(tw.Render())
		sb.WriteString("\n\n")
	}

	return sb.String()
}

func qualifiedName(t Table) string {
	if t.Schema == "" {
		return t.Name
	}
	return t.Schema + "." + t.Name
}

// DisplayType renders a column type with its length, precision and scale.
func DisplayType(col Column) string {
	switch col.DataType {
	case "character varying", "character", "bit", "bit varying":
		if col.CharacterLength.Valid {
			return fmt.Sprintf("%s(%d)", col.DataType, col.CharacterLength.Int64)
		}
	case "numeric":
		if col.NumericPrecision.Valid && col.NumericScale.Valid {
			return fmt.Sprintf("numeric(%d,%d)", col.NumericPrecision.Int64, col.NumericScale.Int64)
		}
		if col.NumericPrecision.Valid {
			return fmt.Sprintf("numeric(%d)", col.NumericPrecision.Int64)
		}
	}
	return col.DataType
}
