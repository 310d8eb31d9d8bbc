package tables

import (
	"strings"

	"github.com/alc6/pgtables/catalog"
)

// CompareColumns lists the differences between declared columns and the catalog's view of
// the same table. Unquoted identifiers fold to lower case, so names compare case-insensitively.
func CompareColumns(declared []Column, actual []catalog.Column) []Drift {
	existing := make(map[string]catalog.Column, len(actual))
	for _, col := range actual {
		existing[strings.ToLower(col.Name)] = col
	}

	var drifts []Drift
	seen := make(map[string]struct{}, len(declared))
	for _, col := range declared {
		key := strings.ToLower(col.Name)
		seen[key] = struct{}{}

		got, ok := existing[key]
		if !ok {
			drifts = append(drifts, Drift{Kind: DriftMissing, Column: key, Declared: col.DataType})
			continue
		}
		if want := catalog.NormalizeColumnType(col.DataType, col.Modifiers); !strings.EqualFold(want, got.DataType) {
			drifts = append(drifts, Drift{Kind: DriftType, Column: key, Declared: want, Actual: got.DataType})
		}
	}
	for _, col := range actual {
		if _, ok := seen[strings.ToLower(col.Name)]; !ok {
			drifts = append(drifts, Drift{Kind: DriftUnexpected, Column: col.Name, Actual: col.DataType})
		}
	}
	return drifts
}
