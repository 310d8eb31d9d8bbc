package catalog

import (
	"regexp"
	"strings"
)

// information_schema reports serial types as their storage type and spells out the
// time zone for time and timestamp.
var catalogSpelling = map[string]string{
	"serial":      "integer",
	"bigserial":   "bigint",
	"smallserial": "smallint",
	"timestamp":   "timestamp without time zone",
	"time":        "time without time zone",
}

var (
	arrayModifier    = regexp.MustCompile(`(?i)^\s*(\([^)]*\))?\s*(with(out)?\s+time\s+zone\s*)?(\[|array\b)`)
	timeZoneModifier = regexp.MustCompile(`(?i)^\s*(\([^)]*\))?\s*with\s+time\s+zone\b`)
)

// NormalizeType maps a declared column type to the spelling information_schema uses.
func NormalizeType(dataType string) string {
	t := strings.ToLower(strings.TrimSpace(dataType))
	if spelled, ok := catalogSpelling[t]; ok {
		return spelled
	}
	return t
}

// NormalizeColumnType is NormalizeType for a full column declaration. Modifiers that change
// the stored type are taken into account: arrays are reported as ARRAY, and time or timestamp
// followed by WITH TIME ZONE keep the zone.
func NormalizeColumnType(dataType, modifiers string) string {
	if arrayModifier.MatchString(modifiers) {
		return "ARRAY"
	}
	t := NormalizeType(dataType)
	if (t == "timestamp without time zone" || t == "time without time zone") &&
		timeZoneModifier.MatchString(modifiers) {
		return strings.TrimSuffix(t, "without time zone") + "with time zone"
	}
	return t
}
