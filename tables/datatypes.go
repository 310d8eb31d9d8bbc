package tables

import "strings"

// SupportedTypes lists the column types a Spec may use, compared case-insensitively.
var SupportedTypes = []string{
	"bigint", "bigserial", "bit", "bit varying", "boolean", "box",
	"bytea", "character", "character varying", "cidr", "circle",
	"date", "double precision", "inet", "integer", "interval",
	"json", "jsonb", "line", "lseg", "macaddr", "macaddr8", "money",
	"numeric", "path", "pg_lsn", "pg_snapshot", "point", "polygon",
	"real", "smallint", "smallserial", "serial", "text", "time", "timestamp",
	"tsquery", "tsvector", "txid_snapshot", "uuid", "xml",
}

var supportedTypeSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(SupportedTypes))
	for _, t := range SupportedTypes {
		set[t] = struct{}{}
	}
	return set
}()

// IsSupportedType reports whether dataType belongs to SupportedTypes, ignoring case.
func IsSupportedType(dataType string) bool {
	_, ok := supportedTypeSet[strings.ToLower(dataType)]
	return ok
}

// ReservedColumnNames are system columns present on every table.
var ReservedColumnNames = []string{"tableoid", "xmin", "cmin", "xmax", "cmax", "ctid"}
