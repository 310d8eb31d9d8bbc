package tables

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Definition pairs a table name with its Spec, as read from a document.
type Definition struct {
	Name string
	Spec Spec
}

type document struct {
	Tables []tableDocument `yaml:"tables"`
}

type tableDocument struct {
	Name       string              `yaml:"name"`
	Columns    []Column            `yaml:"columns"`
	KeyColumns []string            `yaml:"key_columns"`
	ColumnSpec map[string][]string `yaml:"column_spec"`
}

// ParseDocument reads table definitions from YAML. Each entry under "tables" names the table
// and declares its columns either as a list of {name, type, modifiers} records with optional
// key_columns, or as a column_spec map of parallel lists. Definitions keep document order.
//
//	tables:
//	  - name: users
//	    columns:
//	      - {name: id, type: integer}
//	      - {name: name, type: text, modifiers: NOT NULL}
//	    key_columns: ["PRIMARY KEY (id)"]
//	  - name: images
//	    column_spec:
//	      column_names: [id, path]
//	      data_types: [bigserial, text]
//	      other_args: ["", ""]
//	      key_columns: ["PRIMARY KEY (id)"]
func ParseDocument(data []byte) ([]Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var doc document
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse table document: %w", err)
	}

	defs := make([]Definition, 0, len(doc.Tables))
	for i, td := range doc.Tables {
		if td.Name == "" {
			return nil, fmt.Errorf("table entry %d has no name", i+1)
		}
		spec, err := td.spec()
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				verr.Table = td.Name
			}
			return nil, err
		}
		defs = append(defs, Definition{Name: td.Name, Spec: spec})
	}
	return defs, nil
}

func (td tableDocument) spec() (Spec, error) {
	switch {
	case td.ColumnSpec != nil && (td.Columns != nil || td.KeyColumns != nil):
		return Spec{}, &ValidationError{Rule: RuleShape, Value: td.Name,
			Msg: "column_spec cannot be combined with columns or key_columns"}
	case td.ColumnSpec != nil:
		return FromColumnMap(td.ColumnSpec)
	case td.Columns == nil:
		return Spec{}, &ValidationError{Rule: RuleShape, Value: td.Name,
			Msg: "either columns or column_spec is required"}
	default:
		return Spec{Columns: td.Columns, KeyClauses: td.KeyColumns}, nil
	}
}
