package compiler

import (
	"encoding/json"
	"strings"

	"tablesmith/internal/dberr"
)

// OperationKind is the closed vocabulary of schema operations the compiler
// understands.
type OperationKind string

const (
	OpAddColumn      OperationKind = "ADD_COLUMN"
	OpModifyColumn   OperationKind = "MODIFY_COLUMN"
	OpRenameColumn   OperationKind = "RENAME_COLUMN"
	OpDropColumn     OperationKind = "DROP_COLUMN"
	OpAddIndex       OperationKind = "ADD_INDEX"
	OpAddUnique      OperationKind = "ADD_UNIQUE"
	OpDropIndex      OperationKind = "DROP_INDEX"
	OpAddPrimaryKey  OperationKind = "ADD_PRIMARY_KEY"
	OpDropPrimaryKey OperationKind = "DROP_PRIMARY_KEY"
	OpAddForeignKey  OperationKind = "ADD_FOREIGN_KEY"
	OpDropForeignKey OperationKind = "DROP_FOREIGN_KEY"
	OpRenameTable    OperationKind = "RENAME_TABLE"
	OpChangeEngine   OperationKind = "CHANGE_ENGINE"
	OpChangeCharset  OperationKind = "CHANGE_CHARSET"
)

var operationKinds = map[OperationKind]bool{
	OpAddColumn:      true,
	OpModifyColumn:   true,
	OpRenameColumn:   true,
	OpDropColumn:     true,
	OpAddIndex:       true,
	OpAddUnique:      true,
	OpDropIndex:      true,
	OpAddPrimaryKey:  true,
	OpDropPrimaryKey: true,
	OpAddForeignKey:  true,
	OpDropForeignKey: true,
	OpRenameTable:    true,
	OpChangeEngine:   true,
	OpChangeCharset:  true,
}

// Operation is one schema change with its kind-specific fields already
// normalized onto canonical names. Requests may spell fields in camelCase
// or snake_case (and foreign keys may nest a references object); all
// accepted aliases are resolved during unmarshaling, before any builder
// sees the value.
type Operation struct {
	Kind OperationKind

	Column     string
	NewName    string
	Definition Definition
	Position   string

	Columns   []string
	IndexName string
	IndexType string

	RefTable       string
	RefColumn      string
	OnDelete       string
	OnUpdate       string
	ConstraintName string

	Engine    string
	Charset   string
	Collation string
}

func (o *Operation) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type   string `json:"type"`
		Action string `json:"action"`

		Column      string `json:"column"`
		ColumnSnake string `json:"column_name"`
		ColumnCamel string `json:"columnName"`

		NewName      string `json:"newName"`
		NewNameSnake string `json:"new_name"`

		Definition Definition `json:"definition"`
		Position   string     `json:"position"`

		Columns []string `json:"columns"`
		Name    string   `json:"name"`

		IndexName      string `json:"indexName"`
		IndexNameSnake string `json:"index_name"`
		IndexType      string `json:"indexType"`
		IndexTypeSnake string `json:"index_type"`

		RefTable       string `json:"refTable"`
		RefTableSnake  string `json:"ref_table"`
		RefColumn      string `json:"refColumn"`
		RefColumnSnake string `json:"ref_column"`
		References     *struct {
			Table  string `json:"table"`
			Column string `json:"column"`
		} `json:"references"`
		OnDelete      string `json:"onDelete"`
		OnDeleteSnake string `json:"on_delete"`
		OnUpdate      string `json:"onUpdate"`
		OnUpdateSnake string `json:"on_update"`

		ConstraintName      string `json:"constraintName"`
		ConstraintNameSnake string `json:"constraint_name"`

		Engine         string `json:"engine"`
		Charset        string `json:"charset"`
		Collation      string `json:"collation"`
		CollationAlias string `json:"collate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	o.Kind = OperationKind(strings.ToUpper(strings.TrimSpace(firstNonEmpty(raw.Type, raw.Action))))
	o.Column = firstNonEmpty(raw.Column, raw.ColumnSnake, raw.ColumnCamel)
	o.NewName = firstNonEmpty(raw.NewName, raw.NewNameSnake)
	o.Definition = raw.Definition
	o.Position = raw.Position
	o.Columns = raw.Columns
	o.IndexName = firstNonEmpty(raw.IndexName, raw.IndexNameSnake, raw.Name)
	o.IndexType = firstNonEmpty(raw.IndexType, raw.IndexTypeSnake)
	o.RefTable = firstNonEmpty(raw.RefTable, raw.RefTableSnake)
	o.RefColumn = firstNonEmpty(raw.RefColumn, raw.RefColumnSnake)
	if raw.References != nil {
		o.RefTable = firstNonEmpty(o.RefTable, raw.References.Table)
		o.RefColumn = firstNonEmpty(o.RefColumn, raw.References.Column)
	}
	o.OnDelete = firstNonEmpty(raw.OnDelete, raw.OnDeleteSnake)
	o.OnUpdate = firstNonEmpty(raw.OnUpdate, raw.OnUpdateSnake)
	o.ConstraintName = firstNonEmpty(raw.ConstraintName, raw.ConstraintNameSnake, raw.Name)
	o.Engine = raw.Engine
	o.Charset = raw.Charset
	o.Collation = firstNonEmpty(raw.Collation, raw.CollationAlias)
	return nil
}

// Validate checks that the kind belongs to the closed vocabulary.
func (o *Operation) Validate() error {
	if o.Kind == "" {
		return dberr.New(dberr.KindMissingField, "operation requires a type")
	}
	if !operationKinds[o.Kind] {
		return dberr.New(dberr.KindMissingField, "unsupported operation type %q", string(o.Kind))
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
