package compiler

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"tablesmith/internal/dberr"
)

// ColumnSpec is the structured form of a column definition. Default keeps
// the raw JSON so an explicit null ("default": null) stays distinguishable
// from an absent key; nil means the key was never supplied.
type ColumnSpec struct {
	Type          string
	Nullable      *bool
	Default       json.RawMessage
	AutoIncrement bool
	Comment       string
}

func (s *ColumnSpec) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type               string          `json:"type"`
		Nullable           *bool           `json:"nullable"`
		Default            json.RawMessage `json:"default"`
		AutoIncrement      *bool           `json:"autoIncrement"`
		AutoIncrementSnake *bool           `json:"auto_increment"`
		Comment            string          `json:"comment"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	s.Type = raw.Type
	s.Nullable = raw.Nullable
	s.Default = raw.Default
	s.Comment = raw.Comment
	switch {
	case raw.AutoIncrement != nil:
		s.AutoIncrement = *raw.AutoIncrement
	case raw.AutoIncrementSnake != nil:
		s.AutoIncrement = *raw.AutoIncrementSnake
	default:
		s.AutoIncrement = false
	}
	return nil
}

// Definition is the tagged union behind the "definition" request field: a
// structured ColumnSpec, or a legacy raw fragment that is passed through
// without validation. IsRaw marks the unvalidated variant so callers can see
// the trust boundary.
type Definition struct {
	raw  string
	spec *ColumnSpec
}

// RawDefinition wraps an already-formed fragment. The fragment is emitted
// verbatim; nothing about it is checked.
func RawDefinition(fragment string) Definition {
	return Definition{raw: fragment}
}

// SpecDefinition wraps a structured column spec.
func SpecDefinition(spec *ColumnSpec) Definition {
	return Definition{spec: spec}
}

func (d Definition) IsRaw() bool  { return d.spec == nil && d.raw != "" }
func (d Definition) IsZero() bool { return d.spec == nil && d.raw == "" }

func (d *Definition) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Definition{}
		return nil
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return err
		}
		*d = Definition{raw: s}
		return nil
	}
	spec := new(ColumnSpec)
	if err := json.Unmarshal(trimmed, spec); err != nil {
		return err
	}
	*d = Definition{spec: spec}
	return nil
}

// Build renders the definition as a type clause fragment. The raw variant
// is returned unmodified; the structured variant is assembled in fixed
// order: type, nullability, default, AUTO_INCREMENT, comment.
func (d Definition) Build() (string, error) {
	if d.IsRaw() {
		return d.raw, nil
	}
	if d.spec == nil {
		return "", dberr.New(dberr.KindMissingField, "column definition is required")
	}
	return buildColumnDefinition(d.spec)
}

func buildColumnDefinition(spec *ColumnSpec) (string, error) {
	colType := strings.TrimSpace(spec.Type)
	if colType == "" {
		return "", dberr.New(dberr.KindMissingField, "column definition requires a type")
	}

	parts := []string{colType}

	if spec.Nullable != nil {
		if *spec.Nullable {
			parts = append(parts, "NULL")
		} else {
			parts = append(parts, "NOT NULL")
		}
	}

	if spec.Default != nil {
		parts = append(parts, "DEFAULT", formatDefault(spec.Default))
	}

	if spec.AutoIncrement {
		parts = append(parts, "AUTO_INCREMENT")
	}

	if comment := strings.TrimSpace(spec.Comment); comment != "" {
		parts = append(parts, "COMMENT", QuoteString(comment))
	}

	return strings.Join(parts, " "), nil
}

// formatDefault renders the reserved default sentinels: explicit null, the
// CURRENT_TIMESTAMP keyword, and numeric literals. Everything else becomes
// an escaped string literal.
func formatDefault(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "NULL"
	}

	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err == nil {
			if strings.EqualFold(strings.TrimSpace(s), "CURRENT_TIMESTAMP") {
				return "CURRENT_TIMESTAMP"
			}
			return QuoteString(s)
		}
	}

	if _, err := strconv.ParseFloat(string(trimmed), 64); err == nil {
		return string(trimmed)
	}

	// Remaining JSON shapes (booleans, arrays) have no DDL meaning; quote
	// their text form.
	return QuoteString(string(trimmed))
}
