// Package schema exposes live table metadata to the statement compiler.
// The compiler only ever needs two questions answered: which columns does a
// table have, and which of them form the primary key.
package schema

import (
	"context"
	"strings"

	"tablesmith/internal/dberr"
)

// Column describes one column as reported by the engine.
type Column struct {
	Name     string  `json:"name"`
	DataType string  `json:"dataType"` // full column type, e.g. "varchar(255)"
	Nullable bool    `json:"nullable"`
	Default  *string `json:"default,omitempty"`
	Extra    string  `json:"extra,omitempty"` // e.g. "auto_increment"
}

// Provider answers metadata questions for the compiler. Implementations must
// return a dberr.KindUnknownTable error for tables the engine does not know.
type Provider interface {
	Columns(ctx context.Context, table string) ([]Column, error)
	PrimaryKeyColumns(ctx context.Context, table string) ([]string, error)
}

// Static is an in-memory Provider backed by fixed table definitions.
type Static struct {
	Tables map[string][]Column
	Keys   map[string][]string
}

func (s Static) Columns(_ context.Context, table string) ([]Column, error) {
	cols, ok := s.Tables[table]
	if !ok || len(cols) == 0 {
		return nil, dberr.New(dberr.KindUnknownTable, "table %q does not exist", table)
	}
	return cols, nil
}

func (s Static) PrimaryKeyColumns(_ context.Context, table string) ([]string, error) {
	if _, ok := s.Tables[table]; !ok {
		return nil, dberr.New(dberr.KindUnknownTable, "table %q does not exist", table)
	}
	return s.Keys[table], nil
}

// AutoIncrement reports whether the column's extra attributes mark it as
// auto-incrementing.
func (c Column) AutoIncrement() bool {
	return strings.Contains(strings.ToLower(c.Extra), "auto_increment")
}
