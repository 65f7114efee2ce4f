// Package output renders compiled-statement results and classified errors.
// It provides two formats: JSON for machine consumers and a human-readable
// text form.
package output

import (
	"fmt"
	"strings"

	"tablesmith/internal/dberr"
)

// Format is an enum type representing the available output formats.
type Format string

const (
	FormatJSON  Format = "json"
	FormatHuman Format = "human"
)

// Statement is the display model for one compiled (and possibly executed)
// statement.
type Statement struct {
	SQL             string  `json:"sql"`
	Params          []any   `json:"params,omitempty"`
	OperationsCount int     `json:"operationsCount,omitempty"`
	Executed        bool    `json:"executed"`
	AffectedRows    int64   `json:"affectedRows,omitempty"`
	LastInsertID    int64   `json:"insertId,omitempty"`
	ExecutionTimeMs float64 `json:"executionTimeMs,omitempty"`
}

// Formatter renders statements and failures in one output format.
type Formatter interface {
	FormatStatement(s *Statement) (string, error)
	FormatFailure(e *dberr.Error) (string, error)
}

// NewFormatter creates a Formatter for the given format name, defaulting to
// human output.
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatHuman:
		return humanFormatter{}, nil
	case FormatJSON:
		return jsonFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported format: %s; use 'json' or 'human'", name)
	}
}
