package compiler

import (
	"fmt"
	"strings"

	"tablesmith/internal/dberr"
)

// keyDelimiter joins composite key values into one opaque token. The scheme
// is ambiguous when a key value itself contains the delimiter; decoding then
// fails on the part count, which is the only detectable symptom.
const keyDelimiter = "_"

// EncodeRowKey builds the opaque row identifier for a row, joining the
// primary key values in schema-declared column order. Single-column keys use
// the raw value as the token.
func EncodeRowKey(pkColumns []string, row map[string]any) (string, error) {
	if len(pkColumns) == 0 {
		return "", dberr.New(dberr.KindMalformedKey, "table has no primary key columns")
	}

	values := make([]string, 0, len(pkColumns))
	for _, col := range pkColumns {
		value, ok := row[col]
		if !ok {
			return "", dberr.New(dberr.KindMalformedKey, "row is missing primary key column %q", col)
		}
		values = append(values, fmt.Sprint(value))
	}

	if len(values) == 1 {
		return values[0], nil
	}
	return strings.Join(values, keyDelimiter), nil
}

// DecodeRowKey splits a token back into its key values, one per primary key
// column. The part count must match the key column count exactly.
func DecodeRowKey(pkColumns []string, token string) ([]string, error) {
	if len(pkColumns) == 0 {
		return nil, dberr.New(dberr.KindMalformedKey, "table has no primary key columns")
	}
	if token == "" {
		return nil, dberr.New(dberr.KindMalformedKey, "row identifier is empty")
	}

	if len(pkColumns) == 1 {
		return []string{token}, nil
	}

	parts := strings.Split(token, keyDelimiter)
	if len(parts) != len(pkColumns) {
		return nil, dberr.New(dberr.KindMalformedKey,
			"row identifier has %d parts, expected %d", len(parts), len(pkColumns))
	}
	return parts, nil
}
