package dberr

import (
	"errors"
	"strings"
)

// classifyRule maps a case-sensitive phrase from the native MySQL error text
// onto a taxonomy kind. Rules are checked in order; the first match wins.
type classifyRule struct {
	phrase  string
	kind    Kind
	message string
}

var classifyRules = []classifyRule{
	{"Duplicate column name", KindDuplicateName, "a column with that name already exists"},
	{"Duplicate key name", KindDuplicateName, "an index with that name already exists"},
	{"Duplicate foreign key constraint name", KindDuplicateName, "a foreign key with that name already exists"},
	{"Duplicate entry", KindConstraintViolation, "a row with that key already exists"},
	{"Unknown column", KindUnknownColumn, "the referenced column does not exist"},
	{"Unknown table", KindUnknownTable, "the referenced table does not exist"},
	{"doesn't exist", KindUnknownTable, "the referenced table does not exist"},
	{"foreign key constraint", KindConstraintViolation, "the change violates a foreign key constraint"},
	{"Data truncated", KindConstraintViolation, "a value does not fit the column type"},
	{"Invalid use of NULL", KindConstraintViolation, "a NOT NULL column would receive NULL values"},
	{"Invalid default value", KindConstraintViolation, "the default value is not valid for the column type"},
	{"Multiple primary key", KindDuplicateName, "the table already has a primary key"},
}

// Classify maps a native engine error onto the taxonomy. Errors already
// carrying a Kind pass through unchanged; anything unmatched falls back to
// KindDatabase with the raw native message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var de *Error
	if errors.As(err, &de) {
		return de
	}

	text := err.Error()
	for _, rule := range classifyRules {
		if strings.Contains(text, rule.phrase) {
			return &Error{Kind: rule.kind, Message: rule.message}
		}
	}
	return &Error{Kind: KindDatabase, Message: text}
}
