// Package dberr defines the closed error taxonomy shared by the statement
// compiler and the executor. Validation failures are created directly with
// New before any SQL is sent; native engine failures are mapped onto the
// same taxonomy by Classify.
package dberr

import (
	"errors"
	"fmt"
)

// Kind identifies one stable, user-facing error category.
type Kind string

const (
	KindInvalidIdentifier   Kind = "InvalidIdentifier"
	KindMissingField        Kind = "MissingField"
	KindUnknownColumn       Kind = "UnknownColumn"
	KindUnknownTable        Kind = "UnknownTable"
	KindInvalidOperator     Kind = "InvalidOperator"
	KindMalformedKey        Kind = "MalformedKey"
	KindDuplicateName       Kind = "DuplicateName"
	KindConstraintViolation Kind = "ConstraintViolation"
	KindDatabase            Kind = "DatabaseError"
)

// Error carries a stable kind plus a human-readable message. The raw native
// error text is only exposed through KindDatabase messages.
type Error struct {
	Kind    Kind   `json:"errorKind"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// New builds a validation error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the taxonomy kind from err. Errors that did not come out
// of this package report KindDatabase.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindDatabase
}
