// Package compiler turns structured, untrusted operation descriptions into
// syntactically valid, injection-safe MySQL statements. DDL positions cannot
// use bind parameters, so every identifier is validated before it is
// embedded in SQL text; data values always travel as bound parameters.
package compiler

import (
	"regexp"
	"strings"

	"tablesmith/internal/dberr"
)

// MySQL caps identifiers at 64 characters.
const maxIdentifierLen = 64

var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateIdentifier trims name and checks it against the identifier
// grammar. This is the sole injection defense for DDL positions, so it is
// applied to every table, column, index and constraint name before any
// SQL-text embedding.
func ValidateIdentifier(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", dberr.New(dberr.KindInvalidIdentifier, "identifier is empty")
	}
	if len(trimmed) > maxIdentifierLen {
		return "", dberr.New(dberr.KindInvalidIdentifier, "identifier %q exceeds %d characters", trimmed, maxIdentifierLen)
	}
	if !identifierRe.MatchString(trimmed) {
		return "", dberr.New(dberr.KindInvalidIdentifier, "identifier %q contains characters outside [A-Za-z0-9_]", trimmed)
	}
	return trimmed, nil
}

// QuoteIdentifier backtick-quotes an already validated identifier. Embedded
// backticks are doubled so the function stays safe even if a caller skips
// validation.
func QuoteIdentifier(name string) string {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "`", "``")
	return "`" + name + "`"
}

// QuoteString single-quotes a literal for embedding in DDL text, escaping
// the characters the MySQL protocol treats specially.
func QuoteString(value string) string {
	var b strings.Builder
	b.Grow(len(value) + len(value)/10 + 2)

	b.WriteByte('\'')
	for _, char := range value {
		switch char {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\x00':
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\x1A':
			b.WriteString(`\Z`)
		default:
			b.WriteRune(char)
		}
	}
	b.WriteByte('\'')
	return b.String()
}
