package compiler

import (
	"context"
	"strings"

	"tablesmith/internal/dberr"
	"tablesmith/internal/schema"
)

// Compiler assembles injection-safe statements from untrusted operation
// descriptions. It holds no cross-request state; the schema provider is the
// only dependency and is injected by the request-handling layer.
type Compiler struct {
	schema schema.Provider
}

func New(provider schema.Provider) *Compiler {
	return &Compiler{schema: provider}
}

// CompileAlter builds one ALTER TABLE statement covering the whole
// operation sequence. Fragment order equals input order and everything is
// sent in a single round trip; the first failing operation aborts
// compilation so no partial statement is ever produced.
func (c *Compiler) CompileAlter(ctx context.Context, table string, ops []Operation) (string, error) {
	tableName, err := ValidateIdentifier(table)
	if err != nil {
		return "", err
	}
	if len(ops) == 0 {
		return "", dberr.New(dberr.KindMissingField, "at least one operation is required")
	}

	fragments := make([]string, 0, len(ops))
	for i := range ops {
		fragment, err := c.buildFragment(ctx, tableName, &ops[i])
		if err != nil {
			return "", err
		}
		fragments = append(fragments, fragment)
	}

	return "ALTER TABLE " + QuoteIdentifier(tableName) + " " + strings.Join(fragments, ", "), nil
}
