// Package preflight sanity-checks SQL text before it reaches the engine.
// Compiled statements are parsed with TiDB's MySQL-compatible parser to
// confirm they are a single well-formed statement of an expected class; raw
// passthrough SQL only gets a keyword blocklist, which is all the trust that
// path earns.
package preflight

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver" // registers TiDB parser driver implementations
)

// Analyzer parses compiled statements. The underlying parser is not safe
// for concurrent use, so neither is the Analyzer.
type Analyzer struct {
	parser *parser.Parser
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{parser: parser.New()}
}

// CheckStatement confirms that sqlText parses as exactly one statement of a
// class the compiler emits: ALTER TABLE, SELECT, INSERT, UPDATE or DELETE.
// A compiled statement failing this check indicates a compiler bug, not bad
// user input.
func (a *Analyzer) CheckStatement(sqlText string) error {
	stmtNodes, _, err := a.parser.Parse(sqlText, "", "")
	if err != nil {
		return fmt.Errorf("statement does not parse: %w", err)
	}
	if len(stmtNodes) != 1 {
		return fmt.Errorf("expected exactly one statement, got %d", len(stmtNodes))
	}

	switch stmtNodes[0].(type) {
	case *ast.AlterTableStmt, *ast.SelectStmt, *ast.InsertStmt, *ast.UpdateStmt, *ast.DeleteStmt:
		return nil
	default:
		return fmt.Errorf("statement class %T is not produced by the compiler", stmtNodes[0])
	}
}

// blockedKeywords are matched as whole words, case-insensitively, against
// raw passthrough SQL.
var blockedKeywords = []string{
	"DROP DATABASE",
	"DROP SCHEMA",
	"CREATE USER",
	"DROP USER",
	"GRANT",
	"REVOKE",
	"SHUTDOWN",
	"LOAD_FILE",
	"LOAD DATA",
	"INTO OUTFILE",
	"INTO DUMPFILE",
	"INFORMATION_SCHEMA",
	"PERFORMANCE_SCHEMA",
	"SET GLOBAL",
	"SET PASSWORD",
}

var blockedRes = compileBlocklist()

func compileBlocklist() []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(blockedKeywords))
	for i, kw := range blockedKeywords {
		pattern := `(?i)\b` + strings.ReplaceAll(regexp.QuoteMeta(kw), ` `, `\s+`) + `\b`
		res[i] = regexp.MustCompile(pattern)
	}
	return res
}

// CheckRawSQL applies the keyword blocklist to caller-supplied SQL text and
// rejects multi-statement input. It makes no attempt to parse the text.
func CheckRawSQL(sqlText string) error {
	trimmed := strings.TrimSpace(sqlText)
	if trimmed == "" {
		return fmt.Errorf("statement is empty")
	}
	if strings.Contains(strings.TrimSuffix(trimmed, ";"), ";") {
		return fmt.Errorf("multiple statements are not allowed")
	}
	for i, re := range blockedRes {
		if re.MatchString(trimmed) {
			return fmt.Errorf("statement contains blocked keyword %q", blockedKeywords[i])
		}
	}
	return nil
}
