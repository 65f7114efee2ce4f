package compiler

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tablesmith/internal/dberr"
	"tablesmith/internal/schema"
)

// positionRe matches the only accepted column position clauses: FIRST, or
// AFTER followed by one identifier (optionally backtick-quoted).
var positionRe = regexp.MustCompile("(?i)^(FIRST|AFTER +`?([A-Za-z_][A-Za-z0-9_]*)`?)$")

var engineWhitelist = map[string]string{
	"innodb":  "InnoDB",
	"myisam":  "MyISAM",
	"memory":  "MEMORY",
	"csv":     "CSV",
	"archive": "ARCHIVE",
}

var charsetWhitelist = map[string]bool{
	"utf8mb4": true,
	"utf8mb3": true,
	"utf8":    true,
	"latin1":  true,
	"ascii":   true,
	"binary":  true,
}

var collationWhitelist = map[string]bool{
	"utf8mb4_unicode_ci": true,
	"utf8mb4_general_ci": true,
	"utf8mb4_0900_ai_ci": true,
	"utf8mb4_bin":        true,
	"utf8mb3_general_ci": true,
	"utf8_general_ci":    true,
	"utf8_unicode_ci":    true,
	"latin1_swedish_ci":  true,
	"latin1_general_ci":  true,
	"ascii_general_ci":   true,
	"binary":             true,
}

const (
	defaultCharset   = "utf8mb4"
	defaultCollation = "utf8mb4_unicode_ci"
)

var fkActionWhitelist = map[string]string{
	"RESTRICT":  "RESTRICT",
	"CASCADE":   "CASCADE",
	"SET NULL":  "SET NULL",
	"NO ACTION": "NO ACTION",
}

// buildFragment dispatches one operation to its kind-specific builder and
// returns a single self-contained ALTER clause.
func (c *Compiler) buildFragment(ctx context.Context, table string, op *Operation) (string, error) {
	if err := op.Validate(); err != nil {
		return "", err
	}

	switch op.Kind {
	case OpAddColumn:
		return c.addColumn(op)
	case OpModifyColumn:
		return c.modifyColumn(op)
	case OpRenameColumn:
		return c.renameColumn(ctx, table, op)
	case OpDropColumn:
		return c.dropColumn(op)
	case OpAddIndex:
		return c.addIndex(op, false)
	case OpAddUnique:
		return c.addIndex(op, true)
	case OpDropIndex:
		return c.dropIndex(op)
	case OpAddPrimaryKey:
		return c.addPrimaryKey(op)
	case OpDropPrimaryKey:
		return "DROP PRIMARY KEY", nil
	case OpAddForeignKey:
		return c.addForeignKey(op)
	case OpDropForeignKey:
		return c.dropForeignKey(op)
	case OpRenameTable:
		return c.renameTable(op)
	case OpChangeEngine:
		return c.changeEngine(op)
	case OpChangeCharset:
		return c.changeCharset(op)
	}
	return "", dberr.New(dberr.KindMissingField, "unsupported operation type %q", string(op.Kind))
}

func (c *Compiler) addColumn(op *Operation) (string, error) {
	column, err := ValidateIdentifier(op.Column)
	if err != nil {
		return "", err
	}
	if op.Definition.IsZero() {
		return "", dberr.New(dberr.KindMissingField, "ADD_COLUMN requires a definition")
	}
	def, err := op.Definition.Build()
	if err != nil {
		return "", err
	}

	fragment := fmt.Sprintf("ADD COLUMN %s %s", QuoteIdentifier(column), def)
	if pos := normalizePosition(op.Position); pos != "" {
		fragment += " " + pos
	}
	return fragment, nil
}

// normalizePosition returns a canonical position clause, or "" when the
// input does not match the accepted grammar. Invalid positions are dropped
// rather than failed.
func normalizePosition(position string) string {
	position = strings.TrimSpace(position)
	if position == "" {
		return ""
	}
	m := positionRe.FindStringSubmatch(position)
	if m == nil {
		return ""
	}
	if strings.EqualFold(m[1], "FIRST") {
		return "FIRST"
	}
	return "AFTER " + QuoteIdentifier(m[2])
}

func (c *Compiler) modifyColumn(op *Operation) (string, error) {
	column, err := ValidateIdentifier(op.Column)
	if err != nil {
		return "", err
	}
	if op.Definition.IsZero() {
		return "", dberr.New(dberr.KindMissingField, "MODIFY_COLUMN requires a definition")
	}
	def, err := op.Definition.Build()
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("MODIFY COLUMN %s %s", QuoteIdentifier(column), def), nil
}

// renameColumn emits a CHANGE COLUMN clause. MySQL requires the full column
// redefinition alongside the new name, so the definition is reconstructed
// from live metadata instead of trusting the request.
func (c *Compiler) renameColumn(ctx context.Context, table string, op *Operation) (string, error) {
	oldName, err := ValidateIdentifier(op.Column)
	if err != nil {
		return "", err
	}
	newName, err := ValidateIdentifier(op.NewName)
	if err != nil {
		return "", err
	}

	cols, err := c.schema.Columns(ctx, table)
	if err != nil {
		return "", err
	}
	for _, col := range cols {
		if strings.EqualFold(col.Name, oldName) {
			def := reconstructDefinition(col)
			return fmt.Sprintf("CHANGE COLUMN %s %s %s", QuoteIdentifier(oldName), QuoteIdentifier(newName), def), nil
		}
	}
	return "", dberr.New(dberr.KindUnknownColumn, "column %q does not exist in table %q", oldName, table)
}

func (c *Compiler) dropColumn(op *Operation) (string, error) {
	column, err := ValidateIdentifier(op.Column)
	if err != nil {
		return "", err
	}
	return "DROP COLUMN " + QuoteIdentifier(column), nil
}

func (c *Compiler) addIndex(op *Operation, unique bool) (string, error) {
	if len(op.Columns) == 0 {
		return "", dberr.New(dberr.KindMissingField, "index operations require at least one column")
	}

	validated := make([]string, 0, len(op.Columns))
	quoted := make([]string, 0, len(op.Columns))
	for _, col := range op.Columns {
		name, err := ValidateIdentifier(col)
		if err != nil {
			return "", err
		}
		validated = append(validated, name)
		quoted = append(quoted, QuoteIdentifier(name))
	}

	keyword := normalizeIndexType(op.IndexType)
	if unique {
		// ADD_UNIQUE always emits UNIQUE, whatever type the caller sent.
		keyword = "UNIQUE"
	}

	name := strings.TrimSpace(op.IndexName)
	if name == "" {
		prefix := "idx_"
		if unique {
			prefix = "uniq_"
		}
		name = prefix + strings.Join(validated, "_")
	}
	name, err := ValidateIdentifier(name)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ADD %s %s (%s)", keyword, QuoteIdentifier(name), strings.Join(quoted, ", ")), nil
}

// normalizeIndexType maps the caller-supplied index type onto an emit
// keyword. BTREE is an alias for a plain index; anything unrecognized also
// falls back to INDEX.
func normalizeIndexType(indexType string) string {
	switch strings.ToUpper(strings.TrimSpace(indexType)) {
	case "UNIQUE":
		return "UNIQUE"
	case "FULLTEXT":
		return "FULLTEXT"
	default:
		return "INDEX"
	}
}

func (c *Compiler) dropIndex(op *Operation) (string, error) {
	if strings.TrimSpace(op.IndexName) == "" {
		return "", dberr.New(dberr.KindMissingField, "DROP_INDEX requires an index name")
	}
	name, err := ValidateIdentifier(op.IndexName)
	if err != nil {
		return "", err
	}
	return "DROP INDEX " + QuoteIdentifier(name), nil
}

func (c *Compiler) addPrimaryKey(op *Operation) (string, error) {
	if len(op.Columns) == 0 {
		return "", dberr.New(dberr.KindMissingField, "ADD_PRIMARY_KEY requires at least one column")
	}
	quoted := make([]string, 0, len(op.Columns))
	for _, col := range op.Columns {
		name, err := ValidateIdentifier(col)
		if err != nil {
			return "", err
		}
		quoted = append(quoted, QuoteIdentifier(name))
	}
	return fmt.Sprintf("ADD PRIMARY KEY (%s)", strings.Join(quoted, ", ")), nil
}

func (c *Compiler) addForeignKey(op *Operation) (string, error) {
	column, err := ValidateIdentifier(op.Column)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(op.RefTable) == "" || strings.TrimSpace(op.RefColumn) == "" {
		return "", dberr.New(dberr.KindMissingField, "ADD_FOREIGN_KEY requires a referenced table and column")
	}
	refTable, err := ValidateIdentifier(op.RefTable)
	if err != nil {
		return "", err
	}
	refColumn, err := ValidateIdentifier(op.RefColumn)
	if err != nil {
		return "", err
	}

	name := strings.TrimSpace(op.ConstraintName)
	if name == "" {
		name = fmt.Sprintf("fk_%s_%s", column, refTable)
	}
	name, err = ValidateIdentifier(name)
	if err != nil {
		return "", err
	}

	return fmt.Sprintf("ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s ON UPDATE %s",
		QuoteIdentifier(name), QuoteIdentifier(column), QuoteIdentifier(refTable), QuoteIdentifier(refColumn),
		normalizeFKAction(op.OnDelete), normalizeFKAction(op.OnUpdate)), nil
}

// normalizeFKAction restricts referential actions to the MySQL vocabulary,
// defaulting to RESTRICT for absent or unrecognized values.
func normalizeFKAction(action string) string {
	normalized := strings.ToUpper(strings.Join(strings.Fields(action), " "))
	if canonical, ok := fkActionWhitelist[normalized]; ok {
		return canonical
	}
	return "RESTRICT"
}

func (c *Compiler) dropForeignKey(op *Operation) (string, error) {
	if strings.TrimSpace(op.ConstraintName) == "" {
		return "", dberr.New(dberr.KindMissingField, "DROP_FOREIGN_KEY requires a constraint name")
	}
	name, err := ValidateIdentifier(op.ConstraintName)
	if err != nil {
		return "", err
	}
	return "DROP FOREIGN KEY " + QuoteIdentifier(name), nil
}

func (c *Compiler) renameTable(op *Operation) (string, error) {
	if strings.TrimSpace(op.NewName) == "" {
		return "", dberr.New(dberr.KindMissingField, "RENAME_TABLE requires a new name")
	}
	newName, err := ValidateIdentifier(op.NewName)
	if err != nil {
		return "", err
	}
	return "RENAME TO " + QuoteIdentifier(newName), nil
}

func (c *Compiler) changeEngine(op *Operation) (string, error) {
	engine := strings.ToLower(strings.TrimSpace(op.Engine))
	if engine == "" {
		return "", dberr.New(dberr.KindMissingField, "CHANGE_ENGINE requires an engine")
	}
	canonical, ok := engineWhitelist[engine]
	if !ok {
		return "", dberr.New(dberr.KindMissingField, "engine %q is not supported", op.Engine)
	}
	return "ENGINE = " + canonical, nil
}

// changeCharset emits the charset/collation clause. Unlike engines, an
// unlisted charset or collation falls back to the utf8mb4 defaults instead
// of failing.
func (c *Compiler) changeCharset(op *Operation) (string, error) {
	charset := strings.ToLower(strings.TrimSpace(op.Charset))
	if charset == "" {
		return "", dberr.New(dberr.KindMissingField, "CHANGE_CHARSET requires a charset")
	}
	if !charsetWhitelist[charset] {
		charset = defaultCharset
	}

	collation := strings.ToLower(strings.TrimSpace(op.Collation))
	if collation == "" || !collationWhitelist[collation] {
		collation = defaultCollation
	}

	return fmt.Sprintf("CHARACTER SET %s COLLATE %s", charset, collation), nil
}

// reconstructDefinition rebuilds a full column definition from live
// metadata: type, nullability, default, and extra attributes such as
// auto_increment.
func reconstructDefinition(col schema.Column) string {
	parts := []string{col.DataType}
	if col.Nullable {
		parts = append(parts, "NULL")
	} else {
		parts = append(parts, "NOT NULL")
	}
	if col.Default != nil {
		parts = append(parts, "DEFAULT", formatMetadataDefault(*col.Default))
	}
	if extra := strings.TrimSpace(col.Extra); extra != "" && !strings.EqualFold(extra, "DEFAULT_GENERATED") {
		parts = append(parts, strings.ToUpper(extra))
	}
	return strings.Join(parts, " ")
}

func formatMetadataDefault(value string) string {
	trimmed := strings.TrimSpace(value)
	upper := strings.ToUpper(trimmed)
	if upper == "NULL" || upper == "CURRENT_TIMESTAMP" || strings.HasPrefix(upper, "CURRENT_TIMESTAMP(") {
		return upper
	}
	if _, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return trimmed
	}
	return QuoteString(trimmed)
}
