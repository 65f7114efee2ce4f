package compiler

import (
	"context"
	"sort"
	"strings"

	"tablesmith/internal/dberr"
)

// SelectOptions narrows a browse query. Zero values mean "no clause".
type SelectOptions struct {
	Columns    []string
	OrderBy    string
	Descending bool
	Limit      int
	Offset     int
}

// CompileSelect builds a parameterized SELECT over validated identifiers.
func (c *Compiler) CompileSelect(ctx context.Context, table string, conditions []Condition, opts SelectOptions) (string, []any, error) {
	tableName, err := ValidateIdentifier(table)
	if err != nil {
		return "", nil, err
	}

	projection := "*"
	if len(opts.Columns) > 0 {
		quoted := make([]string, 0, len(opts.Columns))
		for _, col := range opts.Columns {
			name, err := ValidateIdentifier(col)
			if err != nil {
				return "", nil, err
			}
			quoted = append(quoted, QuoteIdentifier(name))
		}
		projection = strings.Join(quoted, ", ")
	}

	where, err := c.CompileCondition(ctx, tableName, conditions)
	if err != nil {
		return "", nil, err
	}

	var sb strings.Builder
	sb.WriteString("SELECT " + projection + " FROM " + QuoteIdentifier(tableName))
	if where.HasConditions {
		sb.WriteString(" WHERE " + where.SQL)
	}

	params := where.Params
	if opts.OrderBy != "" {
		orderCol, err := ValidateIdentifier(opts.OrderBy)
		if err != nil {
			return "", nil, err
		}
		sb.WriteString(" ORDER BY " + QuoteIdentifier(orderCol))
		if opts.Descending {
			sb.WriteString(" DESC")
		}
	}
	if opts.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		params = append(params, opts.Limit)
		if opts.Offset > 0 {
			sb.WriteString(" OFFSET ?")
			params = append(params, opts.Offset)
		}
	}

	return sb.String(), params, nil
}

// CompileInsert builds an INSERT from a row map. Columns are validated
// against the live column set, auto-increment columns are filtered out, and
// the remaining columns are emitted in sorted order so the statement is
// deterministic.
func (c *Compiler) CompileInsert(ctx context.Context, table string, row map[string]any) (string, []any, error) {
	tableName, err := ValidateIdentifier(table)
	if err != nil {
		return "", nil, err
	}
	if len(row) == 0 {
		return "", nil, dberr.New(dberr.KindMissingField, "insert requires at least one column value")
	}

	cols, err := c.schema.Columns(ctx, tableName)
	if err != nil {
		return "", nil, err
	}
	autoInc := make(map[string]bool)
	known := make(map[string]string, len(cols))
	for _, col := range cols {
		lower := strings.ToLower(col.Name)
		known[lower] = col.Name
		if col.AutoIncrement() {
			autoInc[lower] = true
		}
	}

	names := make([]string, 0, len(row))
	for name := range row {
		names = append(names, name)
	}
	sort.Strings(names)

	var quoted []string
	var placeholders []string
	var params []any
	for _, name := range names {
		lower := strings.ToLower(strings.TrimSpace(name))
		canonical, ok := known[lower]
		if !ok {
			return "", nil, dberr.New(dberr.KindUnknownColumn, "column %q does not exist in table %q", name, tableName)
		}
		if autoInc[lower] {
			continue
		}
		quoted = append(quoted, QuoteIdentifier(canonical))
		placeholders = append(placeholders, "?")
		params = append(params, row[name])
	}
	if len(quoted) == 0 {
		return "", nil, dberr.New(dberr.KindMissingField, "insert requires at least one non-auto-increment column")
	}

	sql := "INSERT INTO " + QuoteIdentifier(tableName) +
		" (" + strings.Join(quoted, ", ") + ") VALUES (" + strings.Join(placeholders, ", ") + ")"
	return sql, params, nil
}

// CompileUpdate builds an UPDATE restricted by the given conditions. A
// condition list that compiles to nothing is refused so an update can never
// silently touch the whole table.
func (c *Compiler) CompileUpdate(ctx context.Context, table string, values map[string]any, conditions []Condition) (string, []any, error) {
	tableName, err := ValidateIdentifier(table)
	if err != nil {
		return "", nil, err
	}
	if len(values) == 0 {
		return "", nil, dberr.New(dberr.KindMissingField, "update requires at least one column value")
	}

	cols, err := c.schema.Columns(ctx, tableName)
	if err != nil {
		return "", nil, err
	}
	autoInc := make(map[string]bool)
	known := make(map[string]string, len(cols))
	for _, col := range cols {
		lower := strings.ToLower(col.Name)
		known[lower] = col.Name
		if col.AutoIncrement() {
			autoInc[lower] = true
		}
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	var assignments []string
	var params []any
	for _, name := range names {
		lower := strings.ToLower(strings.TrimSpace(name))
		canonical, ok := known[lower]
		if !ok {
			return "", nil, dberr.New(dberr.KindUnknownColumn, "column %q does not exist in table %q", name, tableName)
		}
		if autoInc[lower] {
			continue
		}
		assignments = append(assignments, QuoteIdentifier(canonical)+" = ?")
		params = append(params, values[name])
	}
	if len(assignments) == 0 {
		return "", nil, dberr.New(dberr.KindMissingField, "update requires at least one non-auto-increment column")
	}

	where, err := c.CompileCondition(ctx, tableName, conditions)
	if err != nil {
		return "", nil, err
	}
	if !where.HasConditions {
		return "", nil, dberr.New(dberr.KindMissingField, "update requires at least one condition")
	}

	sql := "UPDATE " + QuoteIdentifier(tableName) + " SET " + strings.Join(assignments, ", ") + " WHERE " + where.SQL
	return sql, append(params, where.Params...), nil
}

// CompileDelete builds a DELETE restricted by the given conditions, with the
// same full-table guard as CompileUpdate.
func (c *Compiler) CompileDelete(ctx context.Context, table string, conditions []Condition) (string, []any, error) {
	tableName, err := ValidateIdentifier(table)
	if err != nil {
		return "", nil, err
	}

	where, err := c.CompileCondition(ctx, tableName, conditions)
	if err != nil {
		return "", nil, err
	}
	if !where.HasConditions {
		return "", nil, dberr.New(dberr.KindMissingField, "delete requires at least one condition")
	}

	return "DELETE FROM " + QuoteIdentifier(tableName) + " WHERE " + where.SQL, where.Params, nil
}

// WhereByKey decodes an opaque row identifier against the table's primary
// key and returns the matching WHERE fragment, one bound parameter per key
// column.
func (c *Compiler) WhereByKey(ctx context.Context, table, token string) (WhereClause, error) {
	tableName, err := ValidateIdentifier(table)
	if err != nil {
		return WhereClause{}, err
	}

	pkCols, err := c.schema.PrimaryKeyColumns(ctx, tableName)
	if err != nil {
		return WhereClause{}, err
	}
	values, err := DecodeRowKey(pkCols, token)
	if err != nil {
		return WhereClause{}, err
	}

	predicates := make([]string, len(pkCols))
	params := make([]any, len(pkCols))
	for i, col := range pkCols {
		name, err := ValidateIdentifier(col)
		if err != nil {
			return WhereClause{}, err
		}
		predicates[i] = QuoteIdentifier(name) + " = ?"
		params[i] = values[i]
	}

	return WhereClause{SQL: strings.Join(predicates, " AND "), Params: params, HasConditions: true}, nil
}

// CompileSelectByKey builds the single-row fetch used by token-addressed
// reads.
func (c *Compiler) CompileSelectByKey(ctx context.Context, table, token string) (string, []any, error) {
	where, err := c.WhereByKey(ctx, table, token)
	if err != nil {
		return "", nil, err
	}
	return "SELECT * FROM " + QuoteIdentifier(strings.TrimSpace(table)) + " WHERE " + where.SQL, where.Params, nil
}

// CompileDeleteByKey builds the single-row delete used by token-addressed
// deletes.
func (c *Compiler) CompileDeleteByKey(ctx context.Context, table, token string) (string, []any, error) {
	where, err := c.WhereByKey(ctx, table, token)
	if err != nil {
		return "", nil, err
	}
	return "DELETE FROM " + QuoteIdentifier(strings.TrimSpace(table)) + " WHERE " + where.SQL, where.Params, nil
}
