package compiler

import (
	"context"
	"strings"

	"tablesmith/internal/dberr"
)

// Condition is one filter predicate. Connector joins the condition to the
// previous one and is ignored on the first entry.
type Condition struct {
	Column    string `json:"column"`
	Operator  string `json:"operator"`
	Value     string `json:"value,omitempty"`
	Connector string `json:"connector,omitempty"`
}

// WhereClause is a parameterized WHERE fragment. Callers must check
// HasConditions before appending "WHERE" to a statement.
type WhereClause struct {
	SQL           string
	Params        []any
	HasConditions bool
}

var operatorWhitelist = map[string]string{
	"=":           "=",
	"!=":          "!=",
	">":           ">",
	"<":           "<",
	">=":          ">=",
	"<=":          "<=",
	"LIKE":        "LIKE",
	"IN":          "IN",
	"IS NULL":     "IS NULL",
	"IS NOT NULL": "IS NOT NULL",
}

// CompileCondition builds the WHERE fragment shared by SELECT, UPDATE and
// DELETE. Every referenced column is checked against the table's live
// column set; values travel exclusively as bound parameters. Entries with a
// blank column are skipped, so a list of blanks yields an empty clause.
func (c *Compiler) CompileCondition(ctx context.Context, table string, conditions []Condition) (WhereClause, error) {
	tableName, err := ValidateIdentifier(table)
	if err != nil {
		return WhereClause{}, err
	}
	if len(conditions) == 0 {
		return WhereClause{}, nil
	}

	cols, err := c.schema.Columns(ctx, tableName)
	if err != nil {
		return WhereClause{}, err
	}
	known := make(map[string]bool, len(cols))
	for _, col := range cols {
		known[strings.ToLower(col.Name)] = true
	}

	var sb strings.Builder
	var params []any
	count := 0

	for _, cond := range conditions {
		column := strings.TrimSpace(cond.Column)
		if column == "" {
			continue
		}
		if !known[strings.ToLower(column)] {
			return WhereClause{}, dberr.New(dberr.KindUnknownColumn, "column %q does not exist in table %q", column, tableName)
		}

		operator, ok := operatorWhitelist[strings.ToUpper(strings.TrimSpace(cond.Operator))]
		if !ok {
			return WhereClause{}, dberr.New(dberr.KindInvalidOperator, "operator %q is not allowed", cond.Operator)
		}

		if count > 0 {
			sb.WriteString(" " + normalizeConnector(cond.Connector) + " ")
		}

		switch operator {
		case "IS NULL", "IS NOT NULL":
			sb.WriteString(QuoteIdentifier(column) + " " + operator)
		case "IN":
			placeholders, inParams, err := splitInValues(cond.Value)
			if err != nil {
				return WhereClause{}, err
			}
			sb.WriteString(QuoteIdentifier(column) + " IN (" + placeholders + ")")
			params = append(params, inParams...)
		default:
			sb.WriteString(QuoteIdentifier(column) + " " + operator + " ?")
			params = append(params, cond.Value)
		}
		count++
	}

	if count == 0 {
		return WhereClause{}, nil
	}
	return WhereClause{SQL: sb.String(), Params: params, HasConditions: true}, nil
}

// normalizeConnector restricts the connector to AND/OR, defaulting to AND.
// The connector is embedded literally, so it never carries caller text.
func normalizeConnector(connector string) string {
	if strings.EqualFold(strings.TrimSpace(connector), "OR") {
		return "OR"
	}
	return "AND"
}

// splitInValues turns a comma-separated value into N bound parameters.
func splitInValues(value string) (string, []any, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", nil, dberr.New(dberr.KindMissingField, "IN requires a comma-separated value list")
	}

	parts := strings.Split(trimmed, ",")
	placeholders := make([]string, len(parts))
	params := make([]any, len(parts))
	for i, part := range parts {
		placeholders[i] = "?"
		params[i] = strings.TrimSpace(part)
	}
	return strings.Join(placeholders, ", "), params, nil
}
