package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesmith/internal/dberr"
)

func TestCompileConditionSingle(t *testing.T) {
	c := testCompiler()
	clause, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "status", Operator: "=", Value: "active"},
	})
	require.NoError(t, err)
	assert.True(t, clause.HasConditions)
	assert.Equal(t, "`status` = ?", clause.SQL)
	assert.Equal(t, []any{"active"}, clause.Params)
}

func TestCompileConditionChained(t *testing.T) {
	c := testCompiler()
	clause, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "status", Operator: "=", Value: "active"},
		{Column: "age", Operator: ">", Value: "18"},
	})
	require.NoError(t, err)
	assert.Equal(t, "`status` = ? AND `age` > ?", clause.SQL)
	assert.Equal(t, []any{"active", "18"}, clause.Params)
}

func TestCompileConditionOrConnector(t *testing.T) {
	c := testCompiler()
	clause, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "status", Operator: "=", Value: "active"},
		{Column: "status", Operator: "=", Value: "pending", Connector: "or"},
	})
	require.NoError(t, err)
	assert.Equal(t, "`status` = ? OR `status` = ?", clause.SQL)
}

func TestCompileConditionConnectorDefaultsToAnd(t *testing.T) {
	c := testCompiler()
	clause, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "status", Operator: "=", Value: "a"},
		{Column: "email", Operator: "LIKE", Value: "%x%", Connector: "nonsense"},
	})
	require.NoError(t, err)
	assert.Equal(t, "`status` = ? AND `email` LIKE ?", clause.SQL)
}

func TestCompileConditionNullOperators(t *testing.T) {
	c := testCompiler()
	clause, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "age", Operator: "IS NULL"},
		{Column: "status", Operator: "is not null"},
	})
	require.NoError(t, err)
	assert.Equal(t, "`age` IS NULL AND `status` IS NOT NULL", clause.SQL)
	assert.Empty(t, clause.Params)
}

func TestCompileConditionIn(t *testing.T) {
	c := testCompiler()
	clause, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "status", Operator: "IN", Value: "active, pending ,blocked"},
	})
	require.NoError(t, err)
	assert.Equal(t, "`status` IN (?, ?, ?)", clause.SQL)
	assert.Equal(t, []any{"active", "pending", "blocked"}, clause.Params)
}

func TestCompileConditionInEmptyList(t *testing.T) {
	c := testCompiler()
	_, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "status", Operator: "IN", Value: "  "},
	})
	require.Error(t, err)
	assert.Equal(t, dberr.KindMissingField, dberr.KindOf(err))
}

func TestCompileConditionUnknownColumn(t *testing.T) {
	c := testCompiler()
	_, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "no_such_col", Operator: "=", Value: "x"},
	})
	require.Error(t, err)
	assert.Equal(t, dberr.KindUnknownColumn, dberr.KindOf(err))
}

func TestCompileConditionInvalidOperator(t *testing.T) {
	c := testCompiler()
	for _, op := range []string{"<>", "BETWEEN", "= 1 OR 1 =", ";"} {
		_, err := c.CompileCondition(context.Background(), "users", []Condition{
			{Column: "status", Operator: op, Value: "x"},
		})
		require.Error(t, err, "operator %q", op)
		assert.Equal(t, dberr.KindInvalidOperator, dberr.KindOf(err))
	}
}

func TestCompileConditionOperatorCaseInsensitive(t *testing.T) {
	c := testCompiler()
	clause, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "email", Operator: "like", Value: "%@example.com"},
	})
	require.NoError(t, err)
	assert.Equal(t, "`email` LIKE ?", clause.SQL)
}

func TestCompileConditionSkipsBlankColumns(t *testing.T) {
	c := testCompiler()
	clause, err := c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "", Operator: "=", Value: "ignored"},
		{Column: "status", Operator: "=", Value: "active"},
	})
	require.NoError(t, err)
	assert.True(t, clause.HasConditions)
	assert.Equal(t, "`status` = ?", clause.SQL)
}

func TestCompileConditionEmpty(t *testing.T) {
	c := testCompiler()

	clause, err := c.CompileCondition(context.Background(), "users", nil)
	require.NoError(t, err)
	assert.False(t, clause.HasConditions)
	assert.Empty(t, clause.SQL)

	clause, err = c.CompileCondition(context.Background(), "users", []Condition{
		{Column: "", Operator: "=", Value: "x"},
		{Column: "   ", Operator: "=", Value: "y"},
	})
	require.NoError(t, err)
	assert.False(t, clause.HasConditions)
}

func TestCompileConditionUnknownTable(t *testing.T) {
	c := testCompiler()
	_, err := c.CompileCondition(context.Background(), "missing", []Condition{
		{Column: "status", Operator: "=", Value: "x"},
	})
	require.Error(t, err)
	assert.Equal(t, dberr.KindUnknownTable, dberr.KindOf(err))
}
