package compiler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesmith/internal/dberr"
)

func TestCompileSelectBare(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileSelect(context.Background(), "users", nil, SelectOptions{})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users`", sql)
	assert.Empty(t, params)
}

func TestCompileSelectFull(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileSelect(context.Background(), "users",
		[]Condition{{Column: "status", Operator: "=", Value: "active"}},
		SelectOptions{
			Columns:    []string{"id", "email"},
			OrderBy:    "created_at",
			Descending: true,
			Limit:      25,
			Offset:     50,
		})
	require.NoError(t, err)
	assert.Equal(t, "SELECT `id`, `email` FROM `users` WHERE `status` = ? ORDER BY `created_at` DESC LIMIT ? OFFSET ?", sql)
	assert.Equal(t, []any{"active", 25, 50}, params)
}

func TestCompileSelectOffsetRequiresLimit(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileSelect(context.Background(), "users", nil, SelectOptions{Offset: 10})
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `users`", sql)
	assert.Empty(t, params)
}

func TestCompileSelectRejectsBadProjection(t *testing.T) {
	c := testCompiler()
	_, _, err := c.CompileSelect(context.Background(), "users", nil, SelectOptions{
		Columns: []string{"id", "email; --"},
	})
	require.Error(t, err)
	assert.Equal(t, dberr.KindInvalidIdentifier, dberr.KindOf(err))
}

func TestCompileSelectRejectsBadOrderBy(t *testing.T) {
	c := testCompiler()
	_, _, err := c.CompileSelect(context.Background(), "users", nil, SelectOptions{
		OrderBy: "created_at DESC; DROP TABLE users",
	})
	require.Error(t, err)
	assert.Equal(t, dberr.KindInvalidIdentifier, dberr.KindOf(err))
}

func TestCompileInsertSortsColumns(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileInsert(context.Background(), "users", map[string]any{
		"status": "active",
		"email":  "a@example.com",
		"age":    30,
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `users` (`age`, `email`, `status`) VALUES (?, ?, ?)", sql)
	assert.Equal(t, []any{30, "a@example.com", "active"}, params)
}

func TestCompileInsertSkipsAutoIncrement(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileInsert(context.Background(), "users", map[string]any{
		"id":    99,
		"email": "a@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO `users` (`email`) VALUES (?)", sql)
	assert.Equal(t, []any{"a@example.com"}, params)
}

func TestCompileInsertUnknownColumn(t *testing.T) {
	c := testCompiler()
	_, _, err := c.CompileInsert(context.Background(), "users", map[string]any{
		"email":    "a@example.com",
		"passwd`)": "x",
	})
	require.Error(t, err)
	assert.Equal(t, dberr.KindUnknownColumn, dberr.KindOf(err))
}

func TestCompileInsertEmptyRow(t *testing.T) {
	c := testCompiler()
	_, _, err := c.CompileInsert(context.Background(), "users", nil)
	require.Error(t, err)
	assert.Equal(t, dberr.KindMissingField, dberr.KindOf(err))
}

func TestCompileInsertOnlyAutoIncrement(t *testing.T) {
	c := testCompiler()
	_, _, err := c.CompileInsert(context.Background(), "users", map[string]any{"id": 1})
	require.Error(t, err)
	assert.Equal(t, dberr.KindMissingField, dberr.KindOf(err))
}

func TestCompileUpdate(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileUpdate(context.Background(), "users",
		map[string]any{"status": "blocked"},
		[]Condition{{Column: "email", Operator: "=", Value: "a@example.com"}})
	require.NoError(t, err)
	assert.Equal(t, "UPDATE `users` SET `status` = ? WHERE `email` = ?", sql)
	assert.Equal(t, []any{"blocked", "a@example.com"}, params)
}

func TestCompileUpdateRequiresConditions(t *testing.T) {
	c := testCompiler()

	_, _, err := c.CompileUpdate(context.Background(), "users", map[string]any{"status": "x"}, nil)
	require.Error(t, err)
	assert.Equal(t, dberr.KindMissingField, dberr.KindOf(err))

	// Blank-column entries compile to nothing, which must also be refused.
	_, _, err = c.CompileUpdate(context.Background(), "users", map[string]any{"status": "x"},
		[]Condition{{Column: "", Operator: "=", Value: "y"}})
	require.Error(t, err)
	assert.Equal(t, dberr.KindMissingField, dberr.KindOf(err))
}

func TestCompileDelete(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileDelete(context.Background(), "users",
		[]Condition{{Column: "status", Operator: "=", Value: "blocked"}})
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users` WHERE `status` = ?", sql)
	assert.Equal(t, []any{"blocked"}, params)
}

func TestCompileDeleteRequiresConditions(t *testing.T) {
	c := testCompiler()
	_, _, err := c.CompileDelete(context.Background(), "users", nil)
	require.Error(t, err)
	assert.Equal(t, dberr.KindMissingField, dberr.KindOf(err))
}

func TestWhereByKeySingleColumn(t *testing.T) {
	c := testCompiler()
	where, err := c.WhereByKey(context.Background(), "users", "42")
	require.NoError(t, err)
	assert.Equal(t, "`id` = ?", where.SQL)
	assert.Equal(t, []any{"42"}, where.Params)
}

func TestWhereByKeyComposite(t *testing.T) {
	c := testCompiler()
	where, err := c.WhereByKey(context.Background(), "order_items", "7_13")
	require.NoError(t, err)
	assert.Equal(t, "`order_id` = ? AND `product_id` = ?", where.SQL)
	assert.Equal(t, []any{"7", "13"}, where.Params)
}

func TestWhereByKeyMalformedToken(t *testing.T) {
	c := testCompiler()
	_, err := c.WhereByKey(context.Background(), "order_items", "7_13_9")
	require.Error(t, err)
	assert.Equal(t, dberr.KindMalformedKey, dberr.KindOf(err))
}

func TestCompileSelectByKey(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileSelectByKey(context.Background(), "order_items", "7_13")
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM `order_items` WHERE `order_id` = ? AND `product_id` = ?", sql)
	assert.Equal(t, []any{"7", "13"}, params)
}

func TestCompileDeleteByKey(t *testing.T) {
	c := testCompiler()
	sql, params, err := c.CompileDeleteByKey(context.Background(), "users", "42")
	require.NoError(t, err)
	assert.Equal(t, "DELETE FROM `users` WHERE `id` = ?", sql)
	assert.Equal(t, []any{"42"}, params)
}
