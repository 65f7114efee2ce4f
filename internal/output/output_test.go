package output

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tablesmith/internal/dberr"
)

func TestNewFormatter(t *testing.T) {
	for _, name := range []string{"json", "JSON", " json "} {
		f, err := NewFormatter(name)
		require.NoError(t, err)
		assert.IsType(t, jsonFormatter{}, f)
	}
	for _, name := range []string{"", "human", "Human"} {
		f, err := NewFormatter(name)
		require.NoError(t, err)
		assert.IsType(t, humanFormatter{}, f)
	}

	_, err := NewFormatter("yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestJSONStatement(t *testing.T) {
	f, err := NewFormatter("json")
	require.NoError(t, err)

	out, err := f.FormatStatement(&Statement{
		SQL:             "ALTER TABLE `users` ADD COLUMN `age` INT NULL",
		OperationsCount: 1,
		Executed:        true,
		AffectedRows:    0,
		ExecutionTimeMs: 12.5,
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "json", decoded["format"])
	assert.Equal(t, "ALTER TABLE `users` ADD COLUMN `age` INT NULL", decoded["sql"])
	assert.Equal(t, float64(1), decoded["operationsCount"])
	assert.Equal(t, true, decoded["executed"])
	assert.Equal(t, 12.5, decoded["executionTimeMs"])
	assert.NotContains(t, decoded, "affectedRows", "zero counts are omitted")
}

func TestJSONFailure(t *testing.T) {
	f, err := NewFormatter("json")
	require.NoError(t, err)

	out, err := f.FormatFailure(dberr.New(dberr.KindDuplicateName, "Duplicate column name 'age'"))
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, string(dberr.KindDuplicateName), decoded["errorKind"])
	assert.Equal(t, "Duplicate column name 'age'", decoded["message"])
}

func TestHumanStatement(t *testing.T) {
	f, err := NewFormatter("human")
	require.NoError(t, err)

	out, err := f.FormatStatement(&Statement{
		SQL:             "UPDATE `users` SET `status` = ? WHERE `id` = ?",
		Params:          []any{"active", "1"},
		Executed:        true,
		AffectedRows:    2,
		ExecutionTimeMs: 3.25,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"UPDATE `users` SET `status` = ? WHERE `id` = ?;\n"+
			"-- params: [active 1]\n"+
			"-- executed in 3.25 ms, 2 row(s) affected\n",
		out)
}

func TestHumanStatementCompileOnly(t *testing.T) {
	f, err := NewFormatter("human")
	require.NoError(t, err)

	out, err := f.FormatStatement(&Statement{
		SQL:             "ALTER TABLE `users` DROP COLUMN `age`",
		OperationsCount: 1,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"ALTER TABLE `users` DROP COLUMN `age`;\n"+
			"-- operations: 1\n",
		out)
}

func TestHumanStatementInsertID(t *testing.T) {
	f, err := NewFormatter("human")
	require.NoError(t, err)

	out, err := f.FormatStatement(&Statement{
		SQL:          "INSERT INTO `users` (`email`) VALUES (?)",
		Params:       []any{"a@example.com"},
		Executed:     true,
		AffectedRows: 1,
		LastInsertID: 17,
	})
	require.NoError(t, err)
	assert.Contains(t, out, ", 1 row(s) affected, insert id 17\n")
}

func TestHumanFailure(t *testing.T) {
	f, err := NewFormatter("human")
	require.NoError(t, err)

	out, err := f.FormatFailure(dberr.New(dberr.KindUnknownColumn, "column %q does not exist", "nope"))
	require.NoError(t, err)
	assert.Equal(t, "error [UnknownColumn]: column \"nope\" does not exist\n", out)
}
