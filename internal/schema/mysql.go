package schema

import (
	"context"
	"database/sql"

	"tablesmith/internal/dberr"
)

// DB is the live metadata provider. It reads information_schema on the
// connected database; the schema scope is whatever DATABASE() resolves to on
// the pooled connection.
type DB struct {
	db *sql.DB
}

// NewDB wraps an open connection pool. The provider does not own the pool
// and never closes it.
func NewDB(db *sql.DB) *DB {
	return &DB{db: db}
}

func (p *DB) Columns(ctx context.Context, table string) ([]Column, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT
			c.column_name,
			c.column_type,
			c.is_nullable,
			c.column_default,
			c.extra
		FROM information_schema.columns c
		WHERE c.table_schema = DATABASE() AND c.table_name = ?
		ORDER BY c.ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, colType, nullable, defaultVal, extra sql.NullString
		if err := rows.Scan(&name, &colType, &nullable, &defaultVal, &extra); err != nil {
			return nil, err
		}

		col := Column{
			Name:     name.String,
			DataType: colType.String,
			Nullable: nullable.String == "YES",
			Extra:    extra.String,
		}
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(cols) == 0 {
		return nil, dberr.New(dberr.KindUnknownTable, "table %q does not exist", table)
	}
	return cols, nil
}

func (p *DB) PrimaryKeyColumns(ctx context.Context, table string) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT k.column_name
		FROM information_schema.key_column_usage k
		WHERE k.table_schema = DATABASE()
		  AND k.table_name = ?
		  AND k.constraint_name = 'PRIMARY'
		ORDER BY k.ordinal_position
	`, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
