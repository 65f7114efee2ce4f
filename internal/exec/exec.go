// Package exec runs compiled statements against the live database and turns
// outcomes into structured results. It never retries and opens no explicit
// transactions: ALTER statements are single atomic statements at the engine
// level, and cancellation is whatever the driver enforces via the context.
package exec

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tablesmith/internal/dberr"
)

// Result captures the outcome metadata of one executed statement.
type Result struct {
	SQL          string
	AffectedRows int64
	LastInsertID int64
	Duration     time.Duration
}

// ExecutionTimeMs reports the wall-clock execution time in milliseconds.
func (r *Result) ExecutionTimeMs() float64 {
	return float64(r.Duration) / float64(time.Millisecond)
}

// Runner executes statements over a pooled connection it owns.
type Runner struct {
	db *sql.DB
}

// Connect opens a connection pool for the DSN and verifies it with a ping.
func Connect(ctx context.Context, dsn string) (*Runner, error) {
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if pingErr := db.PingContext(ctx); pingErr != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %v; additionally failed to close connection: %w", pingErr, closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", pingErr)
	}
	return &Runner{db: db}, nil
}

// NewRunner wraps an existing pool; the caller keeps ownership of it.
func NewRunner(db *sql.DB) *Runner {
	return &Runner{db: db}
}

// DB exposes the underlying pool so the schema metadata provider can share
// the connection.
func (r *Runner) DB() *sql.DB {
	return r.db
}

// Close releases the pool when the Runner owns one.
func (r *Runner) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Exec runs one statement with bound parameters, timing the call. Affected
// rows and the last generated identifier are captured where the driver
// reports them; DDL statements report neither, which the errors here
// deliberately swallow. Native failures come back classified.
func (r *Runner) Exec(ctx context.Context, sqlText string, params ...any) (*Result, error) {
	start := time.Now()
	res, err := r.db.ExecContext(ctx, sqlText, params...)
	elapsed := time.Since(start)
	if err != nil {
		return nil, dberr.Classify(err)
	}

	result := &Result{SQL: sqlText, Duration: elapsed}
	if affected, err := res.RowsAffected(); err == nil {
		result.AffectedRows = affected
	}
	if isInsert(sqlText) {
		if id, err := res.LastInsertId(); err == nil {
			result.LastInsertID = id
		}
	}
	return result, nil
}

// Query runs a row-returning statement and materializes all rows, timing the
// call the same way Exec does.
func (r *Runner) Query(ctx context.Context, sqlText string, params ...any) ([]string, [][]any, *Result, error) {
	start := time.Now()
	rows, err := r.db.QueryContext(ctx, sqlText, params...)
	if err != nil {
		return nil, nil, nil, dberr.Classify(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, nil, dberr.Classify(err)
	}

	var data [][]any
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, nil, nil, dberr.Classify(err)
		}
		for i, v := range values {
			if b, ok := v.([]byte); ok {
				values[i] = string(b)
			}
		}
		data = append(data, values)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, nil, dberr.Classify(err)
	}

	result := &Result{SQL: sqlText, Duration: time.Since(start), AffectedRows: int64(len(data))}
	return columns, data, result, nil
}

func isInsert(sqlText string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(sqlText)), "INSERT")
}
