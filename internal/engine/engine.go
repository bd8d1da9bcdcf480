// Package engine provides a scoped, in-memory SQL engine for star-schema
// derivation. A handle is acquired for the duration of one transform call
// and released deterministically on every exit path.
package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/chevalinn/minilake/internal/models"
)

// Engine wraps a short-lived in-memory SQLite handle.
type Engine struct {
	db *sql.DB
}

// Open acquires a fresh in-memory engine handle.
func Open(ctx context.Context) (*Engine, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open engine: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("open engine: %w", err)
	}
	return &Engine{db: db}, nil
}

// Close releases the engine handle.
func (e *Engine) Close() error {
	return e.db.Close()
}

// Register loads a frame as a table. Column labels pass through verbatim as
// quoted identifiers, so composite labels are queryable.
func (e *Engine) Register(ctx context.Context, table string, frame *models.Frame) error {
	if len(frame.Columns) == 0 {
		return fmt.Errorf("register %s: frame has no columns", table)
	}

	defs := make([]string, len(frame.Columns))
	for i, col := range frame.Columns {
		defs[i] = fmt.Sprintf("%s %s", QuoteIdent(col), columnAffinity(frame, i))
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", QuoteIdent(table), strings.Join(defs, ", "))
	if _, err := e.db.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("register %s: %w", table, err)
	}

	if len(frame.Rows) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(frame.Columns)), ",")
	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", QuoteIdent(table), placeholders)

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("register %s: %w", table, err)
	}
	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("register %s: %w", table, err)
	}
	defer stmt.Close()

	for _, row := range frame.Rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			tx.Rollback()
			return fmt.Errorf("register %s: %w", table, err)
		}
	}
	return tx.Commit()
}

// Query runs a SELECT and materializes the result as a frame.
func (e *Engine) Query(ctx context.Context, query string, args ...any) (*models.Frame, error) {
	rows, err := e.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("engine query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("engine query: %w", err)
	}

	frame := models.NewFrame(columns...)
	for rows.Next() {
		cells := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range cells {
			ptrs[i] = &cells[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("engine query: %w", err)
		}
		for i, v := range cells {
			if b, ok := v.([]byte); ok {
				cells[i] = string(b)
			}
		}
		frame.Rows = append(frame.Rows, cells)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("engine query: %w", err)
	}
	return frame, nil
}

// QuoteIdent quotes an identifier for use in engine SQL.
func QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func columnAffinity(frame *models.Frame, col int) string {
	for _, row := range frame.Rows {
		switch row[col].(type) {
		case float64:
			return "REAL"
		case int64:
			return "INTEGER"
		case string:
			return "TEXT"
		}
	}
	return "TEXT"
}
