// Package sqlexport copies the books table into a SQLite database so it can
// be queried with SQL tools.
package sqlexport

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// DefaultTable is the SQLite table name used when none is given.
const DefaultTable = "books"

// ErrInvalidName is returned for a table or column name that is not a plain
// identifier.
var ErrInvalidName = errors.New("invalid sqlite identifier")

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Export writes records into table in the SQLite database at dbPath. The
// table is dropped and recreated with one TEXT column per schema field, in
// schema order, and every record is inserted in a single transaction. It
// returns the number of rows written.
func Export(ctx context.Context, dbPath, table string, schema types.Schema, records []types.Record) (int, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return 0, fmt.Errorf("%w: table %q", ErrInvalidName, table)
	}
	for _, f := range schema.Fields {
		if !identRe.MatchString(f) {
			return 0, fmt.Errorf("%w: column %q", ErrInvalidName, f)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	defer db.Close()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning export transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
		return 0, fmt.Errorf("dropping %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, createSQL(table, schema.Fields)); err != nil {
		return 0, fmt.Errorf("creating %s: %w", table, err)
	}

	stmt, err := tx.PrepareContext(ctx, insertSQL(table, schema.Fields))
	if err != nil {
		return 0, fmt.Errorf("preparing insert for %s: %w", table, err)
	}
	defer stmt.Close()

	for i, rec := range records {
		args := make([]any, len(schema.Fields))
		for j := range schema.Fields {
			if j < len(rec) {
				args[j] = rec[j]
			} else {
				args[j] = ""
			}
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return 0, fmt.Errorf("inserting row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing export: %w", err)
	}
	return len(records), nil
}

func createSQL(table string, columns []string) string {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = c + " TEXT NOT NULL DEFAULT ''"
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", table, strings.Join(defs, ", "))
}

func insertSQL(table string, columns []string) string {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))
}
