package sqlexport

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestExportWritesAllRecords(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "books.db")
	schema := types.DefaultSchema()
	records := []types.Record{
		{"1", "War and Peace", "Tolstoy", "1869", "in-stock"},
		{"2", "Dune", "Herbert", "1965", "issued"},
	}

	n, err := Export(context.Background(), dbPath, "", schema, records)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	rows, err := db.Query("SELECT id, title, author, year, status FROM books ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var got []types.Record
	for rows.Next() {
		rec := make(types.Record, 5)
		require.NoError(t, rows.Scan(&rec[0], &rec[1], &rec[2], &rec[3], &rec[4]))
		got = append(got, rec)
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, records, got)
}

func TestExportReplacesExistingTable(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "books.db")
	schema := types.DefaultSchema()
	ctx := context.Background()

	_, err := Export(ctx, dbPath, "catalog", schema, []types.Record{{"1", "A", "a", "1", "in-stock"}})
	require.NoError(t, err)
	_, err = Export(ctx, dbPath, "catalog", schema, nil)
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM catalog").Scan(&count))
	assert.Equal(t, 0, count)
}

func TestExportShortRecordPadsEmpty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "books.db")

	_, err := Export(context.Background(), dbPath, "", types.DefaultSchema(), []types.Record{{"1", "Dune"}})
	require.NoError(t, err)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var status string
	require.NoError(t, db.QueryRow("SELECT status FROM books WHERE id = '1'").Scan(&status))
	assert.Equal(t, "", status)
}

func TestExportRejectsBadNames(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "books.db")

	_, err := Export(context.Background(), dbPath, "books; DROP", types.DefaultSchema(), nil)
	assert.ErrorIs(t, err, ErrInvalidName)

	schema := types.DefaultSchema()
	schema.Fields = append(schema.Fields, "first edition")
	_, err = Export(context.Background(), dbPath, "", schema, nil)
	assert.ErrorIs(t, err, ErrInvalidName)
}
