package csvstore

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

const defaultHeader = "id,title,author,year,status\n"

// quietLogger discards everything.
func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testConfig returns a config pointing at books.csv in a fresh directory.
func testConfig(t *testing.T) types.Config {
	t.Helper()
	return types.Config{
		TableFile: filepath.Join(t.TempDir(), "books.csv"),
		Schema:    types.DefaultSchema(),
	}
}

func writeTable(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func readTable(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// openRepo seeds the table with content (when non-empty) and opens it.
func openRepo(t *testing.T, cfg types.Config, content string) *Repository {
	t.Helper()
	if content != "" {
		writeTable(t, cfg.TableFile, content)
	}
	store, err := Open(cfg, quietLogger())
	require.NoError(t, err)
	return NewRepository(store)
}

// stagingFiles lists staging files next to the table.
func stagingFiles(t *testing.T, table string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(filepath.Dir(table), stagingPrefix(table)+"*"))
	require.NoError(t, err)
	return matches
}
