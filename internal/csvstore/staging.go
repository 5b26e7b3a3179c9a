package csvstore

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// renameFile is swapped in tests to simulate a failing replace.
var renameFile = os.Rename

// stagingPrefix returns the name prefix of staging files for dst.
func stagingPrefix(dst string) string {
	return "." + filepath.Base(dst) + ".staging-"
}

// newStagingName returns a fresh staging path next to dst.
func newStagingName(dst string) string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return filepath.Join(filepath.Dir(dst), stagingPrefix(dst)+id.String())
}

// writeStaged calls fn with a writer on a new staging file. When fn returns
// true the staging file is synced and renamed over dst. Otherwise,
// or on any error, the staging file is removed and dst is left untouched.
func writeStaged(dst string, fn func(w io.Writer) (bool, error)) (bool, error) {
	mode := os.FileMode(0o644)
	if fi, err := os.Stat(dst); err == nil {
		mode = fi.Mode().Perm()
	}

	name := newStagingName(dst)
	f, err := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return false, fmt.Errorf("creating staging file: %w", err)
	}
	discard := func() {
		f.Close()
		os.Remove(name)
	}

	bw := bufio.NewWriter(f)
	commit, err := fn(bw)
	if err != nil || !commit {
		discard()
		return false, err
	}
	if err := bw.Flush(); err != nil {
		discard()
		return false, fmt.Errorf("flushing staging file: %w", err)
	}
	if err := f.Sync(); err != nil {
		discard()
		return false, fmt.Errorf("syncing staging file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(name)
		return false, fmt.Errorf("closing staging file: %w", err)
	}
	if err := renameFile(name, dst); err != nil {
		os.Remove(name)
		return false, fmt.Errorf("replacing %s: %w", dst, err)
	}
	return true, nil
}

// copyStaged replaces dst with a copy of src.
func copyStaged(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	_, err = writeStaged(dst, func(w io.Writer) (bool, error) {
		if _, err := io.Copy(w, in); err != nil {
			return false, err
		}
		return true, nil
	})
	return err
}

// removeStaleStaging deletes staging files for dst left behind by an
// interrupted process. It returns the names it removed.
func removeStaleStaging(dst string) ([]string, error) {
	dir := filepath.Dir(dst)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	prefix := stagingPrefix(dst)
	var removed []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if err := os.Remove(path); err != nil {
			return removed, err
		}
		removed = append(removed, path)
	}
	return removed, nil
}
