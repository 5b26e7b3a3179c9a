package csvstore

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Store owns the table file and its backup.
type Store struct {
	path   string
	backup string
	cfg    types.Config
	schema types.Schema
	logger *slog.Logger
}

// BackupPath returns the backup location for a table file: the same path with
// the extension replaced by ".bak".
func BackupPath(table string) string {
	p := strings.TrimSuffix(table, filepath.Ext(table)) + ".bak"
	if p == table {
		p += ".bak"
	}
	return p
}

// Open returns a Store for cfg.TableFile. A missing file is created with the
// schema header. An existing file whose header differs from the schema is
// migrated. An unreadable or headerless file is an error wrapping
// types.ErrOpen; a failed migration wraps types.ErrMigration.
func Open(cfg types.Config, logger *slog.Logger) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   cfg.TableFile,
		backup: BackupPath(cfg.TableFile),
		cfg:    cfg,
		schema: cfg.Schema,
		logger: logger,
	}

	_, err := os.Stat(s.path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("table file does not exist, creating", "path", s.path)
		if err := s.create(); err != nil {
			return nil, fmt.Errorf("%w: creating %s: %w", types.ErrOpen, s.path, err)
		}
		logger.Info("table file created", "path", s.path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrOpen, err)
	}

	removed, err := removeStaleStaging(s.path)
	if err != nil {
		logger.Warn("removing stale staging files", "err", err)
	}
	for _, name := range removed {
		logger.Info("removed stale staging file", "path", name)
	}

	logger.Debug("checking for migrations", "path", s.path)
	header, err := readHeader(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrOpen, err)
	}
	if s.schema.Matches(header) {
		logger.Debug("no migration required")
		return s, nil
	}
	if err := s.Migrate(header); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the table file path.
func (s *Store) Path() string { return s.path }

// BackupPath returns the backup file path.
func (s *Store) BackupPath() string { return s.backup }

// Schema returns the schema the table is kept in.
func (s *Store) Schema() types.Schema { return s.schema }

// Config returns the configuration the store was opened with.
func (s *Store) Config() types.Config { return s.cfg }

func (s *Store) create() error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	_, err := writeStaged(s.path, func(w io.Writer) (bool, error) {
		cw := csv.NewWriter(w)
		if err := cw.Write(s.schema.Fields); err != nil {
			return false, err
		}
		cw.Flush()
		return true, cw.Error()
	})
	return err
}

// Migrate rewrites the table so its header is the schema's field list.
// oldHeader names the columns of the existing file by position. Values of
// columns present in both layouts are kept, new columns are empty, and
// columns the schema no longer has are dropped. A header that already
// matches is a no-op.
func (s *Store) Migrate(oldHeader []string) error {
	if s.schema.Matches(oldHeader) {
		return nil
	}
	s.logger.Info("starting migration", "from", oldHeader, "to", s.schema.Fields)

	// The migration goes ahead without a fresh backup. Restore is only
	// attempted from a backup taken here so that a stale one never
	// overwrites newer data.
	backedUp := true
	if err := s.Backup(); err != nil {
		backedUp = false
		s.logger.Error("backup before migration failed", "err", err)
	}

	positions := make([]int, len(s.schema.Fields))
	for i, f := range s.schema.Fields {
		positions[i] = slices.Index(oldHeader, f)
	}

	rows := 0
	err := s.rewrite(func(r *csv.Reader, w *csv.Writer) (bool, error) {
		if _, err := r.Read(); err != nil {
			return false, readErr(s.path, err)
		}
		if err := w.Write(s.schema.Fields); err != nil {
			return false, err
		}
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return true, nil
			}
			if err != nil {
				return false, readErr(s.path, err)
			}
			out := make([]string, len(positions))
			for i, p := range positions {
				if p >= 0 && p < len(rec) {
					out[i] = rec[p]
				}
			}
			if err := w.Write(out); err != nil {
				return false, err
			}
			rows++
		}
	})
	if err != nil {
		s.logger.Error("migration failed", "err", err)
		if backedUp {
			if rerr := s.Restore(); rerr != nil {
				s.logger.Error("restore after failed migration", "err", rerr)
			}
		} else {
			s.logger.Warn("no fresh backup, table left as it was")
		}
		return fmt.Errorf("%w: %w", types.ErrMigration, err)
	}
	s.logger.Info("migration done", "rows", rows)
	return nil
}

// Backup copies the table file to the backup path, replacing any earlier
// backup.
func (s *Store) Backup() error {
	if err := copyStaged(s.path, s.backup); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", types.ErrTableNotFound, s.path)
		}
		return fmt.Errorf("%w: backup to %s: %w", types.ErrIO, s.backup, err)
	}
	s.logger.Debug("backup created", "path", s.backup)
	return nil
}

// Restore copies the backup over the table file. Without a backup it only
// logs a warning and returns an error wrapping types.ErrBackupNotFound.
func (s *Store) Restore() error {
	if _, err := os.Stat(s.backup); errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("backup file does not exist", "path", s.backup)
		return fmt.Errorf("%w: %s", types.ErrBackupNotFound, s.backup)
	}
	if err := copyStaged(s.backup, s.path); err != nil {
		return fmt.Errorf("%w: restore from %s: %w", types.ErrIO, s.backup, err)
	}
	s.logger.Info("backup restored", "path", s.backup)
	return nil
}

// openTable opens the table for reading, mapping a missing file to
// types.ErrTableNotFound.
func (s *Store) openTable() (*os.File, error) {
	f, err := os.Open(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrTableNotFound, s.path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	return f, nil
}

// rewrite streams the table through fn into a staging file. The staging file
// replaces the table only when fn returns true.
func (s *Store) rewrite(fn func(r *csv.Reader, w *csv.Writer) (bool, error)) error {
	src, err := s.openTable()
	if err != nil {
		return err
	}
	defer src.Close()

	_, err = writeStaged(s.path, func(w io.Writer) (bool, error) {
		cw := csv.NewWriter(w)
		commit, err := fn(newReader(src), cw)
		if err != nil || !commit {
			return false, err
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return false, err
		}
		// Release the source before the rename replaces it.
		return true, src.Close()
	})
	if err != nil && !errors.Is(err, types.ErrMalformed) && !errors.Is(err, types.ErrIO) {
		err = fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	return err
}

// checkHeader verifies the table still has the schema header. The file may
// have been edited by something else since Open.
func (s *Store) checkHeader(r *csv.Reader) error {
	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s has no header", types.ErrMalformed, s.path)
	}
	if err != nil {
		return readErr(s.path, err)
	}
	if !s.schema.Matches(header) {
		return fmt.Errorf("%w: %s header %v does not match schema, reopen to migrate",
			types.ErrMalformed, s.path, header)
	}
	return nil
}

// scan calls fn for every data row in file order until fn returns false.
func (s *Store) scan(fn func(rec types.Record) bool) error {
	f, err := s.openTable()
	if err != nil {
		return err
	}
	defer f.Close()

	r := newReader(f)
	if err := s.checkHeader(r); err != nil {
		return err
	}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return readErr(s.path, err)
		}
		if !fn(types.Record(rec)) {
			return nil
		}
	}
}

// rowEdit maps one data row to its replacement. A nil result drops the row.
// matched reports whether the row was the one being looked for.
type rowEdit func(rec types.Record) (out types.Record, matched bool)

// editRows rewrites the table through edit and returns how many rows matched.
// The table is replaced only if some row actually changed, so an edit that
// finds nothing leaves the file byte-identical.
func (s *Store) editRows(edit rowEdit) (int, error) {
	matched := 0
	err := s.rewrite(func(r *csv.Reader, w *csv.Writer) (bool, error) {
		if err := s.checkHeader(r); err != nil {
			return false, err
		}
		if err := w.Write(s.schema.Fields); err != nil {
			return false, err
		}
		dirty := false
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return dirty, nil
			}
			if err != nil {
				return false, readErr(s.path, err)
			}
			out, ok := edit(types.Record(rec))
			if ok {
				matched++
			}
			if out == nil {
				dirty = true
				continue
			}
			if !slices.Equal(out, rec) {
				dirty = true
			}
			if err := w.Write(out); err != nil {
				return false, err
			}
		}
	})
	if err != nil {
		return 0, err
	}
	return matched, nil
}

// appendRow adds rec at the end of the table as one write followed by fsync.
func (s *Store) appendRow(rec types.Record) error {
	line, err := encodeRow(rec)
	if err != nil {
		return fmt.Errorf("%w: encoding row: %w", types.ErrIO, err)
	}

	f, err := os.OpenFile(s.path, os.O_RDWR|os.O_APPEND, 0)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", types.ErrTableNotFound, s.path)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	defer f.Close()

	missing, err := missingNewline(f)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrIO, err)
	}
	if missing {
		line = append([]byte{'\n'}, line...)
	}
	if _, err := f.Write(line); err != nil {
		return fmt.Errorf("%w: appending to %s: %w", types.ErrIO, s.path, err)
	}
	if err := f.Sync(); err != nil {
		return fmt.Errorf("%w: syncing %s: %w", types.ErrIO, s.path, err)
	}
	return f.Close()
}

// missingNewline reports whether a non-empty file does not end in '\n'.
func missingNewline(f *os.File) (bool, error) {
	fi, err := f.Stat()
	if err != nil {
		return false, err
	}
	if fi.Size() == 0 {
		return false, nil
	}
	b := make([]byte, 1)
	if _, err := f.ReadAt(b, fi.Size()-1); err != nil {
		return false, err
	}
	return b[0] != '\n', nil
}

// countLines returns the number of lines in the table, counting a final line
// without a trailing newline.
func (s *Store) countLines() (int, error) {
	f, err := s.openTable()
	if err != nil {
		return 0, err
	}
	defer f.Close()

	buf := make([]byte, 1<<20)
	lines := 0
	read := 0
	var last byte
	for {
		n, err := f.Read(buf)
		for _, b := range buf[:n] {
			if b == '\n' {
				lines++
			}
		}
		if n > 0 {
			last = buf[n-1]
			read += n
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w: counting lines in %s: %w", types.ErrIO, s.path, err)
		}
	}
	if read > 0 && last != '\n' {
		lines++
	}
	return lines, nil
}
