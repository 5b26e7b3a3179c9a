package csvstore

import (
	"fmt"
	"log/slog"
	"slices"
	"sort"
	"strings"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Repository implements types.Repository on a Store.
type Repository struct {
	store    *Store
	schema   types.Schema
	strategy string
	logger   *slog.Logger
}

var _ types.Repository = (*Repository)(nil)

// NewRepository returns a Repository backed by store.
func NewRepository(store *Store) *Repository {
	return &Repository{
		store:    store,
		schema:   store.Schema(),
		strategy: store.Config().Strategy(),
		logger:   store.logger,
	}
}

// Store returns the underlying table store.
func (r *Repository) Store() *Store { return r.store }

// SelectAll returns every book in file order.
func (r *Repository) SelectAll() ([]types.Record, error) {
	r.logger.Debug("selecting all books")
	var books []types.Record
	err := r.store.scan(func(rec types.Record) bool {
		books = append(books, rec)
		return true
	})
	if err != nil {
		return nil, err
	}
	return books, nil
}

// filter is a usable search condition: a column position and the lower-cased
// value it must equal.
type filter struct {
	field string
	index int
	value string
}

func (f filter) match(rec types.Record) bool {
	return strings.ToLower(rec[f.index]) == f.value
}

// cleanFilters drops keys that are not filterable, logging each, and returns
// the rest in schema filter order.
func (r *Repository) cleanFilters(filters map[string]string) []filter {
	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if !r.schema.IsFilterable(k) {
			r.logger.Warn("filter is not available and will be ignored", "filter", k)
		}
	}

	var active []filter
	for _, f := range r.schema.Filters {
		v, ok := filters[f]
		if !ok {
			continue
		}
		active = append(active, filter{field: f, index: r.schema.Index(f), value: strings.ToLower(v)})
	}
	return active
}

// Select returns books matching every usable filter. The first filter is
// applied while scanning the file; the others narrow the matches in memory.
func (r *Repository) Select(filters map[string]string) ([]types.Record, error) {
	r.logger.Debug("selecting books", "filters", filters)
	active := r.cleanFilters(filters)
	if len(active) == 0 {
		return r.SelectAll()
	}

	first := active[0]
	var books []types.Record
	err := r.store.scan(func(rec types.Record) bool {
		if first.match(rec) {
			books = append(books, rec)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	for _, f := range active[1:] {
		books = slices.DeleteFunc(books, func(rec types.Record) bool { return !f.match(rec) })
	}
	r.logger.Debug("books selected", "count", len(books))
	return books, nil
}

// Insert appends a new book with the default status and returns its id.
// Columns other than id, title, author, year, and status are left empty.
func (r *Repository) Insert(title, author, year string) (string, error) {
	r.logger.Debug("inserting book", "title", title, "author", author, "year", year)
	id, err := r.nextID()
	if err != nil {
		r.logger.Error("computing new book id failed", "err", err)
		return "", err
	}

	rec := make(types.Record, len(r.schema.Fields))
	for i, f := range r.schema.Fields {
		switch f {
		case r.schema.IDField:
			rec[i] = id
		case r.schema.StatusField:
			rec[i] = r.schema.DefaultStatus()
		case types.FieldTitle:
			rec[i] = title
		case types.FieldAuthor:
			rec[i] = author
		case types.FieldYear:
			rec[i] = year
		}
	}

	if err := r.store.appendRow(rec); err != nil {
		r.logger.Error("inserting book failed", "err", err)
		return "", err
	}
	r.logger.Info("book inserted", "id", id, "title", title, "author", author, "year", year)
	return id, nil
}

// Delete removes every book whose id equals id.
func (r *Repository) Delete(id string) (bool, error) {
	r.logger.Debug("deleting book", "id", id)
	n, err := r.store.editRows(func(rec types.Record) (types.Record, bool) {
		if rec.ID(r.schema) == id {
			return nil, true
		}
		return rec, false
	})
	if err != nil {
		return false, err
	}
	if n == 0 {
		r.logger.Info("book not found", "id", id)
		return false, nil
	}
	r.logger.Info("book deleted", "id", id)
	return true, nil
}

// Modify sets the status of the book with the given id. The status is
// trimmed and lower-cased before it is checked against the schema.
func (r *Repository) Modify(id, status string) (bool, error) {
	r.logger.Debug("modifying book status", "id", id, "status", status)
	norm, ok := r.schema.NormalizeStatus(status)
	if !ok {
		r.logger.Warn("status is not available", "status", norm, "statuses", r.schema.Statuses)
		return false, fmt.Errorf("%w %q (valid: %s)", types.ErrInvalidStatus, norm,
			strings.Join(r.schema.Statuses, ", "))
	}

	statusIdx := r.schema.Index(r.schema.StatusField)
	n, err := r.store.editRows(func(rec types.Record) (types.Record, bool) {
		if rec.ID(r.schema) != id {
			return rec, false
		}
		out := slices.Clone(rec)
		out[statusIdx] = norm
		return out, true
	})
	if err != nil {
		return false, err
	}
	if n == 0 {
		r.logger.Info("book not found", "id", id)
		return false, nil
	}
	r.logger.Info("book modified", "id", id, "status", norm)
	return true, nil
}
