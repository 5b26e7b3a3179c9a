package types

import (
	"fmt"
	"slices"
	"strings"
)

// Default column names.
const (
	FieldID     = "id"
	FieldTitle  = "title"
	FieldAuthor = "author"
	FieldYear   = "year"
	FieldStatus = "status"
)

// Default book statuses. The first one is assigned to newly inserted books.
const (
	StatusInStock = "in-stock"
	StatusIssued  = "issued"
)

// Schema describes the layout of the books table. Fields order is both the
// on-disk column order and the canonical order after migration.
type Schema struct {
	Fields      []string // Ordered, unique column names.
	Filters     []string // Columns usable as search filters.
	Statuses    []string // Accepted status values, normalized. First is the default.
	IDField     string   // Identifier column.
	StatusField string   // Status column.
}

// DefaultSchema returns the schema a freshly generated configuration uses.
func DefaultSchema() Schema {
	return Schema{
		Fields:      []string{FieldID, FieldTitle, FieldAuthor, FieldYear, FieldStatus},
		Filters:     []string{FieldTitle, FieldAuthor, FieldYear},
		Statuses:    []string{StatusInStock, StatusIssued},
		IDField:     FieldID,
		StatusField: FieldStatus,
	}
}

// Validate checks the schema invariants. Every failure wraps ErrSchemaInvalid.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrSchemaInvalid)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if f == "" {
			return fmt.Errorf("%w: empty field name", ErrSchemaInvalid)
		}
		if seen[f] {
			return fmt.Errorf("%w: duplicate field %q", ErrSchemaInvalid, f)
		}
		seen[f] = true
	}
	if !seen[s.IDField] {
		return fmt.Errorf("%w: id field %q is not a column", ErrSchemaInvalid, s.IDField)
	}
	if !seen[s.StatusField] {
		return fmt.Errorf("%w: status field %q is not a column", ErrSchemaInvalid, s.StatusField)
	}
	for _, f := range s.Filters {
		if !seen[f] {
			return fmt.Errorf("%w: filter %q is not a column", ErrSchemaInvalid, f)
		}
	}
	if len(s.Statuses) == 0 {
		return fmt.Errorf("%w: no statuses", ErrSchemaInvalid)
	}
	for _, st := range s.Statuses {
		if st == "" || st != normalizeStatus(st) {
			return fmt.Errorf("%w: status %q must be trimmed lower case", ErrSchemaInvalid, st)
		}
	}
	return nil
}

// Index returns the column position of name, or -1 if it is not a field.
func (s Schema) Index(name string) int {
	return slices.Index(s.Fields, name)
}

// IsFilterable reports whether name may be used as a search filter.
func (s Schema) IsFilterable(name string) bool {
	return slices.Contains(s.Filters, name)
}

// Matches reports whether header is exactly the schema's field list.
func (s Schema) Matches(header []string) bool {
	return slices.Equal(s.Fields, header)
}

// DefaultStatus returns the status assigned to new books.
func (s Schema) DefaultStatus() string {
	if len(s.Statuses) == 0 {
		return ""
	}
	return s.Statuses[0]
}

// NormalizeStatus trims and lower-cases status and reports whether the result
// is one of the accepted statuses.
func (s Schema) NormalizeStatus(status string) (string, bool) {
	n := normalizeStatus(status)
	return n, slices.Contains(s.Statuses, n)
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}
