package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Schema)
		ok     bool
	}{
		{name: "default schema is valid", mutate: func(s *Schema) {}, ok: true},
		{name: "no fields", mutate: func(s *Schema) { s.Fields = nil }},
		{name: "duplicate field", mutate: func(s *Schema) { s.Fields = append(s.Fields, FieldTitle) }},
		{name: "empty field name", mutate: func(s *Schema) { s.Fields = append(s.Fields, "") }},
		{name: "id field missing", mutate: func(s *Schema) { s.IDField = "isbn" }},
		{name: "status field missing", mutate: func(s *Schema) { s.StatusField = "state" }},
		{name: "filter not a column", mutate: func(s *Schema) { s.Filters = append(s.Filters, "genre") }},
		{name: "no statuses", mutate: func(s *Schema) { s.Statuses = nil }},
		{name: "status not normalized", mutate: func(s *Schema) { s.Statuses = []string{"In-Stock"} }},
		{name: "status with padding", mutate: func(s *Schema) { s.Statuses = []string{" issued"} }},
		{name: "extra column is fine", mutate: func(s *Schema) { s.Fields = append(s.Fields, "genre") }, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSchema()
			tt.mutate(&s)
			err := s.Validate()
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrSchemaInvalid), "got %v", err)
		})
	}
}

func TestSchemaLookups(t *testing.T) {
	s := DefaultSchema()

	assert.Equal(t, 0, s.Index(FieldID))
	assert.Equal(t, 4, s.Index(FieldStatus))
	assert.Equal(t, -1, s.Index("genre"))

	assert.True(t, s.IsFilterable(FieldAuthor))
	assert.False(t, s.IsFilterable(FieldStatus))

	assert.True(t, s.Matches([]string{"id", "title", "author", "year", "status"}))
	assert.False(t, s.Matches([]string{"id", "author", "title", "year", "status"}))
	assert.False(t, s.Matches([]string{"id", "title", "author", "year"}))

	assert.Equal(t, StatusInStock, s.DefaultStatus())
}

func TestSchemaNormalizeStatus(t *testing.T) {
	s := DefaultSchema()

	got, ok := s.NormalizeStatus("  ISSUED ")
	assert.True(t, ok)
	assert.Equal(t, StatusIssued, got)

	got, ok = s.NormalizeStatus("lost")
	assert.False(t, ok)
	assert.Equal(t, "lost", got)
}

func TestRecordAccessors(t *testing.T) {
	s := DefaultSchema()
	r := Record{"2", "Dune", "Herbert", "1965", "issued"}

	assert.Equal(t, "2", r.ID(s))
	assert.Equal(t, "issued", r.Status(s))
	assert.Equal(t, "Herbert", r.Get(s, FieldAuthor))
	assert.Equal(t, "", r.Get(s, "genre"))
	assert.Equal(t, "", Record{"3"}.Get(s, FieldTitle))

	m := r.Map(s)
	assert.Equal(t, "Dune", m[FieldTitle])
	assert.Len(t, m, len(s.Fields))
}

func TestErrorKinds(t *testing.T) {
	assert.ErrorIs(t, ErrTableNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrBackupNotFound, ErrNotFound)
	assert.ErrorIs(t, ErrInvalidStatus, ErrValidation)
	assert.NotErrorIs(t, ErrTableNotFound, ErrValidation)
}
