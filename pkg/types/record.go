package types

// Record is one row of the books table, positionally aligned with
// Schema.Fields.
type Record []string

// Get returns the value of field, or "" when the field is unknown or the
// record is short.
func (r Record) Get(s Schema, field string) string {
	i := s.Index(field)
	if i < 0 || i >= len(r) {
		return ""
	}
	return r[i]
}

// ID returns the identifier column value.
func (r Record) ID(s Schema) string {
	return r.Get(s, s.IDField)
}

// Status returns the status column value.
func (r Record) Status(s Schema) string {
	return r.Get(s, s.StatusField)
}

// Map returns the record keyed by field name.
func (r Record) Map(s Schema) map[string]string {
	m := make(map[string]string, len(s.Fields))
	for i, f := range s.Fields {
		if i < len(r) {
			m[f] = r[i]
		} else {
			m[f] = ""
		}
	}
	return m
}
