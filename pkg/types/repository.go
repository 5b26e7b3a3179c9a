package types

// Repository provides the catalog operations the command surface uses.
// Mutations rewrite the backing file; nothing is cached between calls.
type Repository interface {
	// SelectAll returns every book in insertion order.
	// Returns ErrTableNotFound if the table file is missing.
	SelectAll() ([]Record, error)

	// Select returns books matching every filter, compared case-insensitively.
	// Keys that are not filterable columns are ignored. No usable filters
	// returns every book.
	Select(filters map[string]string) ([]Record, error)

	// Insert appends a book with the default status and returns its new id.
	Insert(title, author, year string) (string, error)

	// Delete removes the book with the given id. Reports false when no such
	// book exists; that is not an error.
	Delete(id string) (bool, error)

	// Modify sets the status of the book with the given id. Returns
	// ErrInvalidStatus for a status outside the schema, and false when no
	// such book exists.
	Modify(id, status string) (bool, error)
}
