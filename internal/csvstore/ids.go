package csvstore

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// nextID returns the identifier for a new book according to the configured
// strategy.
func (r *Repository) nextID() (string, error) {
	switch r.strategy {
	case types.IDLines:
		// Line count including the header. After deletions this can reuse
		// the id of a book that was removed.
		n, err := r.store.countLines()
		if err != nil {
			return "", err
		}
		return strconv.Itoa(n), nil
	case types.IDSequence:
		highest := 0
		err := r.store.scan(func(rec types.Record) bool {
			if n, err := strconv.Atoi(rec.ID(r.schema)); err == nil && n > highest {
				highest = n
			}
			return true
		})
		if err != nil {
			return "", err
		}
		return strconv.Itoa(highest + 1), nil
	case types.IDUUID:
		id, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generating uuid: %w", err)
		}
		return id.String(), nil
	default:
		return "", fmt.Errorf("%w: unknown id strategy %q", types.ErrConfigInvalid, r.strategy)
	}
}
