package cli

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

// Exit codes.
const (
	exitSuccess   = 0
	exitUserError = 1
	exitSysError  = 2
)

// exitCode maps an error to the process exit code. Storage faults are system
// errors; everything else (bad arguments, validation, missing books or
// backups, configuration) is the user's to fix.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitSuccess
	case errors.Is(err, types.ErrIO),
		errors.Is(err, types.ErrOpen),
		errors.Is(err, types.ErrMigration),
		errors.Is(err, types.ErrMalformed):
		return exitSysError
	default:
		return exitUserError
	}
}

// checkShorthands verifies that no two filters share a first letter, since
// each becomes a one-letter flag of "shelf find".
func checkShorthands(filters []string) error {
	seen := make(map[byte]string, len(filters))
	for _, f := range filters {
		if prev, ok := seen[f[0]]; ok {
			return fmt.Errorf("%w: filters %q and %q start with the same letter", types.ErrConfigInvalid, prev, f)
		}
		seen[f[0]] = f
	}
	return nil
}
