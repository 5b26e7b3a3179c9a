package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/shelf/pkg/types"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"invalid status", types.ErrInvalidStatus, exitUserError},
		{"missing backup", types.ErrBackupNotFound, exitUserError},
		{"bad config", fmt.Errorf("%w: fields", types.ErrConfigInvalid), exitUserError},
		{"argument error", errors.New("accepts 1 arg(s), received 0"), exitUserError},
		{"io", fmt.Errorf("%w: write", types.ErrIO), exitSysError},
		{"open", fmt.Errorf("%w: %w", types.ErrOpen, types.ErrMigration), exitSysError},
		{"malformed", fmt.Errorf("books.csv: %w", types.ErrMalformed), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestCheckShorthands(t *testing.T) {
	assert.NoError(t, checkShorthands([]string{"title", "author", "year"}))
	assert.NoError(t, checkShorthands(nil))
	assert.ErrorIs(t, checkShorthands([]string{"title", "author", "type"}), types.ErrConfigInvalid)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"error", slog.LevelError},
		{"critical", slog.LevelError},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseLevel(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseLevel("verbose")
	assert.ErrorIs(t, err, types.ErrConfigInvalid)
}
