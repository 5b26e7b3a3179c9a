package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/config"
	"github.com/mesh-intelligence/shelf/internal/sqlexport"
	"github.com/mesh-intelligence/shelf/internal/ui"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the config file and the books table",
		Long: `Create config.yaml in the config directory and the books table if
they do not exist yet. An existing table with an outdated header is
migrated to the configured fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// setup has already written the default config and opened the
			// table; init only reports where they live.
			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				return writeJSON(cmd, map[string]string{
					"config": config.Path(a.configDir),
					"table":  a.store.Path(),
					"backup": a.store.BackupPath(),
				})
			}
			ui.Success(out, "Config: %s", config.Path(a.configDir))
			ui.Success(out, "Table:  %s", a.store.Path())
			return nil
		},
	}
}

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup",
		Short: "Copy the books table to its backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Backup(); err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), "Backup written to %s", a.store.BackupPath())
			return nil
		},
	}
}

func newRestoreCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Replace the books table with its backup file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.Restore(); err != nil {
				return err
			}
			ui.Success(cmd.OutOrStdout(), "Table restored from %s", a.store.BackupPath())
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	var table string
	cmd := &cobra.Command{
		Use:   "export <sqlite-file>",
		Short: "Export all books into a SQLite database",
		Long: `Export all books into a table of a SQLite database. The table is
replaced on every export; the CSV file stays the source of truth.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.repo.SelectAll()
			if err != nil {
				return err
			}
			n, err := sqlexport.Export(cmd.Context(), args[0], table, a.store.Schema(), recs)
			if errors.Is(err, sqlexport.ErrInvalidName) {
				return fmt.Errorf("%w: %w", types.ErrValidation, err)
			}
			if err != nil {
				return fmt.Errorf("%w: export: %w", types.ErrIO, err)
			}
			if a.flags.jsonMode {
				return writeJSON(cmd, map[string]any{"database": args[0], "table": table, "rows": n})
			}
			ui.Success(cmd.OutOrStdout(), "Exported %d books to %s (table %s)", n, args[0], table)
			return nil
		},
	}
	cmd.Flags().StringVar(&table, "sql-table", sqlexport.DefaultTable, "name of the SQLite table")
	return cmd
}
