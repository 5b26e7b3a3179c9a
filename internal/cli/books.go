package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/shelf/internal/ui"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add <title> <author> <year>",
		Short: "Add a book",
		Long: `Add a book to the library. The book gets a new id and the first
configured status.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := a.repo.Insert(args[0], args[1], args[2])
			if err != nil {
				return err
			}
			if a.flags.jsonMode {
				return writeJSON(cmd, map[string]string{"id": id})
			}
			ui.Success(cmd.OutOrStdout(), "Book %q added with id %s", args[0], id)
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a book by id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.repo.Delete(args[0])
			if err != nil {
				return err
			}
			return a.reportFound(cmd, found, args[0], "deleted")
		},
	}
}

func newModifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "modify <id> <status...>",
		Short: "Change the status of a book",
		Long: `Change the status of a book. Status words are joined with spaces,
so "shelf modify 3 in stock" is the same as "shelf modify 3 'in stock'".`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			found, err := a.repo.Modify(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			return a.reportFound(cmd, found, args[0], "modified")
		},
	}
}

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all books",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			recs, err := a.repo.SelectAll()
			if err != nil {
				return err
			}
			return a.render(cmd, recs)
		},
	}
}

// newFindCmd registers one string flag per filter. The shorthand is the
// first letter of the filter unless another filter already took it; setup
// rejects such configurations before any command runs.
func newFindCmd(a *app, filters []string) *cobra.Command {
	values := make(map[string]*string, len(filters))
	cmd := &cobra.Command{
		Use:   "find",
		Short: "Find books by field values",
		Long: `Find books whose fields equal all the given values. Without any
filter every book is listed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			query := make(map[string]string, len(values))
			for name, v := range values {
				if cmd.Flags().Changed(name) {
					query[name] = *v
				}
			}
			recs, err := a.repo.Select(query)
			if err != nil {
				return err
			}
			return a.render(cmd, recs)
		},
	}

	taken := map[string]bool{}
	for _, f := range filters {
		if f == "" || values[f] != nil {
			continue
		}
		short := f[:1]
		usage := fmt.Sprintf("match books by %s", f)
		if taken[short] {
			values[f] = cmd.Flags().String(f, "", usage)
			continue
		}
		taken[short] = true
		values[f] = cmd.Flags().StringP(f, short, "", usage)
	}
	return cmd
}

func (a *app) render(cmd *cobra.Command, recs []types.Record) error {
	if a.flags.jsonMode {
		return ui.RecordsJSON(cmd.OutOrStdout(), a.store.Schema(), recs)
	}
	return ui.Records(cmd.OutOrStdout(), a.store.Schema(), recs)
}

func (a *app) reportFound(cmd *cobra.Command, found bool, id, verb string) error {
	if a.flags.jsonMode {
		return writeJSON(cmd, map[string]any{"id": id, "found": found})
	}
	if found {
		ui.Success(cmd.OutOrStdout(), "Book %s %s", id, verb)
	} else {
		ui.Warning(cmd.OutOrStdout(), "Book %s not found", id)
	}
	return nil
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
