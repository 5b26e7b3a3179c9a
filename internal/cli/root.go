// Package cli implements the shelf command-line interface.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/mesh-intelligence/shelf/internal/config"
	"github.com/mesh-intelligence/shelf/internal/csvstore"
	"github.com/mesh-intelligence/shelf/internal/paths"
	"github.com/mesh-intelligence/shelf/internal/repl"
	"github.com/mesh-intelligence/shelf/internal/ui"
	"github.com/mesh-intelligence/shelf/pkg/types"
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	configDir string
	tableFile string
	logLevel  string
	jsonMode  bool
	noColor   bool
}

// app is the state shared by the commands of one invocation. It is filled
// in by the root PersistentPreRunE.
type app struct {
	flags     rootFlags
	configDir string
	settings  config.Settings
	logger    *slog.Logger
	store     *csvstore.Store
	repo      *csvstore.Repository
}

// Options configures NewRootCmd.
type Options struct {
	// Filters are the columns "shelf find" gets a flag for. They come from
	// the configuration, which has to be read before flags are parsed.
	Filters []string
}

// NewRootCmd creates the top-level "shelf" command with global flags and all
// subcommands registered. Without a subcommand it starts an interactive
// session.
func NewRootCmd(opts Options) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "shelf",
		Short: "Manage a library of books stored in a CSV file",
		Long: `Shelf manages a library of books. You can add, remove, search, and
modify books using subcommands, or run it without arguments for an
interactive session.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return repl.New(a.repo, a.store.Schema(), cmd.OutOrStdout(), a.logger).Run(cmd.InOrStdin())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configDir, "config-dir", "", "configuration directory (default: $XDG_CONFIG_HOME/shelf)")
	pf.StringVar(&a.flags.tableFile, "table", "", "books table file (default: table_file from config)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level: debug, info, warn, error (default: log_level from config)")
	pf.BoolVar(&a.flags.jsonMode, "json", false, "output in JSON format")
	pf.BoolVar(&a.flags.noColor, "no-color", false, "disable colored output")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newInitCmd(a))
	root.AddCommand(newAddCmd(a))
	root.AddCommand(newDeleteCmd(a))
	root.AddCommand(newFindCmd(a, opts.Filters))
	root.AddCommand(newListCmd(a))
	root.AddCommand(newModifyCmd(a))
	root.AddCommand(newBackupCmd(a))
	root.AddCommand(newRestoreCmd(a))
	root.AddCommand(newExportCmd(a))

	return root
}

// setup loads the configuration and opens the table it names.
func (a *app) setup(cmd *cobra.Command) error {
	ui.InitColors(a.flags.noColor)
	if !needsTable(cmd) {
		return nil
	}

	configDir, err := paths.ResolveConfigDir(a.flags.configDir)
	if err != nil {
		return fmt.Errorf("resolve config dir: %w", err)
	}
	v, err := config.Load(configDir)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrConfigInvalid, err)
	}
	a.configDir = configDir
	a.settings = config.FromViper(v)

	level := a.settings.LogLevel
	if a.flags.logLevel != "" {
		level = a.flags.logLevel
	}
	a.logger, err = newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}

	tableFile, err := paths.ResolveTableFile(a.flags.tableFile, a.settings.TableFile)
	if err != nil {
		return fmt.Errorf("resolve table file: %w", err)
	}
	cfg := a.settings.StoreConfig(tableFile)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := checkShorthands(cfg.Schema.Filters); err != nil {
		return err
	}

	a.store, err = csvstore.Open(cfg, a.logger)
	if err != nil {
		return err
	}
	a.repo = csvstore.NewRepository(a.store)
	return nil
}

// needsTable reports whether cmd works on the books table. Informational
// commands run without touching the config or the table.
func needsTable(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", cobra.ShellCompRequestCmd, cobra.ShellCompNoDescRequestCmd:
		return false
	}
	if p := cmd.Parent(); p != nil && p.Name() == "completion" {
		return false
	}
	return true
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd(Options{Filters: preloadFilters(os.Args[1:])})
	if err := root.Execute(); err != nil {
		ui.Error(os.Stderr, "%s", err)
		os.Exit(exitCode(err))
	}
}

// preloadFilters reads the configured filters before the command line is
// parsed so that "shelf find" can offer one flag per filter. Any problem
// falls back to the default filters; the full load in setup reports it.
func preloadFilters(args []string) []string {
	fs := pflag.NewFlagSet("shelf", pflag.ContinueOnError)
	fs.ParseErrorsWhitelist.UnknownFlags = true
	fs.SetOutput(io.Discard)
	fs.Usage = func() {}
	dir := fs.String("config-dir", "", "")
	fs.BoolP("help", "h", false, "")
	_ = fs.Parse(args)

	defaults := config.Default().Filters
	configDir, err := paths.ResolveConfigDir(*dir)
	if err != nil {
		return defaults
	}
	v, err := config.Load(configDir)
	if err != nil {
		return defaults
	}
	return config.FromViper(v).Filters
}
