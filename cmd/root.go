package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/worksheets/internal/config"
	"github.com/abhisek/worksheets/internal/logging"
	"github.com/abhisek/worksheets/internal/render"
	"github.com/abhisek/worksheets/internal/store"
)

var (
	cfg    = defaultConfig()
	logger = zap.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "worksheets",
	Short: "Seeded worksheet variants from a task bank",
	Long: `worksheets fills a worksheet template with tasks from a task bank.

Every variant is reproducible from its seed, no task appears twice in a
variant, and impossible templates are reported with the section that
cannot be filled.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

// Execute runs the command tree and prints diagnostics for any failure.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		if asJSON, _ := rootCmd.PersistentFlags().GetBool("json-errors"); asJSON {
			_ = render.DiagnosticsJSON(os.Stderr, err)
		} else {
			_ = render.Diagnostics(os.Stderr, err)
		}
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Config file (overrides WORKSHEETS_CONFIG env var)")
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides WORKSHEETS_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Debug logging")
	rootCmd.PersistentFlags().String("log-format", "", "Log encoding: console or json")
	rootCmd.PersistentFlags().Bool("json-errors", false, "Print failures as JSON")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(templateCmd)
	rootCmd.AddCommand(bankCmd)
	rootCmd.AddCommand(variantCmd)
	rootCmd.AddCommand(versionCmd)
}

func defaultConfig() *config.Config {
	c := config.DefaultConfig()
	return &c
}

// setup loads configuration and builds the logger before any subcommand.
func setup(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString("config")
	loaded, err := config.Load(path)
	if err != nil {
		return err
	}
	cfg = loaded

	logCfg := logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File:   cfg.Log.File,
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		logCfg.Level = "debug"
	}
	if f, _ := cmd.Flags().GetString("log-format"); f != "" {
		logCfg.Format = f
	}
	l, err := logging.New(logCfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	logger = l
	if cfg.Source != "" {
		logger.Debug("config loaded", zap.String("file", cfg.Source))
	}
	return nil
}

// resolveDBPath returns the database path using --db flag (highest priority),
// then the config file, then WORKSHEETS_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return st, nil
}
