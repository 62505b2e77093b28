package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mezotv/skill-tree/internal/config"
	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/logging"
	"github.com/mezotv/skill-tree/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "skilltree",
	Short: "Career suggestions and learning skill trees",
	Long: "skilltree suggests careers for an interest and maps the school skills each one\n" +
		"builds on, from age 5 to 18. Run without a command to open the explorer.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runExplore(cmd, args)
	},
}

// Execute runs the root command with ctx.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to a TOML config file (default ./"+config.DefaultFile+" when present)")
	rootCmd.PersistentFlags().String("db", "", "Path to the SQLite audit database (overrides SKILLTREE_DB env var)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(exploreCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(suggestCmd)
	rootCmd.AddCommand(treeCmd)
	rootCmd.AddCommand(layoutCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig reads configuration and applies the persistent flags.
func loadConfig(cmd *cobra.Command) (config.Config, *log.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, nil, err
	}
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		cfg.DB = p
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logging.New(os.Stderr, level), nil
}

// resolveDBPath returns the configured database path (--db flag, then
// SKILLTREE_DB, then the config file), falling back to the default XDG
// path.
func resolveDBPath(cfg config.Config) (string, error) {
	if cfg.DB != "" {
		return cfg.DB, store.EnsureDir(cfg.DB)
	}
	return store.DefaultDBPath()
}

// openStore opens the audit database.
func openStore(cfg config.Config) (*store.Store, error) {
	dbPath, err := resolveDBPath(cfg)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

// addLayoutFlags registers the layout toggles shared by tree and layout.
func addLayoutFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("root", true, "Add the occupation node above the tree")
	cmd.Flags().Bool("ages", true, "Add age markers and the timeline")
	cmd.Flags().Bool("prereqs", false, "Draw declared prerequisites as edges")
}

// layoutConfig applies the layout flags that were set on the command line.
func layoutConfig(cmd *cobra.Command, cfg layout.Config) layout.Config {
	if cmd.Flags().Changed("root") {
		cfg.Root, _ = cmd.Flags().GetBool("root")
	}
	if cmd.Flags().Changed("ages") {
		cfg.AgeMarkers, _ = cmd.Flags().GetBool("ages")
	}
	if cmd.Flags().Changed("prereqs") {
		cfg.PrerequisiteEdges, _ = cmd.Flags().GetBool("prereqs")
	}
	return cfg
}

var errNoProvider = errors.New("no LLM API key configured: set SKILLTREE_<PROVIDER>_API_KEY, one of GEMINI_API_KEY / OPENAI_API_KEY / ANTHROPIC_API_KEY / OPENROUTER_API_KEY, or use --endpoint")
