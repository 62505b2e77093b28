package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mezotv/skill-tree/internal/app"
	"github.com/mezotv/skill-tree/internal/logging"
)

// debugLogFile receives explorer logs with --verbose; the terminal is
// owned by the UI.
const debugLogFile = "skilltree-debug.log"

var exploreCmd = &cobra.Command{
	Use:   "explore [interest...]",
	Short: "Open the terminal explorer",
	Long: "Open the terminal explorer. An interest given as arguments starts a search right away.\n" +
		"With --endpoint the explorer talks to a running skilltree server instead of an LLM.",
	RunE: runExplore,
}

func init() {
	exploreCmd.Flags().String("endpoint", "", "Base URL of a skilltree server (overrides SKILLTREE_ENDPOINT)")
}

func runExplore(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if ep, _ := cmd.Flags().GetString("endpoint"); ep != "" {
		cfg.Client.Endpoint = ep
	}

	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		f, err := os.OpenFile(debugLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open debug log: %w", err)
		}
		defer f.Close()
		logger.SetOutput(f)
	} else {
		logger = logging.Discard()
	}

	ctx := cmd.Context()
	suggestSrc, treeSrc, closeSources, err := sources(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeSources()

	return app.Run(ctx, app.Options{
		Suggest: suggestSrc,
		Trees:   treeSrc,
		Layout:  cfg.Layout,
		Logger:  logger,
		Query:   strings.Join(args, " "),
	})
}
