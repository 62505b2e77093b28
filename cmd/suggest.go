package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mezotv/skill-tree/internal/logging"
	"github.com/mezotv/skill-tree/internal/suggest"
)

var suggestCmd = &cobra.Command{
	Use:   "suggest <interest...>",
	Short: "Stream career suggestions for an interest",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if ep, _ := cmd.Flags().GetString("endpoint"); ep != "" {
			cfg.Client.Endpoint = ep
		}
		asJSON, _ := cmd.Flags().GetBool("json")

		ctx := cmd.Context()
		src, _, closeSources, err := sources(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSources()

		query := strings.Join(args, " ")
		progress := logging.StartProgress(logger)
		update := 0
		out, err := src.Suggest(ctx, query, func(jobs []suggest.Job) {
			update++
			if asJSON {
				return
			}
			fmt.Printf("── update %d ──\n", update)
			printJobs(jobs)
		})
		if err != nil {
			return err
		}

		if out.Fallback {
			logger.Warn("suggestion service unavailable, showing default careers", "err", out.Err)
		} else if out.Err != nil {
			logger.Warn("suggestion stream ended early", "err", out.Err)
		}
		progress.Done(fmt.Sprintf("Received %d suggestions in %d updates", len(out.Jobs), update))

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(suggest.Envelope{Jobs: out.Jobs})
		}
		if update == 0 {
			fmt.Println("No suggestions.")
		}
		return nil
	},
}

func printJobs(jobs []suggest.Job) {
	for i, j := range jobs {
		fmt.Printf("%2d. %-28s  %s\n", i+1, truncate(j.Title, 28), j.Relevance)
	}
}

func init() {
	suggestCmd.Flags().String("endpoint", "", "Base URL of a skilltree server (overrides SKILLTREE_ENDPOINT)")
	suggestCmd.Flags().Bool("json", false, "Print only the final list as JSON")
}
