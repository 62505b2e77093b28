package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/logging"
	"github.com/mezotv/skill-tree/internal/render"
)

var treeCmd = &cobra.Command{
	Use:   "tree <occupation...>",
	Short: "Generate and lay out the skill tree for an occupation",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if ep, _ := cmd.Flags().GetString("endpoint"); ep != "" {
			cfg.Client.Endpoint = ep
		}

		ctx := cmd.Context()
		_, trees, closeSources, err := sources(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer closeSources()

		occupation := strings.Join(args, " ")
		progress := logging.StartProgress(logger)
		g, err := trees.Fetch(ctx, occupation)
		if err != nil {
			return err
		}
		progress.Done(fmt.Sprintf("Loaded %d skills for %s", len(g.Skills), occupation))

		res, err := layout.Compute(g, layoutConfig(cmd, cfg.Layout))
		if err != nil {
			return fmt.Errorf("lay out skill tree: %w", err)
		}
		return writeLayout(cmd, res)
	},
}

func init() {
	treeCmd.Flags().String("endpoint", "", "Base URL of a skilltree server (overrides SKILLTREE_ENDPOINT)")
	addLayoutFlags(treeCmd)
	addOutputFlags(treeCmd)
}

// addOutputFlags registers the output formats shared by tree and layout.
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("json", false, "Print the positioned nodes and edges as JSON")
	cmd.Flags().Bool("dot", false, "Print Graphviz DOT with pinned positions")
	cmd.Flags().String("svg", "", "Write an SVG rendering to this file")
	cmd.Flags().Bool("detailed", false, "Include subject, age and level in DOT/SVG labels")
}

// writeLayout prints res in the format selected by the output flags. The
// default is a terminal table.
func writeLayout(cmd *cobra.Command, res layout.Result) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	asDOT, _ := cmd.Flags().GetBool("dot")
	svgPath, _ := cmd.Flags().GetString("svg")
	detailed, _ := cmd.Flags().GetBool("detailed")
	out := cmd.OutOrStdout()

	if svgPath != "" {
		svg, err := render.SVG(cmd.Context(), render.ToDOT(res, render.Options{Detailed: detailed}))
		if err != nil {
			return err
		}
		if err := os.WriteFile(svgPath, svg, 0o644); err != nil {
			return fmt.Errorf("write svg: %w", err)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", svgPath)
	}

	switch {
	case asJSON:
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case asDOT:
		_, err := io.WriteString(out, render.ToDOT(res, render.Options{Detailed: detailed}))
		return err
	case svgPath != "":
		return nil
	}
	_, err := io.WriteString(out, render.Table(res))
	return err
}
