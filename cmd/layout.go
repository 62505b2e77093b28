package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mezotv/skill-tree/internal/layout"
	"github.com/mezotv/skill-tree/internal/skillgraph"
)

var layoutCmd = &cobra.Command{
	Use:   "layout <graph.json>",
	Short: "Lay out a skill graph read from a file (- for stdin)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		g, err := skillgraph.Decode(data)
		if err != nil {
			return err
		}
		res, err := layout.Compute(g, layoutConfig(cmd, cfg.Layout))
		if err != nil {
			return fmt.Errorf("lay out %s: %w", args[0], err)
		}
		return writeLayout(cmd, res)
	},
}

func init() {
	addLayoutFlags(layoutCmd)
	addOutputFlags(layoutCmd)
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	return data, nil
}
