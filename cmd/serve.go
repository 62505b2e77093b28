package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mezotv/skill-tree/internal/metrics"
	"github.com/mezotv/skill-tree/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the suggestion, skill-tree and layout API over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Server.Addr = addr
		}

		ctx := cmd.Context()
		collector := metrics.NewCollector("skilltree")
		stack, err := newLocalStack(ctx, cfg, logger, collector)
		if err != nil {
			return err
		}
		defer stack.Close()

		srv := server.New(cfg.Server, server.Deps{
			Suggest: stack.suggest,
			Trees:   stack.trees,
			Layout:  cfg.Layout,
			Metrics: collector,
			Logger:  logger,
			Model:   stack.provider.ModelID(),
		})
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides SKILLTREE_ADDR, default :8080)")
}
