package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/todozi/todozi/internal/config"
)

var embCmd = &cobra.Command{
	Use:   "emb",
	Short: "Embedding engine configuration (set-model, show-model, list-models)",
}

// knownModels is the set of embedding models todozi ships presets for
// (spec §6.4's list-models). Custom model names are still accepted by
// set-model; this list is advisory.
var knownModels = []string{"embeddinggemma", "nomic-embed-text", "text-embedding-004"}

var embSetModelCmd = &cobra.Command{
	Use:   "set-model <name> <dimensions>",
	Short: "Change the configured embedding model and its vector dimensionality",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		var dims int
		if _, err := fmt.Sscanf(args[1], "%d", &dims); err != nil || dims <= 0 {
			return fmt.Errorf("dimensions must be a positive integer, got %q", args[1])
		}
		a.cfg.Embedding.ModelName = args[0]
		a.cfg.Embedding.Dimensions = dims
		if err := config.Save(a.cfg); err != nil {
			return err
		}
		return printJSON(a.cfg.Embedding)
	},
}

var embShowModelCmd = &cobra.Command{
	Use:   "show-model",
	Short: "Print the currently configured embedding model",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		return printJSON(a.cfg.Embedding)
	},
}

var embListModelsCmd = &cobra.Command{
	Use:   "list-models",
	Short: "List known embedding model presets",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printJSON(knownModels)
	},
}

var embEnableANNCmd = &cobra.Command{
	Use:   "enable-ann",
	Short: "Turn on the sqlite-backed ANN acceleration layer and backfill it from the cache",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		a.cfg.Embedding.ANNIndexEnabled = true
		if err := config.Save(a.cfg); err != nil {
			return err
		}
		// embeddingService() enables and backfills the ANN index itself
		// whenever ANNIndexEnabled is set, so saving the flag above and
		// constructing the service here is sufficient.
		svc, err := a.embeddingService()
		if err != nil {
			return err
		}
		defer svc.CloseANNIndex()
		fmt.Println("ANN index enabled and backfilled")
		return nil
	},
}

func init() {
	embCmd.AddCommand(embSetModelCmd, embShowModelCmd, embListModelsCmd, embEnableANNCmd)
}
