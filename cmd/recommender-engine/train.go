// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/recommender-engine/internal/index"
	"github.com/pdiddy/recommender-engine/internal/store"
	"github.com/pdiddy/recommender-engine/pkg/types"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Fit and persist the per-category similarity indexes",
	Long: `Train fits the configured text-similarity model (lexical TF-IDF or
dense embeddings) over each category's feature table and persists the
model, matrix, and manifest under data/index/. Categories whose artifacts
already exist are skipped; use --force to discard them and refit.`,
	RunE: runTrain,
}

func init() {
	trainCmd.Flags().String("strategy", "", "index strategy: lexical or embedding (overrides config)")
	trainCmd.Flags().String("index-dir", "", "artifact directory (overrides config)")
	trainCmd.Flags().Bool("force", false, "retrain even if artifacts exist")

	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, args []string) error {
	pipeCfg := pipelineConfig()
	cfg := pipeCfg.Index
	if strategy, _ := cmd.Flags().GetString("strategy"); strategy != "" {
		cfg.Strategy = types.IndexStrategy(strategy)
	}
	if dir, _ := cmd.Flags().GetString("index-dir"); dir != "" {
		cfg.IndexDir = dir
	}

	st, err := store.Open(pipeCfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	log := newLog("train")

	if force, _ := cmd.Flags().GetBool("force"); force {
		if err := index.RemoveArtifacts(cfg.IndexDir); err != nil {
			return err
		}
		log.Info("removed existing artifacts")
	}

	return index.Train(cmd.Context(), st, cfg, log)
}
