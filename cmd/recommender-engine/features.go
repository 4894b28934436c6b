// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/recommender-engine/internal/feature"
	"github.com/pdiddy/recommender-engine/internal/store"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Derive scaled quality signals from the cleaned tables",
	Long: `Features reads the cleaned tables, min-max scales each quality signal
(rating, recency, page count for books; citations, recency for papers),
builds the combined text column, and replaces the feature tables. Scores
are re-derived from the raw columns on every run.`,
	RunE: runFeatures,
}

func init() {
	rootCmd.AddCommand(featuresCmd)
}

func runFeatures(cmd *cobra.Command, args []string) error {
	st, err := store.Open(pipelineConfig().Store)
	if err != nil {
		return err
	}
	defer st.Close()

	log := newLog("features")
	result, err := feature.Run(cmd.Context(), st, log)
	if err != nil {
		return err
	}
	log.WithField("books", result.Books).WithField("papers", result.Papers).
		Info("feature building complete")
	return nil
}
