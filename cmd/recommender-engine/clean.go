// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/spf13/cobra"

	"github.com/pdiddy/recommender-engine/internal/clean"
	"github.com/pdiddy/recommender-engine/internal/ingest"
	"github.com/pdiddy/recommender-engine/internal/store"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Clean the raw collections into relevance-filtered tables",
	Long: `Clean reads the raw collections from data/raw/, filters books against
the topic keywords, deduplicates by title, drops unusable records, and
replaces the cleaned tables in the store. Both categories are cleaned
before either table is written.`,
	RunE: runClean,
}

func init() {
	cleanCmd.Flags().String("topics", "", "topics YAML file (overrides config)")
	cleanCmd.Flags().String("raw-dir", "", "directory holding the raw collections (overrides config)")

	rootCmd.AddCommand(cleanCmd)
}

func runClean(cmd *cobra.Command, args []string) error {
	pipeCfg := pipelineConfig()
	topicsFile := pipeCfg.Ingest.TopicsFile
	if topics, _ := cmd.Flags().GetString("topics"); topics != "" {
		topicsFile = topics
	}
	rawDir := pipeCfg.Ingest.RawDir
	if dir, _ := cmd.Flags().GetString("raw-dir"); dir != "" {
		rawDir = dir
	}

	topics, err := ingest.LoadTopics(topicsFile)
	if err != nil {
		return err
	}

	st, err := store.Open(pipeCfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	log := newLog("clean")
	result, err := clean.Run(cmd.Context(), st, rawDir, topics.BookKeywords(), log)
	if err != nil {
		return err
	}
	log.WithField("books", result.Books).WithField("papers", result.Papers).
		Info("cleaning complete")
	return nil
}
