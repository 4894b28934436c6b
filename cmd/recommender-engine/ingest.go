// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recommender-engine/internal/ingest"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Fetch raw collections from Google Books and Semantic Scholar",
	Long: `Ingest reads the topic keyword lists, fetches matching volumes from
Google Books and matching papers from Semantic Scholar, and writes the raw
collections to data/raw/books.json and data/raw/papers.json. A failed
category aborts the run without touching existing files.`,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().String("topics", "", "topics YAML file (overrides config)")
	ingestCmd.Flags().String("raw-dir", "", "output directory for raw collections (overrides config)")
	ingestCmd.Flags().Duration("page-delay", 0, "delay between catalog page fetches (default 1s)")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig().Ingest
	if topics, _ := cmd.Flags().GetString("topics"); topics != "" {
		cfg.TopicsFile = topics
	}
	if rawDir, _ := cmd.Flags().GetString("raw-dir"); rawDir != "" {
		cfg.RawDir = rawDir
	}
	if delay, _ := cmd.Flags().GetDuration("page-delay"); delay != 0 {
		cfg.PageDelay = delay
	}

	client := &http.Client{Timeout: cfg.Timeout}
	log := newLog("ingest")

	result, err := ingest.Run(cmd.Context(), client, cfg, log)
	if err != nil {
		return err
	}
	log.WithField("books", result.Books).WithField("papers", result.Papers).
		Info("ingestion complete")
	return nil
}
