// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/recommender-engine/internal/rank"
	"github.com/pdiddy/recommender-engine/internal/store"
)

var rankCmd = &cobra.Command{
	Use:   "rank [query]",
	Short: "Rank books and papers against a free-text query",
	Long: `Rank loads the trained similarity indexes, scores the query against
every indexed item, blends similarity with the precomputed quality signals,
and prints the top-K books and papers. A category with missing artifacts
returns an empty list and a warning instead of failing the call.`,
	RunE: runRank,
}

func init() {
	rankCmd.Flags().String("query", "", "free-text query (or pass as positional args)")
	rankCmd.Flags().Int("books", 5, "number of books to return")
	rankCmd.Flags().Int("papers", 10, "number of papers to return")
	rankCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	query, _ := cmd.Flags().GetString("query")
	if query == "" && len(args) > 0 {
		query = strings.Join(args, " ")
	}
	if query == "" {
		return fmt.Errorf("provide a query: rank \"deep learning\" or --query")
	}
	kBooks, _ := cmd.Flags().GetInt("books")
	kPapers, _ := cmd.Flags().GetInt("papers")

	pipeCfg := pipelineConfig()
	st, err := store.Open(pipeCfg.Store)
	if err != nil {
		return err
	}
	defer st.Close()

	log := newLog("rank")
	handle, err := rank.NewHandle(cmd.Context(), st, pipeCfg.Index, log)
	if err != nil {
		return err
	}

	out, err := rank.Rank(cmd.Context(), handle, query, kBooks, kPapers)
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		return rank.FormatJSON(out, os.Stdout)
	}
	rank.FormatTable(out, os.Stdout)
	return nil
}
