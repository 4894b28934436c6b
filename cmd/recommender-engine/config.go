// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/recommender-engine/pkg/types"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultPageDelay = 1 * time.Second
	defaultUserAgent = "recommender-engine/0.1"
)

func init() {
	viper.SetDefault("ingest.topics_file", "configs/topics.yaml")
	viper.SetDefault("ingest.raw_dir", "data/raw")
	viper.SetDefault("ingest.max_book_results", 80)
	viper.SetDefault("ingest.max_paper_results", 300)
	viper.SetDefault("store.path", "data/recommender.db")
	viper.SetDefault("index.strategy", string(types.StrategyLexical))
	viper.SetDefault("index.index_dir", "data/index")
	viper.SetDefault("index.max_features", 5000)
	viper.SetDefault("index.embedding.batch_size", 64)
}

// pipelineConfig assembles the stage configuration from the config file,
// environment, and .secrets/. Flags on individual subcommands override it.
func pipelineConfig() types.PipelineConfig {
	httpCfg := types.HTTPConfig{
		Timeout:   defaultTimeout,
		UserAgent: defaultUserAgent,
	}

	pageDelay := viper.GetDuration("ingest.page_delay")
	if pageDelay == 0 {
		pageDelay = defaultPageDelay
	}

	return types.PipelineConfig{
		Ingest: types.IngestConfig{
			HTTPConfig:            httpCfg,
			TopicsFile:            viper.GetString("ingest.topics_file"),
			RawDir:                viper.GetString("ingest.raw_dir"),
			GoogleBooksAPIKey:     secretDefault("google-books-api-key", viper.GetString("ingest.google_books_api_key")),
			SemanticScholarAPIKey: secretDefault("semantic-scholar-api-key", viper.GetString("ingest.semantic_scholar_api_key")),
			PageDelay:             pageDelay,
			MaxBookResults:        viper.GetInt("ingest.max_book_results"),
			MaxPaperResults:       viper.GetInt("ingest.max_paper_results"),
		},
		Store: types.StoreConfig{
			Path: viper.GetString("store.path"),
		},
		Index: types.IndexConfig{
			Strategy:    types.IndexStrategy(viper.GetString("index.strategy")),
			IndexDir:    viper.GetString("index.index_dir"),
			MaxFeatures: viper.GetInt("index.max_features"),
			Embedding: types.EmbeddingConfig{
				HTTPConfig: httpCfg,
				Endpoint:   viper.GetString("index.embedding.endpoint"),
				Model:      viper.GetString("index.embedding.model"),
				APIKey:     secretDefault("embedding-api-key", viper.GetString("index.embedding.api_key")),
				BatchSize:  viper.GetInt("index.embedding.batch_size"),
			},
		},
	}
}
