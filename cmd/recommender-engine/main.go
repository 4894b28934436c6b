// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the recommender-engine CLI. Each
// pipeline stage is a subcommand: ingest, clean, features, train, and
// rank. Stages communicate only through persisted artifacts, so they can
// be run independently and in any order once their inputs exist.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/recommender-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback if set, else the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// newLog builds the stage logger. Level comes from --verbose.
func newLog(stage string) *logrus.Entry {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose, _ := rootCmd.PersistentFlags().GetBool("verbose"); verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger.WithField("stage", stage)
}

// rootCmd is the base command for the recommender-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "recommender-engine",
	Short: "Content-based book and paper recommendations",
	Long: `recommender-engine builds content-based recommendations for books and
research papers. Public catalogs (Google Books, Semantic Scholar) are
ingested into raw collections, cleaned into tables, enriched with scaled
quality signals, and indexed with a text-similarity model. The rank
subcommand then serves top-K results for a free-text query.

Each pipeline stage is a subcommand: ingest, clean, features, train,
and rank. A stage reads only the previous stage's persisted artifact,
so stages can be re-run independently.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./recommender-engine.yaml or ~/.config/recommender-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "enable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("recommender-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "recommender-engine"))
		}
	}

	viper.SetEnvPrefix("RECOMMENDER_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
