//go:build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
)

// runStage invokes one pipeline subcommand through the built binary.
func runStage(args ...string) error {
	bin := filepath.Join(binDir, binName)
	cmd := exec.Command(bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %v: %w", bin, args, err)
	}
	return nil
}

// Ingest fetches the raw collections from the public catalogs.
func Ingest() error {
	mg.Deps(Build)
	return runStage("ingest")
}

// Clean filters and deduplicates the raw collections into the store.
func Clean() error {
	mg.Deps(Build)
	return runStage("clean")
}

// Features derives the scaled quality signals from the cleaned tables.
func Features() error {
	mg.Deps(Build)
	return runStage("features")
}

// Train fits and persists the similarity indexes.
func Train() error {
	mg.Deps(Build)
	return runStage("train")
}

// Pipeline runs every stage in order: ingest, clean, features, train.
func Pipeline() error {
	mg.Deps(Build)
	for _, stage := range []string{"ingest", "clean", "features", "train"} {
		if err := runStage(stage); err != nil {
			return err
		}
	}
	return nil
}
