// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v3"
)

// Topic groups the search keywords for one subject area.
type Topic struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Topics is the on-disk topics configuration. The same keyword lists drive
// ingestion queries and the cleaning stage's book allow-list.
type Topics struct {
	BookTopics  []Topic `yaml:"book_topics"`
	PaperTopics []Topic `yaml:"paper_topics"`
}

// LoadTopics reads the topics YAML file.
func LoadTopics(path string) (Topics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Topics{}, fmt.Errorf("reading topics file: %w", err)
	}
	var t Topics
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Topics{}, fmt.Errorf("parsing topics file: %w", err)
	}
	return t, nil
}

// BookKeywords flattens the book topics into one keyword list, in file order.
func (t Topics) BookKeywords() []string {
	return flatten(t.BookTopics)
}

// PaperKeywords flattens the paper topics into one keyword list, in file order.
func (t Topics) PaperKeywords() []string {
	return flatten(t.PaperTopics)
}

func flatten(topics []Topic) []string {
	var kws []string
	for _, topic := range topics {
		kws = append(kws, topic.Keywords...)
	}
	return kws
}
