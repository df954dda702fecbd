package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/JaimeStill/pdf-annotator/internal/annotation"
	"github.com/JaimeStill/pdf-annotator/internal/document"
)

func init() {
	registerSeeder(&VersionSeeder{})
}

// VersionSeedData represents the JSON structure for version seed files.
type VersionSeedData struct {
	Documents []DocumentSeed `json:"documents"`
}

// DocumentSeed lists the versions to record for one source document, oldest
// first. Page states are given as JSON objects rather than encoded strings.
type DocumentSeed struct {
	SourceURL string        `json:"source_url"`
	Versions  []VersionSeed `json:"versions"`
}

type VersionSeed struct {
	Label string                     `json:"label"`
	Data  map[string]json.RawMessage `json:"data"`
}

// VersionSeeder implements Seeder for document version records.
type VersionSeeder struct {
	file string
}

func (s *VersionSeeder) Name() string {
	return "versions"
}

func (s *VersionSeeder) Description() string {
	return "Seeds saved versions for documents opened from a source URL"
}

func (s *VersionSeeder) SetFile(path string) {
	s.file = path
}

// Seed strictly decodes every page state before saving, so a seed file
// cannot introduce state the editor would discard on load.
func (s *VersionSeeder) Seed(ctx context.Context, t *Target) error {
	content, err := readSeed(s.file, "versions.json")
	if err != nil {
		return err
	}

	var data VersionSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("parse seed data: %w", err)
	}

	for _, doc := range data.Documents {
		if doc.SourceURL == "" {
			return fmt.Errorf("document without source_url")
		}
		docID := document.ID(doc.SourceURL)

		for _, v := range doc.Versions {
			states := make(map[string]string, len(v.Data))
			for pageID, raw := range v.Data {
				if _, err := annotation.Decode(raw); err != nil {
					return fmt.Errorf("%s page %s: %w", doc.SourceURL, pageID, err)
				}
				states[pageID] = string(raw)
			}

			if saved := t.Versions.Save(ctx, docID, states, v.Label, ""); saved == nil {
				return fmt.Errorf("save version %q for %s", v.Label, doc.SourceURL)
			}
		}
	}

	return nil
}
