package main

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/JaimeStill/pdf-annotator/internal/raster"
	"github.com/JaimeStill/pdf-annotator/internal/recent"
)

func init() {
	registerSeeder(&RecentSeeder{})
}

// RecentSeedData represents the JSON structure for recent image seed files.
// Each list is ordered most recent first.
type RecentSeedData struct {
	Images     []string `json:"images"`
	Signatures []string `json:"signatures"`
}

// RecentSeeder implements Seeder for the recent image and signature lists.
type RecentSeeder struct {
	file string
}

func (s *RecentSeeder) Name() string {
	return "recent"
}

func (s *RecentSeeder) Description() string {
	return "Seeds the recent image and signature lists"
}

func (s *RecentSeeder) SetFile(path string) {
	s.file = path
}

// Seed validates every data URL, then adds each list oldest first so the
// first entry in the file ends up at the front.
func (s *RecentSeeder) Seed(ctx context.Context, t *Target) error {
	content, err := readSeed(s.file, "recent.json")
	if err != nil {
		return err
	}

	var data RecentSeedData
	if err := json.Unmarshal(content, &data); err != nil {
		return fmt.Errorf("parse seed data: %w", err)
	}

	lists := []struct {
		kind recent.Kind
		srcs []string
	}{
		{recent.Images, data.Images},
		{recent.Signatures, data.Signatures},
	}

	for _, l := range lists {
		for i, src := range l.srcs {
			if _, err := raster.DecodeDataURL(src); err != nil {
				return fmt.Errorf("%s entry %d: %w", l.kind, i, err)
			}
		}
		for _, src := range slices.Backward(l.srcs) {
			if err := t.Recent.Add(ctx, l.kind, src); err != nil {
				return fmt.Errorf("add %s: %w", l.kind, err)
			}
		}
	}

	return nil
}
