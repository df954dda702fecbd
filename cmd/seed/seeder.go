// Package main provides the seed command for populating editor storage with
// initial or migrated data. It supports multiple seeders that can be run
// individually or together.
package main

import (
	"context"
	"embed"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/JaimeStill/pdf-annotator/internal/recent"
	"github.com/JaimeStill/pdf-annotator/internal/versions"
)

//go:embed seeds/*.json
var seedFiles embed.FS

// Target holds the stores seeders write to.
type Target struct {
	Versions *versions.Store
	Recent   *recent.Store
}

// Seeder defines the interface for storage seeders.
// Each seeder is responsible for populating a specific store's data.
type Seeder interface {
	// Name returns the unique identifier for this seeder.
	Name() string

	// Description returns a human-readable description of what this seeder does.
	Description() string

	// SetFile configures an external seed file path, overriding the embedded default.
	SetFile(path string)

	// Seed loads the seed data and writes it to the target stores.
	Seed(ctx context.Context, t *Target) error
}

var seeders = map[string]Seeder{}

// registerSeeder adds a seeder to the global registry.
// Seeders self-register via init() functions.
func registerSeeder(s Seeder) {
	seeders[s.Name()] = s
}

// getSeeder retrieves a seeder by name from the registry.
func getSeeder(name string) (Seeder, bool) {
	s, ok := seeders[name]
	return s, ok
}

// listSeeders returns all registered seeders ordered by name.
func listSeeders() []Seeder {
	result := make([]Seeder, 0, len(seeders))
	for _, name := range slices.Sorted(maps.Keys(seeders)) {
		result = append(result, seeders[name])
	}
	return result
}

// runSeeder executes a single seeder by name.
// Returns an error if the seeder is not found or if seeding fails.
func runSeeder(ctx context.Context, t *Target, name string) error {
	seeder, ok := getSeeder(name)
	if !ok {
		return fmt.Errorf("seeder not found: %s", name)
	}
	if err := seeder.Seed(ctx, t); err != nil {
		return fmt.Errorf("seed %s: %w", name, err)
	}
	return nil
}

// runAllSeeders executes every registered seeder in name order, stopping at
// the first failure. Storage has no transactions, so earlier seeders keep
// what they wrote.
func runAllSeeders(ctx context.Context, t *Target) error {
	for _, s := range listSeeders() {
		if err := s.Seed(ctx, t); err != nil {
			return fmt.Errorf("seed %s: %w", s.Name(), err)
		}
	}
	return nil
}

// readSeed returns the external file when set, otherwise the embedded seed.
func readSeed(file, embedded string) ([]byte, error) {
	if file != "" {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read seed file: %w", err)
		}
		return content, nil
	}

	content, err := seedFiles.ReadFile("seeds/" + embedded)
	if err != nil {
		return nil, fmt.Errorf("read embedded seed file: %w", err)
	}
	return content, nil
}
