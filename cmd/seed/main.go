package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/JaimeStill/pdf-annotator/internal/config"
	"github.com/JaimeStill/pdf-annotator/internal/infrastructure"
	"github.com/JaimeStill/pdf-annotator/internal/recent"
	"github.com/JaimeStill/pdf-annotator/internal/versions"
	"github.com/JaimeStill/pdf-annotator/pkg/storage"
)

func main() {
	var (
		all  = flag.Bool("all", false, "Run all seeders")
		only = flag.String("seeder", "", "Run a single seeder by name")
		file = flag.String("file", "", "External seed file for -seeder (overrides embedded)")
		list = flag.Bool("list", false, "List available seeders")
	)
	flag.Parse()

	if *list {
		fmt.Println("Available seeders:")
		for _, s := range listSeeders() {
			fmt.Printf("  - %s: %s\n", s.Name(), s.Description())
		}
		return
	}

	if !*all && *only == "" {
		fmt.Println("usage: seed [-all|-seeder <name>] [-file <path>] [-list]")
		flag.PrintDefaults()
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config load failed:", err)
	}
	if err := cfg.Finalize(); err != nil {
		log.Fatal("config finalize failed:", err)
	}
	if cfg.Storage.Backend == storage.BackendMemory {
		log.Fatal("the memory storage backend does not persist; configure filesystem or postgres")
	}

	ctx := context.Background()

	infra, err := infrastructure.New(ctx, cfg)
	if err != nil {
		log.Fatalf("infrastructure init failed: %v", err)
	}
	defer infra.Close()

	target := &Target{
		Versions: versions.New(infra.Storage, cfg.Editor.MaxVersions, infra.Logger),
		Recent:   recent.New(infra.Storage, cfg.Editor.RecentLimit, infra.Logger),
	}

	if *all {
		if err := runAllSeeders(ctx, target); err != nil {
			log.Fatalf("seeding failed: %v", err)
		}
		fmt.Println("all seeders completed successfully")
		return
	}

	if *file != "" {
		if seeder, ok := getSeeder(*only); ok {
			seeder.SetFile(*file)
		}
	}
	if err := runSeeder(ctx, target, *only); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	fmt.Printf("%s seeded successfully\n", *only)
}
