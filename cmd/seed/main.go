package main

import (
	"flag"
	"log"

	"github.com/dkazlou/flint/internal/config"
	"github.com/dkazlou/flint/internal/db"
)

func main() {
	count := flag.Int("count", 50, "number of demo users to generate")
	flag.Parse()

	cfg := config.New()

	database, err := db.NewDB(cfg)
	if err != nil {
		log.Fatalf("failed to init db: %v", err)
	}

	if err := db.SeedDemoUsers(database, *count); err != nil {
		log.Fatalf("failed to seed: %v", err)
	}

	log.Println("Done.")
}
