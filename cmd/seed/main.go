package main

import (
	"context" // Query context
	"flag"    // Command line flags
	"time"    // Current date

	"spent_api/internal/config"     // Custom import path (Config)
	"spent_api/internal/db"         // Custom import path (Database)
	"spent_api/internal/repository" // Custom import path (Queries)
	"spent_api/internal/seed"       // Custom import path (Fixtures)

	"github.com/sirupsen/logrus" // Logging
)

// Main entry point for fixture loading
func main() {
	current := time.Now()
	from := flag.Int("from", 2022, "first year to generate")
	to := flag.Int("to", current.Year(), "last year to generate")
	seedValue := flag.Uint64("seed", uint64(current.UnixNano()), "random seed")
	truncate := flag.Bool("truncate", false, "delete existing records first")
	flag.Parse()

	until := time.December
	if *to == current.Year() {
		until = current.Month() // Skip future months of the current year
	}

	cfg := config.LoadConfig()
	gdb, err := db.Open(cfg)
	if err != nil {
		logrus.Fatalf("failed to connect database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		logrus.Fatalf("migration failed: %v", err)
	}
	repo := repository.NewSpentRepository(gdb)
	ctx := context.Background()

	if *truncate {
		n, err := repo.DeleteAll(ctx)
		if err != nil {
			logrus.Fatalf("truncate failed: %v", err)
		}
		logrus.WithField("deleted", n).Info("Existing records removed")
	}

	records := seed.NewGenerator(*seedValue).Range(*from, *to, until)
	if err := repo.CreateBatch(ctx, records); err != nil {
		logrus.Fatalf("seeding failed: %v", err)
	}
	logrus.WithFields(logrus.Fields{
		"records": len(records),
		"from":    *from,
		"to":      *to,
		"seed":    *seedValue,
	}).Info("Fixtures loaded")
}
