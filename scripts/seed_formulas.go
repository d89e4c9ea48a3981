// seed_formulas.go loads formula_master.csv into the Postgres formulas table.
//
// Usage:
//
//	go run scripts/seed_formulas.go -csv data/raw/formula_master.csv -db postgres://localhost/recommender
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/SmartBottle/Recommender/internal/catalog"
)

func main() {
	csvPath := flag.String("csv", "data/raw/formula_master.csv", "path to formula master CSV")
	dbURL := flag.String("db", os.Getenv("RECOMMENDER_DATABASE_URL"), "Postgres connection URL")
	dryRun := flag.Bool("dry-run", false, "print formulas without writing")
	flag.Parse()

	formulas, err := catalog.LoadCSV(*csvPath)
	if err != nil {
		log.Fatalf("load csv: %v", err)
	}
	log.Printf("parsed %d formulas from %s", len(formulas), *csvPath)

	if *dryRun {
		for _, f := range formulas {
			log.Printf("  %d %s (%s, lactose=%s, target=%s, protein=%s)",
				f.FormulaID, f.Brand, f.Category, f.LactoseLevel, f.TargetIssue, f.ProteinType)
		}
		return
	}
	if *dbURL == "" {
		log.Fatal("-db or RECOMMENDER_DATABASE_URL required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := catalog.NewPostgresStore(ctx, *dbURL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if err := store.UpsertFormulas(ctx, formulas); err != nil {
		log.Fatalf("upsert: %v", err)
	}
	log.Printf("done: %d formulas upserted", len(formulas))
}
