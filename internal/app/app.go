// Package app wires the data-access layer together for the shrike command:
// environment, database, optional GeoLite enrichment and feed imports.
package app

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"

	"shrike/internal/database"
	"shrike/internal/geolite"
	"shrike/internal/jobs/importer"
	"shrike/internal/support"
)

func Run() error {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found. Falling back to system environment variables.")
	}

	log.SetLevel(resolveLogLevel("LOG_LEVEL", log.InfoLevel))

	importFlag := flag.String("import-ranges", "", "Path to a range delegation feed to import")
	lookupFlag := flag.String("lookup", "", "IP address to resolve against the stored ranges")
	workersFlag := flag.Int("import-workers", 0, "Number of concurrent import workers")
	flag.Parse()

	db, err := database.SetupDB()
	if err != nil {
		return fmt.Errorf("setup database: %w", err)
	}

	importFile := support.GetEnv("RANGE_IMPORT_FILE", *importFlag)
	lookup := support.GetEnv("RANGE_LOOKUP", *lookupFlag)

	ranges := database.NewRangeRepo(db)
	ctx := context.Background()

	if importFile != "" {
		if err := runImport(ctx, ranges, importFile, *workersFlag); err != nil {
			return err
		}
	}

	if lookup != "" {
		rec, err := ranges.FindContaining(ctx, lookup)
		if err != nil {
			return fmt.Errorf("lookup %s: %w", lookup, err)
		}
		log.Info("Range found",
			"ip", lookup,
			"asn", rec.Number,
			"start", rec.RangeStart,
			"end", rec.RangeEnd,
			"owner", rec.OwnerLabel,
		)
	}

	return nil
}

func runImport(ctx context.Context, ranges *database.RangeRepo, path string, workers int) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open import feed: %w", err)
	}
	defer file.Close()

	enricher := geolite.Open()
	defer enricher.Close()

	opts := []importer.Option{importer.WithEnricher(enricher)}
	if workers > 0 {
		opts = append(opts, importer.WithWorkers(workers))
	}

	if client, err := support.NewRedisClient(); err != nil {
		log.Warn("Redis unavailable, import dedupe limited to this run", "error", err)
	} else {
		opts = append(opts, importer.WithRedisClient(client))
		defer func() {
			if err := client.Close(); err != nil {
				log.Warn("error closing redis client", "error", err)
			}
		}()
	}

	if _, err := importer.New(ranges, opts...).Run(ctx, file); err != nil {
		return fmt.Errorf("import ranges: %w", err)
	}
	return nil
}

func resolveLogLevel(envKey string, fallback log.Level) log.Level {
	switch strings.ToLower(support.GetEnv(envKey, "")) {
	case "debug":
		return log.DebugLevel
	case "info":
		return log.InfoLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	case "":
		return fallback
	default:
		return fallback
	}
}
