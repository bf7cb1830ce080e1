package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/knowledge"
	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/search"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/postgres"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/typesense"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/observability"
	"github.com/obinnaokafor/symptomsense/backend/pkg/config"
)

// Rebuilds the Typesense suggestion index from the symptom vocabulary.
// One-shot by default; pass -interval (or set REINDEX_INTERVAL) to keep
// it running as a periodic reindexer alongside the API.
func main() {
	var reset bool
	var intervalFlag string
	flag.BoolVar(&reset, "reset", false, "delete the existing symptoms collection before reindexing")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval for reindexing (e.g. 6h, 30m)")
	flag.Parse()

	observability.InitLogger("symptomsense-indexer", os.Getenv("ENV"))

	intervalValue := strings.TrimSpace(intervalFlag)
	if intervalValue == "" {
		intervalValue = strings.TrimSpace(os.Getenv("REINDEX_INTERVAL"))
	}

	var interval time.Duration
	if intervalValue != "" {
		parsed, err := time.ParseDuration(intervalValue)
		if err != nil {
			log.Fatal().Str("interval", intervalValue).Err(err).Msg("Invalid interval")
		}
		if parsed <= 0 {
			log.Fatal().Msg("Interval must be greater than zero")
		}
		interval = parsed
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for {
		if err := indexOnce(ctx, reset); err != nil {
			log.Error().Err(err).Msg("Reindex failed")
		}

		if interval <= 0 {
			break
		}

		reset = false
		log.Info().Dur("interval", interval).Msg("Reindex complete, waiting for next run")

		select {
		case <-ctx.Done():
			log.Info().Msg("Reindexer shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func indexOnce(ctx context.Context, reset bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	var source repositories.KnowledgeSource
	if cfg.Knowledge.Source == "postgres" {
		pgClient, err := postgres.NewClient(&cfg.Database)
		if err != nil {
			return err
		}
		defer pgClient.Close()
		source = knowledge.NewPostgresSource(pgClient)
	} else {
		source = knowledge.NewFileSource(cfg.Knowledge.KnowledgeBasePath, cfg.Knowledge.EmergencyProfilesPath)
	}

	kb, err := source.LoadKnowledgeBase(ctx)
	if err != nil {
		return err
	}

	tsClient, err := typesense.NewClient(&cfg.Typesense)
	if err != nil {
		return err
	}
	adapter := search.NewTypesenseAdapter(tsClient)

	if reset || os.Getenv("RESET_TYPESENSE") == "true" {
		log.Info().Msg("Deleting symptoms collection before reindex")
		if err := adapter.DropIndex(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to delete collection")
		}
	}

	symptoms := kb.Symptoms()
	log.Info().Int("symptoms", len(symptoms)).Msg("Indexing symptom vocabulary")

	if err := adapter.IndexSymptoms(ctx, symptoms); err != nil {
		return err
	}

	log.Info().Msg("Indexing complete")
	return nil
}
