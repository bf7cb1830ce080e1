package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/knowledge"
	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/session"
	"github.com/obinnaokafor/symptomsense/backend/internal/application/services"
	"github.com/obinnaokafor/symptomsense/backend/internal/evaluation"
	"github.com/obinnaokafor/symptomsense/backend/pkg/config"
)

// Replays the golden case set through the triage engine and prints the
// accuracy summary. Exits non-zero when a guardrail is violated, so CI
// can block a knowledge base or scoring change that degrades triage.
func main() {
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx := context.Background()

	// Evaluation runs offline: file knowledge, memory sessions, none of
	// the network-backed extras that could make runs non-deterministic.
	source := knowledge.NewFileSource(cfg.Knowledge.KnowledgeBasePath, cfg.Knowledge.EmergencyProfilesPath)
	kb, err := source.LoadKnowledgeBase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load knowledge base")
	}
	profiles, err := source.LoadEmergencyProfiles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load emergency profiles")
	}

	normalizer := services.NewSymptomNormalizer(kb)
	detector := services.NewEmergencyDetector(profiles)
	engine := services.NewScoringEngine(kb, services.DefaultScoringPolicy())
	tracker := services.NewConversationTracker(kb, normalizer, engine, services.DefaultTrackerPolicy())
	recommender := services.NewRecommendationService(kb)
	sessions := session.NewMemoryStore(30 * time.Minute)

	triage := services.NewTriageService(
		kb,
		normalizer,
		detector,
		tracker,
		recommender,
		sessions,
		nil,
		nil,
		nil,
		nil,
	)

	// Load golden cases
	goldenPath := os.Getenv("GOLDEN_CASES_PATH")
	if goldenPath == "" {
		goldenPath = "config/golden_cases.json"
	}
	if _, err := os.Stat("backend/" + goldenPath); err == nil {
		goldenPath = "backend/" + goldenPath
	}

	cases, err := evaluation.LoadGoldenCases(goldenPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load golden cases")
	}
	if err := evaluation.ValidateGoldenCases(cases); err != nil {
		log.Fatal().Err(err).Msg("Invalid golden cases")
	}

	runner := evaluation.NewRunner(triage)
	summary, err := runner.Run(ctx, cases)
	if err != nil {
		log.Fatal().Err(err).Msg("Evaluation failed")
	}

	// Output results as JSON
	out, _ := json.MarshalIndent(summary, "", "  ")
	fmt.Println(string(out))

	guardrails := evaluation.NewGuardrails(evaluation.GuardrailConfig{})
	if failures := guardrails.Check(summary); len(failures) > 0 {
		for _, f := range failures {
			fmt.Fprintln(os.Stderr, "GUARDRAIL FAILED: "+f)
		}
		os.Exit(1)
	}
}
