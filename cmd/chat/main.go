package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/knowledge"
	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/session"
	"github.com/obinnaokafor/symptomsense/backend/internal/application/services"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/openai"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/observability"
	"github.com/obinnaokafor/symptomsense/backend/pkg/config"
)

const banner = `SymptomSense triage chat
Describe your symptoms in plain words.
Commands: "reset" starts a new session, "quit" exits.
This is not medical advice. In an emergency call your local emergency number.`

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	observability.InitLogger(cfg.OTEL.ServiceName+"-chat", "development")
	// Only warnings and errors; the transcript is the interface here.
	zerolog.SetGlobalLevel(zerolog.WarnLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The chat runs self-contained: file-backed knowledge, in-memory
	// sessions, no event bus or analytics.
	source := knowledge.NewFileSource(cfg.Knowledge.KnowledgeBasePath, cfg.Knowledge.EmergencyProfilesPath)
	kb, err := source.LoadKnowledgeBase(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load knowledge base")
	}
	profiles, err := source.LoadEmergencyProfiles(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load emergency profiles")
	}

	var extractor providers.PhraseExtractor
	if cfg.OpenAI.APIKey != "" {
		if client, err := openai.NewClient(&cfg.OpenAI); err == nil {
			extractor = client
		}
	}

	normalizer := services.NewSymptomNormalizer(kb)
	detector := services.NewEmergencyDetector(profiles)
	engine := services.NewScoringEngine(kb, services.DefaultScoringPolicy())
	tracker := services.NewConversationTracker(kb, normalizer, engine, services.DefaultTrackerPolicy())
	recommender := services.NewRecommendationService(kb)
	sessions := session.NewMemoryStore(time.Duration(cfg.Session.TTLSeconds) * time.Second)

	triage := services.NewTriageService(
		kb,
		normalizer,
		detector,
		tracker,
		recommender,
		sessions,
		nil,
		nil,
		extractor,
		nil,
	)

	fmt.Println(banner)
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	sessionID := ""

	for {
		fmt.Print("you> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit":
			fmt.Println("Take care.")
			return
		case "reset":
			if sessionID != "" {
				if err := triage.ResetSession(ctx, sessionID); err != nil {
					fmt.Printf("Could not reset the session: %v\n", err)
					continue
				}
			}
			sessionID = ""
			fmt.Println("Session cleared. Tell me what's bothering you.")
			continue
		}

		result, err := triage.ProcessTurn(ctx, sessionID, line)
		if err != nil {
			fmt.Printf("Something went wrong: %v\n", err)
			continue
		}
		sessionID = result.SessionID

		fmt.Println()
		fmt.Println(result.Message)
		fmt.Println()
	}

	if err := scanner.Err(); err != nil {
		log.Error().Err(err).Msg("Input error")
	}
}
