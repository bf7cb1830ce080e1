package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/adapters/knowledge"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/postgres"
	"github.com/obinnaokafor/symptomsense/backend/pkg/config"
)

// knowledgeArtifact mirrors the on-disk shape of config/knowledge_base.json.
type knowledgeArtifact struct {
	StopWords  []string              `json:"stop_words"`
	Symptoms   []*entities.Symptom   `json:"symptoms"`
	Conditions []*entities.Condition `json:"conditions"`
}

// Loads the JSON knowledge artifacts into Postgres for deployments that
// run with KNOWLEDGE_SOURCE=postgres. The knowledge tables are replaced
// wholesale inside one transaction; the JSON files stay the source of
// truth and a failed seed leaves the previous knowledge intact.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	pgClient, err := postgres.NewClient(&cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to DB")
	}
	defer pgClient.Close()

	ctx := context.Background()

	artifact, err := readKnowledgeArtifact(cfg.Knowledge.KnowledgeBasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read knowledge base file")
	}

	profiles, err := readEmergencyProfiles(cfg.Knowledge.EmergencyProfilesPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read emergency profiles file")
	}

	// Run the same validation the runtime loaders apply, so an artifact
	// the API would refuse to boot on never reaches the tables.
	if _, err := entities.NewKnowledgeBase(artifact.Conditions, artifact.Symptoms, artifact.StopWords); err != nil {
		log.Fatal().Err(err).Msg("Knowledge base failed validation")
	}
	if err := knowledge.ValidateProfiles(profiles); err != nil {
		log.Fatal().Err(err).Msg("Emergency profiles failed validation")
	}

	db := pgClient.DB()

	if err := ensureSchema(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to create tables")
	}

	if os.Getenv("RESET_DB") == "true" {
		log.Info().Msg("RESET_DB=true detected, truncating turn analytics")
		if _, err := db.ExecContext(ctx, `TRUNCATE TABLE turn_analytics`); err != nil {
			log.Fatal().Err(err).Msg("Failed to reset turn analytics")
		}
	}

	tx, err := pgClient.BeginTx(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to begin transaction")
	}

	if err := seedKnowledge(ctx, tx, artifact, profiles); err != nil {
		tx.Rollback()
		log.Fatal().Err(err).Msg("Seeding failed")
	}

	if err := tx.Commit(); err != nil {
		log.Fatal().Err(err).Msg("Failed to commit")
	}

	log.Info().
		Int("conditions", len(artifact.Conditions)).
		Int("symptoms", len(artifact.Symptoms)).
		Int("stop_words", len(artifact.StopWords)).
		Int("emergency_profiles", len(profiles)).
		Msg("Seeding completed")
}

func readKnowledgeArtifact(path string) (*knowledgeArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact knowledgeArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, err
	}
	return &artifact, nil
}

func readEmergencyProfiles(path string) ([]*entities.EmergencyProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var profiles []*entities.EmergencyProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		return nil, err
	}
	return profiles, nil
}

// ensureSchema creates the knowledge and analytics tables. There is no
// separate migration tool; the seed owns the schema.
func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS stop_words (
			word TEXT PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS symptoms (
			id      TEXT PRIMARY KEY,
			label   TEXT,
			aliases TEXT[] NOT NULL DEFAULT '{}'
		);

		CREATE TABLE IF NOT EXISTS conditions (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL,
			description TEXT,
			symptoms    TEXT[] NOT NULL,
			precautions TEXT[] NOT NULL DEFAULT '{}',
			urgency     TEXT NOT NULL DEFAULT 'routine',
			contagious  BOOLEAN NOT NULL DEFAULT FALSE
		);

		CREATE TABLE IF NOT EXISTS condition_remedies (
			condition_id TEXT NOT NULL REFERENCES conditions(id) ON DELETE CASCADE,
			position     INT NOT NULL,
			name         TEXT NOT NULL,
			benefit      TEXT,
			explanation  TEXT,
			usage        TEXT,
			PRIMARY KEY (condition_id, position)
		);

		CREATE TABLE IF NOT EXISTS emergency_profiles (
			id                TEXT PRIMARY KEY,
			condition_name    TEXT NOT NULL,
			required_symptoms TEXT[] NOT NULL,
			urgency           TEXT NOT NULL,
			immediate_actions TEXT[] NOT NULL DEFAULT '{}'
		);

		CREATE TABLE IF NOT EXISTS turn_analytics (
			id               TEXT PRIMARY KEY,
			session_id       TEXT NOT NULL,
			turn             INT NOT NULL,
			message          TEXT NOT NULL,
			phase            TEXT NOT NULL,
			matched_count    INT NOT NULL,
			result_count     INT NOT NULL,
			top_condition_id TEXT,
			top_score        DOUBLE PRECISION NOT NULL DEFAULT 0,
			tier             TEXT,
			emergency        BOOLEAN NOT NULL,
			followup_kind    TEXT,
			latency_ms       BIGINT NOT NULL,
			created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_turn_analytics_unmatched
			ON turn_analytics (created_at DESC)
			WHERE matched_count = 0;
	`)
	return err
}

func seedKnowledge(ctx context.Context, tx *sql.Tx, artifact *knowledgeArtifact, profiles []*entities.EmergencyProfile) error {
	// condition_remedies goes with its conditions via ON DELETE CASCADE.
	for _, table := range []string{"conditions", "symptoms", "stop_words", "emergency_profiles"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return err
		}
	}

	for _, w := range artifact.StopWords {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO stop_words (word) VALUES ($1) ON CONFLICT (word) DO NOTHING`, w); err != nil {
			return err
		}
	}

	for _, s := range artifact.Symptoms {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO symptoms (id, label, aliases) VALUES ($1, $2, $3)`,
			string(s.ID), s.Label, pq.Array(s.Aliases)); err != nil {
			return err
		}
	}

	for _, c := range artifact.Conditions {
		symptomIDs := make([]string, 0, len(c.Symptoms))
		for _, id := range c.Symptoms {
			symptomIDs = append(symptomIDs, string(id))
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO conditions (id, name, description, symptoms, precautions, urgency, contagious)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			string(c.ID), c.Name, c.Description, pq.Array(symptomIDs), pq.Array(c.Precautions),
			string(c.Urgency), c.Contagious); err != nil {
			return err
		}

		for i, r := range c.Remedies {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO condition_remedies (condition_id, position, name, benefit, explanation, usage)
				 VALUES ($1, $2, $3, $4, $5, $6)`,
				string(c.ID), i, r.Name, r.Benefit, r.Explanation, r.Usage); err != nil {
				return err
			}
		}
	}

	for _, p := range profiles {
		required := make([]string, 0, len(p.RequiredSymptoms))
		for _, id := range p.RequiredSymptoms {
			required = append(required, string(id))
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO emergency_profiles (id, condition_name, required_symptoms, urgency, immediate_actions)
			 VALUES ($1, $2, $3, $4, $5)`,
			p.ID, p.ConditionName, pq.Array(required), string(p.Urgency), pq.Array(p.ImmediateActions)); err != nil {
			return err
		}
	}

	return nil
}
