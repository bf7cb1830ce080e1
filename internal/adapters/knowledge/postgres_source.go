package knowledge

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/lib/pq"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

// PostgresSource loads the knowledge base from the seeded Postgres tables
// (symptoms, stop_words, conditions, condition_remedies,
// emergency_profiles). Used when KNOWLEDGE_SOURCE=postgres; the seed tool
// populates the tables from the JSON artifacts.
type PostgresSource struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPostgresSource creates a Postgres-backed knowledge source.
func NewPostgresSource(client *postgres.Client) repositories.KnowledgeSource {
	return &PostgresSource{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LoadKnowledgeBase reads every knowledge table and assembles the
// validated aggregate. Any query failure is startup-fatal.
func (s *PostgresSource) LoadKnowledgeBase(ctx context.Context) (*entities.KnowledgeBase, error) {
	stopWords, err := s.loadStopWords(ctx)
	if err != nil {
		return nil, err
	}

	symptoms, err := s.loadSymptoms(ctx)
	if err != nil {
		return nil, err
	}

	conditions, err := s.loadConditions(ctx)
	if err != nil {
		return nil, err
	}

	remedies, err := s.loadRemedies(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range conditions {
		c.Remedies = remedies[c.ID]
	}

	return entities.NewKnowledgeBase(conditions, symptoms, stopWords)
}

// LoadEmergencyProfiles reads and validates the red-flag profile table.
func (s *PostgresSource) LoadEmergencyProfiles(ctx context.Context) ([]*entities.EmergencyProfile, error) {
	query, args, err := s.db.Select("id", "condition_name", "required_symptoms", "urgency", "immediate_actions").
		From("emergency_profiles").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build emergency profiles query", err)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load emergency profiles", err)
	}
	defer rows.Close()

	var profiles []*entities.EmergencyProfile
	for rows.Next() {
		p := &entities.EmergencyProfile{}
		var required, actions []string
		if err := rows.Scan(&p.ID, &p.ConditionName, pq.Array(&required), &p.Urgency, pq.Array(&actions)); err != nil {
			return nil, apperrors.NewInternalError("failed to scan emergency profile", err)
		}
		for _, id := range required {
			p.RequiredSymptoms = append(p.RequiredSymptoms, entities.SymptomID(id))
		}
		p.ImmediateActions = actions
		profiles = append(profiles, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewInternalError("error iterating emergency profiles", err)
	}

	if err := ValidateProfiles(profiles); err != nil {
		return nil, err
	}

	return profiles, nil
}

func (s *PostgresSource) loadStopWords(ctx context.Context) ([]string, error) {
	query, args, err := s.db.Select("word").From("stop_words").ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build stop words query", err)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load stop words", err)
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var w string
		if err := rows.Scan(&w); err != nil {
			return nil, apperrors.NewInternalError("failed to scan stop word", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *PostgresSource) loadSymptoms(ctx context.Context) ([]*entities.Symptom, error) {
	query, args, err := s.db.Select("id", "label", "aliases").
		From("symptoms").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build symptoms query", err)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load symptoms", err)
	}
	defer rows.Close()

	var symptoms []*entities.Symptom
	for rows.Next() {
		sym := &entities.Symptom{}
		var label sql.NullString
		if err := rows.Scan(&sym.ID, &label, pq.Array(&sym.Aliases)); err != nil {
			return nil, apperrors.NewInternalError("failed to scan symptom", err)
		}
		sym.Label = label.String
		symptoms = append(symptoms, sym)
	}
	return symptoms, rows.Err()
}

func (s *PostgresSource) loadConditions(ctx context.Context) ([]*entities.Condition, error) {
	query, args, err := s.db.Select("id", "name", "description", "symptoms", "precautions", "urgency", "contagious").
		From("conditions").
		Order(goqu.I("id").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build conditions query", err)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load conditions", err)
	}
	defer rows.Close()

	var conditions []*entities.Condition
	for rows.Next() {
		c := &entities.Condition{}
		var description sql.NullString
		var symptoms []string
		if err := rows.Scan(&c.ID, &c.Name, &description, pq.Array(&symptoms), pq.Array(&c.Precautions), &c.Urgency, &c.Contagious); err != nil {
			return nil, apperrors.NewInternalError("failed to scan condition", err)
		}
		c.Description = description.String
		for _, id := range symptoms {
			c.Symptoms = append(c.Symptoms, entities.SymptomID(id))
		}
		conditions = append(conditions, c)
	}
	return conditions, rows.Err()
}

// loadRemedies returns remedies grouped by condition, in seeded order.
func (s *PostgresSource) loadRemedies(ctx context.Context) (map[entities.ConditionID][]entities.Remedy, error) {
	query, args, err := s.db.Select("condition_id", "name", "benefit", "explanation", "usage").
		From("condition_remedies").
		Order(goqu.I("condition_id").Asc(), goqu.I("position").Asc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build remedies query", err)
	}

	rows, err := s.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to load remedies", err)
	}
	defer rows.Close()

	remedies := make(map[entities.ConditionID][]entities.Remedy)
	for rows.Next() {
		var conditionID string
		var r entities.Remedy
		var benefit, explanation, usage sql.NullString
		if err := rows.Scan(&conditionID, &r.Name, &benefit, &explanation, &usage); err != nil {
			return nil, apperrors.NewInternalError("failed to scan remedy", err)
		}
		r.Benefit = benefit.String
		r.Explanation = explanation.String
		r.Usage = usage.String
		id := entities.ConditionID(conditionID)
		remedies[id] = append(remedies[id], r)
	}
	return remedies, rows.Err()
}
