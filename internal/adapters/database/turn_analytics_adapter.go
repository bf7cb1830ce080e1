package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/google/uuid"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
	"github.com/obinnaokafor/symptomsense/backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/obinnaokafor/symptomsense/backend/pkg/errors"
)

const turnAnalyticsTable = "turn_analytics"

var turnAnalyticsColumns = []interface{}{
	"id", "session_id", "turn", "message", "phase", "matched_count",
	"result_count", "top_condition_id", "top_score", "tier", "emergency",
	"followup_kind", "latency_ms", "created_at",
}

// TurnAnalyticsAdapter persists per-turn analytics to Postgres. Writes
// are fire-and-forget from the service layer; reads back the zero-match
// report used to grow the symptom vocabulary.
type TurnAnalyticsAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewTurnAnalyticsAdapter creates a new turn analytics adapter.
func NewTurnAnalyticsAdapter(client *postgres.Client) repositories.TurnAnalyticsRepository {
	return &TurnAnalyticsAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// LogTurn inserts one analytics record.
func (a *TurnAnalyticsAdapter) LogTurn(ctx context.Context, event *entities.TurnEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	record := goqu.Record{
		"id":               event.ID,
		"session_id":       event.SessionID,
		"turn":             event.Turn,
		"message":          event.Message,
		"phase":            event.Phase,
		"matched_count":    event.MatchedCount,
		"result_count":     event.ResultCount,
		"top_condition_id": sql.NullString{String: event.TopConditionID, Valid: event.TopConditionID != ""},
		"top_score":        event.TopScore,
		"tier":             sql.NullString{String: event.Tier, Valid: event.Tier != ""},
		"emergency":        event.Emergency,
		"followup_kind":    sql.NullString{String: event.FollowupKind, Valid: event.FollowupKind != ""},
		"latency_ms":       event.LatencyMS,
		"created_at":       event.Timestamp,
	}

	query, args, err := a.db.Insert(turnAnalyticsTable).Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build turn insert query", err)
	}

	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to log turn event", err)
	}

	return nil
}

// GetUnmatchedMessages returns the most recent turns where no symptom was
// recognized, newest first.
func (a *TurnAnalyticsAdapter) GetUnmatchedMessages(ctx context.Context, limit int) ([]*entities.TurnEvent, error) {
	if limit <= 0 {
		limit = 100
	}

	query, args, err := a.db.Select(turnAnalyticsColumns...).
		From(turnAnalyticsTable).
		Where(goqu.Ex{"matched_count": 0}).
		Order(goqu.I("created_at").Desc()).
		Limit(uint(limit)).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build unmatched messages query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get unmatched messages", err)
	}
	defer rows.Close()

	var events []*entities.TurnEvent
	for rows.Next() {
		e := &entities.TurnEvent{}
		var topCondition, tier, followupKind sql.NullString
		err := rows.Scan(
			&e.ID,
			&e.SessionID,
			&e.Turn,
			&e.Message,
			&e.Phase,
			&e.MatchedCount,
			&e.ResultCount,
			&topCondition,
			&e.TopScore,
			&tier,
			&e.Emergency,
			&followupKind,
			&e.LatencyMS,
			&e.Timestamp,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan turn event", err)
		}
		e.TopConditionID = topCondition.String
		e.Tier = tier.String
		e.FollowupKind = followupKind.String
		events = append(events, e)
	}

	return events, rows.Err()
}

// GetEmergencyCount returns how many turns tripped an emergency profile.
func (a *TurnAnalyticsAdapter) GetEmergencyCount(ctx context.Context) (int, error) {
	query, args, err := a.db.Select(goqu.COUNT("*")).
		From(turnAnalyticsTable).
		Where(goqu.Ex{"emergency": true}).
		ToSQL()
	if err != nil {
		return 0, apperrors.NewInternalError("failed to build emergency count query", err)
	}

	var count int
	if err := a.client.DB().QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, apperrors.NewInternalError("failed to count emergencies", err)
	}

	return count, nil
}
