package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/repositories"
)

// TurnAnalyticsService persists per-turn analytics for zero-match mining
// and emergency auditing. Writes never block or fail a turn.
type TurnAnalyticsService struct {
	repo repositories.TurnAnalyticsRepository
}

func NewTurnAnalyticsService(repo repositories.TurnAnalyticsRepository) *TurnAnalyticsService {
	return &TurnAnalyticsService{repo: repo}
}

// TrackTurn logs the event in the background. The request context may be
// cancelled before the write lands, so the goroutine gets a fresh one.
func (s *TurnAnalyticsService) TrackTurn(ctx context.Context, event *entities.TurnEvent) {
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.repo.LogTurn(bgCtx, event); err != nil {
			log.Warn().Err(err).Str("session_id", event.SessionID).Msg("failed to log turn event")
		}
	}()
}

// GetUnmatchedMessages returns recent turns where nothing in the
// vocabulary matched, the raw material for alias mining.
func (s *TurnAnalyticsService) GetUnmatchedMessages(ctx context.Context, limit int) ([]*entities.TurnEvent, error) {
	return s.repo.GetUnmatchedMessages(ctx, limit)
}

// GetEmergencyCount returns how many turns have tripped an emergency
// profile.
func (s *TurnAnalyticsService) GetEmergencyCount(ctx context.Context) (int, error) {
	return s.repo.GetEmergencyCount(ctx)
}
