package repositories

import (
	"context"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

type TurnAnalyticsRepository interface {
	LogTurn(ctx context.Context, event *entities.TurnEvent) error
	GetUnmatchedMessages(ctx context.Context, limit int) ([]*entities.TurnEvent, error)
	GetEmergencyCount(ctx context.Context) (int, error)
}
