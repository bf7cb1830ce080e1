package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
)

// AlertNotifier consumes the emergency alert channel and forwards
// CRITICAL detections to a configured on-call number. Send failures are
// logged and dropped; the stream must keep draining either way.
type AlertNotifier struct {
	bus       providers.EventBus
	sender    providers.AlertSender
	recipient string
}

func NewAlertNotifier(bus providers.EventBus, sender providers.AlertSender, recipient string) *AlertNotifier {
	return &AlertNotifier{bus: bus, sender: sender, recipient: recipient}
}

// Run blocks consuming alerts until the context is cancelled or the bus
// closes the subscription.
func (n *AlertNotifier) Run(ctx context.Context) error {
	events, err := n.bus.Subscribe(ctx, providers.EventChannelAlerts)
	if err != nil {
		return err
	}

	log.Info().Str("channel", providers.EventChannelAlerts).Msg("alert notifier listening")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				return nil
			}
			n.handle(ctx, event)
		}
	}
}

func (n *AlertNotifier) handle(ctx context.Context, event *entities.TriageEvent) {
	if event.Urgency != entities.UrgencyCritical {
		return
	}

	if _, err := n.sender.SendText(ctx, n.recipient, FormatAlertText(event)); err != nil {
		log.Warn().Err(err).
			Str("session_id", event.SessionID).
			Str("profile_id", event.ProfileID).
			Msg("failed to send emergency alert")
		return
	}

	log.Info().
		Str("session_id", event.SessionID).
		Str("profile_id", event.ProfileID).
		Msg("emergency alert sent")
}

// FormatAlertText renders the on-call message for an emergency event.
func FormatAlertText(event *entities.TriageEvent) string {
	return fmt.Sprintf("%s triage alert: %s. Symptoms: %s. Session %s at %s.",
		event.Urgency,
		event.ConditionName,
		strings.Join(event.MatchedSymptoms, ", "),
		event.SessionID,
		event.Timestamp.Format("15:04 MST"))
}
