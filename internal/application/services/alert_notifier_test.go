package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
)

type subscribableBus struct {
	ch chan *entities.TriageEvent
}

func newSubscribableBus() *subscribableBus {
	return &subscribableBus{ch: make(chan *entities.TriageEvent, 8)}
}

func (b *subscribableBus) Publish(_ context.Context, _ string, event *entities.TriageEvent) error {
	b.ch <- event
	return nil
}

func (b *subscribableBus) Subscribe(_ context.Context, _ string) (<-chan *entities.TriageEvent, error) {
	return b.ch, nil
}

func (b *subscribableBus) Unsubscribe(_ context.Context, _ string) error { return nil }
func (b *subscribableBus) Close() error                                  { return nil }

type recordingSender struct {
	mu   sync.Mutex
	sent []string
	err  error
}

func (s *recordingSender) SendText(_ context.Context, _, body string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, body)
	return "msg-1", nil
}

func (s *recordingSender) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sent)
}

func (s *recordingSender) last() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1]
}

func criticalEvent(sessionID string) *entities.TriageEvent {
	return &entities.TriageEvent{
		ID:              "evt-1",
		Type:            entities.EventEmergencyDetected,
		SessionID:       sessionID,
		ProfileID:       "cardiac_distress",
		ConditionName:   "Possible heart attack",
		Urgency:         entities.UrgencyCritical,
		MatchedSymptoms: []string{"chest_pain", "difficulty_breathing"},
		Timestamp:       time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC),
	}
}

func TestAlertNotifier_SendsCriticalAlerts(t *testing.T) {
	bus := newSubscribableBus()
	sender := &recordingSender{}
	notifier := NewAlertNotifier(bus, sender, "15550001111")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- notifier.Run(ctx) }()

	bus.ch <- criticalEvent("s1")

	require.Eventually(t, func() bool { return sender.count() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Contains(t, sender.last(), "Possible heart attack")
	assert.Contains(t, sender.last(), "chest_pain, difficulty_breathing")

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestAlertNotifier_IgnoresNonCriticalEvents(t *testing.T) {
	bus := newSubscribableBus()
	sender := &recordingSender{}
	notifier := NewAlertNotifier(bus, sender, "15550001111")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = notifier.Run(ctx) }()

	urgent := criticalEvent("s1")
	urgent.Urgency = entities.UrgencyUrgent
	bus.ch <- urgent
	bus.ch <- criticalEvent("s2")

	// The critical one lands; the urgent one never does.
	require.Eventually(t, func() bool { return sender.count() == 1 },
		time.Second, 10*time.Millisecond)
	assert.Contains(t, sender.last(), "s2")
}

func TestAlertNotifier_SendFailureKeepsDraining(t *testing.T) {
	bus := newSubscribableBus()
	sender := &recordingSender{err: errors.New("provider down")}
	notifier := NewAlertNotifier(bus, sender, "15550001111")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = notifier.Run(ctx) }()

	bus.ch <- criticalEvent("s1")
	time.Sleep(50 * time.Millisecond)

	sender.mu.Lock()
	sender.err = nil
	sender.mu.Unlock()

	bus.ch <- criticalEvent("s2")
	require.Eventually(t, func() bool { return sender.count() == 1 },
		time.Second, 10*time.Millisecond)
}

func TestAlertNotifier_StopsWhenBusCloses(t *testing.T) {
	bus := newSubscribableBus()
	notifier := NewAlertNotifier(bus, &recordingSender{}, "15550001111")

	done := make(chan error, 1)
	go func() { done <- notifier.Run(context.Background()) }()

	close(bus.ch)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("notifier did not stop when the bus closed")
	}
}

func TestFormatAlertText(t *testing.T) {
	text := FormatAlertText(criticalEvent("s1"))
	assert.Equal(t,
		"CRITICAL triage alert: Possible heart attack. Symptoms: chest_pain, difficulty_breathing. Session s1 at 12:30 UTC.",
		text)
}
