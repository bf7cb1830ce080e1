package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/obinnaokafor/symptomsense/backend/internal/api/handlers"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
)

// MockEventBus for testing
type MockEventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]chan *entities.TriageEvent
	published   []*entities.TriageEvent
}

func NewMockEventBus() *MockEventBus {
	return &MockEventBus{
		subscribers: make(map[string][]chan *entities.TriageEvent),
		published:   make([]*entities.TriageEvent, 0),
	}
}

func (m *MockEventBus) Publish(ctx context.Context, channel string, event *entities.TriageEvent) error {
	m.mu.Lock()
	m.published = append(m.published, event)
	channels := append([]chan *entities.TriageEvent(nil), m.subscribers[channel]...)
	m.mu.Unlock()

	for _, ch := range channels {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (m *MockEventBus) Subscribe(ctx context.Context, channel string) (<-chan *entities.TriageEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan *entities.TriageEvent, 10)
	m.subscribers[channel] = append(m.subscribers[channel], ch)
	return ch, nil
}

func (m *MockEventBus) Unsubscribe(ctx context.Context, channel string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscribers, channel)
	return nil
}

func (m *MockEventBus) Close() error {
	m.mu.Lock()
	subs := m.subscribers
	m.subscribers = make(map[string][]chan *entities.TriageEvent)
	m.mu.Unlock()
	for _, channels := range subs {
		for _, ch := range channels {
			close(ch)
		}
	}
	return nil
}

func sampleAlertEvent(sessionID string) *entities.TriageEvent {
	return entities.NewEmergencyEvent(sessionID, &entities.EmergencyAssessment{
		ProfileID:        "cardiac_event",
		ConditionName:    "possible heart attack",
		Urgency:          entities.UrgencyCritical,
		MatchedSymptoms:  []entities.SymptomID{"chest_pain", "difficulty_breathing"},
		ImmediateActions: []string{"Call emergency services now"},
	})
}

func TestAlertsHandler_StreamAlerts(t *testing.T) {
	eventBus := NewMockEventBus()
	handler := handlers.NewAlertsHandler(eventBus)

	t.Run("should establish SSE connection", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/alerts", nil)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamAlerts(w, req)
			close(done)
		}()

		time.Sleep(100 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		result := w.Result()
		if result.Header.Get("Content-Type") != "text/event-stream" {
			t.Errorf("Expected Content-Type text/event-stream, got %s", result.Header.Get("Content-Type"))
		}
		if result.Header.Get("Cache-Control") != "no-cache" {
			t.Errorf("Expected Cache-Control no-cache, got %s", result.Header.Get("Cache-Control"))
		}
		if !strings.Contains(w.Body.String(), "event: connected") {
			t.Error("Expected initial connected event in stream")
		}
	})

	t.Run("should stream emergency events", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/alerts", nil)
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamAlerts(w, req)
			close(done)
		}()

		time.Sleep(100 * time.Millisecond)

		eventBus.Publish(context.Background(), providers.EventChannelAlerts, sampleAlertEvent("sess-1"))

		time.Sleep(200 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		body := w.Body.String()
		if !strings.Contains(body, "event: "+entities.EventEmergencyDetected) {
			t.Errorf("Expected emergency event in stream, got: %s", body)
		}
		if !strings.Contains(body, "sess-1") {
			t.Error("Expected session id in streamed event payload")
		}
	})
}

func TestAlertsHandler_StreamSessionAlerts(t *testing.T) {
	eventBus := NewMockEventBus()
	handler := handlers.NewAlertsHandler(eventBus)

	t.Run("should stream only the session channel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/stream/sessions/sess-7", nil)
		req.SetPathValue("id", "sess-7")
		req = req.WithContext(ctx)
		w := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			handler.StreamSessionAlerts(w, req)
			close(done)
		}()

		time.Sleep(100 * time.Millisecond)

		eventBus.Publish(context.Background(), providers.GetSessionChannel("sess-7"), sampleAlertEvent("sess-7"))
		eventBus.Publish(context.Background(), providers.GetSessionChannel("sess-8"), sampleAlertEvent("sess-8"))

		time.Sleep(200 * time.Millisecond)

		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("handler did not exit after cancel")
		}

		body := w.Body.String()
		if !strings.Contains(body, "sess-7") {
			t.Error("Expected session event in stream")
		}
		if strings.Contains(body, "sess-8") {
			t.Error("Stream leaked another session's event")
		}
	})

	t.Run("should return error for missing session ID", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/stream/sessions/", nil)
		w := httptest.NewRecorder()

		handler.StreamSessionAlerts(w, req)

		result := w.Result()
		if result.StatusCode != http.StatusBadRequest {
			t.Errorf("Expected status 400, got %d", result.StatusCode)
		}
	})
}

func TestAlertsHandler_ClientCount(t *testing.T) {
	eventBus := NewMockEventBus()
	handler := handlers.NewAlertsHandler(eventBus)

	if count := handler.GetClientCount(); count != 0 {
		t.Errorf("Expected 0 clients, got %d", count)
	}

	req := httptest.NewRequest("GET", "/api/stream/alerts", nil)
	w := httptest.NewRecorder()

	ctx, cancel := context.WithCancel(context.Background())
	req = req.WithContext(ctx)

	go handler.StreamAlerts(w, req)
	time.Sleep(100 * time.Millisecond)

	if count := handler.GetClientCount(); count != 1 {
		t.Errorf("Expected 1 client, got %d", count)
	}

	cancel()
	time.Sleep(100 * time.Millisecond)

	if count := handler.GetClientCount(); count != 0 {
		t.Errorf("Expected 0 clients after disconnect, got %d", count)
	}
}
