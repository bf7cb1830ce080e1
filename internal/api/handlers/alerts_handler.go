package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/obinnaokafor/symptomsense/backend/internal/domain/entities"
	"github.com/obinnaokafor/symptomsense/backend/internal/domain/providers"
)

// AlertsHandler handles Server-Sent Events for emergency alert streams
type AlertsHandler struct {
	eventBus providers.EventBus
	clients  map[string]map[chan *entities.TriageEvent]bool
	mu       sync.RWMutex
}

// NewAlertsHandler creates a new alerts SSE handler
func NewAlertsHandler(eventBus providers.EventBus) *AlertsHandler {
	return &AlertsHandler{
		eventBus: eventBus,
		clients:  make(map[string]map[chan *entities.TriageEvent]bool),
	}
}

// StreamAlerts handles SSE connections for the global emergency stream
// GET /api/stream/alerts
func (h *AlertsHandler) StreamAlerts(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, providers.EventChannelAlerts, map[string]interface{}{
		"channel":   "alerts",
		"timestamp": time.Now(),
	})
}

// StreamSessionAlerts handles SSE connections following a single session
// GET /api/stream/sessions/{id}
func (h *AlertsHandler) StreamSessionAlerts(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "session ID is required")
		return
	}

	h.stream(w, r, providers.GetSessionChannel(sessionID), map[string]interface{}{
		"session_id": sessionID,
		"timestamp":  time.Now(),
	})
}

func (h *AlertsHandler) stream(w http.ResponseWriter, r *http.Request, channel string, hello map[string]interface{}) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Set headers for SSE
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")

	clientChan := make(chan *entities.TriageEvent, 10)
	h.registerClient(channel, clientChan)
	defer h.unregisterClient(channel, clientChan)

	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		log.Error().Err(err).Str("channel", channel).Msg("failed to subscribe to alert channel")
		return
	}

	h.sendEvent(w, "connected", hello)
	flusher.Flush()

	go h.forwardEvents(r.Context(), eventChan, clientChan)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			log.Debug().Str("channel", channel).Msg("alert stream client disconnected")
			return
		case <-ticker.C:
			h.sendEvent(w, "heartbeat", map[string]interface{}{
				"timestamp": time.Now(),
			})
			flusher.Flush()
		case event := <-clientChan:
			if event == nil {
				continue
			}
			h.sendEvent(w, event.Type, event)
			flusher.Flush()
		}
	}
}

// forwardEvents forwards events from the event bus to a client channel
func (h *AlertsHandler) forwardEvents(ctx context.Context, eventChan <-chan *entities.TriageEvent, clientChan chan<- *entities.TriageEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			select {
			case clientChan <- event:
			default:
				// Client channel full, skip event
			}
		}
	}
}

// registerClient registers a client for a channel
func (h *AlertsHandler) registerClient(channel string, clientChan chan *entities.TriageEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[channel] == nil {
		h.clients[channel] = make(map[chan *entities.TriageEvent]bool)
	}
	h.clients[channel][clientChan] = true
	log.Debug().Str("channel", channel).Int("total", len(h.clients[channel])).Msg("alert stream client registered")
}

// unregisterClient unregisters a client from a channel
func (h *AlertsHandler) unregisterClient(channel string, clientChan chan *entities.TriageEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[channel]; exists {
		delete(clients, clientChan)

		if len(clients) == 0 {
			delete(h.clients, channel)
		}
	}
}

// sendEvent sends an SSE event to the client
func (h *AlertsHandler) sendEvent(w http.ResponseWriter, eventType string, data interface{}) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal event data")
		return
	}

	fmt.Fprintf(w, "event: %s\n", eventType)
	fmt.Fprintf(w, "data: %s\n\n", jsonData)
}

// GetClientCount returns the number of connected clients for debugging
func (h *AlertsHandler) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	count := 0
	for _, clients := range h.clients {
		count += len(clients)
	}
	return count
}
