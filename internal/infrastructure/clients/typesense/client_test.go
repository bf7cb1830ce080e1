package typesense

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obinnaokafor/symptomsense/backend/pkg/config"
)

func TestNewClient_HealthChecksOnConstruction(t *testing.T) {
	healthCalls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		healthCalls++
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	client, err := NewClient(&config.TypesenseConfig{URL: server.URL, APIKey: "test-key"})
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.NotNil(t, client.Client())
	assert.Equal(t, 1, healthCalls)
}
