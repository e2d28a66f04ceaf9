// internal/handlers/http/health_handler.go
// Handler sederhana untuk health check

package http

import (
	"encoding/json"
	"net/http"

	mcphandlers "petrocalc/internal/handlers/mcp"
)

var version = "dev"

// SetVersion diisi dari BuildVersion (ldflags) di main.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version,
	})
}

// ReadyHandler: kalkulator selalu siap; repo DB dilaporkan terpisah
// karena hanya tool berbasis data sumur yang membutuhkannya.
func ReadyHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
		"repos":  mcphandlers.ReposStatus(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
