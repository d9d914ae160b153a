package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

// Version is reported by the health endpoint
var Version = "dev"

// Pinger checks that a dependency is reachable
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HTTPHandler handles HTTP endpoints
type HTTPHandler struct {
	db Pinger
}

// NewHTTPHandler creates a new HTTP handler. db may be nil.
func NewHTTPHandler(db Pinger) *HTTPHandler {
	return &HTTPHandler{
		db: db,
	}
}

// SetupRoutes configures all HTTP routes
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth returns a simple health check response
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := http.StatusOK
	response := map[string]string{
		"status":  "ok",
		"version": Version,
	}

	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			log.Printf("Health: database ping failed: %v", err)
			status = http.StatusServiceUnavailable
			response["status"] = "degraded"
			response["database"] = "unreachable"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Error encoding health response: %v", err)
	}
}
