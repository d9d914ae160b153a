package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakePinger struct {
	err error
}

func (p fakePinger) PingContext(ctx context.Context) error { return p.err }

func TestNewHTTPHandler(t *testing.T) {
	h := NewHTTPHandler(nil)
	if h == nil {
		t.Fatal("NewHTTPHandler returned nil")
	}
	if h.db != nil {
		t.Error("db should be nil when passed nil")
	}
}

func TestHTTPHandler_handleHealth(t *testing.T) {
	tests := []struct {
		name           string
		method         string
		db             Pinger
		expectedStatus int
		expectedState  string
	}{
		{
			name:           "GET returns 200 OK",
			method:         http.MethodGet,
			expectedStatus: http.StatusOK,
			expectedState:  "ok",
		},
		{
			name:           "GET with healthy database",
			method:         http.MethodGet,
			db:             fakePinger{},
			expectedStatus: http.StatusOK,
			expectedState:  "ok",
		},
		{
			name:           "GET with unreachable database",
			method:         http.MethodGet,
			db:             fakePinger{err: errors.New("connection refused")},
			expectedStatus: http.StatusServiceUnavailable,
			expectedState:  "degraded",
		},
		{
			name:           "POST returns 405 Method Not Allowed",
			method:         http.MethodPost,
			expectedStatus: http.StatusMethodNotAllowed,
		},
		{
			name:           "DELETE returns 405 Method Not Allowed",
			method:         http.MethodDelete,
			expectedStatus: http.StatusMethodNotAllowed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHTTPHandler(tt.db)
			req := httptest.NewRequest(tt.method, "/health", nil)
			w := httptest.NewRecorder()

			h.handleHealth(w, req)

			if w.Code != tt.expectedStatus {
				t.Errorf("handleHealth() status = %d, want %d", w.Code, tt.expectedStatus)
			}
			if tt.expectedState == "" {
				return
			}

			var response map[string]string
			if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if response["status"] != tt.expectedState {
				t.Errorf("status = %q, want %q", response["status"], tt.expectedState)
			}
			if response["version"] == "" {
				t.Error("expected version in response")
			}
		})
	}
}
