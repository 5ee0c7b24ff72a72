package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"live-quiz-service/internal/app"
	"live-quiz-service/internal/domain"
)

// SessionsHandler exposes the registry to operators.
type SessionsHandler struct {
	registry *app.Registry
}

func NewSessionsHandler(registry *app.Registry) *SessionsHandler {
	return &SessionsHandler{registry: registry}
}

// Register mounts GET /sessions and DELETE /sessions/{id}.
func (h *SessionsHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /sessions", h.list)
	mux.HandleFunc("DELETE /sessions/{id}", h.remove)
}

func (h *SessionsHandler) list(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(h.registry.ListSessions())
}

func (h *SessionsHandler) remove(w http.ResponseWriter, r *http.Request) {
	err := h.registry.RemoveSession(r.Context(), r.PathValue("id"))
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case err != nil:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	default:
		w.WriteHeader(http.StatusNoContent)
	}
}
