package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"todo-tracker/internal/httpx"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type statusResponse struct {
	Authenticated bool    `json:"authenticated"`
	User          *string `json:"user"`
}

// RegisterRoutes mounts login, logout, and session introspection. These
// are the only API routes reachable without a session.
func RegisterRoutes(r chi.Router, m *Manager) {
	r.Post("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpx.Error(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if _, ok := m.Login(req.Username, req.Password); !ok {
			httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		m.SetCookie(w, req.Username)
		httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Post("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		m.ClearCookie(w)
		httpx.WriteJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})

	r.Get("/api/auth/status", func(w http.ResponseWriter, r *http.Request) {
		var resp statusResponse
		if user, ok := m.UserFromRequest(r); ok {
			resp = statusResponse{Authenticated: true, User: &user}
		}
		httpx.WriteJSON(w, http.StatusOK, resp)
	})
}
