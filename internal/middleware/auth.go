package middleware

import (
	"net/http"
	"strings"

	"todo-tracker/internal/httpx"
)

// SessionVerifier resolves the authenticated user carried by a request,
// if any. Satisfied by the auth manager.
type SessionVerifier interface {
	UserFromRequest(r *http.Request) (string, bool)
}

// SessionGateConfig lists the paths reachable without a session.
// Everything else behind the gate requires a valid token.
type SessionGateConfig struct {
	Sessions  SessionVerifier
	SkipPaths []string
}

// APISessionGate rejects unauthenticated API requests with 401.
func APISessionGate(cfg SessionGateConfig) func(http.Handler) http.Handler {
	skip := skipSet(cfg.SkipPaths)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := skip[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}
			if _, ok := cfg.Sessions.UserFromRequest(r); !ok {
				httpx.Error(w, http.StatusUnauthorized, "unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PageSessionGate redirects unauthenticated page requests to the login
// page instead of returning 401.
func PageSessionGate(sessions SessionVerifier, loginPath string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := sessions.UserFromRequest(r); !ok {
				http.Redirect(w, r, loginPath, http.StatusFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func skipSet(paths []string) map[string]struct{} {
	set := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		set[strings.TrimSpace(p)] = struct{}{}
	}
	return set
}
