package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	appmw "todo-tracker/internal/middleware"
)

type fakeSessions struct {
	user string
}

func (f fakeSessions) UserFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie("todo_tracker_auth")
	if err != nil || c.Value != "valid" {
		return "", false
	}
	return f.user, true
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: "todo_tracker_auth", Value: "valid"})
	return req
}

func TestAPISessionGate(t *testing.T) {
	r := chi.NewRouter()
	r.Use(appmw.APISessionGate(appmw.SessionGateConfig{
		Sessions:  fakeSessions{user: "alice"},
		SkipPaths: []string{"/api/health"},
	}))
	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/api/todos", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/todos", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without session, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, withSession(httptest.NewRequest("GET", "/api/todos", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("skip path should be open, got %d", rec.Code)
	}
}

func TestAPISessionGate_RejectsBadCookie(t *testing.T) {
	r := chi.NewRouter()
	r.Use(appmw.APISessionGate(appmw.SessionGateConfig{Sessions: fakeSessions{user: "alice"}}))
	r.Get("/api/todos", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/todos", nil)
	req.AddCookie(&http.Cookie{Name: "todo_tracker_auth", Value: "tampered"})
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad cookie, got %d", rec.Code)
	}
}

func TestPageSessionGate_Redirects(t *testing.T) {
	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(appmw.PageSessionGate(fakeSessions{user: "alice"}, "/login"))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/login" {
		t.Fatalf("redirect target = %q", loc)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, withSession(httptest.NewRequest("GET", "/", nil)))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with session, got %d", rec.Code)
	}
}
