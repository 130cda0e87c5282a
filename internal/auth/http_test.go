package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func newAuthServer(t *testing.T) (*chi.Mux, *Manager) {
	t.Helper()
	m := testManager(t)
	r := chi.NewRouter()
	RegisterRoutes(r, m)
	return r, m
}

func TestLoginEndpoint_SetsCookie(t *testing.T) {
	r, m := newAuthServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"s3cret"}`))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", rec.Code, rec.Body.String())
	}

	cookies := rec.Result().Cookies()
	var session *http.Cookie
	for _, c := range cookies {
		if c.Name == CookieName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected session cookie")
	}
	if !session.HttpOnly || session.Path != "/" || session.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie flags wrong: %+v", session)
	}
	if session.MaxAge != 12*60*60 {
		t.Errorf("cookie max-age = %d, want %d", session.MaxAge, 12*60*60)
	}
	if user, ok := m.Verify(session.Value); !ok || user != "alice" {
		t.Errorf("cookie value does not verify: user=%q ok=%v", user, ok)
	}
}

func TestLoginEndpoint_BadCredentials(t *testing.T) {
	r, _ := newAuthServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"username":"alice","password":"nope"}`))
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if len(rec.Result().Cookies()) != 0 {
		t.Error("no cookie should be set on failed login")
	}
}

func TestLogoutEndpoint_ClearsCookie(t *testing.T) {
	r, _ := newAuthServer(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != CookieName {
		t.Fatalf("expected cleared session cookie, got %v", cookies)
	}
	if cookies[0].Value != "" || cookies[0].MaxAge >= 0 {
		t.Errorf("cookie not cleared: value=%q maxAge=%d", cookies[0].Value, cookies[0].MaxAge)
	}
}

func TestStatusEndpoint(t *testing.T) {
	r, m := newAuthServer(t)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/auth/status", nil))

	var resp struct {
		Authenticated bool    `json:"authenticated"`
		User          *string `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if resp.Authenticated || resp.User != nil {
		t.Errorf("anonymous status = %+v", resp)
	}

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/auth/status", nil)
	req.AddCookie(&http.Cookie{Name: CookieName, Value: m.Issue("alice")})
	r.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to parse JSON: %v", err)
	}
	if !resp.Authenticated || resp.User == nil || *resp.User != "alice" {
		t.Errorf("authenticated status = %+v", resp)
	}
}
