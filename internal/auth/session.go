// Package auth implements the stateless signed session credential.
// Tokens are base64url(JSON claims) + "." + hex(HMAC-SHA256) over the
// encoded claims; there is no server-side session table, so an issued
// token stays valid until expiry unless the secret rotates.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"todo-tracker/internal/config"
)

// CookieName carries the session token on every request.
const CookieName = "todo_tracker_auth"

type claims struct {
	Username  string `json:"u"`
	ExpiresAt int64  `json:"e"` // unix milliseconds
}

// Manager issues and verifies session tokens against the single
// configured credential pair.
type Manager struct {
	cfg    config.Auth
	secure bool
	now    func() time.Time
}

func NewManager(cfg config.Auth, secureCookies bool) *Manager {
	return &Manager{cfg: cfg, secure: secureCookies, now: time.Now}
}

// Login checks the credential pair in constant time and issues a token
// on success.
func (m *Manager) Login(username, password string) (string, bool) {
	userOK := constantTimeEq(strings.TrimSpace(username), m.cfg.Username)
	passOK := constantTimeEq(password, m.cfg.Password)
	if !userOK || !passOK {
		return "", false
	}
	return m.Issue(strings.TrimSpace(username)), true
}

// Issue creates a signed token expiring after the configured lifetime.
func (m *Manager) Issue(username string) string {
	payload, _ := json.Marshal(claims{
		Username:  username,
		ExpiresAt: m.now().Add(m.cfg.SessionMaxAge).UnixMilli(),
	})
	encoded := base64.RawURLEncoding.EncodeToString(payload)
	return encoded + "." + m.sign(encoded)
}

// Verify recomputes the signature over the encoded payload and checks
// expiry. Any structural anomaly rejects; nothing here panics.
func (m *Manager) Verify(token string) (string, bool) {
	encoded, sig, found := strings.Cut(token, ".")
	if !found || encoded == "" || sig == "" {
		return "", false
	}
	if !hmac.Equal([]byte(sig), []byte(m.sign(encoded))) {
		return "", false
	}

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return "", false
	}
	var c claims
	if err := json.Unmarshal(raw, &c); err != nil {
		return "", false
	}
	if c.Username == "" || c.ExpiresAt == 0 {
		return "", false
	}
	if m.now().UnixMilli() >= c.ExpiresAt {
		return "", false
	}
	return c.Username, true
}

// UserFromRequest resolves the authenticated username from the session
// cookie, if any.
func (m *Manager) UserFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return "", false
	}
	return m.Verify(c.Value)
}

// SetCookie attaches a fresh session cookie for username.
func (m *Manager) SetCookie(w http.ResponseWriter, username string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    m.Issue(username),
		Path:     "/",
		MaxAge:   int(m.cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

// ClearCookie expires the session cookie immediately.
func (m *Manager) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   m.secure,
	})
}

func (m *Manager) sign(encoded string) string {
	mac := hmac.New(sha256.New, []byte(m.cfg.SessionSecret))
	mac.Write([]byte(encoded))
	return hex.EncodeToString(mac.Sum(nil))
}

func constantTimeEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
