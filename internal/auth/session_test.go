package auth

import (
	"strings"
	"testing"
	"time"

	"todo-tracker/internal/config"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(config.Auth{
		Username:      "alice",
		Password:      "s3cret",
		SessionSecret: "unit-test-secret",
		SessionMaxAge: 12 * time.Hour,
	}, false)
}

func TestLogin(t *testing.T) {
	m := testManager(t)

	token, ok := m.Login("alice", "s3cret")
	if !ok || token == "" {
		t.Fatalf("expected successful login, ok=%v token=%q", ok, token)
	}
	if user, ok := m.Verify(token); !ok || user != "alice" {
		t.Fatalf("issued token did not verify: user=%q ok=%v", user, ok)
	}

	for _, pair := range [][2]string{
		{"alice", "wrong"},
		{"bob", "s3cret"},
		{"", ""},
		{"alice", "s3cret "},
	} {
		if _, ok := m.Login(pair[0], pair[1]); ok {
			t.Errorf("login(%q, %q) should fail", pair[0], pair[1])
		}
	}
}

func TestVerify_Expiry(t *testing.T) {
	m := testManager(t)
	issued := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token := m.Issue("alice")
	if _, ok := m.Verify(token); !ok {
		t.Fatal("token should verify immediately after issue")
	}

	m.now = func() time.Time { return issued.Add(12*time.Hour - time.Second) }
	if _, ok := m.Verify(token); !ok {
		t.Error("token should still verify just before expiry")
	}

	m.now = func() time.Time { return issued.Add(12 * time.Hour) }
	if _, ok := m.Verify(token); ok {
		t.Error("token should reject at expiry")
	}
}

func TestVerify_RejectsMutations(t *testing.T) {
	m := testManager(t)
	token := m.Issue("alice")

	// Any single-character mutation must invalidate the token.
	for i := 0; i < len(token); i++ {
		if token[i] == '.' {
			continue
		}
		mutated := []byte(token)
		if mutated[i] == 'A' {
			mutated[i] = 'B'
		} else {
			mutated[i] = 'A'
		}
		if _, ok := m.Verify(string(mutated)); ok {
			t.Fatalf("mutated token at index %d still verifies", i)
		}
	}
}

func TestVerify_RejectsMalformed(t *testing.T) {
	m := testManager(t)

	payload, _, _ := strings.Cut(m.Issue("alice"), ".")
	cases := []string{
		"",
		".",
		"no-delimiter",
		"payload.",
		".signature",
		"!!!notbase64.deadbeef",
		payload,                      // missing signature
		payload + "." + "deadbeef",   // wrong signature
		"e30." + m.sign("e30"),       // valid signature over empty claims
		"bnVsbA." + m.sign("bnVsbA"), // signed JSON null
	}
	for _, token := range cases {
		if _, ok := m.Verify(token); ok {
			t.Errorf("Verify(%q) should reject", token)
		}
	}
}

func TestVerify_DifferentSecretRejects(t *testing.T) {
	m := testManager(t)
	token := m.Issue("alice")

	rotated := NewManager(config.Auth{
		Username:      "alice",
		Password:      "s3cret",
		SessionSecret: "rotated-secret",
		SessionMaxAge: 12 * time.Hour,
	}, false)
	if _, ok := rotated.Verify(token); ok {
		t.Error("token should not survive a secret rotation")
	}
}
