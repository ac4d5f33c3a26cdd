package auth

import (
	"strings"
	"testing"
	"time"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("secret", "pragathi-crm", time.Hour)
	token, exp, err := m.GenerateToken(7, "owner@example.com", "admin")
	if err != nil {
		t.Fatal(err)
	}
	if time.Until(exp) <= 0 {
		t.Fatalf("expiry in the past: %v", exp)
	}

	claims, err := m.ValidateToken(token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.UserID != 7 || claims.Email != "owner@example.com" || claims.Role != "admin" {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestValidateRejects(t *testing.T) {
	m := NewJWTManager("secret", "pragathi-crm", time.Hour)
	token, _, _ := m.GenerateToken(1, "a@b.c", "assistant")

	tests := map[string]struct {
		mgr   *JWTManager
		token string
	}{
		"wrong secret": {NewJWTManager("other", "pragathi-crm", time.Hour), token},
		"wrong issuer": {NewJWTManager("secret", "someone-else", time.Hour), token},
		"tampered":     {m, strings.TrimSuffix(token, token[len(token)-2:]) + "xx"},
		"expired":      {m, mustToken(t, NewJWTManager("secret", "pragathi-crm", -time.Minute))},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := tt.mgr.ValidateToken(tt.token); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func mustToken(t *testing.T, m *JWTManager) string {
	t.Helper()
	tok, _, err := m.GenerateToken(1, "a@b.c", "admin")
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("sunny-day")
	if err != nil {
		t.Fatal(err)
	}
	if !VerifyPassword(hash, "sunny-day") {
		t.Fatal("correct password rejected")
	}
	if VerifyPassword(hash, "rainy-day") {
		t.Fatal("wrong password accepted")
	}
}

func TestPasswordEmptyInputs(t *testing.T) {
	if _, err := HashPassword(""); err != ErrEmptyPassword {
		t.Fatalf("empty password err = %v", err)
	}
	hash, _ := HashPassword("sunny-day")
	if VerifyPassword("", "sunny-day") || VerifyPassword(hash, "") {
		t.Fatal("empty hash or password must not match")
	}
}
