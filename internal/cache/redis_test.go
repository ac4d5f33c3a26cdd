package cache

import (
	"context"
	"testing"
	"time"
)

func TestHelpersWithoutRedis(t *testing.T) {
	client = nil
	ctx := context.Background()

	if RevokeToken(ctx, "tok", time.Hour) {
		t.Fatal("revocation should report false without redis")
	}
	if IsRevoked(ctx, "tok") {
		t.Fatal("nothing is revoked without redis")
	}
	if IsHealthy() {
		t.Fatal("nil client is not healthy")
	}
}

func TestTokenKeyIsStableAndOpaque(t *testing.T) {
	a, b := tokenKey("header.payload.sig"), tokenKey("header.payload.sig")
	if a != b {
		t.Fatal("key must be deterministic")
	}
	if a == revokedPrefix+"header.payload.sig" || len(a) != len(revokedPrefix)+32 {
		t.Fatalf("unexpected key %q", a)
	}
}
