package security

import (
	"strings"
	"testing"
	"time"
)

func newTestJWTManager() *JWTManager {
	return NewJWTManager("lumenshare", "lumenshare-api", strings.Repeat("s", 32))
}

func TestJWTManagerSignAndParse(t *testing.T) {
	mgr := newTestJWTManager()
	raw, err := mgr.SignAccessToken(42, "user@example.com", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	claims, err := mgr.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "42" || claims.Email != "user@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTManagerRejectsExpiredToken(t *testing.T) {
	mgr := newTestJWTManager()
	raw, err := mgr.SignAccessToken(1, "a@b.c", time.Nanosecond)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := mgr.ParseAccessToken(raw); err == nil {
		t.Fatal("expected expiry error")
	}
}

func TestJWTManagerRejectsForeignIssuer(t *testing.T) {
	other := NewJWTManager("someone-else", "lumenshare-api", strings.Repeat("s", 32))
	raw, err := other.SignAccessToken(1, "a@b.c", time.Minute)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := newTestJWTManager().ParseAccessToken(raw); err == nil {
		t.Fatal("expected issuer validation error")
	}
}

func TestJWTManagerRejectsZeroTTL(t *testing.T) {
	if _, err := newTestJWTManager().SignAccessToken(1, "a@b.c", 0); err == nil {
		t.Fatal("expected ttl validation error")
	}
}

func TestSignedStateRoundTrip(t *testing.T) {
	signed := SignState("abc", "key")
	state, ok := VerifySignedState(signed, "key")
	if !ok || state != "abc" {
		t.Fatalf("round trip failed: %q %v", state, ok)
	}
	if _, ok := VerifySignedState(signed, "other-key"); ok {
		t.Fatal("expected verification failure with wrong key")
	}
	if _, ok := VerifySignedState("tampered", "key"); ok {
		t.Fatal("expected verification failure for malformed state")
	}
}
