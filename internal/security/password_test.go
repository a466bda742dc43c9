package security

import (
	"errors"
	"strings"
	"testing"
)

func strptr(s string) *string { return &s }

func TestVerifyCredentialBcryptRoundTrip(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if !strings.HasPrefix(hash, "$2a$") && !strings.HasPrefix(hash, "$2b$") {
		t.Fatalf("expected bcrypt prefix, got %q", hash[:6])
	}

	out, err := VerifyCredential(hash, nil, "password123")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !out.Matched || out.FormatOutdated {
		t.Fatalf("expected matched current-format outcome, got %+v", out)
	}

	out, err = VerifyCredential(hash, nil, "wrongpass")
	if err != nil {
		t.Fatalf("verify wrong password errored: %v", err)
	}
	if out.Matched || out.FormatOutdated {
		t.Fatalf("expected clean mismatch, got %+v", out)
	}
}

func TestVerifyCredentialLegacyMatchReportsOutdated(t *testing.T) {
	salt := "abc123xyz456"
	stored := LegacyHashPassword("password123", salt)

	out, err := VerifyCredential(stored, strptr(salt), "password123")
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !out.Matched || !out.FormatOutdated {
		t.Fatalf("expected matched outdated outcome, got %+v", out)
	}
}

func TestVerifyCredentialLegacyMismatchNeverOutdated(t *testing.T) {
	salt := "abc123xyz456"
	stored := LegacyHashPassword("password123", salt)

	out, err := VerifyCredential(stored, strptr(salt), "wrongpass")
	if err != nil {
		t.Fatalf("verify errored: %v", err)
	}
	if out.Matched || out.FormatOutdated {
		t.Fatalf("failed match must not flag an upgrade, got %+v", out)
	}
}

func TestVerifyCredentialLegacyWithoutSaltFailsClosed(t *testing.T) {
	stored := LegacyHashPassword("password123", "abc123xyz456")

	out, err := VerifyCredential(stored, nil, "password123")
	if !errors.Is(err, ErrUnsupportedCredential) {
		t.Fatalf("expected ErrUnsupportedCredential, got %v", err)
	}
	if out.Matched || out.FormatOutdated {
		t.Fatalf("expected zero outcome, got %+v", out)
	}

	empty := ""
	if _, err := VerifyCredential(stored, &empty, "password123"); !errors.Is(err, ErrUnsupportedCredential) {
		t.Fatalf("empty salt must fail closed, got %v", err)
	}
}

func TestVerifyCredentialBcryptWithSaltIsIllegalState(t *testing.T) {
	hash, err := HashPassword("password123")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}

	out, err := VerifyCredential(hash, strptr("leftover-salt"), "password123")
	if !errors.Is(err, ErrCredentialStateConflict) {
		t.Fatalf("expected ErrCredentialStateConflict, got %v", err)
	}
	if out.Matched {
		t.Fatal("illegal state must never verify")
	}
}

func TestVerifyCredentialEmptyStoredValue(t *testing.T) {
	if _, err := VerifyCredential("", nil, "anything"); !errors.Is(err, ErrUnsupportedCredential) {
		t.Fatalf("expected ErrUnsupportedCredential, got %v", err)
	}
}

func TestClassifyCredential(t *testing.T) {
	salt := "s1"
	cases := []struct {
		name    string
		stored  string
		salt    *string
		want    CredentialFormat
		wantErr error
	}{
		{"bcrypt 2a", "$2a$12$abcdefghijklmnopqrstuv", nil, CredentialBcrypt, nil},
		{"bcrypt 2b", "$2b$12$abcdefghijklmnopqrstuv", nil, CredentialBcrypt, nil},
		{"legacy with salt", "0123456789abcdef0123456789abcdef", &salt, CredentialLegacyMD5, nil},
		{"legacy without salt", "0123456789abcdef0123456789abcdef", nil, CredentialUnknown, ErrUnsupportedCredential},
		{"bcrypt with salt", "$2b$12$abcdefghijklmnopqrstuv", &salt, CredentialUnknown, ErrCredentialStateConflict},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ClassifyCredential(tc.stored, tc.salt)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err mismatch: got %v want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("format mismatch: got %v want %v", got, tc.want)
			}
		})
	}
}

func TestLegacyHashPasswordDeterministic(t *testing.T) {
	a := LegacyHashPassword("password123", "abc123xyz456")
	b := LegacyHashPassword("password123", "abc123xyz456")
	if a != b {
		t.Fatal("legacy hash must be deterministic for the same salt")
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if a == LegacyHashPassword("password123", "othersalt") {
		t.Fatal("different salts must produce different digests")
	}
}
