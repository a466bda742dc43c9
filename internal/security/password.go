package security

import (
	"crypto/md5" // #nosec G501 -- legacy credential verification only, never used for new hashes.
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost keeps a single verification in the tens of milliseconds on
// commodity hardware.
const bcryptCost = 12

var (
	// ErrUnsupportedCredential reports a stored value that is neither a
	// bcrypt hash nor a legacy hash with a salt on record.
	ErrUnsupportedCredential = errors.New("unsupported credential format")
	// ErrCredentialStateConflict reports a bcrypt hash that still carries a
	// legacy salt. The record is in an illegal state and must not be
	// verified against either algorithm.
	ErrCredentialStateConflict = errors.New("credential has both bcrypt hash and legacy salt")
)

// CredentialFormat is the explicit two-state classification of a stored
// credential. Lifecycle is one-way: legacy records become bcrypt records on
// the first successful login and never go back.
type CredentialFormat int

const (
	CredentialUnknown CredentialFormat = iota
	CredentialBcrypt
	CredentialLegacyMD5
)

func (f CredentialFormat) String() string {
	switch f {
	case CredentialBcrypt:
		return "bcrypt"
	case CredentialLegacyMD5:
		return "legacy_md5"
	default:
		return "unknown"
	}
}

// Outcome is the transient result of one verification call.
// FormatOutdated is true only for a successful match via the legacy path.
type Outcome struct {
	Matched        bool
	FormatOutdated bool
}

// ClassifyCredential decides which algorithm a stored credential belongs
// to. Records where both or neither of (bcrypt prefix, legacy salt) are
// present are rejected rather than guessed at.
func ClassifyCredential(storedValue string, legacySalt *string) (CredentialFormat, error) {
	hasSalt := legacySalt != nil && *legacySalt != ""
	if isBcryptHash(storedValue) {
		if hasSalt {
			return CredentialUnknown, ErrCredentialStateConflict
		}
		return CredentialBcrypt, nil
	}
	if !hasSalt {
		return CredentialUnknown, ErrUnsupportedCredential
	}
	return CredentialLegacyMD5, nil
}

// VerifyCredential checks plaintext against a stored credential in either
// format. It never mutates anything; the returned error describes an
// illegal or unsupported record and always comes with a zero Outcome, so
// callers can treat it as a plain mismatch after logging.
func VerifyCredential(storedValue string, legacySalt *string, plaintext string) (Outcome, error) {
	if storedValue == "" {
		return Outcome{}, ErrUnsupportedCredential
	}
	format, err := ClassifyCredential(storedValue, legacySalt)
	if err != nil {
		return Outcome{}, err
	}
	switch format {
	case CredentialBcrypt:
		if bcrypt.CompareHashAndPassword([]byte(storedValue), []byte(plaintext)) != nil {
			return Outcome{}, nil
		}
		return Outcome{Matched: true}, nil
	case CredentialLegacyMD5:
		computed := LegacyHashPassword(plaintext, *legacySalt)
		if subtle.ConstantTimeCompare([]byte(computed), []byte(storedValue)) != 1 {
			return Outcome{}, nil
		}
		return Outcome{Matched: true, FormatOutdated: true}, nil
	default:
		return Outcome{}, ErrUnsupportedCredential
	}
}

// HashPassword produces a bcrypt hash with a fresh random salt. The salt
// and cost are embedded in the output, so no companion field is needed.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// LegacyHashPassword computes the historical MD5 digest of password+salt.
// Kept only so stored legacy credentials remain verifiable until their
// owners log in and get upgraded.
func LegacyHashPassword(password, salt string) string {
	sum := md5.Sum([]byte(password + salt)) // #nosec G401 -- verification of pre-existing hashes.
	return hex.EncodeToString(sum[:])
}

func isBcryptHash(v string) bool {
	return strings.HasPrefix(v, "$2a$") || strings.HasPrefix(v, "$2b$")
}
