package security

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"strings"
)

// SignState binds an OAuth state value to this deployment with an HMAC so
// the callback can reject states it never issued.
func SignState(state, key string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(state))
	sig := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return state + "." + sig
}

func VerifySignedState(signed, key string) (string, bool) {
	idx := strings.LastIndex(signed, ".")
	if idx <= 0 {
		return "", false
	}
	state := signed[:idx]
	if !hmac.Equal([]byte(SignState(state, key)), []byte(signed)) {
		return "", false
	}
	return state, true
}
