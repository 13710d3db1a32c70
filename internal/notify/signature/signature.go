// Package signature implements the payload signing scheme webhook consumers
// verify: an HMAC-SHA256 over the serialized JSON payload, keyed with the
// subscription's shared secret, presented as "v1=<hex-digest>".
package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
)

// Version is the signature scheme identifier.
const Version = "v1"

// Sign computes the signature header value for a payload.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return fmt.Sprintf("%s=%s", Version, hex.EncodeToString(mac.Sum(nil)))
}

// Verify checks a received signature using constant-time comparison.
// Only v1 signatures are supported.
func Verify(secret string, payload []byte, received string) (bool, error) {
	prefix := Version + "="
	if !strings.HasPrefix(received, prefix) {
		return false, fmt.Errorf("unsupported signature version: %q", received)
	}
	expected := Sign(secret, payload)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1, nil
}
