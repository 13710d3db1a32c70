package notify

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// generateSecret creates a cryptographically secure signing secret for a new
// subscription. The raw value is stored: signing requires it, so unlike a
// password it cannot be kept as a one-way hash.
func generateSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("could not generate secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
