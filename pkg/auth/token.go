package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewTokenKey generates an opaque 128-bit API token encoded as hex.
func NewTokenKey() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
