// Package utils holds small helpers shared across services.
package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// NewRefreshToken returns a hex-encoded random token used as the opaque
// refresh credential for operator sessions. nBytes sets the entropy;
// anything below 1 falls back to 32 bytes (256 bits).
func NewRefreshToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate refresh token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
