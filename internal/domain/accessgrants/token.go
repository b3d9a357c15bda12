package accessgrants

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// 32 bytes => 256 bits de entropía, 43 chars en base64url.
const tokenBytes = 32

// NewToken genera un token opaco. No deriva de ningún input del caller.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
