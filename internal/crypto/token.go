package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenKeyBytes is the amount of randomness in an auth token key.
// Keys are hex encoded, so they are twice this length.
const TokenKeyBytes = 20

// NewTokenKey returns a random, unguessable auth token key.
func NewTokenKey() (string, error) {
	b := make([]byte, TokenKeyBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// ValidTokenKey reports whether key has the shape produced by NewTokenKey.
func ValidTokenKey(key string) bool {
	if len(key) != TokenKeyBytes*2 {
		return false
	}
	_, err := hex.DecodeString(key)
	return err == nil
}
