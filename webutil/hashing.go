package webutil

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// GenerateHash creates a SHA-256 hash of the input string and returns it
// as a hexadecimal string.
func GenerateHash(data string) (string, error) {
	hasher := sha256.New()
	_, err := hasher.Write([]byte(data))
	if err != nil {
		return "", fmt.Errorf("failed to write data to hasher: %w", err)
	}
	hashBytes := hasher.Sum(nil)
	return hex.EncodeToString(hashBytes), nil
}

// HashMatches compares a plaintext candidate against a stored hex hash in
// constant time.
func HashMatches(candidate, storedHash string) bool {
	candidateHash, err := GenerateHash(candidate)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(candidateHash), []byte(storedHash)) == 1
}
