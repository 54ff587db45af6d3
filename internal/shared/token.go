// Package shared provides small helpers used by several server packages.
package shared

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// TokenBytes is the entropy of a temp URL token; the hex form is twice as
// long.
const TokenBytes = 32

// RandomHex returns n bytes from crypto/rand, hex encoded.
func RandomHex(n int) (string, error) {
	if n < 0 {
		return "", fmt.Errorf("negative size %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewToken mints an unguessable, URL-safe temp URL token.
func NewToken() (string, error) {
	return RandomHex(TokenBytes)
}
