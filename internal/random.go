package internal

import (
	"crypto/rand"
	"encoding/base64"
)

const tokenSize = 32

// NewToken returns a fresh opaque token: tokenSize random bytes, base64url
// without padding. Every call yields a new value.
func NewToken() (string, error) {
	var raw [tokenSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
