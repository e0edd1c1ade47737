package internal

import (
	"encoding/base64"
	"testing"
)

func TestNewTokenIsFreshAndDecodable(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 64; i++ {
		tok, err := NewToken()
		if err != nil {
			t.Fatalf("NewToken: %v", err)
		}
		if seen[tok] {
			t.Fatalf("duplicate token %q", tok)
		}
		seen[tok] = true

		raw, err := base64.RawURLEncoding.DecodeString(tok)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(raw) != tokenSize {
			t.Fatalf("expected %d bytes, got %d", tokenSize, len(raw))
		}
	}
}
