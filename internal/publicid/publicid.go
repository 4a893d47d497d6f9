// Package publicid derives the short public identifiers exposed for tweets.
// The public ID is a keyed BLAKE2b hash of the storage identifier truncated
// to 24 hex characters, so it is deterministic per deployment key while
// revealing nothing about the underlying ObjectID.
package publicid

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Length of the generated identifier in hex characters.
const Length = 24

// Generator derives public identifiers with a fixed key.
type Generator struct {
	key []byte
}

// NewGenerator returns a Generator for the given key. Keys longer than 64
// bytes are rejected by BLAKE2b; callers should pass the configured secret.
func NewGenerator(key string) (*Generator, error) {
	k := []byte(key)
	// Validate the key once up front so FromStorageID cannot fail later.
	if _, err := blake2b.New256(k); err != nil {
		return nil, err
	}
	return &Generator{key: k}, nil
}

// FromStorageID maps a storage identifier (ObjectID hex) to its public ID.
func (g *Generator) FromStorageID(storageID string) string {
	h, _ := blake2b.New256(g.key)
	h.Write([]byte(storageID))
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)[:Length]
}
