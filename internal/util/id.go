// Package util holds small helpers shared across packages.
package util

import (
	"crypto/rand"
	"encoding/hex"
)

// idBytes gives 96 bits of randomness, enough for token ids that only need
// to be unique within one team's session lifetime.
const idBytes = 12

// NewID returns a random identifier, optionally tagged with a prefix so ids
// of different kinds can be told apart in logs.
func NewID(prefix string) string {
	buf := make([]byte, idBytes)
	_, _ = rand.Read(buf)
	id := hex.EncodeToString(buf)
	if prefix == "" {
		return id
	}
	return prefix + "-" + id
}
