package data

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Fingerprint identifies the exact catalog bytes a run was generated from.
func (c *Catalog) Fingerprint() string {
	sum := blake2b.Sum256(c.raw)
	return hex.EncodeToString(sum[:16])
}
