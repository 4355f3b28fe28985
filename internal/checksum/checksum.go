// Package checksum fingerprints serialized note collections.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Same reports whether data hashes to want. An empty want never matches.
func Same(want string, data []byte) bool {
	return want != "" && Sum(data) == want
}
