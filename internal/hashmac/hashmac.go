// Package hashmac provides the two digest primitives the SigV4 and ETag
// machinery need: SHA-256 and HMAC-SHA-256. It exists as its own package,
// distinct from internal/sigv4, so that the primitive hashing step stays
// independently testable against the standard's published vectors.
package hashmac

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SHA256 returns the 32-byte SHA-256 digest of data.
func SHA256(data []byte) [32]byte {
	return sha256.Sum256(data)
}

// SHA256Hex returns the lowercase hex encoding of SHA256(data).
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HMACSHA256 returns the 32-byte HMAC-SHA-256 of data keyed by key.
func HMACSHA256(key, data []byte) []byte {
	h := hmac.New(sha256.New, key)
	h.Write(data)
	return h.Sum(nil)
}

// HMACSHA256Hex returns the lowercase hex encoding of HMACSHA256(key, data).
func HMACSHA256Hex(key []byte, data string) string {
	return hex.EncodeToString(HMACSHA256(key, []byte(data)))
}
