package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// RenderKey generates a cache key for a rendered diagram from the source text
// and the options that influence the output.
func RenderKey(source string, opts ...interface{}) string {
	data, _ := json.Marshal(opts)
	hash := sha256.Sum256(append([]byte(source), data...))
	return fmt.Sprintf("render:%s", hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
