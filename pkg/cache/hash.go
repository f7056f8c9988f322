package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// hashKey returns "stage:" followed by the SHA-256 of the JSON encoding of
// parts. Struct fields are encoded in declaration order, so equal inputs
// always map to the same key.
func hashKey(stage string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		// Key inputs are plain option structs; this only trips on a
		// programming error such as a NaN width.
		data = []byte(err.Error())
	}
	return stage + ":" + Hash(data)
}

// Hash returns the hex SHA-256 digest of data. Stages use it to chain keys:
// a layout key embeds the hash of the tree it was computed from.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
