package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// SolveKeyOpts are the search inputs that, together with the graph, decide a
// solve result.
type SolveKeyOpts struct {
	Start     string `json:"start"`
	Goal      string `json:"goal"`
	Algorithm string `json:"algorithm"`
	Heuristic string `json:"heuristic,omitempty"`
}

// SolveKey returns the cache key for solving the graph with hash graphHash.
// The heuristic only matters for A*; callers pass it empty for Dijkstra so
// both spellings share one entry.
func SolveKey(graphHash string, opts SolveKeyOpts) string {
	return hashKey("solve", graphHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
