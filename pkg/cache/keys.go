package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Keyer builds cache keys. Keys are deterministic: equal inputs give equal
// keys, and any input that changes the output changes the key.
type Keyer interface {
	// FrameKey identifies the final frame of a headless simulation.
	FrameKey(catalogHash string, opts FrameKeyOpts) string

	// ArtifactKey identifies one rendered format of a frame.
	ArtifactKey(frameHash string, opts ArtifactKeyOpts) string
}

// FrameKeyOpts are the simulation inputs besides the catalog.
type FrameKeyOpts struct {
	ConfigHash string `json:"config"`
	Query      string `json:"query"`
	Seed       uint64 `json:"seed"`
	Ticks      int    `json:"ticks"`
}

// ArtifactKeyOpts are the render inputs besides the frame.
type ArtifactKeyOpts struct {
	Format string  `json:"format"`
	Labels bool    `json:"labels"`
	Links  bool    `json:"links"`
	Scale  float64 `json:"scale"`
}

// DefaultKeyer hashes every input into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// FrameKey implements [Keyer].
func (DefaultKeyer) FrameKey(catalogHash string, opts FrameKeyOpts) string {
	return hashKey("frame", catalogHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", frameHash, opts)
}

// hashKey returns "prefix:" followed by the SHA-256 of parts encoded as JSON.
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return prefix + ":" + Hash(data)
}

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
