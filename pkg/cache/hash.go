package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/matzehuels/gridder/pkg/grid"
)

// Keyer builds cache keys. Keys of different kinds never collide.
// An empty key means the inputs cannot be keyed and the entry must not be
// cached.
type Keyer interface {
	// GridKey returns the key of a generated grid document.
	GridKey(opts GridKeyOpts) string
	// ArtifactKey returns the key of an export or render of a grid.
	ArtifactKey(gridHash string, opts ArtifactKeyOpts) string
}

// GridKeyOpts are the inputs that determine a generated grid.
// Params should already be resolved with [grid.Validate] so defaulted and
// explicit values share a key.
type GridKeyOpts struct {
	Params    grid.Params `json:"params"`
	Seed      int64       `json:"seed"`
	Tolerance float64     `json:"tolerance"`
}

// ArtifactKeyOpts are the inputs that determine an output artifact.
type ArtifactKeyOpts struct {
	Format   string  `json:"format"`
	Compress bool    `json:"compress,omitempty"`
	Labels   bool    `json:"labels,omitempty"`
	Width    float64 `json:"width,omitempty"`
}

// DefaultKeyer produces "grid:<sha256>" and "artifact:<sha256>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// GridKey implements [Keyer].
func (DefaultKeyer) GridKey(opts GridKeyOpts) string {
	return hashKey("grid", opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(gridHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", gridHash, opts)
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...). It returns "" when the parts do
// not encode, e.g. a NaN float.
func hashKey(prefix string, parts ...any) string {
	data, err := json.Marshal(parts)
	if err != nil {
		return ""
	}
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
