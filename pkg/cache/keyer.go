package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
)

// Keyer builds cache keys. Every key starts with its kind followed by a
// colon, which [KeyType] recovers for metrics.
type Keyer interface {
	// SummaryKey addresses the JSON graph summary of a document.
	SummaryKey(docHash string) string

	// ValidationKey addresses the validation report of a document.
	ValidationKey(docHash string) string

	// LayoutKey addresses the node-link layout of one page.
	LayoutKey(docHash string, opts LayoutKeyOpts) string

	// ArtifactKey addresses a rendered artifact of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds the options that change a layout.
type LayoutKeyOpts struct {
	PageID     string
	Engine     string
	Detailed   bool
	Positioned bool
	Colors     bool
}

// ArtifactKeyOpts holds the options that change a rendered artifact.
type ArtifactKeyOpts struct {
	Format string
	Scale  float64
}

// DefaultKeyer is the standard [Keyer].
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

func (DefaultKeyer) SummaryKey(docHash string) string {
	return "summary:" + docHash
}

func (DefaultKeyer) ValidationKey(docHash string) string {
	return "validate:" + docHash
}

func (DefaultKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", docHash, opts)
}

func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

// KeyType returns the kind prefix of key, or "unknown".
func KeyType(key string) string {
	kind, _, ok := strings.Cut(key, ":")
	if !ok || kind == "" {
		return "unknown"
	}
	return kind
}

// Hash returns the hex SHA-256 of data. Documents are cached under the hash
// of their raw bytes, so a one-byte edit is a different entry.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey folds option structs into a fixed-length key of the given kind.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Hash(data)
}
