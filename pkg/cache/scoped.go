package cache

// ScopedKeyer wraps a Keyer with a prefix so several tools can share one
// backend without seeing each other's entries.
//
// Example usage:
//
//	// Server entries live apart from CLI entries in a shared Redis
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "server:")
//
// [KeyType] strips nothing, so scoped keys report the scope as their type.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

func (k *ScopedKeyer) SummaryKey(docHash string) string {
	return k.prefix + k.inner.SummaryKey(docHash)
}

func (k *ScopedKeyer) ValidationKey(docHash string) string {
	return k.prefix + k.inner.ValidationKey(docHash)
}

func (k *ScopedKeyer) LayoutKey(docHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(docHash, opts)
}

func (k *ScopedKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
