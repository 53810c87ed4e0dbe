package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis instance without seeing each other's entries.
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "staging:")
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
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// GridKey generates a prefixed grid key.
func (k *ScopedKeyer) GridKey(opts GridKeyOpts) string {
	return k.scope(k.inner.GridKey(opts))
}

// ArtifactKey generates a prefixed artifact key.
func (k *ScopedKeyer) ArtifactKey(gridHash string, opts ArtifactKeyOpts) string {
	return k.scope(k.inner.ArtifactKey(gridHash, opts))
}

func (k *ScopedKeyer) scope(key string) string {
	if key == "" {
		return ""
	}
	return k.prefix + key
}
