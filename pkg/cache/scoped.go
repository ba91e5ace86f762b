package cache

// ScopedKeyer prefixes every key of an inner keyer. The CLI scopes by build
// version so frames simulated by one release are never served to another.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer returns inner with prefix prepended to its keys. A nil inner
// keyer selects [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// FrameKey implements [Keyer].
func (k *ScopedKeyer) FrameKey(catalogHash string, opts FrameKeyOpts) string {
	return k.prefix + k.inner.FrameKey(catalogHash, opts)
}

// ArtifactKey implements [Keyer].
func (k *ScopedKeyer) ArtifactKey(frameHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(frameHash, opts)
}
