package cache

// ScopedKeyer prefixes every key of an inner Keyer, giving each tenant or
// workspace its own namespace in a shared backend:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "lab:scans:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner with prefix. A nil inner uses DefaultKeyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// CleanKey returns the prefixed clean key.
func (k *ScopedKeyer) CleanKey(inputHash string, opts CleanKeyOpts) string {
	return k.prefix + k.inner.CleanKey(inputHash, opts)
}

// StatsKey returns the prefixed stats key.
func (k *ScopedKeyer) StatsKey(inputHash string) string {
	return k.prefix + k.inner.StatsKey(inputHash)
}

// DOTKey returns the prefixed diagram key.
func (k *ScopedKeyer) DOTKey(inputHash string, opts DOTKeyOpts) string {
	return k.prefix + k.inner.DOTKey(inputHash, opts)
}
