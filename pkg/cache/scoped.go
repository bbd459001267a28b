package cache

// ScopedKeyer prefixes every key of an inner Keyer, so that tenants or
// sites sharing one Redis instance never read each other's entries.
//
//	site := NewScopedKeyer(NewDefaultKeyer(), "site:blog:")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, which defaults to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// RenderKey returns the prefixed inner render key.
func (k *ScopedKeyer) RenderKey(treeHash string, opts RenderKeyOpts) string {
	return k.prefix + k.inner.RenderKey(treeHash, opts)
}

// FinalizeKey returns the prefixed inner finalize key.
func (k *ScopedKeyer) FinalizeKey(fragmentHash, treeHash string) string {
	return k.prefix + k.inner.FinalizeKey(fragmentHash, treeHash)
}
