package cache

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation.
// The serve mode uses this to keep per-deployment cache namespaces
// separate when several instances share one redis.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "prod:")
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

// TableKey generates a prefixed key for a flattened network table.
func (k *ScopedKeyer) TableKey(inputHash string) string {
	return k.prefix + k.inner.TableKey(inputHash)
}

// ResultKey generates a prefixed key for a stored-result lookup.
func (k *ScopedKeyer) ResultKey(id string) string {
	return k.prefix + k.inner.ResultKey(id)
}
