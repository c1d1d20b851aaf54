package cache

// ScopedKeyer prefixes every key of an inner Keyer. The server scopes keys
// per shop so shops sharing one Redis never read each other's catalog.
//
//	shopKeyer := cache.NewScopedKeyer(nil, "shop:"+cache.Hash([]byte(token))[:12]+":")
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner, or a DefaultKeyer when inner is nil.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// HTTPKey returns the prefixed inner HTTPKey.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// PrintFileKey returns the prefixed inner PrintFileKey.
func (k *ScopedKeyer) PrintFileKey(imageHash string, opts PrintFileKeyOpts) string {
	return k.prefix + k.inner.PrintFileKey(imageHash, opts)
}

// SessionKey returns the prefixed inner SessionKey.
func (k *ScopedKeyer) SessionKey(id string) string {
	return k.prefix + k.inner.SessionKey(id)
}
