package cache

// ScopedKeyer wraps a Keyer with a prefix, so several deployments or
// tenants can share one redis without seeing each other's entries.
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
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// GraphKey generates a prefixed key for graph state.
func (k *ScopedKeyer) GraphKey(documentHash string, opts GraphKeyOpts) string {
	return k.prefix + k.inner.GraphKey(documentHash, opts)
}

// RouteKey generates a prefixed key for routed paths.
func (k *ScopedKeyer) RouteKey(graphHash string, opts RouteKeyOpts) string {
	return k.prefix + k.inner.RouteKey(graphHash, opts)
}

// ArtifactKey generates a prefixed key for rendered output.
func (k *ScopedKeyer) ArtifactKey(routeHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(routeHash, opts)
}
