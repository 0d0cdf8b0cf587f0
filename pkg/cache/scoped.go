package cache

// ScopedKeyer wraps a Keyer with a prefix so several deployments can share
// one Redis database without seeing each other's entries.
//
// Example usage:
//
//	keyer := NewScopedKeyer(NewDefaultKeyer(), "burrow:staging:")
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

// SolutionKey generates a prefixed key for search results.
func (k *ScopedKeyer) SolutionKey(layoutHash string, opts SolutionKeyOpts) string {
	return k.prefix + k.inner.SolutionKey(layoutHash, opts)
}

// ArtifactKey generates a prefixed key for rendered artifacts.
func (k *ScopedKeyer) ArtifactKey(solutionHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(solutionHash, opts)
}
