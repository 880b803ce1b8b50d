package cache

// Keyer derives cache keys.
type Keyer interface {
	// ResultKey is the key of a scenario result. version identifies the
	// engine build so results from other builds are never reused.
	ResultKey(fingerprint, version string) string
}

// DefaultKeyer produces unprefixed keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default Keyer.
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// ResultKey implements Keyer.
func (DefaultKeyer) ResultKey(fingerprint, version string) string {
	return hashKey("result", fingerprint, version)
}

// ScopedKeyer prefixes every key of an inner Keyer, so several deployments
// can share one Redis database.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix. A nil inner uses the
// default keyer.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// ResultKey implements Keyer.
func (k *ScopedKeyer) ResultKey(fingerprint, version string) string {
	return k.prefix + k.inner.ResultKey(fingerprint, version)
}
