package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"time"
)

// Keyer generates cache keys for each kind of cached value.
type Keyer interface {
	// ProbeKey names the probed dimensions of one image file.
	ProbeKey(path string, size int64, modTime time.Time) string

	// LayoutKey names a layout computed from a set of items.
	LayoutKey(itemsHash string, opts LayoutKeyOpts) string

	// ArtifactKey names a rendered output of a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every setting that changes a layout.
type LayoutKeyOpts struct {
	Orientation  string  `json:"orientation"`
	TargetLength int     `json:"target_length"`
	Spacing      float64 `json:"spacing"`
	Width        float64 `json:"width"`
	Height       float64 `json:"height"`
	Convergent   bool    `json:"convergent,omitempty"`
	Scroll       float64 `json:"scroll,omitempty"`
	MinTarget    int     `json:"min_target,omitempty"`
	Zoom         int     `json:"zoom,omitempty"`
	Filter       string  `json:"filter,omitempty"`
}

// ArtifactKeyOpts holds every setting that changes a rendered file.
type ArtifactKeyOpts struct {
	Format     string  `json:"format"`
	Background string  `json:"background,omitempty"`
	Labels     bool    `json:"labels,omitempty"`
	Scale      float64 `json:"scale,omitempty"`
}

// DefaultKeyer produces unscoped keys of the form "kind:sha256".
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// ProbeKey hashes path, size and modification time.
func (k *DefaultKeyer) ProbeKey(path string, size int64, modTime time.Time) string {
	return hashKey("probe", path, size, modTime.UnixNano())
}

// LayoutKey hashes the item set hash together with the layout options.
func (k *DefaultKeyer) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", itemsHash, opts)
}

// ArtifactKey hashes the layout hash together with the render options.
func (k *DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", layoutHash, opts)
}

var _ Keyer = (*DefaultKeyer)(nil)

// Sum returns the hex SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// hashKey joins kind with the digest of the JSON encoding of parts.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return kind + ":" + Sum(data)
}

// Prefixed returns a keyer that puts prefix in front of every key from
// inner (the default keyer when nil). Galleries sharing one Redis use it to
// keep their entries apart:
//
//	k := cache.Prefixed(nil, "photowall:holidays:")
func Prefixed(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return prefixed{inner: inner, prefix: prefix}
}

type prefixed struct {
	inner  Keyer
	prefix string
}

func (k prefixed) ProbeKey(path string, size int64, modTime time.Time) string {
	return k.prefix + k.inner.ProbeKey(path, size, modTime)
}

func (k prefixed) LayoutKey(itemsHash string, opts LayoutKeyOpts) string {
	return k.prefix + k.inner.LayoutKey(itemsHash, opts)
}

func (k prefixed) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return k.prefix + k.inner.ArtifactKey(layoutHash, opts)
}
