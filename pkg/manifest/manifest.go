// Package manifest models the Link.toml document: a settings section
// optionally declaring the store root, and an entries section mapping
// store-relative source paths to declared target paths.
package manifest

import (
	"github.com/thatmagicalcat/dotlink/pkg/paths"
)

// Filename is the fixed manifest file name
const Filename = "Link.toml"

// CollisionPolicy selects how Add detects a colliding entry
type CollisionPolicy string

const (
	// CollisionBasename rejects a candidate whose destination base name
	// matches any existing entry key's base name. This is the historical
	// behavior and the default.
	CollisionBasename CollisionPolicy = "basename"

	// CollisionPath rejects a candidate only when the full store-relative
	// key already exists.
	CollisionPath CollisionPolicy = "path"
)

// Settings is the manifest settings section
type Settings struct {
	// Root is the declared store root; when empty the environment
	// variable supplies it
	Root string `toml:"dotlink_root,omitempty"`

	// CollisionKey selects the Add collision policy ("basename" or
	// "path"); empty means basename
	CollisionKey string `toml:"collision_key,omitempty"`
}

// Manifest is the in-memory form of the Link.toml document
type Manifest struct {
	Settings Settings          `toml:"settings"`
	Entries  map[string]string `toml:"entries"`
}

// New returns an empty manifest
func New() *Manifest {
	return &Manifest{Entries: make(map[string]string)}
}

// CollisionPolicy returns the configured Add collision policy
func (m *Manifest) CollisionPolicy() CollisionPolicy {
	if m.Settings.CollisionKey == string(CollisionPath) {
		return CollisionPath
	}
	return CollisionBasename
}

// Entry returns the declared target for a store-relative key
func (m *Manifest) Entry(key string) (string, bool) {
	target, ok := m.Entries[paths.Clean(key)]
	return target, ok
}

// Insert records an entry under a cleaned store-relative key
func (m *Manifest) Insert(key, target string) {
	if m.Entries == nil {
		m.Entries = make(map[string]string)
	}
	m.Entries[paths.Clean(key)] = target
}

// Remove deletes the given keys from the entry set
func (m *Manifest) Remove(keys ...string) {
	for _, key := range keys {
		delete(m.Entries, key)
	}
}
