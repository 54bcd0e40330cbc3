// Package testutil provides temp-dir environments for exercising the
// reconciler against a real filesystem. Symlink resolution and rename
// semantics make an in-memory fake more trouble than it is worth here.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/thatmagicalcat/dotlink/pkg/filesystem"
	"github.com/thatmagicalcat/dotlink/pkg/manifest"
	"github.com/thatmagicalcat/dotlink/pkg/paths"
	"github.com/thatmagicalcat/dotlink/pkg/types"
)

// Env is an isolated store/home pair with a manifest
type Env struct {
	t *testing.T

	// Root is the store directory, canonicalized
	Root string

	// HomeDir stands in for the user's home directory, canonicalized
	HomeDir string

	// ManifestPath is where Link.toml lives
	ManifestPath string

	FS       types.FS
	Store    *manifest.Store
	Resolver *paths.Resolver
}

// NewEnv creates a store and home directory under a temp dir and writes
// a manifest declaring the store as root
func NewEnv(t *testing.T) *Env {
	t.Helper()

	base := t.TempDir()
	root := filepath.Join(base, "store")
	home := filepath.Join(base, "home")
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.MkdirAll(home, 0755))

	// Temp dirs may sit behind symlinks (notably on macOS)
	root, err := paths.Canonicalize(root)
	require.NoError(t, err)
	home, err = paths.Canonicalize(home)
	require.NoError(t, err)

	fs := filesystem.NewOS()
	store := manifest.NewStore(fs)

	env := &Env{
		t:            t,
		Root:         root,
		HomeDir:      home,
		ManifestPath: filepath.Join(base, manifest.Filename),
		FS:           fs,
		Store:        store,
		Resolver:     paths.NewResolver(home, ""),
	}

	m := manifest.New()
	m.Settings.Root = root
	env.SaveManifest(m)

	return env
}

// SaveManifest persists the manifest to the environment's manifest path
func (e *Env) SaveManifest(m *manifest.Manifest) {
	e.t.Helper()
	require.NoError(e.t, e.Store.Save(e.ManifestPath, m))
}

// LoadManifest reads the manifest back from disk
func (e *Env) LoadManifest() *manifest.Manifest {
	e.t.Helper()
	m, err := e.Store.Load(e.ManifestPath)
	require.NoError(e.t, err)
	return m
}

// WriteStoreFile creates a file inside the store and returns its path
func (e *Env) WriteStoreFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.Root, name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// WriteHomeFile creates a file inside the home directory and returns its path
func (e *Env) WriteHomeFile(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.HomeDir, name)
	require.NoError(e.t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(e.t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// HomePath joins a name onto the home directory
func (e *Env) HomePath(name string) string {
	return filepath.Join(e.HomeDir, name)
}

// StorePath joins a name onto the store root
func (e *Env) StorePath(name string) string {
	return filepath.Join(e.Root, name)
}

// RequireSymlink asserts that path is a symlink pointing exactly at dest
func (e *Env) RequireSymlink(path, dest string) {
	e.t.Helper()
	info, err := os.Lstat(path)
	require.NoError(e.t, err)
	require.NotZero(e.t, info.Mode()&os.ModeSymlink, "%s should be a symlink", path)

	actual, err := os.Readlink(path)
	require.NoError(e.t, err)
	require.Equal(e.t, dest, actual)
}

// RequireContent asserts a regular file's content
func (e *Env) RequireContent(path, content string) {
	e.t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(e.t, err)
	require.Equal(e.t, content, string(data))
}

// RequireAbsent asserts that nothing occupies path, not even a broken symlink
func (e *Env) RequireAbsent(path string) {
	e.t.Helper()
	_, err := os.Lstat(path)
	require.True(e.t, os.IsNotExist(err), "%s should not exist", path)
}
