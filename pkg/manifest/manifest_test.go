package manifest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatmagicalcat/dotlink/pkg/errors"
	"github.com/thatmagicalcat/dotlink/pkg/filesystem"
	"github.com/thatmagicalcat/dotlink/pkg/manifest"
)

func writeManifest(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, manifest.Filename)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[settings]
dotlink_root = "/store"

[entries]
bashrc = "~/.bashrc"
vimrc = "/home/u/.vimrc"
`)

	store := manifest.NewStore(filesystem.NewOS())
	m, err := store.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/store", m.Settings.Root)
	assert.Len(t, m.Entries, 2)
	assert.Equal(t, "~/.bashrc", m.Entries["bashrc"])
	assert.Equal(t, manifest.CollisionBasename, m.CollisionPolicy())
}

func TestLoadMissingEntriesSection(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[settings]
dotlink_root = "/store"
`)

	store := manifest.NewStore(filesystem.NewOS())
	m, err := store.Load(path)
	require.NoError(t, err)
	assert.NotNil(t, m.Entries)
	assert.Empty(t, m.Entries)
}

func TestLoadNotFound(t *testing.T) {
	store := manifest.NewStore(filesystem.NewOS())
	_, err := store.Load(filepath.Join(t.TempDir(), manifest.Filename))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
}

func TestLoadMalformed(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `[settings`)

	store := manifest.NewStore(filesystem.NewOS())
	_, err := store.Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
}

func TestLoadInvalidCollisionKey(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[settings]
collision_key = "filename"
`)

	store := manifest.NewStore(filesystem.NewOS())
	_, err := store.Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestParse))
}

func TestCollisionPolicyPath(t *testing.T) {
	path := writeManifest(t, t.TempDir(), `
[settings]
collision_key = "path"
`)

	store := manifest.NewStore(filesystem.NewOS())
	m, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, manifest.CollisionPath, m.CollisionPolicy())
}

func TestSaveRoundTripPreservesTargets(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, manifest.Filename)

	m := manifest.New()
	m.Settings.Root = "/store"
	m.Insert("bashrc", "~/.bashrc")
	m.Insert("vimrc", "/home/u/.vimrc")

	store := manifest.NewStore(filesystem.NewOS())
	require.NoError(t, store.Save(path, m))

	loaded, err := store.Load(path)
	require.NoError(t, err)
	assert.Equal(t, m.Settings.Root, loaded.Settings.Root)
	assert.Equal(t, m.Entries, loaded.Entries)

	// Tilde markers must survive verbatim
	assert.Equal(t, "~/.bashrc", loaded.Entries["bashrc"])
}

func TestInsertCleansKeys(t *testing.T) {
	m := manifest.New()
	m.Insert("sub/../vimrc", "~/.vimrc")

	target, ok := m.Entry("vimrc")
	assert.True(t, ok)
	assert.Equal(t, "~/.vimrc", target)
}

func TestRemove(t *testing.T) {
	m := manifest.New()
	m.Insert("bashrc", "~/.bashrc")
	m.Insert("vimrc", "~/.vimrc")

	m.Remove("bashrc", "missing")
	assert.Len(t, m.Entries, 1)
	_, ok := m.Entry("vimrc")
	assert.True(t, ok)
}

func TestDiscoverExplicit(t *testing.T) {
	path := writeManifest(t, t.TempDir(), "[settings]\n")

	store := manifest.NewStore(filesystem.NewOS())
	got, err := store.Discover(path, "")
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestDiscoverEnvRootFallback(t *testing.T) {
	envRoot := t.TempDir()
	path := writeManifest(t, envRoot, "[settings]\n")

	store := manifest.NewStore(filesystem.NewOS())
	got, err := store.Discover(filepath.Join(t.TempDir(), manifest.Filename), envRoot)
	require.NoError(t, err)
	assert.Equal(t, path, got)
}

func TestDiscoverNotFound(t *testing.T) {
	store := manifest.NewStore(filesystem.NewOS())

	_, err := store.Discover(filepath.Join(t.TempDir(), manifest.Filename), "")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))

	_, err = store.Discover(filepath.Join(t.TempDir(), manifest.Filename), t.TempDir())
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestNotFound))
}
