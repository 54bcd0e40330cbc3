package manifest

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/thatmagicalcat/dotlink/pkg/errors"
	"github.com/thatmagicalcat/dotlink/pkg/logging"
	"github.com/thatmagicalcat/dotlink/pkg/paths"
	"github.com/thatmagicalcat/dotlink/pkg/types"
)

// Store loads and saves manifests through a types.FS
type Store struct {
	fs types.FS
}

// NewStore creates a manifest store backed by the given filesystem
func NewStore(fs types.FS) *Store {
	return &Store{fs: fs}
}

// Load parses the manifest document at path
func (s *Store) Load(path string) (*Manifest, error) {
	logger := logging.GetLogger("manifest")

	data, err := s.fs.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Newf(errors.ErrManifestNotFound, "manifest not found at %s", path)
		}
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to read manifest %s", path)
	}

	m := New()
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, errors.Wrapf(err, errors.ErrManifestParse, "failed to parse manifest %s", path)
	}
	if m.Entries == nil {
		m.Entries = make(map[string]string)
	}

	if key := m.Settings.CollisionKey; key != "" &&
		key != string(CollisionBasename) && key != string(CollisionPath) {
		return nil, errors.Newf(errors.ErrManifestParse,
			"invalid collision_key %q in %s (want %q or %q)", key, path, CollisionBasename, CollisionPath)
	}

	logger.Debug().Str("path", path).Int("entries", len(m.Entries)).Msg("Manifest loaded")
	return m, nil
}

// Save serializes the manifest back to path. Declared target strings
// are written verbatim; nothing is canonicalized on the way out.
func (s *Store) Save(path string, m *Manifest) error {
	logger := logging.GetLogger("manifest")

	data, err := toml.Marshal(m)
	if err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to serialize manifest")
	}

	if err := s.fs.WriteFile(path, data, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrManifestWrite, "failed to write manifest %s", path)
	}

	logger.Debug().Str("path", path).Int("entries", len(m.Entries)).Msg("Manifest saved")
	return nil
}

// Discover locates the manifest file. Priority: the explicit path, then
// Link.toml in the working directory, then Link.toml under the
// environment-supplied root. Absence of all three is fatal.
func (s *Store) Discover(explicit, envRoot string) (string, error) {
	candidate := explicit
	if candidate == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrapf(err, errors.ErrIOFailure, "failed to get working directory")
		}
		candidate = filepath.Join(cwd, Filename)
	}

	if _, err := s.fs.Stat(candidate); err == nil {
		return candidate, nil
	}

	if envRoot == "" {
		return "", errors.Newf(errors.ErrManifestNotFound,
			"manifest not found at %s and %s is not set", candidate, paths.EnvDotlinkRoot)
	}

	alt := filepath.Join(envRoot, Filename)
	if _, err := s.fs.Stat(alt); err == nil {
		return alt, nil
	}

	return "", errors.Newf(errors.ErrManifestNotFound, "manifest not found at %s or %s", candidate, alt)
}
