// Package reconciler implements the core of dotlink: classifying each
// manifest entry against observed filesystem state and performing the
// corrective or mutating action for it.
package reconciler

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"github.com/thatmagicalcat/dotlink/pkg/errors"
	"github.com/thatmagicalcat/dotlink/pkg/expand"
	"github.com/thatmagicalcat/dotlink/pkg/filesystem"
	"github.com/thatmagicalcat/dotlink/pkg/logging"
	"github.com/thatmagicalcat/dotlink/pkg/manifest"
	"github.com/thatmagicalcat/dotlink/pkg/paths"
	"github.com/thatmagicalcat/dotlink/pkg/types"
)

// Options configures a Reconciler. Manifest, ManifestPath and Resolver
// are required; FS and Expander default to the OS implementations.
type Options struct {
	Manifest     *manifest.Manifest
	ManifestPath string
	Resolver     *paths.Resolver
	FS           types.FS
	Expander     expand.Expander
}

// Reconciler owns the in-memory manifest for the duration of one
// invocation and mediates every filesystem read and mutation. It is
// single-threaded; no concurrent writer is assumed.
type Reconciler struct {
	manifest     *manifest.Manifest
	manifestPath string
	resolver     *paths.Resolver
	fs           types.FS
	store        *manifest.Store
	expander     expand.Expander
	logger       zerolog.Logger
}

// New constructs a Reconciler bound to a loaded manifest
func New(opts Options) *Reconciler {
	fs := opts.FS
	if fs == nil {
		fs = filesystem.NewOS()
	}
	expander := opts.Expander
	if expander == nil {
		expander = expand.NewGlob()
	}

	return &Reconciler{
		manifest:     opts.Manifest,
		manifestPath: opts.ManifestPath,
		resolver:     opts.Resolver,
		fs:           fs,
		store:        manifest.NewStore(fs),
		expander:     expander,
		logger:       logging.GetLogger("reconciler"),
	}
}

// Manifest returns the manifest the reconciler is bound to
func (r *Reconciler) Manifest() *manifest.Manifest {
	return r.manifest
}

// resolveRoot resolves the effective store root, preferring an explicit
// override over the manifest's configured root
func (r *Reconciler) resolveRoot(override string) (string, error) {
	declared := override
	if declared == "" {
		declared = r.manifest.Settings.Root
	}
	return r.resolver.ResolveRoot(declared)
}

// entryRef is one manifest entry with its resolved absolute paths
type entryRef struct {
	key            string // cleaned store-relative key
	mapKey         string // key exactly as it appears in the manifest
	source         string // absolute, in-store
	target         string // home-expanded, cleaned, not canonicalized
	declaredTarget string
}

// entries resolves every manifest entry against the given root. Keys
// are sorted so reporting is deterministic; entry processing itself is
// order-independent.
func (r *Reconciler) entries(root string) ([]entryRef, error) {
	keys := make([]string, 0, len(r.manifest.Entries))
	for key := range r.manifest.Entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	refs := make([]entryRef, 0, len(keys))
	for _, key := range keys {
		declared := r.manifest.Entries[key]

		expanded, err := r.resolver.ExpandHome(declared)
		if err != nil {
			return nil, err
		}

		cleaned := paths.Clean(key)
		refs = append(refs, entryRef{
			key:            cleaned,
			mapKey:         key,
			source:         filepath.Join(root, cleaned),
			target:         paths.Clean(expanded),
			declaredTarget: declared,
		})
	}
	return refs, nil
}

// classify probes one entry's source and target. The returned string is
// the actual link value when the target is a symlink.
func (r *Reconciler) classify(ref entryRef) (types.EntryState, string, error) {
	if _, err := r.fs.Stat(ref.source); err != nil {
		if os.IsNotExist(err) {
			return types.StateSourceMissing, "", nil
		}
		return "", "", errors.Wrapf(err, errors.ErrIOFailure, "failed to stat source %s", ref.source)
	}

	info, err := r.fs.Lstat(ref.target)
	if err != nil {
		if os.IsNotExist(err) {
			return types.StateTargetMissing, "", nil
		}
		return "", "", errors.Wrapf(err, errors.ErrIOFailure, "failed to stat target %s", ref.target)
	}

	if info.Mode()&os.ModeSymlink == 0 {
		return types.StateConflict, "", nil
	}

	dest, err := r.fs.Readlink(ref.target)
	if err != nil {
		return "", "", errors.Wrapf(err, errors.ErrIOFailure, "failed to read link %s", ref.target)
	}

	// Correctness is exact equality against the literal link value
	if dest == ref.source {
		return types.StateCorrectLink, dest, nil
	}
	return types.StateMismatchedLink, dest, nil
}

// createLink creates parent directories as needed and places a symlink
// at target pointing to source
func (r *Reconciler) createLink(source, target string) error {
	if err := r.fs.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent directory for %s", target)
	}
	if err := r.fs.Symlink(source, target); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create symlink %s -> %s", target, source)
	}

	r.logger.Info().Str("target", target).Str("source", source).Msg("Created symlink")
	return nil
}
