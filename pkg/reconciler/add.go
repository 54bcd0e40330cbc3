package reconciler

import (
	"os"
	"path/filepath"

	"github.com/thatmagicalcat/dotlink/pkg/errors"
	"github.com/thatmagicalcat/dotlink/pkg/manifest"
	"github.com/thatmagicalcat/dotlink/pkg/paths"
	"github.com/thatmagicalcat/dotlink/pkg/types"
)

// Add moves the files matching the given patterns into the store and
// records an entry pointing back at each file's original location.
// The manifest is persisted after every successfully processed
// candidate; there is no rollback across a batch.
func (r *Reconciler) Add(patterns []string, rootOverride string) (*types.AddResult, error) {
	root, err := r.resolveRoot(rootOverride)
	if err != nil {
		return nil, err
	}

	result := &types.AddResult{}
	for _, pattern := range patterns {
		candidates, err := r.expander.Expand(pattern)
		if err != nil {
			return nil, err
		}

		for _, candidate := range candidates {
			if err := r.addOne(root, candidate, result); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

func (r *Reconciler) addOne(root, candidate string, result *types.AddResult) error {
	// Stat follows symlinks so a dangling symlink counts as absent
	if _, err := r.fs.Stat(candidate); err != nil {
		if os.IsNotExist(err) {
			r.logger.Warn().Str("path", candidate).Msg("Candidate does not exist, skipping")
			result.Skipped = append(result.Skipped, types.SkippedFile{
				Path:   candidate,
				Reason: types.SkipNotFound,
			})
			return nil
		}
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", candidate)
	}

	originalPath, err := paths.Canonicalize(candidate)
	if err != nil {
		return err
	}
	originalPath = paths.Clean(originalPath)

	key := filepath.Base(originalPath)
	destInRoot := filepath.Join(root, key)

	if r.collides(key) {
		r.logger.Warn().Str("key", key).Str("path", originalPath).Msg("Entry already exists in config, skipping")
		result.Skipped = append(result.Skipped, types.SkippedFile{
			Path:   originalPath,
			Reason: types.SkipAlreadyExists,
		})
		return nil
	}

	// Destructive and non-atomic with respect to manifest persistence:
	// once the rename succeeds, the manifest write below decides whether
	// the move is remembered.
	if err := r.fs.Rename(originalPath, destInRoot); err != nil {
		return errors.Wrapf(err, errors.ErrRename, "failed to move %s into store", originalPath)
	}
	r.logger.Info().Str("from", originalPath).Str("to", destInRoot).Msg("Moved file into store")

	r.manifest.Insert(key, originalPath)

	linked := false
	if _, err := r.fs.Lstat(originalPath); err == nil {
		// Something reoccupied the original path between the move and now
		r.logger.Info().Str("path", originalPath).Msg("Original path already occupied, skipping symlink")
	} else if !os.IsNotExist(err) {
		return errors.Wrapf(err, errors.ErrIOFailure, "failed to stat %s", originalPath)
	} else {
		if err := r.createLink(destInRoot, originalPath); err != nil {
			return err
		}
		linked = true
	}

	if err := r.store.Save(r.manifestPath, r.manifest); err != nil {
		return err
	}

	result.Added = append(result.Added, types.AddedFile{
		Key:          key,
		StorePath:    destInRoot,
		OriginalPath: originalPath,
		Linked:       linked,
	})
	return nil
}

// collides reports whether a new entry with the given store-relative
// key would collide with an existing one under the configured policy
func (r *Reconciler) collides(key string) bool {
	if r.manifest.CollisionPolicy() == manifest.CollisionPath {
		_, ok := r.manifest.Entry(key)
		return ok
	}

	// Historical behavior: collision is keyed by destination base name
	// only, so unrelated files sharing a base name cannot both be added.
	base := filepath.Base(key)
	for existing := range r.manifest.Entries {
		if filepath.Base(paths.Clean(existing)) == base {
			return true
		}
	}
	return false
}
