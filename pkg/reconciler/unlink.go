package reconciler

import (
	"os"
	"path/filepath"

	"github.com/thatmagicalcat/dotlink/pkg/errors"
	"github.com/thatmagicalcat/dotlink/pkg/paths"
	"github.com/thatmagicalcat/dotlink/pkg/types"
)

// Unlink removes every entry whose source or target matches one of the
// given patterns: the symlink at the target is deleted, the store file
// is moved back to the target location, and the entry is dropped from
// the manifest. The manifest is persisted exactly once after the whole
// batch, unlike Add's per-candidate persistence.
func (r *Reconciler) Unlink(patterns []string) (*types.UnlinkResult, error) {
	root, err := r.resolveRoot("")
	if err != nil {
		return nil, err
	}

	matches, err := r.matchSet(patterns)
	if err != nil {
		return nil, err
	}

	result := &types.UnlinkResult{}
	if len(matches) == 0 {
		return result, nil
	}

	refs, err := r.entries(root)
	if err != nil {
		return nil, err
	}

	var removeKeys []string
	for _, ref := range refs {
		_, matchSource := matches[ref.source]
		_, matchTarget := matches[ref.target]
		if !matchSource && !matchTarget {
			continue
		}

		removed, err := r.unlinkOne(ref)
		if err != nil {
			return nil, err
		}

		removeKeys = append(removeKeys, ref.mapKey)
		result.Removed = append(result.Removed, *removed)
	}

	if len(removeKeys) > 0 {
		r.manifest.Remove(removeKeys...)
		if err := r.store.Save(r.manifestPath, r.manifest); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// matchSet expands all patterns into a canonicalized set of candidate
// paths. Candidates that fail to canonicalize (e.g. broken symlinks)
// fall back to lexical cleaning.
func (r *Reconciler) matchSet(patterns []string) (map[string]struct{}, error) {
	matches := make(map[string]struct{})
	for _, pattern := range patterns {
		candidates, err := r.expander.Expand(pattern)
		if err != nil {
			return nil, err
		}

		for _, candidate := range candidates {
			canon, err := paths.Canonicalize(candidate)
			if err == nil {
				matches[canon] = struct{}{}
				continue
			}
			if !errors.IsErrorCode(err, errors.ErrNotFound) {
				return nil, err
			}

			abs, absErr := filepath.Abs(candidate)
			if absErr != nil {
				return nil, errors.Wrapf(absErr, errors.ErrIOFailure, "failed to resolve %s", candidate)
			}
			matches[paths.Clean(abs)] = struct{}{}
		}
	}
	return matches, nil
}

func (r *Reconciler) unlinkOne(ref entryRef) (*types.RemovedEntry, error) {
	r.logger.Info().Str("key", ref.key).Msg("Unlinking entry")

	removed := &types.RemovedEntry{Key: ref.key, Target: ref.target}

	if info, err := r.fs.Lstat(ref.target); err == nil {
		if info.Mode()&os.ModeSymlink != 0 {
			if err := r.fs.Remove(ref.target); err != nil {
				return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to remove symlink %s", ref.target)
			}
			removed.LinkRemoved = true
			r.logger.Info().Str("target", ref.target).Msg("Removed symlink")
		} else {
			removed.TargetKept = true
			r.logger.Warn().Str("target", ref.target).Msg("Target is not a symlink, leaving it for manual resolution")
		}
	} else if !os.IsNotExist(err) {
		return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to stat target %s", ref.target)
	}

	if _, err := r.fs.Stat(ref.source); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, errors.ErrIOFailure, "failed to stat source %s", ref.source)
		}
		r.logger.Warn().Str("source", ref.source).Msg("Source missing from store, cannot move it back")
	} else if removed.TargetKept {
		// Moving onto a non-symlink occupant would silently overwrite it
		r.logger.Warn().Str("source", ref.source).Str("target", ref.target).Msg("Leaving store file in place, target is occupied")
	} else {
		if err := r.fs.Rename(ref.source, ref.target); err != nil {
			return nil, errors.Wrapf(err, errors.ErrRename, "failed to move %s back to %s", ref.source, ref.target)
		}
		removed.SourceMoved = true
		r.logger.Info().Str("from", ref.source).Str("to", ref.target).Msg("Moved file out of store")
	}

	return removed, nil
}
