package reconciler

import (
	"path/filepath"

	"github.com/thatmagicalcat/dotlink/pkg/errors"
	"github.com/thatmagicalcat/dotlink/pkg/types"
)

// Link creates the symlink for the single entry whose target base name
// equals name. Entries in any other state are reported unchanged; no
// entry matching the name is an error.
func (r *Reconciler) Link(name string) (*types.EntryStatus, error) {
	root, err := r.resolveRoot("")
	if err != nil {
		return nil, err
	}

	refs, err := r.entries(root)
	if err != nil {
		return nil, err
	}

	for _, ref := range refs {
		if filepath.Base(ref.target) != name {
			continue
		}

		state, linkDest, err := r.classify(ref)
		if err != nil {
			return nil, err
		}

		status := &types.EntryStatus{
			Key:            ref.key,
			Source:         ref.source,
			Target:         ref.target,
			DeclaredTarget: ref.declaredTarget,
			State:          state,
			LinkDest:       linkDest,
		}

		if state == types.StateTargetMissing {
			if err := r.createLink(ref.source, ref.target); err != nil {
				return nil, err
			}
			status.Repaired = true
		}

		return status, nil
	}

	return nil, errors.Newf(errors.ErrEntryNotFound, "no entry with target name %q", name)
}
