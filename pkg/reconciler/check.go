package reconciler

import (
	"github.com/thatmagicalcat/dotlink/pkg/types"
)

// Validate classifies every entry without mutating anything. The
// aggregate OK flag is true iff no entry is source-missing, mismatched
// or in conflict.
func (r *Reconciler) Validate() (*types.CheckResult, error) {
	return r.check(false)
}

// Fix classifies every entry and creates the symlink for entries whose
// target is missing. All other states are reported only: a missing
// source or a conflict is never auto-repaired, a mismatched link is
// never overwritten. The OK flag reflects the states as observed before
// any repair.
func (r *Reconciler) Fix() (*types.CheckResult, error) {
	return r.check(true)
}

func (r *Reconciler) check(repair bool) (*types.CheckResult, error) {
	root, err := r.resolveRoot("")
	if err != nil {
		return nil, err
	}

	refs, err := r.entries(root)
	if err != nil {
		return nil, err
	}

	result := &types.CheckResult{OK: true}
	for _, ref := range refs {
		state, linkDest, err := r.classify(ref)
		if err != nil {
			return nil, err
		}

		status := types.EntryStatus{
			Key:            ref.key,
			Source:         ref.source,
			Target:         ref.target,
			DeclaredTarget: ref.declaredTarget,
			State:          state,
			LinkDest:       linkDest,
		}

		if state.Failed() {
			result.OK = false
		}

		if repair && state == types.StateTargetMissing {
			if err := r.createLink(ref.source, ref.target); err != nil {
				return nil, err
			}
			status.Repaired = true
		}

		result.Statuses = append(result.Statuses, status)
	}

	return result, nil
}
