// Package types defines the core data model shared across dotlink:
// manifest entries, their observed filesystem states, and the result
// structures returned by reconciler actions.
package types

// Entry associates a store-relative source path with its declared target.
// Source is cleaned and relative to the store root; Target is recorded
// verbatim and may begin with a ~ marker.
type Entry struct {
	Source string
	Target string
}

// EntryState classifies a manifest entry against observed filesystem state
type EntryState string

const (
	// StateSourceMissing means the store file for the entry does not exist
	StateSourceMissing EntryState = "source-missing"

	// StateTargetMissing means the store file exists but nothing occupies
	// the target location yet
	StateTargetMissing EntryState = "target-missing"

	// StateCorrectLink means the target is a symlink whose literal value
	// equals the absolute store path
	StateCorrectLink EntryState = "ok"

	// StateMismatchedLink means the target is a symlink pointing elsewhere
	StateMismatchedLink EntryState = "mismatched-link"

	// StateConflict means a non-symlink object occupies the target
	StateConflict EntryState = "conflict"
)

// Failed reports whether the state counts against the aggregate
// success flag of Validate and Fix
func (s EntryState) Failed() bool {
	switch s {
	case StateSourceMissing, StateMismatchedLink, StateConflict:
		return true
	}
	return false
}

// EntryStatus is the classification of a single entry
type EntryStatus struct {
	// Key is the manifest key (store-relative source path)
	Key string

	// Source is the absolute path of the store file
	Source string

	// Target is the home-expanded, cleaned target path
	Target string

	// DeclaredTarget is the target as written in the manifest
	DeclaredTarget string

	// State is the observed classification
	State EntryState

	// LinkDest holds the actual link value when State is mismatched-link
	LinkDest string

	// Repaired is set by Fix when a missing link was created
	Repaired bool
}

// CheckResult aggregates the per-entry statuses of Validate or Fix.
// OK reflects the states as observed before any repair.
type CheckResult struct {
	Statuses []EntryStatus
	OK       bool
}

// AddedFile records one candidate successfully moved into the store
type AddedFile struct {
	// Key is the new manifest key
	Key string

	// StorePath is the absolute location inside the store
	StorePath string

	// OriginalPath is the canonicalized location the file was moved from,
	// recorded as the entry target
	OriginalPath string

	// Linked is false when something reoccupied the original path and
	// symlink creation was skipped
	Linked bool
}

// SkipReason explains why an Add candidate was not processed
type SkipReason string

const (
	SkipNotFound      SkipReason = "does not exist"
	SkipAlreadyExists SkipReason = "already exists in config"
)

// SkippedFile records one Add candidate that was skipped
type SkippedFile struct {
	Path   string
	Reason SkipReason
}

// AddResult aggregates the outcome of an Add invocation
type AddResult struct {
	Added   []AddedFile
	Skipped []SkippedFile
}

// RemovedEntry records one entry processed by Unlink
type RemovedEntry struct {
	Key string

	// Target is the absolute location the store file was moved back to
	Target string

	// LinkRemoved is true when a symlink was deleted at the target
	LinkRemoved bool

	// TargetKept is true when a non-symlink object occupied the target
	// and was left for manual resolution
	TargetKept bool

	// SourceMoved is false when the store file was missing and only the
	// manifest entry was removed
	SourceMoved bool
}

// UnlinkResult aggregates the outcome of an Unlink invocation
type UnlinkResult struct {
	Removed []RemovedEntry
}
