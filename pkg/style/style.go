// Package style renders reconciler results for the terminal using pterm.
package style

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
	"github.com/thatmagicalcat/dotlink/pkg/types"
)

// SetupOutput disables color when stdout is not a terminal
func SetupOutput() {
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		pterm.DisableColor()
	}
}

// StateStyle returns the pterm style for an entry state
func StateStyle(state types.EntryState) *pterm.Style {
	switch state {
	case types.StateCorrectLink:
		return pterm.NewStyle(pterm.FgGreen)
	case types.StateTargetMissing:
		return pterm.NewStyle(pterm.FgBlue)
	case types.StateMismatchedLink:
		return pterm.NewStyle(pterm.FgYellow)
	case types.StateSourceMissing, types.StateConflict:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// stateLabel is the fixed-width label shown for each state
func stateLabel(state types.EntryState) string {
	switch state {
	case types.StateCorrectLink:
		return "ok"
	case types.StateTargetMissing:
		return "missing"
	case types.StateSourceMissing:
		return "no source"
	case types.StateMismatchedLink:
		return "mismatch"
	case types.StateConflict:
		return "conflict"
	default:
		return string(state)
	}
}

// RenderStatus renders a single entry status line
func RenderStatus(s types.EntryStatus) string {
	label := StateStyle(s.State).Sprint(fmt.Sprintf("%-10s", stateLabel(s.State)))

	var detail string
	switch s.State {
	case types.StateCorrectLink:
		detail = fmt.Sprintf("%s -> %s", s.Target, s.Source)
	case types.StateTargetMissing:
		if s.Repaired {
			detail = fmt.Sprintf("created %s -> %s", s.Target, s.Source)
		} else {
			detail = fmt.Sprintf("%s does not exist yet", s.Target)
		}
	case types.StateSourceMissing:
		detail = fmt.Sprintf("store file %s is missing", s.Source)
	case types.StateMismatchedLink:
		detail = fmt.Sprintf("%s points to %s, expected %s", s.Target, s.LinkDest, s.Source)
	case types.StateConflict:
		detail = fmt.Sprintf("%s exists and is not a symlink", s.Target)
	}

	return fmt.Sprintf("  %s %s : %s", label, fmt.Sprintf("%-15s", s.Key), detail)
}

// RenderCheckResult renders the per-entry lines and summary of a
// validate or fix run
func RenderCheckResult(res *types.CheckResult) string {
	var b strings.Builder
	for _, s := range res.Statuses {
		b.WriteString(RenderStatus(s) + "\n")
	}

	if res.OK {
		b.WriteString(pterm.Success.Sprint("All entries validated successfully"))
	} else {
		b.WriteString(pterm.Error.Sprint("Some issues were found"))
	}
	return b.String()
}

// RenderAddResult renders the outcome of an add run
func RenderAddResult(res *types.AddResult) string {
	var b strings.Builder
	for _, added := range res.Added {
		b.WriteString(fmt.Sprintf("  moved  %s -> %s\n", pterm.Cyan(added.OriginalPath), pterm.Cyan(added.StorePath)))
		if added.Linked {
			b.WriteString(fmt.Sprintf("  linked %s -> %s\n", pterm.Cyan(added.OriginalPath), pterm.Cyan(added.StorePath)))
		} else {
			b.WriteString(fmt.Sprintf("  %s original path occupied, symlink skipped\n", pterm.Yellow("info:")))
		}
	}
	for _, skipped := range res.Skipped {
		b.WriteString(fmt.Sprintf("  %s %s: %s\n", pterm.Yellow("skipped:"), skipped.Path, skipped.Reason))
	}

	if len(res.Added) == 0 {
		b.WriteString(pterm.Warning.Sprint("No files were added"))
	} else {
		b.WriteString(pterm.Success.Sprintf("Added %d file(s)", len(res.Added)))
	}
	return b.String()
}

// RenderUnlinkResult renders the outcome of an unlink run
func RenderUnlinkResult(res *types.UnlinkResult) string {
	if len(res.Removed) == 0 {
		return "No matching entries found in config for the given paths."
	}

	var b strings.Builder
	for _, removed := range res.Removed {
		if removed.LinkRemoved {
			b.WriteString(fmt.Sprintf("  removed symlink at %s\n", pterm.Cyan(removed.Target)))
		}
		if removed.TargetKept {
			b.WriteString(fmt.Sprintf("  %s %s is not a symlink, resolve manually\n", pterm.Yellow("warning:"), removed.Target))
		}
		if removed.SourceMoved {
			b.WriteString(fmt.Sprintf("  moved %s back to %s\n", pterm.Cyan(removed.Key), pterm.Cyan(removed.Target)))
		}
	}

	b.WriteString(pterm.Success.Sprintf("Unlinked %d entry(ies)", len(res.Removed)))
	return b.String()
}
