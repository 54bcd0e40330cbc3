// Package paths provides centralized path handling for dotlink:
// lexical cleaning, home-marker expansion, filesystem canonicalization,
// and store-root resolution.
package paths

import (
	"os"
	"path/filepath"

	"github.com/thatmagicalcat/dotlink/pkg/errors"
)

// Environment variable names
const (
	// EnvDotlinkRoot names the store root and the fallback manifest location
	EnvDotlinkRoot = "DOTLINK_ROOT"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Clean removes redundant segments and resolves . and .. lexically,
// without touching the filesystem
func Clean(path string) string {
	return filepath.Clean(path)
}

// Canonicalize resolves symlinks and relative segments against the
// filesystem. It fails with NOT_FOUND if the path does not exist.
func Canonicalize(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrIOFailure, "failed to get absolute path for %s", path)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.Newf(errors.ErrNotFound, "path does not exist: %s", path)
		}
		return "", errors.Wrapf(err, errors.ErrIOFailure, "failed to canonicalize %s", path)
	}

	return filepath.Clean(resolved), nil
}

// Resolver carries the per-invocation path context. The home directory
// and the environment root are threaded in at construction time so that
// nothing below the CLI reads process globals.
type Resolver struct {
	home    string
	envRoot string
}

// NewResolver creates a Resolver with an explicit home directory and
// environment-supplied root (either may be empty)
func NewResolver(home, envRoot string) *Resolver {
	return &Resolver{home: home, envRoot: envRoot}
}

// DefaultResolver creates a Resolver from the process environment
func DefaultResolver() *Resolver {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv(EnvHome)
	}
	return NewResolver(home, os.Getenv(EnvDotlinkRoot))
}

// Home returns the configured home directory, which may be empty
func (r *Resolver) Home() string {
	return r.home
}

// ExpandHome replaces a leading ~ marker with the configured home
// directory. It fails with HOME_UNRESOLVABLE when expansion is required
// but no home directory is available. Paths without a leading marker
// are returned unchanged.
func (r *Resolver) ExpandHome(path string) (string, error) {
	if path == "" || path[0] != '~' {
		return path, nil
	}

	// ~user form is not expanded
	if len(path) > 1 && path[1] != '/' && path[1] != filepath.Separator {
		return path, nil
	}

	if r.home == "" {
		return "", errors.Newf(errors.ErrHomeUnresolvable, "cannot expand %s: home directory is not set", path)
	}

	if len(path) == 1 {
		return r.home, nil
	}
	return filepath.Join(r.home, path[2:]), nil
}

// ResolveRoot resolves the effective store root. A declared root takes
// precedence over the environment-supplied one; the chosen value must
// canonicalize to an existing directory.
func (r *Resolver) ResolveRoot(declared string) (string, error) {
	chosen := declared
	if chosen == "" {
		chosen = r.envRoot
	}
	if chosen == "" {
		return "", errors.Newf(errors.ErrRootUnresolvable,
			"no store root: set dotlink_root in the manifest or the %s environment variable", EnvDotlinkRoot)
	}

	expanded, err := r.ExpandHome(chosen)
	if err != nil {
		return "", err
	}

	root, err := Canonicalize(expanded)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRootUnresolvable, "store root %q does not resolve", chosen)
	}

	info, err := os.Stat(root)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrRootUnresolvable, "store root %q is not accessible", root)
	}
	if !info.IsDir() {
		return "", errors.Newf(errors.ErrRootUnresolvable, "store root %q is not a directory", root)
	}

	return root, nil
}
