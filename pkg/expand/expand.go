// Package expand turns user-supplied glob patterns into concrete
// filesystem paths for the add and unlink actions.
package expand

import (
	"github.com/bmatcuk/doublestar/v4"
	"github.com/thatmagicalcat/dotlink/pkg/errors"
	"github.com/thatmagicalcat/dotlink/pkg/logging"
)

// Expander expands glob patterns into matching filesystem paths
type Expander interface {
	Expand(pattern string) ([]string, error)
}

// globExpander implements Expander with doublestar patterns
type globExpander struct{}

// NewGlob creates the default pattern expander
func NewGlob() Expander {
	return &globExpander{}
}

// Expand returns the paths matching pattern. A pattern without
// metacharacters that names an existing path yields itself; a pattern
// matching nothing yields an empty slice.
func (g *globExpander) Expand(pattern string) ([]string, error) {
	logger := logging.GetLogger("expand")

	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrInvalidInput, "invalid pattern %q", pattern)
	}

	logger.Debug().Str("pattern", pattern).Int("matches", len(matches)).Msg("Pattern expanded")
	return matches, nil
}
