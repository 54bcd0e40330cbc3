package cli_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thatmagicalcat/dotlink/internal/cli"
)

// run executes the root command with the given args
func run(t *testing.T, args ...string) error {
	t.Helper()
	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	return cmd.Execute()
}

func setupEnv(t *testing.T) (root, manifestPath, home string) {
	t.Helper()
	base := t.TempDir()
	root = filepath.Join(base, "store")
	home = filepath.Join(base, "home")
	require.NoError(t, os.MkdirAll(root, 0755))
	require.NoError(t, os.MkdirAll(home, 0755))
	manifestPath = filepath.Join(base, "Link.toml")
	return root, manifestPath, home
}

func TestFixCommand(t *testing.T) {
	root, manifestPath, home := setupEnv(t)

	source := filepath.Join(root, "bashrc")
	require.NoError(t, os.WriteFile(source, []byte("# bashrc"), 0644))

	target := filepath.Join(home, ".bashrc")
	manifest := "[settings]\ndotlink_root = \"" + root + "\"\n\n[entries]\nbashrc = \"" + target + "\"\n"
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0644))

	require.NoError(t, run(t, "fix", "-c", manifestPath))

	info, err := os.Lstat(target)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink)

	// Validate now succeeds as well
	require.NoError(t, run(t, "validate", "-c", manifestPath))
}

func TestValidateReportsIssuesWithoutFailing(t *testing.T) {
	root, manifestPath, _ := setupEnv(t)

	manifest := "[settings]\ndotlink_root = \"" + root + "\"\n\n[entries]\nmissing = \"/nonexistent/target\"\n"
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0644))

	// Per-entry issues are reported, not fatal
	assert.NoError(t, run(t, "validate", "-c", manifestPath))
}

func TestMissingManifestIsFatal(t *testing.T) {
	err := run(t, "fix", "-c", filepath.Join(t.TempDir(), "Link.toml"))
	require.Error(t, err)
}

func TestAddAndUnlinkCommands(t *testing.T) {
	root, manifestPath, home := setupEnv(t)

	manifest := "[settings]\ndotlink_root = \"" + root + "\"\n"
	require.NoError(t, os.WriteFile(manifestPath, []byte(manifest), 0644))

	original := filepath.Join(home, ".vimrc")
	require.NoError(t, os.WriteFile(original, []byte("\" vimrc"), 0644))

	require.NoError(t, run(t, "add", "-c", manifestPath, original))

	info, err := os.Lstat(original)
	require.NoError(t, err)
	assert.NotZero(t, info.Mode()&os.ModeSymlink, "original path should be a symlink after add")

	require.NoError(t, run(t, "unlink", "-c", manifestPath, original))

	info, err = os.Lstat(original)
	require.NoError(t, err)
	assert.Zero(t, info.Mode()&os.ModeSymlink, "unlink should restore the regular file")

	data, err := os.ReadFile(original)
	require.NoError(t, err)
	assert.Equal(t, "\" vimrc", string(data))
}
