// Package cli wires the dotlink commands. It is the only layer that
// reads process globals (environment, working directory) and the only
// layer that decides the process exit code; everything below it works
// with values threaded in explicitly.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/thatmagicalcat/dotlink/internal/version"
	"github.com/thatmagicalcat/dotlink/pkg/filesystem"
	"github.com/thatmagicalcat/dotlink/pkg/logging"
	"github.com/thatmagicalcat/dotlink/pkg/manifest"
	"github.com/thatmagicalcat/dotlink/pkg/paths"
	"github.com/thatmagicalcat/dotlink/pkg/reconciler"
	"github.com/thatmagicalcat/dotlink/pkg/style"
)

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	var (
		verbosity  int
		configPath string
	)

	rootCmd := &cobra.Command{
		Use:   "dotlink",
		Short: "Manage dotfiles as symlinks into a content store",
		Long: `dotlink keeps a manifest (Link.toml) mapping files stored in a content
root to the locations where they should appear as symlinks, and
reconciles the filesystem against it.`,
		Version: version.Version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			style.SetupOutput()
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Manifest path (finds Link.toml in the current directory if not specified)")

	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newValidateCmd(&configPath))
	rootCmd.AddCommand(newFixCmd(&configPath))
	rootCmd.AddCommand(newAddCmd(&configPath))
	rootCmd.AddCommand(newUnlinkCmd(&configPath))
	rootCmd.AddCommand(newLinkCmd(&configPath))

	return rootCmd
}

// newReconciler discovers and loads the manifest and binds a reconciler
// to it. Environment lookups happen here and nowhere below.
func newReconciler(configPath string) (*reconciler.Reconciler, error) {
	fs := filesystem.NewOS()
	store := manifest.NewStore(fs)
	resolver := paths.DefaultResolver()
	envRoot := os.Getenv(paths.EnvDotlinkRoot)

	manifestPath, err := store.Discover(configPath, envRoot)
	if err != nil {
		return nil, err
	}

	m, err := store.Load(manifestPath)
	if err != nil {
		return nil, err
	}

	return reconciler.New(reconciler.Options{
		Manifest:     m,
		ManifestPath: manifestPath,
		Resolver:     resolver,
		FS:           fs,
	}), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("dotlink version %s\n", version.Version)
			if version.Commit != "" {
				fmt.Printf("Commit: %s\n", version.Commit)
			}
			if version.Date != "" {
				fmt.Printf("Built:  %s\n", version.Date)
			}
		},
	}
}

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Check every entry without changing anything",
		Long: `Validate classifies every manifest entry against the filesystem and
reports its state. Nothing is created, moved or removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newReconciler(*configPath)
			if err != nil {
				return err
			}

			res, err := rec.Validate()
			if err != nil {
				return err
			}

			// Reported issues are not fatal; the command still exits 0
			fmt.Println(style.RenderCheckResult(res))
			return nil
		},
	}
}

func newFixCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "fix",
		Short: "Create missing symlinks and validate existing ones",
		Long: `Fix creates the symlink for every entry whose target does not exist
yet. Missing sources, conflicts and mismatched links are reported but
never repaired automatically.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newReconciler(*configPath)
			if err != nil {
				return err
			}

			res, err := rec.Fix()
			if err != nil {
				return err
			}

			fmt.Println(style.RenderCheckResult(res))
			return nil
		},
	}
}

func newAddCmd(configPath *string) *cobra.Command {
	var root string

	cmd := &cobra.Command{
		Use:   "add <patterns...>",
		Short: "Move files into the store and link them back",
		Long: `Add moves each file matching the given patterns into the store root,
records an entry for it, and creates a symlink at its original
location. The manifest is saved after every processed file.`,
		Example: `  # Adopt a single file
  dotlink add ~/.vimrc

  # Adopt everything bash-related into a custom root
  dotlink add "$HOME/.bash*" --root ~/dotfiles`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newReconciler(*configPath)
			if err != nil {
				return err
			}

			res, err := rec.Add(args, root)
			if err != nil {
				return err
			}

			fmt.Println(style.RenderAddResult(res))
			return nil
		},
	}

	cmd.Flags().StringVar(&root, "root", "", "Use a custom store root instead of the configured one")
	return cmd
}

func newUnlinkCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <patterns...>",
		Short: "Move files back out of the store and drop their entries",
		Long: `Unlink matches the given patterns against entry sources and targets,
removes the symlinks, moves the stored files back to their declared
locations, and saves the manifest once after the whole batch.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newReconciler(*configPath)
			if err != nil {
				return err
			}

			res, err := rec.Unlink(args)
			if err != nil {
				return err
			}

			fmt.Println(style.RenderUnlinkResult(res))
			return nil
		},
	}
}

func newLinkCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "link <name>",
		Short: "Create the symlink for a single entry by target name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rec, err := newReconciler(*configPath)
			if err != nil {
				return err
			}

			status, err := rec.Link(args[0])
			if err != nil {
				return err
			}

			fmt.Println(style.RenderStatus(*status))
			return nil
		},
	}
}
