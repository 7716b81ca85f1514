package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/rentcheck/internal/buildinfo"
)

type rootOptions struct {
	repoDir string
	verbose bool
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "rentcheck",
		Short:   "Reconcile bank deposits against tenant rent payments",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.repoDir, "repo", ".", "project directory")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output")

	rootCmd.AddCommand(
		newInitCommand(),
		newImportCommand(opts),
		newMatchCommand(opts),
		newTenantCommand(opts),
		newTxnCommand(opts),
		newAssignCommand(opts),
		newUnassignCommand(opts),
		newAssignmentsCommand(opts),
		newAccountCommand(opts),
		newCheckCommand(opts),
	)

	return rootCmd
}
