package cmd

import (
	"github.com/spf13/cobra"

	"github.com/weftci/weft/internal/output"
)

var (
	// Global flags
	configFlag  string
	verboseFlag bool
)

// NewRootCmd creates the root command for the weft CLI.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "weft",
		Short: "Matrix test and release orchestrator",
		Long: `weft runs a declared environment matrix against a project: test
environments per runtime and dependency pin, a check-only lint environment,
a documentation build with cross-reference validation, and a gated release
to a package index on tagged commits of the release branch.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			output.SetupLogging(verboseFlag)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "path to weft.yaml (env: WEFT_CONFIG)")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "increase output verbosity")

	// Add subcommands
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewListCmd())
	rootCmd.AddCommand(NewVetCmd())
	rootCmd.AddCommand(NewReleaseCmd())
	rootCmd.AddCommand(NewHistoryCmd())
	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}
