// Package commands implements the CLI commands.
package commands

import (
	"github.com/satishbabariya/nestql/internal/cli/ui"
	"github.com/satishbabariya/nestql/internal/debug"
	"github.com/spf13/cobra"
)

var debugFlag bool

// Execute runs the root command.
func Execute() error {
	rootCmd := &cobra.Command{
		Use:   "nestql",
		Short: "Query engine for nested relational data",
		Long: "nestql compiles structured query documents into SQL, streams the\n" +
			"results and stitches nested relations back together.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			debug.Init(debugFlag)
		},
	}
	rootCmd.PersistentFlags().BoolVar(&debugFlag, "debug", false, "enable debug logging")

	rootCmd.AddCommand(NewRunCommand())
	rootCmd.AddCommand(NewInitCommand())
	rootCmd.AddCommand(NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
