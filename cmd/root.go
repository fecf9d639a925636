package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"
)

func RootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "qgrid",
		Short:        "Tabular Q-learning on grid worlds",
		SilenceUsage: true,
	}
	cmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	cmd.PersistentFlags().Bool("quiet", false, "Do not log to stderr")
	cmd.PersistentFlags().String("logfile", "", "Also write logs to this file")
	cmd.PersistentFlags().String("config", "", "YAML config file with flag defaults")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored tables")

	cmd.AddCommand(
		TrainCommand(),
		SolveCommand(),
		DumpCommand(),
	)

	return cmd
}

// Execute runs the root command and exits with the code carried by the error.
func Execute() {
	err := RootCommand().Execute()
	if err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.ExitCode())
		}
		os.Exit(exitGeneric)
	}
}
