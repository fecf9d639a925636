package cmd

import (
	"bytes"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/zeu5/qgrid/common"
	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/util"
)

func DumpCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump GRIDFILE",
		Short: "Print the reward table and, with --qtable, the learned values",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return UpdateFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withExitCode(dump(cmd.OutOrStdout(), args[0]))
		},
	}
	common.DefaultFlags().AddQTableFlags(cmd.Flags())
	common.DefaultFlags().AddShowPathFlags(cmd.Flags())

	return cmd
}

func dump(out io.Writer, gridFile string) error {
	grid, q, err := loadGridAndTable(gridFile, false)
	if err != nil {
		return err
	}
	printer := util.NewGridPrinter(grid, !flags.NoColor && isTerminal(out))
	fmt.Fprintln(out, "Rewards:")
	if err := printer.PrintRewards(out); err != nil {
		return err
	}
	if q != nil {
		fmt.Fprintln(out, "Average Q-values:")
		if err := printer.PrintValues(out, q.Averages()); err != nil {
			return err
		}
		fmt.Fprintln(out, "Greedy policy:")
		if err := printer.PrintPolicy(out, q); err != nil {
			return err
		}
	}
	if flags.Path == "" {
		return nil
	}
	path, err := readPathFile(grid, flags.Path)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Path from %s, %d moves:\n", flags.Path, max(len(path)-1, 0))
	return printer.PrintPath(out, path)
}

// readPathFile loads a path file and checks that it stays on grid.
func readPathFile(grid *core.GridWorld, file string) ([]core.Position, error) {
	contents, err := fs.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: reading path %s: %s", core.ErrInvalidConfig, file, err)
	}
	path, err := core.ReadPath(bytes.NewReader(contents))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", core.ErrInvalidConfig, file, err)
	}
	for _, pos := range path {
		if !grid.Contains(pos) {
			return nil, fmt.Errorf("%w: %s: (%s) outside the %dx%d grid", core.ErrInvalidConfig, file, pos, grid.Rows(), grid.Cols())
		}
	}
	return path, nil
}
