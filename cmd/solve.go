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

func SolveCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "solve GRIDFILE",
		Short: "Print the greedy path of a saved QTable",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return UpdateFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withExitCode(solve(cmd.OutOrStdout(), args[0]))
		},
	}
	common.DefaultFlags().AddQTableFlags(cmd.Flags())
	common.DefaultFlags().AddPathFlags(cmd.Flags())

	return cmd
}

func solve(out io.Writer, gridFile string) error {
	grid, q, err := loadGridAndTable(gridFile, true)
	if err != nil {
		return err
	}
	start, hasStart, err := flags.StartPosition()
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidConfig, err)
	}
	if !hasStart {
		return fmt.Errorf("%w: --start is required", core.ErrInvalidConfig)
	}
	if !grid.Contains(start) {
		return fmt.Errorf("%w: start (%s) outside the %dx%d grid", core.ErrInvalidConfig, start, grid.Rows(), grid.Cols())
	}
	return solveFrom(out, grid, q, start, flags.PathOut)
}

// loadGridAndTable reads the grid and, when present or required, the QTable
// given by --qtable.
func loadGridAndTable(gridFile string, required bool) (*core.GridWorld, *core.QTable, error) {
	desc, err := core.ReadGridFile(fs, gridFile)
	if err != nil {
		return nil, nil, err
	}
	grid, err := desc.GridWorld()
	if err != nil {
		return nil, nil, err
	}
	if flags.QTable == "" {
		if required {
			return nil, nil, fmt.Errorf("%w: --qtable is required", core.ErrInvalidConfig)
		}
		return grid, nil, nil
	}
	q, err := core.ReadQTable(fs, flags.QTable, grid.Rows(), grid.Cols())
	if err != nil {
		return nil, nil, qtableError(err)
	}
	return grid, q, nil
}

// solveFrom prints the greedy path from start and saves it to pathOut if set.
func solveFrom(out io.Writer, grid *core.GridWorld, q *core.QTable, start core.Position, pathOut string) error {
	path, err := core.ShortestPath(grid, q, start)
	if err != nil {
		return err
	}
	if path == nil {
		fmt.Fprintf(out, "Start (%s) is a terminal cell\n", start)
		return nil
	}
	fmt.Fprintf(out, "Path from (%s), %d moves:\n", start, len(path)-1)
	buf := new(bytes.Buffer)
	if err := core.WritePath(buf, path); err != nil {
		return err
	}
	if _, err := out.Write(buf.Bytes()); err != nil {
		return err
	}
	if pathOut != "" {
		if err := util.SaveFile(fs, pathOut, buf.Bytes()); err != nil {
			return fmt.Errorf("saving path: %w", err)
		}
		logger.Infof("path saved to %s", pathOut)
	}
	return nil
}
