package cmd

import (
	"context"
	"fmt"
	"io"
	"math"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/zeu5/qgrid/analysis"
	"github.com/zeu5/qgrid/common"
	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/policies"
	"github.com/zeu5/qgrid/util"
)

func TrainCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "train GRIDFILE",
		Short: "Learn a QTable for the grid and print the results",
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return UpdateFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, done := interruptible()
			defer done()
			return withExitCode(train(ctx, cmd.OutOrStdout(), args[0]))
		},
	}
	common.DefaultFlags().AddTrainFlags(cmd.Flags())
	common.DefaultFlags().AddPathFlags(cmd.Flags())

	return cmd
}

func train(ctx context.Context, out io.Writer, gridFile string) error {
	desc, err := core.ReadGridFile(fs, gridFile)
	if err != nil {
		return err
	}
	grid, err := desc.GridWorld()
	if err != nil {
		return err
	}
	cfg, err := flags.TrainConfig(desc.Episodes)
	if err != nil {
		return err
	}
	start, hasStart, err := flags.StartPosition()
	if err != nil {
		return fmt.Errorf("%w: %s", core.ErrInvalidConfig, err)
	}
	if hasStart && !grid.Contains(start) {
		return fmt.Errorf("%w: start (%s) outside the %dx%d grid", core.ErrInvalidConfig, start, grid.Rows(), grid.Cols())
	}
	if flags.NumRuns <= 0 {
		return fmt.Errorf("%w: runs must be positive (got %d)", core.ErrInvalidConfig, flags.NumRuns)
	}
	if err := flags.Record(fs); err != nil {
		logger.Warnf("could not record flags: %s", err)
	}

	comparison := prepareComparison(grid, cfg)
	printer := util.NewGridPrinter(grid, !flags.NoColor && isTerminal(out))
	parallelism := flags.Parallelism

	var progress io.Writer
	var terminal *util.TerminalPrinter
	switch {
	case flags.Live && isTerminal(out):
		frequency := flags.Delay
		if frequency <= 0 {
			frequency = 100 * time.Millisecond
		}
		terminal = util.NewTerminalPrinter(out, frequency)
		comparison.Observer = util.NewLiveRenderer(printer, terminal, flags.Delay)
		if parallelism > 1 && flags.NumRuns > 1 {
			logger.Info("live rendering trains one run at a time")
			parallelism = 1
		}
		terminal.Start(ctx)
	case flags.Live:
		logger.Warn("output is not a terminal, live rendering disabled")
	case isTerminal(out):
		progress = out
	}

	logger.WithFields(map[string]interface{}{
		"grid":     gridFile,
		"rows":     grid.Rows(),
		"cols":     grid.Cols(),
		"episodes": cfg.Episodes,
		"runs":     flags.NumRuns,
	}).Info("training")
	results, runErr := comparison.Run(ctx, parallelism, progress)
	if terminal != nil {
		terminal.Stop()
	}

	var errs *multierror.Error
	if runErr != nil {
		errs = multierror.Append(errs, runErr)
	}
	fmt.Fprintln(out, "Rewards:")
	if err := printer.PrintRewards(out); err != nil {
		return err
	}
	reports := make(map[string]*core.TrainingReport)
	for i, experiment := range comparison.Experiments {
		result, ok := results[experiment.Name]
		if !ok || result.IsError() {
			continue
		}
		reports[experiment.Name] = result.Report
		if err := printResult(out, printer, result); err != nil {
			return err
		}
		if flags.SaveQTable != "" {
			file := perRun(flags.SaveQTable, i, flags.NumRuns)
			if err := result.QTable.Record(fs, file); err != nil {
				errs = multierror.Append(errs, qtableError(fmt.Errorf("saving %s: %w", file, err)))
			}
		}
		if hasStart {
			if err := solveFrom(out, grid, result.QTable, start, perRun(flags.PathOut, i, flags.NumRuns)); err != nil {
				errs = multierror.Append(errs, fmt.Errorf("%s: %w", experiment.Name, err))
			}
		}
	}
	if err := util.SaveJson(fs, path.Join(flags.SavePath, "reports.json"), reports); err != nil {
		logger.Warnf("could not save reports: %s", err)
	}
	return errs.ErrorOrNil()
}

func prepareComparison(grid *core.GridWorld, cfg core.TrainConfig) *core.Comparison {
	comparison := core.NewComparison()
	comparison.Logger = logger
	for i := 0; i < flags.NumRuns; i++ {
		comparison.AddExperiment(&core.Experiment{
			Name:   util.ExperimentName(i),
			Grid:   grid,
			Policy: policies.NewEpsilonGreedyPolicyConstructor(),
			Config: cfg,
			Seed:   flags.Seed + uint64(i),
		})
	}

	comparison.AddAnalysis("episodes", analysis.NewEpisodeAnalyzerConstructor(), analysis.NewJSONComparator(fs, flags.SavePath, "episodes"))
	comparison.AddAnalysis("visits", analysis.NewVisitAnalyzerConstructor(grid), analysis.NewJSONComparator(fs, flags.SavePath, "visits"))

	obstacleFrom := flags.ObstacleFrom
	if obstacleFrom < 0 {
		obstacleFrom = math.MaxInt
	}
	comparison.AddAnalysis(
		"obstacles",
		analysis.NewObstacleAnalyzerConstructor(fs, flags.SavePath, obstacleFrom, logger),
		analysis.NewJSONComparator(fs, flags.SavePath, "obstacles"),
	)
	if flags.TraceFrom >= 0 {
		comparison.AddAnalysis(
			"traces",
			analysis.NewTraceAnalyzerConstructor(fs, flags.SavePath, flags.TraceFrom, logger),
			analysis.NewNoOpComparator(),
		)
	}
	if flags.Chart != "" {
		comparison.AddAnalysis("chart", analysis.NewEpisodeAnalyzerConstructor(), analysis.NewLearningCurveComparator(fs, flags.Chart, 0))
	}
	return comparison
}

func printResult(out io.Writer, printer *util.GridPrinter, result *core.ExperimentResult) error {
	report := result.Report
	status := ""
	if report.Cancelled {
		status = " (cancelled)"
	}
	fmt.Fprintf(
		out,
		"\n%s: %d episodes in %s%s, goals %d, obstacles %d, truncated %d, steps %.2f ± %.2f\n",
		result.Name, report.Episodes, report.Elapsed.Round(time.Millisecond), status,
		report.GoalEpisodes, report.ObstacleEpisodes, report.TruncatedEpisodes,
		report.StepsMean, report.StepsStdDev,
	)
	fmt.Fprintln(out, "Average Q-values:")
	if err := printer.PrintValues(out, report.AverageQ); err != nil {
		return err
	}
	fmt.Fprintln(out, "Greedy policy:")
	return printer.PrintPolicy(out, result.QTable)
}

// perRun keeps file as is for a single run and adds the run name otherwise.
func perRun(file string, run, runs int) string {
	if file == "" || runs <= 1 {
		return file
	}
	ext := filepath.Ext(file)
	return strings.TrimSuffix(file, ext) + "-" + util.ExperimentName(run) + ext
}
