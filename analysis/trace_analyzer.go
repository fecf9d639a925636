package analysis

import (
	"bytes"
	"fmt"
	"path"

	"github.com/twpayne/go-vfs"

	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/util"
)

// TraceAnalyzer writes the transitions of every episode from the threshold
// episode onwards to savePath/traces.
type TraceAnalyzer struct {
	fs       vfs.FS
	savePath string
	run      int
	// will save the trace to the file only after the episode number exceeds this threshold
	thresholdEpisode int
	logger           core.Logger
}

var _ core.Analyzer = &TraceAnalyzer{}

func NewTraceAnalyzer(fs vfs.FS, savePath string, run, threshold int, logger core.Logger) *TraceAnalyzer {
	if logger == nil {
		logger = core.NewNullLogger()
	}
	return &TraceAnalyzer{
		fs:               fs,
		savePath:         path.Join(savePath, "traces"),
		run:              run,
		thresholdEpisode: threshold,
		logger:           logger,
	}
}

func (a *TraceAnalyzer) Analyze(ctx *core.EpisodeContext, trace *core.Trace) {
	if ctx.Episode < a.thresholdEpisode {
		return
	}
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "Outcome: %s\nEpsilon: %.4f\n\n", ctx.Outcome, ctx.Epsilon)
	buf.WriteString(traceToString(trace))

	file := path.Join(a.savePath, fmt.Sprintf("%d_trace_%d.txt", a.run, ctx.Episode))
	if err := util.SaveFile(a.fs, file, buf.Bytes()); err != nil {
		a.logger.Warnf("could not save trace %s: %s", file, err)
	}
}

func (a *TraceAnalyzer) DataSet() core.DataSet {
	return nil
}

func (a *TraceAnalyzer) Reset() {
	// do nothing
}

func traceToString(trace *core.Trace) string {
	buf := new(bytes.Buffer)
	for i := 0; i < trace.Len(); i++ {
		step := trace.Step(i)
		fmt.Fprintf(buf, "Step %d: (%s) %s -> (%s) reward %d\n", i, step.State, step.Action, step.NextState, step.Reward)
	}
	return buf.String()
}

type TraceAnalyzerConstructor struct {
	FS               vfs.FS
	SavePath         string
	ThresholdEpisode int
	Logger           core.Logger
}

var _ core.AnalyzerConstructor = &TraceAnalyzerConstructor{}

func NewTraceAnalyzerConstructor(fs vfs.FS, savePath string, thresholdEpisode int, logger core.Logger) *TraceAnalyzerConstructor {
	return &TraceAnalyzerConstructor{
		FS:               fs,
		SavePath:         savePath,
		ThresholdEpisode: thresholdEpisode,
		Logger:           logger,
	}
}

func (c *TraceAnalyzerConstructor) NewAnalyzer(run int) core.Analyzer {
	return NewTraceAnalyzer(c.FS, c.SavePath, run, c.ThresholdEpisode, c.Logger)
}
