package analysis

import (
	"bytes"
	"fmt"
	"path"

	"github.com/twpayne/go-vfs"

	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/util"
)

// ObstacleDataset lists the episodes of a run that ended on an obstacle.
type ObstacleDataset struct {
	Episodes []int `json:"episodes"`
}

// ObstacleAnalyzer records episodes that ended on an obstacle and saves the
// traces of the last ones to savePath/obstacles. Early episodes fail all the
// time, so only episodes at or after the threshold are written.
type ObstacleAnalyzer struct {
	fs        vfs.FS
	savePath  string
	run       int
	threshold int
	logger    core.Logger

	episodes []int
}

var _ core.Analyzer = &ObstacleAnalyzer{}

func NewObstacleAnalyzer(fs vfs.FS, savePath string, run, threshold int, logger core.Logger) *ObstacleAnalyzer {
	if logger == nil {
		logger = core.NewNullLogger()
	}
	return &ObstacleAnalyzer{
		fs:        fs,
		savePath:  path.Join(savePath, "obstacles"),
		run:       run,
		threshold: threshold,
		logger:    logger,
		episodes:  make([]int, 0),
	}
}

func (a *ObstacleAnalyzer) Analyze(ctx *core.EpisodeContext, trace *core.Trace) {
	if ctx.Outcome != core.OutcomeObstacle {
		return
	}
	a.episodes = append(a.episodes, ctx.Episode)
	if ctx.Episode < a.threshold || a.fs == nil {
		return
	}

	buf := new(bytes.Buffer)
	last := trace.Last()
	fmt.Fprintf(buf, "Obstacle at (%s)\n", last.NextState)
	if start, ok := trace.Start(); ok {
		fmt.Fprintf(buf, "Started at (%s)\n", start)
	}
	buf.WriteString(traceToString(trace))

	file := path.Join(a.savePath, fmt.Sprintf("%d_obstacle_%d.txt", a.run, ctx.Episode))
	if err := util.SaveFile(a.fs, file, buf.Bytes()); err != nil {
		a.logger.Warnf("could not save trace %s: %s", file, err)
	}
}

func (a *ObstacleAnalyzer) DataSet() core.DataSet {
	return &ObstacleDataset{Episodes: util.CopyIntSlice(a.episodes)}
}

func (a *ObstacleAnalyzer) Reset() {
	a.episodes = make([]int, 0)
}

type ObstacleAnalyzerConstructor struct {
	FS        vfs.FS
	SavePath  string
	Threshold int
	Logger    core.Logger
}

var _ core.AnalyzerConstructor = &ObstacleAnalyzerConstructor{}

func NewObstacleAnalyzerConstructor(fs vfs.FS, savePath string, threshold int, logger core.Logger) *ObstacleAnalyzerConstructor {
	return &ObstacleAnalyzerConstructor{
		FS:        fs,
		SavePath:  savePath,
		Threshold: threshold,
		Logger:    logger,
	}
}

func (c *ObstacleAnalyzerConstructor) NewAnalyzer(run int) core.Analyzer {
	return NewObstacleAnalyzer(c.FS, c.SavePath, run, c.Threshold, c.Logger)
}
