package analysis

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/twpayne/go-vfs"

	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/util"
)

const defaultSmoothing = 20

// LearningCurveComparator renders the smoothed episode lengths and the goal
// count of every experiment as an HTML page. It expects EpisodeDataset values.
type LearningCurveComparator struct {
	fs        vfs.FS
	file      string
	smoothing int
}

var _ core.Comparator = &LearningCurveComparator{}

func NewLearningCurveComparator(fs vfs.FS, file string, smoothing int) *LearningCurveComparator {
	if smoothing <= 0 {
		smoothing = defaultSmoothing
	}
	return &LearningCurveComparator{
		fs:        fs,
		file:      file,
		smoothing: smoothing,
	}
}

func (c *LearningCurveComparator) Compare(experimentNames []string, datasets []core.DataSet) error {
	steps := charts.NewLine()
	steps.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Episode length",
			Subtitle: fmt.Sprintf("moving average over %d episodes", c.smoothing),
		}),
	)
	goals := charts.NewLine()
	goals.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithTitleOpts(opts.Title{Title: "Episodes reaching a goal"}),
	)

	longest := 0
	for i, name := range experimentNames {
		ds, ok := datasets[i].(*EpisodeDataset)
		if !ok || ds == nil {
			continue
		}
		longest = max(longest, ds.Len())

		smoothed := util.MovingAverage(ds.Steps, c.smoothing)
		stepData := make([]opts.LineData, len(smoothed))
		for j, v := range smoothed {
			stepData[j] = opts.LineData{Value: v}
		}
		steps.AddSeries(name, stepData)

		goalData := make([]opts.LineData, len(ds.Goals))
		for j, v := range ds.Goals {
			goalData[j] = opts.LineData{Value: v}
		}
		goals.AddSeries(name, goalData)
	}

	xAxis := make([]string, longest)
	for i := range xAxis {
		xAxis[i] = strconv.Itoa(i + 1)
	}
	steps.SetXAxis(xAxis)
	goals.SetXAxis(xAxis)

	page := components.NewPage()
	page.AddCharts(steps, goals)

	buf := new(bytes.Buffer)
	if err := page.Render(buf); err != nil {
		return err
	}
	return util.SaveFile(c.fs, c.file, buf.Bytes())
}
