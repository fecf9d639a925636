package analysis

import (
	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/util"
)

// VisitDataset counts how often each cell was entered over a run.
type VisitDataset struct {
	Visits [][]int `json:"visits"`
}

type VisitAnalyzer struct {
	rows, cols int
	visits     [][]int
}

var _ core.Analyzer = &VisitAnalyzer{}

func NewVisitAnalyzer(rows, cols int) *VisitAnalyzer {
	v := &VisitAnalyzer{rows: rows, cols: cols}
	v.Reset()
	return v
}

func (v *VisitAnalyzer) Reset() {
	v.visits = make([][]int, v.rows)
	for r := range v.visits {
		v.visits[r] = make([]int, v.cols)
	}
}

func (v *VisitAnalyzer) Analyze(_ *core.EpisodeContext, trace *core.Trace) {
	if start, ok := trace.Start(); ok {
		v.visit(start)
	}
	for i := 0; i < trace.Len(); i++ {
		v.visit(trace.Step(i).NextState)
	}
}

func (v *VisitAnalyzer) visit(pos core.Position) {
	if pos.Row < 0 || pos.Row >= v.rows || pos.Col < 0 || pos.Col >= v.cols {
		return
	}
	v.visits[pos.Row][pos.Col]++
}

func (v *VisitAnalyzer) DataSet() core.DataSet {
	return &VisitDataset{Visits: util.CopyIntGrid(v.visits)}
}

type VisitAnalyzerConstructor struct {
	rows, cols int
}

var _ core.AnalyzerConstructor = &VisitAnalyzerConstructor{}

func NewVisitAnalyzerConstructor(grid *core.GridWorld) *VisitAnalyzerConstructor {
	return &VisitAnalyzerConstructor{
		rows: grid.Rows(),
		cols: grid.Cols(),
	}
}

func (c *VisitAnalyzerConstructor) NewAnalyzer(_ int) core.Analyzer {
	return NewVisitAnalyzer(c.rows, c.cols)
}
