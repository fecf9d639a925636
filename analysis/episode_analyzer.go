package analysis

import (
	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/util"
)

// EpisodeDataset records the length and outcome of every episode of a run.
type EpisodeDataset struct {
	Steps    []int    `json:"steps"`
	Outcomes []string `json:"outcomes"`
	// Goals is the running number of episodes that reached a goal.
	Goals []int `json:"goals"`
}

func (d *EpisodeDataset) Copy() *EpisodeDataset {
	return &EpisodeDataset{
		Steps:    util.CopyIntSlice(d.Steps),
		Outcomes: util.CopyStringSlice(d.Outcomes),
		Goals:    util.CopyIntSlice(d.Goals),
	}
}

func (d *EpisodeDataset) Len() int {
	return len(d.Steps)
}

type EpisodeAnalyzer struct {
	dataset *EpisodeDataset
}

var _ core.Analyzer = &EpisodeAnalyzer{}

func NewEpisodeAnalyzer() *EpisodeAnalyzer {
	e := &EpisodeAnalyzer{}
	e.Reset()
	return e
}

func (e *EpisodeAnalyzer) Reset() {
	e.dataset = &EpisodeDataset{
		Steps:    make([]int, 0),
		Outcomes: make([]string, 0),
		Goals:    make([]int, 0),
	}
}

func (e *EpisodeAnalyzer) Analyze(eCtx *core.EpisodeContext, trace *core.Trace) {
	goals := 0
	if n := len(e.dataset.Goals); n > 0 {
		goals = e.dataset.Goals[n-1]
	}
	if eCtx.Outcome == core.OutcomeGoal {
		goals++
	}
	e.dataset.Steps = append(e.dataset.Steps, trace.Len())
	e.dataset.Outcomes = append(e.dataset.Outcomes, eCtx.Outcome.String())
	e.dataset.Goals = append(e.dataset.Goals, goals)
}

func (e *EpisodeAnalyzer) DataSet() core.DataSet {
	return e.dataset.Copy()
}

type EpisodeAnalyzerConstructor struct{}

var _ core.AnalyzerConstructor = &EpisodeAnalyzerConstructor{}

func NewEpisodeAnalyzerConstructor() *EpisodeAnalyzerConstructor {
	return &EpisodeAnalyzerConstructor{}
}

func (c *EpisodeAnalyzerConstructor) NewAnalyzer(_ int) core.Analyzer {
	return NewEpisodeAnalyzer()
}
