package core

type DataSet interface{}

// Analyzer inspects finished episodes. It must not modify the trace.
type Analyzer interface {
	Analyze(*EpisodeContext, *Trace)
	DataSet() DataSet
	Reset()
}

type AnalyzerConstructor interface {
	// NewAnalyzer returns a fresh analyzer for the given run
	NewAnalyzer(int) Analyzer
}

type Comparator interface {
	Compare([]string, []DataSet) error
}

// Experiment is one independent training run with its own QTable and random source.
type Experiment struct {
	Name   string
	Grid   *GridWorld
	Policy PolicyConstructor
	Config TrainConfig
	Seed   uint64
}

type ExperimentResult struct {
	Name     string
	Report   *TrainingReport
	QTable   *QTable
	Error    error
	Datasets map[string]DataSet
}

func (r *ExperimentResult) IsError() bool {
	return r.Error != nil
}

type Comparison struct {
	Experiments []*Experiment
	Analyzers   map[string]AnalyzerConstructor
	Comparators map[string]Comparator

	// Observer, when set, is attached to every experiment. Only meaningful
	// with a single experiment or a parallelism of one.
	Observer Observer
	Logger   Logger
}

func NewComparison() *Comparison {
	return &Comparison{
		Experiments: make([]*Experiment, 0),
		Analyzers:   make(map[string]AnalyzerConstructor),
		Comparators: make(map[string]Comparator),
	}
}

func (c *Comparison) AddExperiment(e *Experiment) {
	c.Experiments = append(c.Experiments, e)
}

func (c *Comparison) AddAnalysis(name string, a AnalyzerConstructor, cmp Comparator) {
	c.Analyzers[name] = a
	c.Comparators[name] = cmp
}
