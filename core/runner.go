package core

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/gosuri/uilive"
	"github.com/hashicorp/go-multierror"
)

// run trains a single experiment with a private QTable and random source.
func (e *Experiment) run(ctx context.Context, id int, analyzers map[string]Analyzer, observer Observer, logger Logger, writer io.Writer) *ExperimentResult {
	result := &ExperimentResult{
		Name:     e.Name,
		Datasets: make(map[string]DataSet),
	}
	q := NewQTableFor(e.Grid)
	r := NewRand(e.Seed)

	opts := []TrainerOption{WithRun(id), WithObserver(observer), WithLogger(logger)}
	if writer != nil {
		opts = append(opts, WithProgress(writer))
	}
	for name, a := range analyzers {
		a.Reset()
		opts = append(opts, WithAnalyzer(name, a))
	}
	trainer, err := NewTrainer(e.Grid, q, e.Policy.NewPolicy(q, r), r, e.Config, opts...)
	if err != nil {
		result.Error = err
		return result
	}
	report, err := trainer.Train(ctx)
	if err != nil {
		result.Error = err
		return result
	}
	result.Report = report
	result.QTable = q
	for name, a := range analyzers {
		result.Datasets[name] = a.DataSet()
	}
	return result
}

// parallelWorker is a worker that runs experiments
type parallelWorker struct {
	id int
}

// parallelWork is a struct that contains all the information needed to run an experiment
type parallelWork struct {
	index      int
	experiment *Experiment
	comp       *Comparison
	writer     io.Writer
}

// parallelResult is a struct that contains the result of running an experiment
type parallelResult struct {
	index  int
	result *ExperimentResult
}

// Worker main loop that consumes work from a channel
func (w *parallelWorker) run(ctx context.Context, workCh <-chan *parallelWork, resultsCh chan<- *parallelResult) {
	for work := range workCh {
		analyzers := make(map[string]Analyzer)
		for name, aC := range work.comp.Analyzers {
			analyzers[name] = aC.NewAnalyzer(work.index)
		}
		result := work.experiment.run(ctx, work.index, analyzers, work.comp.Observer, work.comp.Logger, work.writer)
		resultsCh <- &parallelResult{index: work.index, result: result}
	}
}

// Run trains every experiment on a pool of parallelism workers, then hands
// the analyzer datasets to the comparators. Experiments never share a QTable.
func (c *Comparison) Run(ctx context.Context, parallelism int, out io.Writer) (map[string]*ExperimentResult, error) {
	if parallelism <= 0 {
		parallelism = 1
	}
	if parallelism > len(c.Experiments) {
		parallelism = len(c.Experiments)
	}

	var writer *uilive.Writer
	if out != nil {
		writer = uilive.New()
		writer.Out = out
		writer.Start()
	}

	workCh := make(chan *parallelWork, len(c.Experiments))
	resultsCh := make(chan *parallelResult, len(c.Experiments))

	wg := new(sync.WaitGroup)
	for i := 0; i < parallelism; i++ {
		wg.Add(1)
		w := &parallelWorker{id: i}
		go func() {
			defer wg.Done()
			w.run(ctx, workCh, resultsCh)
		}()
	}

	for i, e := range c.Experiments {
		work := &parallelWork{index: i, experiment: e, comp: c}
		if writer != nil {
			work.writer = writer.Newline()
		}
		workCh <- work
	}
	close(workCh)
	wg.Wait()
	close(resultsCh)
	if writer != nil {
		writer.Stop()
	}

	ordered := make([]*ExperimentResult, len(c.Experiments))
	for r := range resultsCh {
		ordered[r.index] = r.result
	}

	results := make(map[string]*ExperimentResult)
	experimentNames := make([]string, 0, len(ordered))
	var errs *multierror.Error
	for _, result := range ordered {
		results[result.Name] = result
		experimentNames = append(experimentNames, result.Name)
		if result.IsError() {
			errs = multierror.Append(errs, fmt.Errorf("experiment %s: %w", result.Name, result.Error))
		}
	}

	analyzerNames := make([]string, 0, len(c.Analyzers))
	for name := range c.Analyzers {
		analyzerNames = append(analyzerNames, name)
	}
	sort.Strings(analyzerNames)
	for _, name := range analyzerNames {
		cmp, ok := c.Comparators[name]
		if !ok || cmp == nil {
			continue
		}
		datasets := make([]DataSet, 0, len(ordered))
		for _, result := range ordered {
			if result.IsError() {
				datasets = append(datasets, nil)
			} else {
				datasets = append(datasets, result.Datasets[name])
			}
		}
		if err := cmp.Compare(experimentNames, datasets); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("comparing %s: %w", name, err))
		}
	}
	return results, errs.ErrorOrNil()
}
