package core_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/policies"
)

func testConfig(episodes int) core.TrainConfig {
	return core.TrainConfig{
		Episodes:     episodes,
		Epsilon:      0.9,
		Convention:   core.ExploitProbability,
		Discount:     0.9,
		LearningRate: 0.5,
	}
}

func newTrainer(t *testing.T, g *core.GridWorld, cfg core.TrainConfig, seed uint64, opts ...core.TrainerOption) (*core.Trainer, *core.QTable) {
	t.Helper()
	q := core.NewQTableFor(g)
	r := core.NewRand(seed)
	trainer, err := core.NewTrainer(g, q, policies.NewEpsilonGreedyPolicy(q, r), r, cfg, opts...)
	require.NoError(t, err)
	return trainer, q
}

// leftPolicy always walks left.
type leftPolicy struct{}

func (leftPolicy) PickAction(core.Position, float64) core.Action { return core.Left }

func TestUpdate(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n")
	trainer, q := newTrainer(t, g, testConfig(1), 1)
	start, goal := core.Position{Row: 0, Col: 0}, core.Position{Row: 0, Col: 1}

	assert.Equal(t, 50.0, trainer.Update(start, core.Right, goal))
	assert.Equal(t, 75.0, trainer.Update(start, core.Right, goal))
	assert.Equal(t, 75.0, q.Get(start, core.Right))

	// bumping into the wall: -1 + 0.9*75 = 66.5, halfway from 0
	assert.InDelta(t, 33.25, trainer.Update(start, core.Left, start), 1e-12)
	assert.Equal(t, [core.NumActions]float64{}, q.Values(goal))
}

func TestNewTrainerValidates(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n")
	r := core.NewRand(1)
	q := core.NewQTableFor(g)
	policy := policies.NewEpsilonGreedyPolicy(q, r)

	bad := []core.TrainConfig{
		{Episodes: 0, Epsilon: 0.9, Discount: 0.9, LearningRate: 0.5},
		{Episodes: 1, Epsilon: 1.5, Discount: 0.9, LearningRate: 0.5},
		{Episodes: 1, Epsilon: 0.9, Discount: -0.1, LearningRate: 0.5},
		{Episodes: 1, Epsilon: 0.9, Discount: 0.9, LearningRate: 0},
		{Episodes: 1, Epsilon: 0.9, Discount: 0.9, LearningRate: 0.5, MaxEpisodeSteps: -1},
		{Episodes: 1, Epsilon: 0.9, Discount: 0.9, LearningRate: 0.5, Convention: core.EpsilonConvention(7)},
	}
	for _, cfg := range bad {
		_, err := core.NewTrainer(g, q, policy, r, cfg)
		assert.ErrorIs(t, err, core.ErrInvalidConfig, "%+v", cfg)
	}

	_, err := core.NewTrainer(g, core.NewQTable(2, 2), policy, r, testConfig(1))
	assert.ErrorIs(t, err, core.ErrShapeMismatch)

	_, err = core.NewTrainer(g, q, nil, r, testConfig(1))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestTrainSmallGrid(t *testing.T) {
	_, g := mustGrid(t, "1000\n.g\n.#\n")
	trainer, q := newTrainer(t, g, testConfig(1000), 1)

	report, err := trainer.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1000, report.Episodes)
	assert.False(t, report.Cancelled)
	assert.Equal(t, 1000, report.GoalEpisodes+report.ObstacleEpisodes)
	assert.Zero(t, report.TruncatedEpisodes)
	assert.Equal(t, q.Averages(), report.AverageQ)

	path, err := core.ShortestPath(g, q, core.Position{Row: 0, Col: 0})
	require.NoError(t, err)
	assert.Equal(t, []core.Position{{Row: 0, Col: 0}, {Row: 0, Col: 1}}, path)

	path, err = core.ShortestPath(g, q, core.Position{Row: 1, Col: 0})
	require.NoError(t, err)
	assert.NotContains(t, path, core.Position{Row: 1, Col: 1})
	assert.Equal(t, core.Position{Row: 0, Col: 1}, path[len(path)-1])
	assert.Equal(t, []core.Position{{Row: 1, Col: 0}, {Row: 0, Col: 0}, {Row: 0, Col: 1}}, path)
}

func TestTrainCorridors(t *testing.T) {
	for _, desc := range []string{"1000\n....g\n", "1000\n.\n.\n.\n.\ng\n"} {
		_, g := mustGrid(t, desc)
		trainer, q := newTrainer(t, g, testConfig(1000), 3)

		_, err := trainer.Train(context.Background())
		require.NoError(t, err)

		path, err := core.ShortestPath(g, q, core.Position{Row: 0, Col: 0})
		require.NoError(t, err)
		require.NotEmpty(t, path)
		// moves equal the Manhattan distance to the goal
		assert.Len(t, path, 5, desc)
		assert.Equal(t, core.Goal, g.Kind(path[len(path)-1]))
	}
}

func TestObserverDoesNotChangeLearning(t *testing.T) {
	_, g := mustGrid(t, "1\n...\n.#.\n..g\n")

	plain, plainQ := newTrainer(t, g, testConfig(200), 42)
	plainReport, err := plain.Train(context.Background())
	require.NoError(t, err)

	steps := 0
	lastEpisode := -1
	observed, observedQ := newTrainer(t, g, testConfig(200), 42, core.WithObserver(core.ObserverFunc(func(episode int, pos core.Position) {
		steps++
		lastEpisode = episode
		assert.True(t, g.Contains(pos))
	})))
	observedReport, err := observed.Train(context.Background())
	require.NoError(t, err)

	assert.True(t, plainQ.Equal(observedQ))
	assert.Equal(t, plainReport.TotalSteps, observedReport.TotalSteps)
	assert.Equal(t, observedReport.TotalSteps, steps)
	assert.Equal(t, 199, lastEpisode)
}

func TestSameSeedSameTable(t *testing.T) {
	_, g := mustGrid(t, "1\n..g\n.#.\n")

	first, firstQ := newTrainer(t, g, testConfig(100), 9)
	second, secondQ := newTrainer(t, g, testConfig(100), 9)
	_, err := first.Train(context.Background())
	require.NoError(t, err)
	_, err = second.Train(context.Background())
	require.NoError(t, err)

	assert.True(t, firstQ.Equal(secondQ))
}

func TestTrainCancelledBeforeStart(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n")
	trainer, q := newTrainer(t, g, testConfig(10), 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	report, err := trainer.Train(ctx)
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	assert.Zero(t, report.Episodes)
	assert.True(t, q.Equal(core.NewQTableFor(g)))
}

func TestTrainCancelledMidway(t *testing.T) {
	_, g := mustGrid(t, "1\n...\n..g\n")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trainer, _ := newTrainer(t, g, testConfig(100), 1, core.WithObserver(core.ObserverFunc(func(episode int, _ core.Position) {
		if episode == 5 {
			cancel()
		}
	})))
	report, err := trainer.Train(ctx)
	require.NoError(t, err)
	assert.True(t, report.Cancelled)
	// the episode running when the context was cancelled still completes
	assert.Equal(t, 6, report.Episodes)
}

func TestMaxEpisodeSteps(t *testing.T) {
	_, g := mustGrid(t, "1\n..g\n")
	q := core.NewQTableFor(g)
	r := core.NewRand(1)
	cfg := testConfig(4)
	cfg.MaxEpisodeSteps = 3

	trainer, err := core.NewTrainer(g, q, leftPolicy{}, r, cfg)
	require.NoError(t, err)
	report, err := trainer.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, report.TruncatedEpisodes)
	assert.Equal(t, 12, report.TotalSteps)
	assert.Equal(t, 3.0, report.StepsMean)
	assert.Zero(t, report.StepsStdDev)
}

func TestExploreDecay(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n")
	cfg := testConfig(3)
	cfg.ExploreDecay = 0.5
	cfg.ExploreMin = 0.05

	epsilons := make([]float64, 0)
	trainer, _ := newTrainer(t, g, cfg, 1, core.WithAnalyzer("epsilon", &recordingAnalyzer{onEpisode: func(eCtx *core.EpisodeContext) {
		epsilons = append(epsilons, eCtx.Epsilon)
	}}))
	report, err := trainer.Train(context.Background())
	require.NoError(t, err)

	require.Len(t, epsilons, 3)
	assert.InDelta(t, 0.9, epsilons[0], 1e-9)
	assert.InDelta(t, 0.95, epsilons[1], 1e-9)
	assert.InDelta(t, 0.95, epsilons[2], 1e-9)
	assert.InDelta(t, 0.95, report.FinalEpsilon, 1e-9)
}

func TestExploreMinDoesNotRaiseExploration(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n")
	cfg := testConfig(3)
	cfg.ExploreDecay = 0.99
	cfg.ExploreMin = 0.5

	epsilons := make([]float64, 0)
	trainer, _ := newTrainer(t, g, cfg, 1, core.WithAnalyzer("epsilon", &recordingAnalyzer{onEpisode: func(eCtx *core.EpisodeContext) {
		epsilons = append(epsilons, eCtx.Epsilon)
	}}))
	report, err := trainer.Train(context.Background())
	require.NoError(t, err)

	require.Len(t, epsilons, 3)
	for _, epsilon := range epsilons {
		assert.InDelta(t, 0.9, epsilon, 1e-9)
	}
	assert.InDelta(t, 0.9, report.FinalEpsilon, 1e-9)
}

func TestExploreConvention(t *testing.T) {
	assert.Equal(t, 0.9, core.ExploitProbability.ExploitChance(0.9))
	assert.InDelta(t, 0.1, core.ExploreProbability.ExploitChance(0.9), 1e-12)

	c, ok := core.ParseEpsilonConvention("explore")
	assert.True(t, ok)
	assert.Equal(t, core.ExploreProbability, c)
	_, ok = core.ParseEpsilonConvention("greedy")
	assert.False(t, ok)
}

func TestAnalyzersRunInNameOrder(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n")
	calls := make([]string, 0)
	record := func(name string) *recordingAnalyzer {
		return &recordingAnalyzer{onEpisode: func(*core.EpisodeContext) { calls = append(calls, name) }}
	}
	trainer, _ := newTrainer(t, g, testConfig(2), 1,
		core.WithAnalyzer("b", record("b")),
		core.WithAnalyzer("a", record("a")),
	)
	_, err := trainer.Train(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a", "b"}, calls)
}

func TestProgressAndLogging(t *testing.T) {
	_, g := mustGrid(t, "1\n.g\n")
	progress := new(bytes.Buffer)
	logs := new(bytes.Buffer)
	logger := core.NewBufferLogger(logs)
	logger.SetLevel(logrus.DebugLevel)

	trainer, _ := newTrainer(t, g, testConfig(2), 1, core.WithProgress(progress), core.WithLogger(logger), core.WithRun(3))
	_, err := trainer.Train(context.Background())
	require.NoError(t, err)

	assert.Contains(t, progress.String(), "Run 3, Episode 1/2")
	assert.Contains(t, progress.String(), "Run 3, Episode 2/2")
	assert.Contains(t, logs.String(), "episode finished")
	assert.True(t, core.IsDebugLevel(logger))
}

type recordingAnalyzer struct {
	onEpisode func(*core.EpisodeContext)
	episodes  int
}

func (r *recordingAnalyzer) Analyze(eCtx *core.EpisodeContext, _ *core.Trace) {
	r.episodes++
	if r.onEpisode != nil {
		r.onEpisode(eCtx)
	}
}

func (r *recordingAnalyzer) DataSet() core.DataSet { return r.episodes }

func (r *recordingAnalyzer) Reset() { r.episodes = 0 }
