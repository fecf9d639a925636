package core

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat"
)

type TrainConfig struct {
	Episodes int
	// Epsilon is read according to Convention.
	Epsilon      float64
	Convention   EpsilonConvention
	Discount     float64
	LearningRate float64

	// ExploreDecay, when positive, multiplies the exploration probability
	// after every episode, never going below ExploreMin.
	ExploreDecay float64
	ExploreMin   float64

	// MaxEpisodeSteps truncates an episode after that many transitions. Zero
	// leaves episodes unbounded.
	MaxEpisodeSteps int
}

func DefaultTrainConfig() TrainConfig {
	return TrainConfig{
		Episodes:     1000,
		Epsilon:      0.9,
		Convention:   ExploitProbability,
		Discount:     0.9,
		LearningRate: 0.9,
	}
}

func (c TrainConfig) Validate() error {
	switch {
	case c.Episodes <= 0:
		return fmt.Errorf("%w: episodes must be positive (got %d)", ErrInvalidConfig, c.Episodes)
	case c.Epsilon < 0 || c.Epsilon > 1:
		return fmt.Errorf("%w: epsilon must be between 0 and 1 (got %.2f)", ErrInvalidConfig, c.Epsilon)
	case c.Discount < 0 || c.Discount > 1:
		return fmt.Errorf("%w: discount factor must be between 0 and 1 (got %.2f)", ErrInvalidConfig, c.Discount)
	case c.LearningRate <= 0 || c.LearningRate > 1:
		return fmt.Errorf("%w: learning rate must be in (0, 1] (got %.2f)", ErrInvalidConfig, c.LearningRate)
	case c.ExploreDecay < 0 || c.ExploreDecay > 1:
		return fmt.Errorf("%w: explore decay must be between 0 and 1 (got %.2f)", ErrInvalidConfig, c.ExploreDecay)
	case c.ExploreMin < 0 || c.ExploreMin > 1:
		return fmt.Errorf("%w: explore minimum must be between 0 and 1 (got %.2f)", ErrInvalidConfig, c.ExploreMin)
	case c.MaxEpisodeSteps < 0:
		return fmt.Errorf("%w: max episode steps must not be negative (got %d)", ErrInvalidConfig, c.MaxEpisodeSteps)
	}
	if c.Convention != ExploitProbability && c.Convention != ExploreProbability {
		return fmt.Errorf("%w: unknown epsilon convention %d", ErrInvalidConfig, int(c.Convention))
	}
	return nil
}

// nextEpsilon applies the decay schedule to the exploration probability.
func (c TrainConfig) nextEpsilon(epsilon float64) float64 {
	if c.ExploreDecay <= 0 {
		return epsilon
	}
	explore := 1 - c.Convention.ExploitChance(epsilon)
	// a floor above the current probability holds it, never raises it
	explore = max(min(c.ExploreMin, explore), explore*c.ExploreDecay)
	return c.Convention.FromExploitChance(1 - explore)
}

type Outcome int

const (
	OutcomeGoal Outcome = iota
	OutcomeObstacle
	OutcomeTruncated
)

func (o Outcome) String() string {
	switch o {
	case OutcomeGoal:
		return "goal"
	case OutcomeObstacle:
		return "obstacle"
	default:
		return "truncated"
	}
}

type EpisodeContext struct {
	Context context.Context
	Run     int
	Episode int
	Epsilon float64
	Outcome Outcome

	Trace *Trace
}

type TrainingReport struct {
	Run               int           `json:"run"`
	Episodes          int           `json:"episodes"`
	Cancelled         bool          `json:"cancelled"`
	Elapsed           time.Duration `json:"elapsed"`
	TotalSteps        int           `json:"total_steps"`
	StepsMean         float64       `json:"steps_mean"`
	StepsStdDev       float64       `json:"steps_std_dev"`
	GoalEpisodes      int           `json:"goal_episodes"`
	ObstacleEpisodes  int           `json:"obstacle_episodes"`
	TruncatedEpisodes int           `json:"truncated_episodes"`
	FinalEpsilon      float64       `json:"final_epsilon"`
	AverageQ          [][]float64   `json:"average_q"`
}

type Trainer struct {
	grid   *GridWorld
	q      *QTable
	policy Policy
	rand   *rand.Rand
	cfg    TrainConfig

	run       int
	observer  Observer
	analyzers map[string]Analyzer
	logger    Logger
	progress  io.Writer
}

type TrainerOption func(*Trainer)

// WithObserver registers the per-step hook.
func WithObserver(o Observer) TrainerOption {
	return func(t *Trainer) {
		if o != nil {
			t.observer = o
		}
	}
}

func WithAnalyzer(name string, a Analyzer) TrainerOption {
	return func(t *Trainer) {
		t.analyzers[name] = a
	}
}

func WithLogger(l Logger) TrainerOption {
	return func(t *Trainer) {
		if l != nil {
			t.logger = l
		}
	}
}

// WithProgress prints one status line per episode to w.
func WithProgress(w io.Writer) TrainerOption {
	return func(t *Trainer) {
		t.progress = w
	}
}

func WithRun(run int) TrainerOption {
	return func(t *Trainer) {
		t.run = run
	}
}

func NewTrainer(grid *GridWorld, q *QTable, policy Policy, r *rand.Rand, cfg TrainConfig, opts ...TrainerOption) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !q.Fits(grid) {
		return nil, fmt.Errorf("%w: table is %dx%d, grid is %dx%d", ErrShapeMismatch, q.Rows(), q.Cols(), grid.Rows(), grid.Cols())
	}
	if policy == nil || r == nil {
		return nil, fmt.Errorf("%w: policy and random source are required", ErrInvalidConfig)
	}
	t := &Trainer{
		grid:      grid,
		q:         q,
		policy:    policy,
		rand:      r,
		cfg:       cfg,
		observer:  noopObserver{},
		analyzers: make(map[string]Analyzer),
		logger:    NewNullLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Update performs one temporal difference update for the transition
// prev --action--> next and returns the new value.
func (t *Trainer) Update(prev Position, action Action, next Position) float64 {
	oldQ := t.q.Get(prev, action)
	_, nextBest := t.q.Best(next)
	target := float64(t.grid.Reward(next)) + t.cfg.Discount*nextBest
	newQ := oldQ + t.cfg.LearningRate*(target-oldQ)
	t.q.Set(prev, action, newQ)
	return newQ
}

// Train runs the configured number of episodes. Cancelling ctx stops before
// the next episode; the report then covers the completed ones and the QTable
// keeps everything learned so far.
func (t *Trainer) Train(ctx context.Context) (*TrainingReport, error) {
	start := time.Now()
	report := &TrainingReport{Run: t.run}
	lengths := make([]float64, 0, t.cfg.Episodes)
	names := t.analyzerNames()

	epsilon := t.cfg.Epsilon
EpisodeLoop:
	for episode := 0; episode < t.cfg.Episodes; episode++ {
		select {
		case <-ctx.Done():
			report.Cancelled = true
			break EpisodeLoop
		default:
		}

		eCtx := &EpisodeContext{
			Context: ctx,
			Run:     t.run,
			Episode: episode,
			Epsilon: epsilon,
			Trace:   NewTrace(),
		}
		if err := t.runEpisode(eCtx); err != nil {
			return nil, err
		}

		steps := eCtx.Trace.Len()
		lengths = append(lengths, float64(steps))
		report.Episodes++
		report.TotalSteps += steps
		switch eCtx.Outcome {
		case OutcomeGoal:
			report.GoalEpisodes++
		case OutcomeObstacle:
			report.ObstacleEpisodes++
		case OutcomeTruncated:
			report.TruncatedEpisodes++
		}
		for _, name := range names {
			t.analyzers[name].Analyze(eCtx, eCtx.Trace)
		}

		t.logger.WithFields(log.Fields{
			"run":     t.run,
			"episode": episode,
			"steps":   steps,
			"outcome": eCtx.Outcome.String(),
			"epsilon": epsilon,
		}).Debug("episode finished")
		if t.progress != nil {
			fmt.Fprintf(
				t.progress,
				"Run %d, Episode %d/%d, Steps: %d, Goals: %d, Obstacles: %d, Truncated: %d\n",
				t.run, episode+1, t.cfg.Episodes, report.TotalSteps, report.GoalEpisodes, report.ObstacleEpisodes, report.TruncatedEpisodes,
			)
		}

		epsilon = t.cfg.nextEpsilon(epsilon)
	}

	report.FinalEpsilon = epsilon
	report.Elapsed = time.Since(start)
	switch {
	case len(lengths) > 1:
		report.StepsMean, report.StepsStdDev = stat.MeanStdDev(lengths, nil)
	case len(lengths) == 1:
		report.StepsMean = lengths[0]
	}
	report.AverageQ = t.q.Averages()
	if report.Cancelled {
		t.logger.Warnf("training cancelled after %d of %d episodes", report.Episodes, t.cfg.Episodes)
	}
	return report, nil
}

func (t *Trainer) runEpisode(eCtx *EpisodeContext) error {
	pos, err := t.grid.RandomStart(t.rand)
	if err != nil {
		return err
	}
	exploit := t.cfg.Convention.ExploitChance(eCtx.Epsilon)
	for !t.grid.IsTerminal(pos) {
		if t.cfg.MaxEpisodeSteps > 0 && eCtx.Trace.Len() >= t.cfg.MaxEpisodeSteps {
			eCtx.Outcome = OutcomeTruncated
			return nil
		}
		action := t.policy.PickAction(pos, exploit)
		prev := pos
		pos = t.grid.Step(pos, action)
		t.Update(prev, action, pos)
		eCtx.Trace.AddStep(&Step{
			State:     prev,
			Action:    action,
			NextState: pos,
			Reward:    t.grid.Reward(pos),
		})
		t.observer.OnStep(eCtx.Episode, pos)
	}
	eCtx.Outcome = OutcomeObstacle
	if t.grid.Kind(pos) == Goal {
		eCtx.Outcome = OutcomeGoal
	}
	return nil
}

func (t *Trainer) analyzerNames() []string {
	names := make([]string, 0, len(t.analyzers))
	for name := range t.analyzers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
