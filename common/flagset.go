package common

import (
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/twpayne/go-vfs"

	"github.com/zeu5/qgrid/core"
	"github.com/zeu5/qgrid/util"
)

const EnvPrefix = "QGRID"

type Flags struct {
	TrainFlags
	SavePath string
	RunFlags
	OutputFlags
}

type TrainFlags struct {
	// Episodes overrides the count from the grid description when positive.
	Episodes          int
	Epsilon           float64
	EpsilonConvention string
	Discount          float64
	LearningRate      float64
	ExploreDecay      float64
	ExploreMin        float64
	MaxEpisodeSteps   int
	Seed              uint64
}

type RunFlags struct {
	NumRuns     int
	Parallelism int
	// TraceFrom saves the traces of every episode from this one on, -1 disables it.
	TraceFrom    int
	ObstacleFrom int
}

type OutputFlags struct {
	Live       bool
	Delay      time.Duration
	SaveQTable string
	Chart      string
	Start      string
	PathOut    string
	// Path is a path file to draw on the grid, as written by --path-out.
	Path    string
	QTable  string
	NoColor bool
}

func DefaultFlags() *Flags {
	cfg := core.DefaultTrainConfig()
	return &Flags{
		TrainFlags: TrainFlags{
			Episodes:          0,
			Epsilon:           cfg.Epsilon,
			EpsilonConvention: cfg.Convention.String(),
			Discount:          cfg.Discount,
			LearningRate:      cfg.LearningRate,
			ExploreDecay:      0,
			ExploreMin:        0,
			MaxEpisodeSteps:   0,
			Seed:              1,
		},
		SavePath: "results",
		RunFlags: RunFlags{
			NumRuns:      1,
			Parallelism:  4,
			TraceFrom:    -1,
			ObstacleFrom: -1,
		},
		OutputFlags: OutputFlags{
			Live:  false,
			Delay: 50 * time.Millisecond,
		},
	}
}

// AddTrainFlags registers the training parameters on fs with the defaults of f.
func (f *Flags) AddTrainFlags(fs *pflag.FlagSet) {
	fs.Int("episodes", f.Episodes, "Number of episodes, 0 uses the count from the grid file")
	fs.Float64("epsilon", f.Epsilon, "Exploration parameter, read according to --epsilon-convention")
	fs.String("epsilon-convention", f.EpsilonConvention, "Meaning of epsilon: exploit (probability of the greedy action) or explore")
	fs.Float64("discount", f.Discount, "Discount factor")
	fs.Float64("learning-rate", f.LearningRate, "Learning rate")
	fs.Float64("explore-decay", f.ExploreDecay, "Multiply the exploration probability by this after each episode, 0 disables")
	fs.Float64("explore-min", f.ExploreMin, "Lower bound of the decayed exploration probability")
	fs.Int("max-episode-steps", f.MaxEpisodeSteps, "Truncate episodes after this many steps, 0 disables")
	fs.Uint64("seed", f.Seed, "Seed of the random source")

	fs.Int("runs", f.NumRuns, "Number of independent runs")
	fs.Int("parallelism", f.Parallelism, "Number of runs trained in parallel")
	fs.Int("trace-from", f.TraceFrom, "Save the trace of every episode from this one on, -1 disables")
	fs.Int("obstacle-from", f.ObstacleFrom, "Save the trace of obstacle episodes from this one on, -1 disables")
	fs.String("save-path", f.SavePath, "Path to save results")

	fs.Bool("live", f.Live, "Render the agent on the grid while training")
	fs.Duration("delay", f.Delay, "Pause between rendered steps")
	fs.String("save-qtable", f.SaveQTable, "Write the learned QTable to this file")
	fs.String("chart", f.Chart, "Write an HTML learning curve chart to this file")
}

// AddPathFlags registers the flags shared by commands that print a path.
func (f *Flags) AddPathFlags(fs *pflag.FlagSet) {
	fs.String("start", f.Start, "Start position as row,col")
	fs.String("path-out", f.PathOut, "Write the path to this file")
}

func (f *Flags) AddQTableFlags(fs *pflag.FlagSet) {
	fs.String("qtable", f.QTable, "QTable file written by train --save-qtable")
}

func (f *Flags) AddShowPathFlags(fs *pflag.FlagSet) {
	fs.String("path", f.Path, "Path file written by --path-out to draw on the grid")
}

// Load resolves f from v: flags bound to v win over environment variables
// prefixed with QGRID_, which win over the config file.
func (f *Flags) Load(v *viper.Viper, fs *pflag.FlagSet) error {
	if err := v.BindPFlags(fs); err != nil {
		return err
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("%w: reading %s: %s", core.ErrInvalidConfig, file, err)
		}
	}

	f.Episodes = v.GetInt("episodes")
	f.Epsilon = v.GetFloat64("epsilon")
	f.EpsilonConvention = v.GetString("epsilon-convention")
	f.Discount = v.GetFloat64("discount")
	f.LearningRate = v.GetFloat64("learning-rate")
	f.ExploreDecay = v.GetFloat64("explore-decay")
	f.ExploreMin = v.GetFloat64("explore-min")
	f.MaxEpisodeSteps = v.GetInt("max-episode-steps")
	f.Seed = v.GetUint64("seed")

	f.NumRuns = v.GetInt("runs")
	f.Parallelism = v.GetInt("parallelism")
	f.TraceFrom = v.GetInt("trace-from")
	f.ObstacleFrom = v.GetInt("obstacle-from")
	f.SavePath = v.GetString("save-path")

	f.Live = v.GetBool("live")
	f.Delay = v.GetDuration("delay")
	f.SaveQTable = v.GetString("save-qtable")
	f.Chart = v.GetString("chart")
	f.Start = v.GetString("start")
	f.PathOut = v.GetString("path-out")
	f.Path = v.GetString("path")
	f.QTable = v.GetString("qtable")
	f.NoColor = v.GetBool("no-color")
	return nil
}

// TrainConfig builds the trainer configuration. episodes is the count read
// from the grid description and is used unless overridden.
func (f *Flags) TrainConfig(episodes int) (core.TrainConfig, error) {
	convention, ok := core.ParseEpsilonConvention(f.EpsilonConvention)
	if !ok {
		return core.TrainConfig{}, fmt.Errorf("%w: unknown epsilon convention %q", core.ErrInvalidConfig, f.EpsilonConvention)
	}
	if f.Episodes > 0 {
		episodes = f.Episodes
	}
	cfg := core.TrainConfig{
		Episodes:        episodes,
		Epsilon:         f.Epsilon,
		Convention:      convention,
		Discount:        f.Discount,
		LearningRate:    f.LearningRate,
		ExploreDecay:    f.ExploreDecay,
		ExploreMin:      f.ExploreMin,
		MaxEpisodeSteps: f.MaxEpisodeSteps,
	}
	return cfg, cfg.Validate()
}

// StartPosition parses Start, ok is false when no start was given.
func (f *Flags) StartPosition() (core.Position, bool, error) {
	if f.Start == "" {
		return core.Position{}, false, nil
	}
	pos, err := core.ParsePosition(f.Start)
	return pos, err == nil, err
}

func (f *Flags) Record(fs vfs.FS) error {
	return util.SaveJson(fs, path.Join(f.SavePath, "config.json"), f)
}
