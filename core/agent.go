package core

import "golang.org/x/exp/rand"

// EpsilonConvention selects what the epsilon parameter means.
//
// ExploitProbability is the default: epsilon is the chance of taking the best
// known action, and 1-epsilon the chance of a uniformly random one. This is
// the reverse of the textbook reading and is kept on purpose. Use
// ExploreProbability to get the textbook meaning.
type EpsilonConvention int

const (
	ExploitProbability EpsilonConvention = iota
	ExploreProbability
)

func (c EpsilonConvention) String() string {
	if c == ExploreProbability {
		return "explore"
	}
	return "exploit"
}

// ParseEpsilonConvention accepts "exploit" (or "") and "explore".
func ParseEpsilonConvention(s string) (EpsilonConvention, bool) {
	switch s {
	case "", "exploit":
		return ExploitProbability, true
	case "explore":
		return ExploreProbability, true
	}
	return ExploitProbability, false
}

// ExploitChance converts an epsilon under c to the probability of acting greedily.
func (c EpsilonConvention) ExploitChance(epsilon float64) float64 {
	if c == ExploreProbability {
		return 1 - epsilon
	}
	return epsilon
}

// FromExploitChance is the inverse of ExploitChance.
func (c EpsilonConvention) FromExploitChance(p float64) float64 {
	return c.ExploitChance(p)
}

// Policy picks the next action. exploit is the probability of taking the best
// known action; the Trainer converts the configured epsilon before calling.
type Policy interface {
	PickAction(pos Position, exploit float64) Action
}

type PolicyConstructor interface {
	// NewPolicy builds a policy reading q and drawing from r.
	NewPolicy(q *QTable, r *rand.Rand) Policy
}

// Observer is notified after every transition. It runs synchronously on the
// training goroutine and must not modify the QTable or the grid.
type Observer interface {
	OnStep(episode int, pos Position)
}

type ObserverFunc func(episode int, pos Position)

func (f ObserverFunc) OnStep(episode int, pos Position) {
	f(episode, pos)
}

type noopObserver struct{}

func (noopObserver) OnStep(int, Position) {}

// NewRand returns the seeded generator used for start sampling and action selection.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}
