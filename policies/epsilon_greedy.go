package policies

import (
	erand "golang.org/x/exp/rand"

	"github.com/zeu5/qgrid/core"
)

// EpsilonGreedyPolicy takes the best known action with probability exploit
// and a uniformly random action otherwise. One Float64 is drawn per call,
// plus one Intn when exploring.
type EpsilonGreedyPolicy struct {
	qTable  *core.QTable
	rand    *erand.Rand
	explore *UniformPolicy
}

var _ core.Policy = &EpsilonGreedyPolicy{}

func NewEpsilonGreedyPolicy(q *core.QTable, r *erand.Rand) *EpsilonGreedyPolicy {
	return &EpsilonGreedyPolicy{
		qTable:  q,
		rand:    r,
		explore: NewUniformPolicy(r),
	}
}

func (e *EpsilonGreedyPolicy) PickAction(pos core.Position, exploit float64) core.Action {
	if e.rand.Float64() < exploit {
		action, _ := e.qTable.Best(pos)
		return action
	}
	return e.explore.PickAction(pos, exploit)
}

type EpsilonGreedyPolicyConstructor struct{}

var _ core.PolicyConstructor = &EpsilonGreedyPolicyConstructor{}

func NewEpsilonGreedyPolicyConstructor() *EpsilonGreedyPolicyConstructor {
	return &EpsilonGreedyPolicyConstructor{}
}

func (e *EpsilonGreedyPolicyConstructor) NewPolicy(q *core.QTable, r *erand.Rand) core.Policy {
	return NewEpsilonGreedyPolicy(q, r)
}
