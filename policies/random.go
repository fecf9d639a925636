package policies

import (
	erand "golang.org/x/exp/rand"

	"github.com/zeu5/qgrid/core"
)

// UniformPolicy ignores the QTable and draws each action with equal probability.
type UniformPolicy struct {
	rand *erand.Rand
}

var _ core.Policy = &UniformPolicy{}

func NewUniformPolicy(r *erand.Rand) *UniformPolicy {
	return &UniformPolicy{rand: r}
}

func (u *UniformPolicy) PickAction(_ core.Position, _ float64) core.Action {
	return core.Action(u.rand.Intn(core.NumActions))
}

type UniformPolicyConstructor struct{}

var _ core.PolicyConstructor = &UniformPolicyConstructor{}

func (u *UniformPolicyConstructor) NewPolicy(_ *core.QTable, r *erand.Rand) core.Policy {
	return NewUniformPolicy(r)
}

func NewUniformPolicyConstructor() *UniformPolicyConstructor {
	return &UniformPolicyConstructor{}
}
