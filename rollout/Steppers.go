// Package rollout implements fixed-horizon experience collection with
// generalized advantage estimation for actor-critic training. The
// package is structurally independent of the dialogue components: any
// environment/agent pair satisfying the stepper contracts can be
// trained with it.
package rollout

import (
	"gonum.org/v1/gonum/mat"
)

// EnvStep is the environment's half of a transition, batched over
// parallel environment instances: row i of Observations and element i
// of Rewards and Dones belong to instance i.
type EnvStep struct {
	Observations *mat.Dense // (numEnvs, obsDim)
	Rewards      []float64
	Dones        []float64 // 1 if the instance's episode ended, else 0
}

// NumEnvs returns the number of parallel environment instances in the
// step.
func (e EnvStep) NumEnvs() int {
	return len(e.Rewards)
}

func (e EnvStep) clone() EnvStep {
	return EnvStep{
		Observations: mat.DenseCopyOf(e.Observations),
		Rewards:      copyFloats(e.Rewards),
		Dones:        copyFloats(e.Dones),
	}
}

// AgentStep is the agent's half of a transition: the actions taken in
// each parallel environment instance and the agent's value estimate of
// each instance's observation.
type AgentStep struct {
	Actions *mat.Dense // (numEnvs, actionDim)
	Values  []float64
}

func (a AgentStep) clone() AgentStep {
	return AgentStep{
		Actions: mat.DenseCopyOf(a.Actions),
		Values:  copyFloats(a.Values),
	}
}

// EnvStepper is a batch of parallel environment instances advanced in
// lockstep.
type EnvStepper interface {
	// Step advances every instance by feeding it the agent's last
	// action
	Step(AgentStep) EnvStep

	// Reset restarts every instance and returns the initial
	// observations
	Reset() EnvStep
}

// AgentStepper selects actions and estimates state values for a batch
// of observations.
type AgentStepper interface {
	Step(EnvStep) AgentStep
}

func copyFloats(s []float64) []float64 {
	out := make([]float64, len(s))
	copy(out, s)
	return out
}
