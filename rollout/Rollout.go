package rollout

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// Params describes a rollout collection and loss configuration.
type Params struct {
	EntropyCoef     float64
	ValueLossCoef   float64
	NumRolloutSteps int
	Discount        float64
	GAELambda       float64
	LearningRate    float64
}

// DefaultParams returns a default rollout configuration.
func DefaultParams() Params {
	return Params{
		EntropyCoef:     0.01,
		ValueLossCoef:   0.5,
		NumRolloutSteps: 4,
		Discount:        0.99,
		GAELambda:       0.95,
		LearningRate:    1e-2,
	}
}

// Validate returns an error describing the first illegal field of p.
func (p Params) Validate() error {
	if p.NumRolloutSteps < 1 {
		return fmt.Errorf("validate: rollout steps must be positive "+
			"\n\thave(%v)", p.NumRolloutSteps)
	}
	if p.Discount < 0 || p.Discount > 1 {
		return fmt.Errorf("validate: discount must be in [0, 1] "+
			"\n\thave(%v)", p.Discount)
	}
	if p.GAELambda < 0 || p.GAELambda > 1 {
		return fmt.Errorf("validate: gae lambda must be in [0, 1] "+
			"\n\thave(%v)", p.GAELambda)
	}
	if p.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive "+
			"\n\thave(%v)", p.LearningRate)
	}
	return nil
}

// Experience holds one iteration's flattened training data. Rows are
// environment-major: environment p's step t is row p*NumRolloutSteps+t,
// matching FlattenScalars and FlattenMatrices.
type Experience struct {
	Observations *mat.Dense
	Actions      *mat.Dense
	Values       []float64
	Advantages   []float64
	Returns      []float64
}

// Collect runs env and agent forward for p.NumRolloutSteps steps,
// recording the trajectory in mem, and returns the flattened
// experience for this iteration.
//
// On the first call mem must be empty; Collect primes it from
// env.Reset(). On later calls mem must be full from the previous
// iteration; Collect carries the final transition over as the new
// first entry so that trajectories remain contiguous across
// iterations. A memory in any other state panics.
func Collect(env EnvStepper, agent AgentStepper, mem *Memory,
	p Params) Experience {
	if mem.Cap() != p.NumRolloutSteps+1 {
		panic(fmt.Sprintf("collect: illegal memory capacity \n\twant(%v)"+
			"\n\thave(%v)", p.NumRolloutSteps+1, mem.Cap()))
	}

	if mem.Empty() {
		envStep := env.Reset()
		mem.Store(envStep, agent.Step(envStep))
	} else if mem.Full() {
		mem.LastBecomesFirst()
	} else {
		panic("collect: memory not at an iteration boundary")
	}

	for !mem.Full() {
		_, agentStep := mem.Last()
		envStep := env.Step(agentStep)
		mem.Store(envStep, agent.Step(envStep))
	}

	values := mem.Values()
	advantages := GAE(mem.Rewards(), values, mem.Dones(),
		p.NumRolloutSteps, p.Discount, p.GAELambda)

	// Bootstrapped returns R_i = V_i + A_i for the gathered steps.
	returns := make([][]float64, p.NumRolloutSteps)
	for i := range returns {
		returns[i] = make([]float64, len(advantages[i]))
		for j := range returns[i] {
			returns[i][j] = values[i][j] + advantages[i][j]
		}
	}

	observations := make([]*mat.Dense, p.NumRolloutSteps)
	actions := make([]*mat.Dense, p.NumRolloutSteps)
	for i := 0; i < p.NumRolloutSteps; i++ {
		observations[i] = mem.EnvStep(i).Observations
		actions[i] = mem.AgentStep(i).Actions
	}

	return Experience{
		Observations: FlattenMatrices(observations),
		Actions:      FlattenMatrices(actions),
		Values:       FlattenScalars(values[:p.NumRolloutSteps]),
		Advantages:   FlattenScalars(advantages),
		Returns:      FlattenScalars(returns),
	}
}
