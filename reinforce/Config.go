// Package reinforce implements the episodic REINFORCE trainer for
// task-oriented dialogue policies: ε-greedy warmup delegation with a
// decaying exploration rate, per-dialogue discounted returns, and a
// policy-gradient update of the convolutional policy network.
package reinforce

import (
	"fmt"

	"github.com/samuelfneumann/godial/initwfn"
)

// Config implements a configuration of the REINFORCE dialogue policy.
type Config struct {
	// Exploration schedule: ε starts at Epsilon and decays
	// multiplicatively by EpsilonDecay after every Train call until
	// EpsilonMin
	Epsilon      float64
	EpsilonDecay float64
	EpsilonMin   float64

	// Discount factor for per-dialogue returns
	Gamma float64

	// Adam step size
	LearningRate float64

	// Policy network architecture
	EmbedDim  int
	HiddenDim int
	MaxSeqLen int

	// Weight initializer for the policy network. If nil, Glorot
	// Normal with gain 1 is used.
	InitWFn *initwfn.InitWFn

	Seed uint64
}

// DefaultConfig returns the default REINFORCE configuration.
func DefaultConfig() Config {
	return Config{
		Epsilon:      0.95,
		EpsilonDecay: 0.995,
		EpsilonMin:   0.05,
		Gamma:        0.99,
		LearningRate: 1e-2,
		EmbedDim:     32,
		HiddenDim:    64,
		MaxSeqLen:    64,
		Seed:         1,
	}
}

// Validate returns an error if the configuration describes an invalid
// policy.
func (c Config) Validate() error {
	if c.Epsilon < 0 || c.Epsilon > 1 {
		return fmt.Errorf("validate: epsilon must be in [0, 1] \n\thave(%v)",
			c.Epsilon)
	}
	if c.EpsilonDecay <= 0 || c.EpsilonDecay > 1 {
		return fmt.Errorf("validate: epsilon decay must be in (0, 1] "+
			"\n\thave(%v)", c.EpsilonDecay)
	}
	if c.EpsilonMin < 0 || c.EpsilonMin > c.Epsilon {
		return fmt.Errorf("validate: epsilon floor must be in [0, ε₀] "+
			"\n\thave(%v)", c.EpsilonMin)
	}
	if c.Gamma < 0 || c.Gamma > 1 {
		return fmt.Errorf("validate: gamma must be in [0, 1] \n\thave(%v)",
			c.Gamma)
	}
	if c.LearningRate <= 0 {
		return fmt.Errorf("validate: learning rate must be positive "+
			"\n\thave(%v)", c.LearningRate)
	}
	if c.EmbedDim < 1 || c.HiddenDim < 1 || c.MaxSeqLen < 1 {
		return fmt.Errorf("validate: network dimensions must be positive "+
			"\n\thave(%v, %v, %v)", c.EmbedDim, c.HiddenDim, c.MaxSeqLen)
	}
	return nil
}
