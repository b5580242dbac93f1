// Package agent defines the contract between a dialogue-management
// orchestrator and trainable dialogue policies.
package agent

import (
	"github.com/samuelfneumann/godial/dialogue"
)

// Turn is one system turn of a recorded dialogue: the dialogue state
// the system saw, the act it took, and the scalar reward it received.
type Turn struct {
	State  *dialogue.State
	Action []dialogue.Act
	Reward float64
}

// Dialogue is a complete recorded dialogue. Dialogues in a training
// batch may have differing lengths.
type Dialogue []Turn

// Policy is the interface a dialogue-management orchestrator drives.
// Save and Load persist and restore network parameters only: no
// optimizer state, no vocabulary, no exploration schedule. Callers
// must not rely on full-session resumability from a checkpoint.
type Policy interface {
	// NextAction selects the system acts to take in a dialogue state
	NextAction(*dialogue.State) ([]dialogue.Act, error)

	// Train performs a single parameter update over a batch of
	// complete dialogues
	Train(batch []Dialogue) error

	// Save persists the policy's network parameters
	Save(path string) error

	// Load restores network parameters saved by Save. Loading from a
	// missing path is a no-op.
	Load(path string) error
}

// WarmupPolicy hands out bootstrap actions during early exploration.
type WarmupPolicy interface {
	NextAction(*dialogue.State) []dialogue.Act
}
