package rollout

import (
	"fmt"
)

// Memory is the fixed-capacity, index-addressed experience ring of the
// rollout engine. Its capacity is numRolloutSteps + 1: slot 0 holds
// the bootstrap entry carried over from the previous rollout's last
// step, followed by numRolloutSteps freshly gathered entries. A Memory
// is allocated once per training run; advantages and returns derived
// from it each iteration are not persisted across iterations.
type Memory struct {
	env        []EnvStep
	agent      []AgentStep
	currentIdx int
}

// NewMemory returns a Memory sized for rollouts of numRolloutSteps
// steps.
func NewMemory(numRolloutSteps int) *Memory {
	if numRolloutSteps < 1 {
		panic(fmt.Sprintf("newmemory: rollouts must have at least one "+
			"step, got %d", numRolloutSteps))
	}
	capacity := numRolloutSteps + 1
	return &Memory{
		env:   make([]EnvStep, capacity),
		agent: make([]AgentStep, capacity),
	}
}

// Cap returns the capacity of the memory.
func (m *Memory) Cap() int {
	return len(m.env)
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	return m.currentIdx
}

// Empty returns whether the memory holds no entries.
func (m *Memory) Empty() bool {
	return m.currentIdx == 0
}

// Full returns whether the memory is at capacity.
func (m *Memory) Full() bool {
	return m.currentIdx == len(m.env)
}

// Store appends a transition. Storing into a full Memory is a caller
// contract violation and panics.
func (m *Memory) Store(env EnvStep, agent AgentStep) {
	if m.Full() {
		panic("store: memory at capacity")
	}
	m.env[m.currentIdx] = env.clone()
	m.agent[m.currentIdx] = agent.clone()
	m.currentIdx++
}

// Last returns the most recently stored transition.
func (m *Memory) Last() (EnvStep, AgentStep) {
	if m.Empty() {
		panic("last: memory empty")
	}
	return m.env[m.currentIdx-1], m.agent[m.currentIdx-1]
}

// LastBecomesFirst starts a new iteration: the previous iteration's
// final entry is copied to slot 0 as the bootstrap entry, and the
// write index is reset after it. Panics unless the memory is full,
// i.e. at an iteration boundary.
func (m *Memory) LastBecomesFirst() {
	if !m.Full() {
		panic("lastbecomesfirst: memory not at an iteration boundary")
	}
	m.env[0] = m.env[len(m.env)-1]
	m.agent[0] = m.agent[len(m.agent)-1]
	m.currentIdx = 1
}

// EnvStep returns the stored environment step at index i.
func (m *Memory) EnvStep(i int) EnvStep {
	return m.env[i]
}

// AgentStep returns the stored agent step at index i.
func (m *Memory) AgentStep(i int) AgentStep {
	return m.agent[i]
}

// Rewards returns the stored rewards as a time-major table: one row
// per entry, one column per parallel environment instance.
func (m *Memory) Rewards() [][]float64 {
	out := make([][]float64, m.currentIdx)
	for i := 0; i < m.currentIdx; i++ {
		out[i] = copyFloats(m.env[i].Rewards)
	}
	return out
}

// Dones returns the stored done flags as a time-major table.
func (m *Memory) Dones() [][]float64 {
	out := make([][]float64, m.currentIdx)
	for i := 0; i < m.currentIdx; i++ {
		out[i] = copyFloats(m.env[i].Dones)
	}
	return out
}

// Values returns the stored value estimates as a time-major table.
func (m *Memory) Values() [][]float64 {
	out := make([][]float64, m.currentIdx)
	for i := 0; i < m.currentIdx; i++ {
		out[i] = copyFloats(m.agent[i].Values)
	}
	return out
}
