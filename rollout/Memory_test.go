package rollout

import (
	"testing"

	"gonum.org/v1/gonum/mat"
)

func testEnvStep(reward float64) EnvStep {
	return EnvStep{
		Observations: mat.NewDense(1, 2, []float64{reward, reward}),
		Rewards:      []float64{reward},
		Dones:        []float64{0},
	}
}

func testAgentStep(value float64) AgentStep {
	return AgentStep{
		Actions: mat.NewDense(1, 1, []float64{value}),
		Values:  []float64{value},
	}
}

func TestMemoryLifecycle(t *testing.T) {
	m := NewMemory(2)

	if m.Cap() != 3 {
		t.Fatalf("cap: want(3) have(%v)", m.Cap())
	}
	if !m.Empty() || m.Full() {
		t.Fatal("new memory should be empty and not full")
	}

	for i := 0; i < 3; i++ {
		m.Store(testEnvStep(float64(i)), testAgentStep(float64(i)*10))
	}
	if !m.Full() || m.Len() != 3 {
		t.Fatalf("store: memory should be full: len have(%v)", m.Len())
	}

	env, agent := m.Last()
	if env.Rewards[0] != 2 || agent.Values[0] != 20 {
		t.Errorf("last: want(reward 2, value 20) have(%v, %v)",
			env.Rewards[0], agent.Values[0])
	}

	m.LastBecomesFirst()
	if m.Len() != 1 {
		t.Fatalf("lastbecomesfirst: len: want(1) have(%v)", m.Len())
	}
	if m.EnvStep(0).Rewards[0] != 2 {
		t.Errorf("lastbecomesfirst: slot 0 reward: want(2) have(%v)",
			m.EnvStep(0).Rewards[0])
	}

	m.Store(testEnvStep(3), testAgentStep(30))
	m.Store(testEnvStep(4), testAgentStep(40))
	rewards := m.Rewards()
	want := []float64{2, 3, 4}
	for i := range want {
		if rewards[i][0] != want[i] {
			t.Errorf("rewards: entry %v: want(%v) have(%v)", i, want[i],
				rewards[i][0])
		}
	}
}

func TestMemoryStoreClones(t *testing.T) {
	m := NewMemory(1)

	env := testEnvStep(1)
	m.Store(env, testAgentStep(1))

	env.Rewards[0] = 99
	env.Observations.Set(0, 0, 99)

	if m.EnvStep(0).Rewards[0] != 1 {
		t.Error("store: rewards should be deep copied")
	}
	if m.EnvStep(0).Observations.At(0, 0) != 1 {
		t.Error("store: observations should be deep copied")
	}
}

func TestMemoryStoreFullPanics(t *testing.T) {
	m := NewMemory(1)
	m.Store(testEnvStep(0), testAgentStep(0))
	m.Store(testEnvStep(1), testAgentStep(1))

	defer func() {
		if recover() == nil {
			t.Error("store: expected a panic when at capacity")
		}
	}()
	m.Store(testEnvStep(2), testAgentStep(2))
}

func TestMemoryLastBecomesFirstRequiresFull(t *testing.T) {
	m := NewMemory(2)
	m.Store(testEnvStep(0), testAgentStep(0))

	defer func() {
		if recover() == nil {
			t.Error("lastbecomesfirst: expected a panic when not full")
		}
	}()
	m.LastBecomesFirst()
}

func TestNewMemoryRequiresPositiveSteps(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("newmemory: expected a panic for zero steps")
		}
	}()
	NewMemory(0)
}
