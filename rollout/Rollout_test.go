package rollout

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// scriptEnv is a deterministic two-instance environment: observations
// count the number of steps taken, rewards are 0 on reset and 1 on
// every step, and episodes never end.
type scriptEnv struct {
	n int
}

func (e *scriptEnv) obs() *mat.Dense {
	v := float64(e.n)
	return mat.NewDense(2, 1, []float64{v, v})
}

func (e *scriptEnv) Reset() EnvStep {
	e.n = 0
	return EnvStep{
		Observations: e.obs(),
		Rewards:      []float64{0, 0},
		Dones:        []float64{0, 0},
	}
}

func (e *scriptEnv) Step(AgentStep) EnvStep {
	e.n++
	return EnvStep{
		Observations: e.obs(),
		Rewards:      []float64{1, 1},
		Dones:        []float64{0, 0},
	}
}

// scriptAgent echoes observations as actions and estimates every state
// value as zero.
type scriptAgent struct{}

func (scriptAgent) Step(env EnvStep) AgentStep {
	return AgentStep{
		Actions: mat.DenseCopyOf(env.Observations),
		Values:  []float64{0, 0},
	}
}

func testParams(steps int) Params {
	p := DefaultParams()
	p.NumRolloutSteps = steps
	p.Discount = 0.9
	p.GAELambda = 0.5
	return p
}

func TestCollectFirstIteration(t *testing.T) {
	p := testParams(2)
	env := &scriptEnv{}
	mem := NewMemory(p.NumRolloutSteps)

	exp := Collect(env, scriptAgent{}, mem, p)

	if !mem.Full() {
		t.Fatal("collect: memory should be full after an iteration")
	}

	r, c := exp.Observations.Dims()
	if r != 4 || c != 1 {
		t.Fatalf("collect: observations: want(4 x 1) have(%v x %v)", r, c)
	}
	// Environment-major: instance 0's steps 0 and 1, then instance 1's.
	wantObs := []float64{0, 1, 0, 1}
	for i := range wantObs {
		if exp.Observations.At(i, 0) != wantObs[i] {
			t.Errorf("collect: observation row %v: want(%v) have(%v)", i,
				wantObs[i], exp.Observations.At(i, 0))
		}
	}

	// With zero values and unit rewards, A_1 = 1 and
	// A_0 = 1 + γλ·A_1 for both instances.
	a1 := 1.0
	a0 := 1.0 + p.Discount*p.GAELambda*a1
	wantAdv := []float64{a0, a1, a0, a1}
	for i := range wantAdv {
		if math.Abs(exp.Advantages[i]-wantAdv[i]) > 1e-12 {
			t.Errorf("collect: advantage %v: want(%v) have(%v)", i,
				wantAdv[i], exp.Advantages[i])
		}
		// Zero value estimates make the bootstrapped return equal the
		// advantage.
		if math.Abs(exp.Returns[i]-wantAdv[i]) > 1e-12 {
			t.Errorf("collect: return %v: want(%v) have(%v)", i,
				wantAdv[i], exp.Returns[i])
		}
		if exp.Values[i] != 0 {
			t.Errorf("collect: value %v: want(0) have(%v)", i, exp.Values[i])
		}
	}
}

func TestCollectCarriesLastTransition(t *testing.T) {
	p := testParams(2)
	env := &scriptEnv{}
	mem := NewMemory(p.NumRolloutSteps)

	Collect(env, scriptAgent{}, mem, p)
	exp := Collect(env, scriptAgent{}, mem, p)

	// The previous iteration ended after two env steps, so the new
	// iteration's first gathered observation is that step's.
	if exp.Observations.At(0, 0) != 2 {
		t.Errorf("collect: first observation of second iteration: want(2) "+
			"have(%v)", exp.Observations.At(0, 0))
	}
	if exp.Observations.At(1, 0) != 3 {
		t.Errorf("collect: second observation of second iteration: want(3) "+
			"have(%v)", exp.Observations.At(1, 0))
	}
}

func TestCollectPartialMemoryPanics(t *testing.T) {
	p := testParams(2)
	env := &scriptEnv{}
	mem := NewMemory(p.NumRolloutSteps)

	step := env.Reset()
	mem.Store(step, scriptAgent{}.Step(step))

	defer func() {
		if recover() == nil {
			t.Error("collect: expected a panic for a partially filled memory")
		}
	}()
	Collect(env, scriptAgent{}, mem, p)
}

func TestCollectCapacityMismatchPanics(t *testing.T) {
	p := testParams(2)

	defer func() {
		if recover() == nil {
			t.Error("collect: expected a panic for a mis-sized memory")
		}
	}()
	Collect(&scriptEnv{}, scriptAgent{}, NewMemory(5), p)
}

func TestLoss(t *testing.T) {
	p := DefaultParams()
	p.EntropyCoef = 0.01
	p.ValueLossCoef = 0.5

	logProbs := []float64{-1.0, -2.0}
	advantages := []float64{0.5, 1.5}
	values := []float64{0.2, 0.4}
	returns := []float64{1.2, 0.4}
	entropies := []float64{0.3, 0.5}

	got := Loss(logProbs, advantages, values, returns, entropies, p)

	policyLoss := 1.75
	entropy := 0.4
	valueLoss := 0.5
	want := policyLoss - p.EntropyCoef*entropy + p.ValueLossCoef*valueLoss
	if math.Abs(got-want) > 1e-12 {
		t.Errorf("loss: want(%v) have(%v)", want, got)
	}
}

func TestLossLengthMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("loss: expected a panic for mismatched lengths")
		}
	}()
	Loss([]float64{1}, []float64{1, 2}, []float64{1}, []float64{1},
		[]float64{1}, DefaultParams())
}

func TestParamsValidate(t *testing.T) {
	if err := DefaultParams().Validate(); err != nil {
		t.Errorf("validate: default params should be legal: %v", err)
	}

	illegal := []func(*Params){
		func(p *Params) { p.NumRolloutSteps = 0 },
		func(p *Params) { p.Discount = -0.1 },
		func(p *Params) { p.GAELambda = 1.1 },
		func(p *Params) { p.LearningRate = 0 },
	}
	for i, mutate := range illegal {
		p := DefaultParams()
		mutate(&p)
		if err := p.Validate(); err == nil {
			t.Errorf("validate: case %v: expected an error", i)
		}
	}
}
