package rollout

import (
	"math"
	"testing"
)

func TestGAEOneStep(t *testing.T) {
	discount := 0.9
	lambda := 0.95

	rewards := [][]float64{{0.0}, {1.0}}
	values := [][]float64{{0.5}, {0.25}}
	dones := [][]float64{{0.0}, {0.0}}

	adv := GAE(rewards, values, dones, 1, discount, lambda)
	if len(adv) != 1 || len(adv[0]) != 1 {
		t.Fatalf("gae: want(1 x 1) have(%v)", adv)
	}

	// One step means A_0 is just the TD residual.
	want := 1.0 + discount*0.25 - 0.5
	if math.Abs(adv[0][0]-want) > 1e-12 {
		t.Errorf("gae: want(%v) have(%v)", want, adv[0][0])
	}
}

func TestGAERecursion(t *testing.T) {
	discount := 0.99
	lambda := 0.95

	rewards := [][]float64{{0.0}, {1.0}, {-1.0}}
	values := [][]float64{{0.3}, {0.2}, {0.1}}
	dones := [][]float64{{0.0}, {0.0}, {0.0}}

	adv := GAE(rewards, values, dones, 2, discount, lambda)

	delta1 := -1.0 + discount*0.1 - 0.2
	delta0 := 1.0 + discount*0.2 - 0.3
	want0 := delta0 + discount*lambda*delta1

	if math.Abs(adv[1][0]-delta1) > 1e-12 {
		t.Errorf("gae: final advantage: want(%v) have(%v)", delta1, adv[1][0])
	}
	if math.Abs(adv[0][0]-want0) > 1e-12 {
		t.Errorf("gae: first advantage: want(%v) have(%v)", want0, adv[0][0])
	}
}

func TestGAEDoneMasksBootstrap(t *testing.T) {
	discount := 0.99
	lambda := 0.95

	rewards := [][]float64{{0.0}, {1.0}, {5.0}}
	values := [][]float64{{0.3}, {0.2}, {0.1}}
	dones := [][]float64{{0.0}, {1.0}, {0.0}}

	adv := GAE(rewards, values, dones, 2, discount, lambda)

	// The episode ends at entry 1, so neither V_1 nor A_1 flows into
	// A_0.
	want0 := 1.0 - 0.3
	if math.Abs(adv[0][0]-want0) > 1e-12 {
		t.Errorf("gae: done should cut the recursion: want(%v) have(%v)",
			want0, adv[0][0])
	}
}

func TestGAEParallelEnvsIndependent(t *testing.T) {
	discount := 0.9
	lambda := 0.5

	rewards := [][]float64{{0.0, 0.0}, {1.0, 2.0}}
	values := [][]float64{{0.5, 1.0}, {0.25, 0.5}}
	dones := [][]float64{{0.0, 0.0}, {0.0, 1.0}}

	adv := GAE(rewards, values, dones, 1, discount, lambda)

	want0 := 1.0 + discount*0.25 - 0.5
	want1 := 2.0 - 1.0
	if math.Abs(adv[0][0]-want0) > 1e-12 {
		t.Errorf("gae: env 0: want(%v) have(%v)", want0, adv[0][0])
	}
	if math.Abs(adv[0][1]-want1) > 1e-12 {
		t.Errorf("gae: env 1: want(%v) have(%v)", want1, adv[0][1])
	}
}

func TestGAEShapePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("gae: expected a panic for a wrong number of rows")
		}
	}()
	GAE([][]float64{{0.0}}, [][]float64{{0.0}}, [][]float64{{0.0}}, 2,
		0.99, 0.95)
}
