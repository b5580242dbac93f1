package rollout

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// GAE computes generalized advantage estimates over one iteration's
// rollout. The tables are time-major with one column per parallel
// environment instance; rewards, values, and dones must each have
// numRolloutSteps + 1 rows (the bootstrap entry plus the gathered
// steps); anything else is a caller contract violation and panics.
//
// Iterating backward from the last gathered step, the TD residual is
//
//	δ_i = r_{i+1} + γ·V_{i+1}·(1 - done_{i+1}) - V_i
//
// and the advantage is
//
//	A_i = δ_i + γ·λ·A_{i+1}·(1 - done_{i+1})
//
// with A at the horizon implicitly zero. The returned table has
// numRolloutSteps rows.
func GAE(rewards, values, dones [][]float64, numRolloutSteps int,
	discount, lambda float64) [][]float64 {
	if len(values) != 1+numRolloutSteps {
		panic(fmt.Sprintf("gae: illegal number of value rows \n\twant(%v)"+
			"\n\thave(%v)", 1+numRolloutSteps, len(values)))
	}
	if len(rewards) != len(values) || len(dones) != len(values) {
		panic(fmt.Sprintf("gae: reward and done rows must match value "+
			"rows \n\twant(%v)\n\thave(%v, %v)", len(values), len(rewards),
			len(dones)))
	}

	numEnvs := len(values[0])
	advantages := make([][]float64, numRolloutSteps)

	next := mat.NewVecDense(numEnvs, nil)
	mask := mat.NewVecDense(numEnvs, nil)
	for i := numRolloutSteps - 1; i >= 0; i-- {
		for j := 0; j < numEnvs; j++ {
			mask.SetVec(j, 1-dones[i+1][j])
		}

		// δ_i = r_{i+1} + γ·V_{i+1}·mask - V_i
		delta := mat.NewVecDense(numEnvs, nil)
		delta.MulElemVec(mask, mat.NewVecDense(numEnvs, values[i+1]))
		delta.AddScaledVec(mat.NewVecDense(numEnvs, rewards[i+1]),
			discount, delta)
		delta.SubVec(delta, mat.NewVecDense(numEnvs, values[i]))

		// A_i = δ_i + γ·λ·A_{i+1}·mask
		row := mat.NewVecDense(numEnvs, nil)
		row.MulElemVec(mask, next)
		row.AddScaledVec(delta, discount*lambda, row)

		advantages[i] = copyFloats(row.RawVector().Data)
		next = row
	}
	return advantages
}
