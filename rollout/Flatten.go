package rollout

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// FlattenScalars flattens a time-major scalar table into a single
// slice grouped by environment instance. Each row of x holds one value
// per parallel environment; the output lists environment 0's full
// trajectory first, then environment 1's, and so on. For example,
// [[a, b], [c, d]] flattens to [a, c, b, d].
func FlattenScalars(x [][]float64) []float64 {
	if len(x) == 0 {
		return nil
	}

	numSteps := len(x)
	numEnvs := len(x[0])
	out := make([]float64, 0, numSteps*numEnvs)
	for p := 0; p < numEnvs; p++ {
		for t := 0; t < numSteps; t++ {
			out = append(out, x[t][p])
		}
	}
	return out
}

// FlattenMatrices stacks a time-major sequence of (numEnvs, dim)
// matrices into a single (numSteps*numEnvs, dim) matrix with the same
// environment-major ordering as FlattenScalars: environment p's step t
// lands at row p*numSteps + t.
func FlattenMatrices(x []*mat.Dense) *mat.Dense {
	if len(x) == 0 {
		return nil
	}

	numSteps := len(x)
	numEnvs, dim := x[0].Dims()
	out := mat.NewDense(numSteps*numEnvs, dim, nil)
	for t := 0; t < numSteps; t++ {
		r, c := x[t].Dims()
		if r != numEnvs || c != dim {
			panic(fmt.Sprintf("flattenmatrices: inconsistent dimensions "+
				"\n\twant(%v x %v)\n\thave(%v x %v)", numEnvs, dim, r, c))
		}
		for p := 0; p < numEnvs; p++ {
			out.SetRow(p*numSteps+t, x[t].RawRowView(p))
		}
	}
	return out
}
