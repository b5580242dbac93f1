package rollout

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	G "gorgonia.org/gorgonia"
)

// Loss computes the synchronous advantage actor-critic objective
//
//	L = -E[logπ·A] - cₑ·E[H] + cᵥ·E[(R - V)²]
//
// over flattened, environment-major rollout data. All slices must have
// the same length.
func Loss(logProbs, advantages, values, returns, entropies []float64,
	p Params) float64 {
	n := len(logProbs)
	if len(advantages) != n || len(values) != n || len(returns) != n ||
		len(entropies) != n {
		panic(fmt.Sprintf("loss: inconsistent lengths \n\twant(%v)"+
			"\n\thave(%v, %v, %v, %v)", n, len(advantages), len(values),
			len(returns), len(entropies)))
	}

	policyLoss := -floats.Dot(logProbs, advantages) / float64(n)
	entropy := stat.Mean(entropies, nil)

	valueLoss := 0.0
	for i := range values {
		diff := returns[i] - values[i]
		valueLoss += diff * diff
	}
	valueLoss /= float64(n)

	return policyLoss - p.EntropyCoef*entropy + p.ValueLossCoef*valueLoss
}

// LossNode builds the actor-critic objective as a computation graph
// node so that gradients can be taken with respect to the policy and
// value networks that produced logProbs, values, and entropies.
// Advantages and returns should be constant inputs.
func LossNode(logProbs, advantages, values, returns,
	entropies *G.Node, p Params) (*G.Node, error) {
	prod, err := G.HadamardProd(logProbs, advantages)
	if err != nil {
		return nil, fmt.Errorf("lossnode: could not weight log "+
			"probabilities: %v", err)
	}
	policyLoss := G.Must(G.Neg(G.Must(G.Mean(prod))))

	entropy := G.Must(G.Mean(entropies))

	diff, err := G.Sub(returns, values)
	if err != nil {
		return nil, fmt.Errorf("lossnode: could not compute value "+
			"error: %v", err)
	}
	valueLoss := G.Must(G.Mean(G.Must(G.Square(diff))))

	g := logProbs.Graph()
	entCoef := G.NewConstant(p.EntropyCoef, G.In(g))
	vCoef := G.NewConstant(p.ValueLossCoef, G.In(g))

	loss := G.Must(G.Sub(policyLoss, G.Must(G.Mul(entCoef, entropy))))
	loss = G.Must(G.Add(loss, G.Must(G.Mul(vCoef, valueLoss))))
	return loss, nil
}
