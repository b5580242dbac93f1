package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// convLayer implements a 1-D convolution over a sequence of feature
// vectors. Inputs are rank-4 nodes shaped (batch, channels, 1, length),
// the layout Gorgonia's Conv1d expects.
type convLayer struct {
	filters *G.Node
	bias    *G.Node
	act     *Activation

	kernel int
	stride int
}

// newConvLayer adds a 1-D convolution with the given channel sizes,
// kernel width, and stride to g. No padding is used, so each layer
// shortens the sequence; see ConvOutLen.
func newConvLayer(g *G.ExprGraph, in, out, kernel, stride int,
	act *Activation, init G.InitWFn, name string) *convLayer {
	filters := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(out, in, 1, kernel),
		G.WithInit(init),
		G.WithName(fmt.Sprintf("%vFilters", name)),
	)
	bias := G.NewTensor(
		g,
		tensor.Float64,
		4,
		G.WithShape(1, out, 1, 1),
		G.WithInit(G.Zeroes()),
		G.WithName(fmt.Sprintf("%vBias", name)),
	)

	return &convLayer{
		filters: filters,
		bias:    bias,
		act:     act,
		kernel:  kernel,
		stride:  stride,
	}
}

// fwd adds the forward pass of the convLayer to the computational
// graph
func (c *convLayer) fwd(x *G.Node) (*G.Node, error) {
	x, err := G.Conv1d(x, c.filters, c.kernel, 0, c.stride, 1)
	if err != nil {
		return nil, fmt.Errorf("fwd: could not convolve: %v", err)
	}
	x = G.Must(G.BroadcastAdd(x, c.bias, nil, []byte{0, 2, 3}))
	if c.act.IsNil() || c.act.IsIdentity() {
		return x, nil
	}
	return c.act.fwd(x)
}

func (c *convLayer) Activation() *Activation {
	return c.act
}

func (c *convLayer) Bias() *G.Node {
	return c.bias
}

func (c *convLayer) Weights() *G.Node {
	return c.filters
}

// ConvOutLen returns the output sequence length of an unpadded 1-D
// convolution.
func ConvOutLen(in, kernel, stride int) int {
	if in < kernel {
		return 0
	}
	return (in-kernel)/stride + 1
}
