// Package network implements the Gorgonia neural networks used by the
// dialogue policy: layer primitives and the convolutional policy
// network over encoded dialogue states.
package network

import (
	G "gorgonia.org/gorgonia"
)

// NeuralNet is a neural network on a Gorgonia graph. Networks may have
// more than one output head; Prediction and Output return one entry
// per head.
type NeuralNet interface {
	// Graph returns the computational graph of the network
	Graph() *G.ExprGraph

	// CloneWithBatch clones the network onto a new graph with a new
	// input batch size
	CloneWithBatch(int) (NeuralNet, error)

	// BatchSize returns the number of samples in an input batch
	BatchSize() int

	// Features returns the number of input features per sample
	Features() int

	// SetInput sets the value of the input node before running a VM
	SetInput([]float64) error

	// Set sets the weights of the network to those of another network
	// of identical architecture
	Set(NeuralNet) error

	// Learnables returns the learnable nodes of the network
	Learnables() G.Nodes

	// Model returns the learnable nodes with their gradients
	Model() []G.ValueGrad

	// Output returns the last computed value of each output head
	Output() []G.Value

	// Prediction returns the graph node of each output head
	Prediction() []*G.Node
}

// Set sets the weights of dest to those of source.
func Set(dest, source NeuralNet) error {
	return dest.Set(source)
}

// Layer is a single layer of a NeuralNet.
type Layer interface {
	fwd(*G.Node) (*G.Node, error)

	// Weights returns the weight node of the layer
	Weights() *G.Node

	// Bias returns the bias node of the layer, possibly nil
	Bias() *G.Node

	// Activation returns the layer's activation function
	Activation() *Activation
}
