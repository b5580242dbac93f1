package network

import (
	"fmt"

	G "gorgonia.org/gorgonia"
)

// Legal activation kinds
const (
	actReLU     = "relu"
	actTanH     = "tanh"
	actIdentity = "identity"
	actNil      = "nil"
)

// Activation selects the nonlinearity a layer applies after its affine
// transform. Activations are keyed by name rather than by function
// value so that they gob-serialize into network checkpoints; construct
// them through ReLU, TanH, Identity, or Nil.
type Activation struct {
	kind string
}

// ReLU returns a rectified linear *Activation
func ReLU() *Activation {
	return &Activation{kind: actReLU}
}

// TanH returns a tanh *Activation
func TanH() *Activation {
	return &Activation{kind: actTanH}
}

// Identity returns an identity *Activation
func Identity() *Activation {
	return &Activation{kind: actIdentity}
}

// Nil returns a nil *Activation
func Nil() *Activation {
	return &Activation{kind: actNil}
}

// fwd applies the activation to x on x's graph
func (a *Activation) fwd(x *G.Node) (*G.Node, error) {
	switch a.kind {
	case actReLU:
		return G.Rectify(x)
	case actTanH:
		return G.Tanh(x)
	case actIdentity, actNil:
		return x, nil
	}
	return nil, fmt.Errorf("fwd: illegal activation %q", a.kind)
}

// String implements the fmt.Stringer interface
func (a *Activation) String() string {
	return a.kind
}

// IsIdentity returns whether the Activation is the identity function
func (a *Activation) IsIdentity() bool {
	return a.kind == actIdentity
}

// IsNil returns whether the Activation is nil
func (a *Activation) IsNil() bool {
	return a.kind == actNil
}

// GobEncode implements the gob.GobEncoder interface
func (a *Activation) GobEncode() ([]byte, error) {
	return []byte(a.kind), nil
}

// GobDecode implements the gob.GobDecoder interface
func (a *Activation) GobDecode(encoded []byte) error {
	kind := string(encoded)
	switch kind {
	case actReLU, actTanH, actIdentity, actNil:
		a.kind = kind
		return nil
	}
	return fmt.Errorf("gobdecode: illegal activation %q", kind)
}
