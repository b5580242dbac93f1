// Package dialogue defines the dialogue act and dialogue state value
// types shared by the policy learning components.
package dialogue

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Operator is the comparison operator of an ActItem.
type Operator int

// Available comparison operators
const (
	EQ Operator = iota
	NE
	LT
	GT
)

// String implements the fmt.Stringer interface
func (o Operator) String() string {
	switch o {
	case EQ:
		return "="
	case NE:
		return "!="
	case LT:
		return "<"
	case GT:
		return ">"
	default:
		return "?"
	}
}

// ActItem is a single (slot, operator, value) parameter of a dialogue
// act.
type ActItem struct {
	Slot  string
	Op    Operator
	Value string
}

// Act is a dialogue act: an intent together with its slot parameters.
// Acts whose intent takes no parameters have a nil or empty Params.
type Act struct {
	Intent string
	Params []ActItem
}

// NewAct returns a new Act with the given intent and parameters.
func NewAct(intent string, params ...ActItem) Act {
	return Act{Intent: intent, Params: params}
}

// Slots returns the slot names referenced by the act's parameters in
// order.
func (a Act) Slots() []string {
	slots := make([]string, len(a.Params))
	for i, p := range a.Params {
		slots[i] = p.Slot
	}
	return slots
}

// String implements the fmt.Stringer interface
func (a Act) String() string {
	return fmt.Sprintf("Act(%v, %v)", a.Intent, a.Slots())
}

// ActsToString renders a list of acts in the compact form used during
// state canonicalization: a sys/usr marker followed by the
// [intent, [slots]] rendering of each act, joined by semicolons. Slot
// values are deliberately omitted so that states differing only in
// slot values canonicalize identically.
func ActsToString(acts []Act, system bool) string {
	prefix := "usr"
	if system {
		prefix = "sys"
	}

	rendered := make([]string, len(acts))
	for i, act := range acts {
		slots := act.Slots()
		if slots == nil {
			slots = []string{}
		}
		b, err := json.Marshal([]interface{}{act.Intent, slots})
		if err != nil {
			panic(fmt.Sprintf("actstostring: could not render act: %v", err))
		}
		rendered[i] = string(b)
	}
	return prefix + strings.Join(rendered, ";")
}
