package domain

import (
	"testing"

	"golang.org/x/exp/rand"
)

type testOntology struct{}

func (testOntology) InformableSlots() []string {
	return []string{"area", "food", "pricerange"}
}

func (testOntology) RequestableSlots() []string {
	return []string{"area", "food", "pricerange", "addr", "phone"}
}

func (testOntology) SystemRequestableSlots() []string {
	return []string{"area", "food", "pricerange"}
}

func TestNActions(t *testing.T) {
	dom := New(testOntology{})

	want := len(dstc2ActsSys) + 3 + 5
	if dom.NActions() != want {
		t.Errorf("nactions: want(%v) have(%v)", want, dom.NActions())
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	dom := New(testOntology{})

	acts := dom.SystemActs()
	acts[0] = "mutated"
	if dom.SystemActs()[0] == "mutated" {
		t.Error("systemacts: accessor should return a copy")
	}
}

func TestIsParametrized(t *testing.T) {
	dom := New(testOntology{})

	for _, intent := range []string{"inform", "request"} {
		if !dom.IsParametrized(intent) {
			t.Errorf("isparametrized: %v should be parametrized", intent)
		}
	}
	for _, intent := range []string{"bye", "offer", "welcomemsg"} {
		if dom.IsParametrized(intent) {
			t.Errorf("isparametrized: %v should not be parametrized", intent)
		}
	}
}

func TestRandomSystemAct(t *testing.T) {
	dom := New(testOntology{})
	rng := rand.New(rand.NewSource(13))

	requestable := make(map[string]bool)
	for _, s := range dom.RequestableSlots() {
		requestable[s] = true
	}
	sysRequestable := make(map[string]bool)
	for _, s := range dom.SystemRequestableSlots() {
		sysRequestable[s] = true
	}

	for i := 0; i < 100; i++ {
		acts := RandomSystemAct(dom, rng)
		if len(acts) != 1 {
			t.Fatalf("randomsystemact: want(1 act) have(%v)", len(acts))
		}

		act := acts[0]
		switch act.Intent {
		case "inform":
			for _, slot := range act.Slots() {
				if !requestable[slot] {
					t.Errorf("randomsystemact: inform slot %v not "+
						"requestable", slot)
				}
			}
		case "request":
			for _, slot := range act.Slots() {
				if !sysRequestable[slot] {
					t.Errorf("randomsystemact: request slot %v not "+
						"system requestable", slot)
				}
			}
		default:
			if dom.IsParametrized(act.Intent) {
				t.Errorf("randomsystemact: unexpected parametrized "+
					"intent %v", act.Intent)
			}
			if len(act.Params) != 0 {
				t.Errorf("randomsystemact: %v should carry no "+
					"parameters", act.Intent)
			}
		}
	}
}
