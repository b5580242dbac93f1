package network

import (
	"bytes"
	"encoding/gob"
	"math"
	"testing"

	G "gorgonia.org/gorgonia"
)

const (
	testVocab   = 20
	testSeqLen  = 32
	testIntents = 5
	testSlots   = 3
	testEmbed   = 8
	testHidden  = 16
)

func newTestPolicy(t *testing.T, batch int, act *Activation) *ConvPolicy {
	t.Helper()
	p, err := NewConvPolicy(testVocab, testSeqLen, batch, testIntents,
		testSlots, testEmbed, testHidden, act, G.NewGraph(), G.GlorotN(1.0))
	if err != nil {
		t.Fatalf("newconvpolicy: %v", err)
	}
	return p
}

func run(t *testing.T, p *ConvPolicy, tokens [][]int) ([]float64, []float64) {
	t.Helper()
	if err := p.SetTokens(tokens); err != nil {
		t.Fatalf("settokens: %v", err)
	}

	vm := G.NewTapeMachine(p.Graph())
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		t.Fatalf("runall: %v", err)
	}

	outputs := p.Output()
	intents := append([]float64(nil), outputs[0].Data().([]float64)...)
	slots := append([]float64(nil), outputs[1].Data().([]float64)...)
	return intents, slots
}

func TestConvPolicyOutputDistributions(t *testing.T) {
	p := newTestPolicy(t, 2, ReLU())

	intents, slots := run(t, p, [][]int{
		{1, 2, 3, 4, 5},
		{6, 7, 8},
	})

	if len(intents) != 2*testIntents {
		t.Fatalf("output: intent length: want(%v) have(%v)", 2*testIntents,
			len(intents))
	}
	if len(slots) != 2*testSlots {
		t.Fatalf("output: slot length: want(%v) have(%v)", 2*testSlots,
			len(slots))
	}

	for b := 0; b < 2; b++ {
		sum := 0.0
		for i := 0; i < testIntents; i++ {
			prob := intents[b*testIntents+i]
			if prob < 0 || prob > 1 {
				t.Errorf("output: intent prob out of range: %v", prob)
			}
			sum += prob
		}
		if math.Abs(sum-1.0) > 1e-5 {
			t.Errorf("output: sample %v intent probs should sum to 1: "+
				"have(%v)", b, sum)
		}
	}

	for _, prob := range slots {
		if prob < 0 || prob > 1 {
			t.Errorf("output: slot prob out of range: %v", prob)
		}
	}
}

func TestConvPolicyDeterministic(t *testing.T) {
	p := newTestPolicy(t, 1, ReLU())

	first, _ := run(t, p, [][]int{{3, 4, 5}})
	again, _ := run(t, p, [][]int{{3, 4, 5}})

	for i := range first {
		if first[i] != again[i] {
			t.Fatalf("output: intent probs changed between runs: want(%v) "+
				"have(%v)", first, again)
		}
	}
}

func TestConvPolicySetTokensRejectsBadInput(t *testing.T) {
	p := newTestPolicy(t, 1, ReLU())

	if err := p.SetTokens([][]int{{1}, {2}}); err == nil {
		t.Error("settokens: expected an error for a wrong batch size")
	}
	if err := p.SetTokens([][]int{{testVocab}}); err == nil {
		t.Error("settokens: expected an error for an out-of-range id")
	}
	if err := p.SetTokens([][]int{{-1}}); err == nil {
		t.Error("settokens: expected an error for a negative id")
	}
}

func TestConvPolicyCloneWithBatch(t *testing.T) {
	p := newTestPolicy(t, 1, ReLU())

	clone, err := p.CloneWithBatch(3)
	if err != nil {
		t.Fatalf("clonewithbatch: %v", err)
	}
	if clone.BatchSize() != 3 {
		t.Errorf("clonewithbatch: batch size: want(3) have(%v)",
			clone.BatchSize())
	}
	if clone.Graph() == p.Graph() {
		t.Error("clonewithbatch: clone should live on its own graph")
	}

	// The same single sequence must produce identical outputs on the
	// original and a same-batch clone.
	same, err := p.CloneWithBatch(1)
	if err != nil {
		t.Fatalf("clonewithbatch: %v", err)
	}

	tokens := [][]int{{9, 10, 11, 12}}
	wantIntents, wantSlots := run(t, p, tokens)
	haveIntents, haveSlots := run(t, same.(*ConvPolicy), tokens)

	for i := range wantIntents {
		if math.Abs(wantIntents[i]-haveIntents[i]) > 1e-12 {
			t.Fatalf("clonewithbatch: intent probs diverge: want(%v) "+
				"have(%v)", wantIntents, haveIntents)
		}
	}
	for i := range wantSlots {
		if math.Abs(wantSlots[i]-haveSlots[i]) > 1e-12 {
			t.Fatalf("clonewithbatch: slot probs diverge: want(%v) have(%v)",
				wantSlots, haveSlots)
		}
	}
}

func TestConvPolicyGobRoundTrip(t *testing.T) {
	p := newTestPolicy(t, 1, ReLU())
	tokens := [][]int{{2, 4, 6, 8}}
	wantIntents, wantSlots := run(t, p, tokens)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		t.Fatalf("encode: %v", err)
	}

	loaded := new(ConvPolicy)
	if err := gob.NewDecoder(&buf).Decode(loaded); err != nil {
		t.Fatalf("decode: %v", err)
	}

	haveIntents, haveSlots := run(t, loaded, tokens)
	for i := range wantIntents {
		if math.Abs(wantIntents[i]-haveIntents[i]) > 1e-12 {
			t.Fatalf("decode: intent probs diverge: want(%v) have(%v)",
				wantIntents, haveIntents)
		}
	}
	for i := range wantSlots {
		if math.Abs(wantSlots[i]-haveSlots[i]) > 1e-12 {
			t.Fatalf("decode: slot probs diverge: want(%v) have(%v)",
				wantSlots, haveSlots)
		}
	}
}

func TestConvOutLen(t *testing.T) {
	cases := []struct {
		in, kernel, stride, want int
	}{
		{32, 3, 1, 30},
		{30, 3, 2, 14},
		{14, 3, 2, 6},
		{6, 3, 1, 4},
		{2, 3, 1, 0},
	}
	for _, c := range cases {
		if got := ConvOutLen(c.in, c.kernel, c.stride); got != c.want {
			t.Errorf("convoutlen(%v, %v, %v): want(%v) have(%v)", c.in,
				c.kernel, c.stride, c.want, got)
		}
	}
}

func TestNewConvPolicySequenceTooShort(t *testing.T) {
	if _, err := NewConvPolicy(testVocab, 8, 1, testIntents, testSlots,
		testEmbed, testHidden, ReLU(), G.NewGraph(), G.Zeroes()); err == nil {
		t.Error("newconvpolicy: expected an error for a short sequence")
	}
}

func TestNewConvPolicyRequiresActivation(t *testing.T) {
	if _, err := NewConvPolicy(testVocab, testSeqLen, 1, testIntents,
		testSlots, testEmbed, testHidden, nil, G.NewGraph(),
		G.Zeroes()); err == nil {
		t.Error("newconvpolicy: expected an error for a nil activation")
	}
}

// The checkpoint must restore the hidden activation along with the
// weights, so a tanh network round-trips to a tanh network.
func TestConvPolicyGobKeepsActivation(t *testing.T) {
	p := newTestPolicy(t, 1, TanH())
	tokens := [][]int{{1, 3, 5, 7}}
	wantIntents, wantSlots := run(t, p, tokens)

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		t.Fatalf("encode: %v", err)
	}

	loaded := new(ConvPolicy)
	if err := gob.NewDecoder(&buf).Decode(loaded); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if loaded.act.String() != "tanh" {
		t.Fatalf("decode: activation: want(tanh) have(%v)", loaded.act)
	}

	haveIntents, haveSlots := run(t, loaded, tokens)
	for i := range wantIntents {
		if math.Abs(wantIntents[i]-haveIntents[i]) > 1e-12 {
			t.Fatalf("decode: intent probs diverge: want(%v) have(%v)",
				wantIntents, haveIntents)
		}
	}
	for i := range wantSlots {
		if math.Abs(wantSlots[i]-haveSlots[i]) > 1e-12 {
			t.Fatalf("decode: slot probs diverge: want(%v) have(%v)",
				wantSlots, haveSlots)
		}
	}
}

func TestActivationGobRejectsUnknownKind(t *testing.T) {
	a := new(Activation)
	if err := a.GobDecode([]byte("elu")); err == nil {
		t.Error("gobdecode: expected an error for an unknown activation")
	}
}
