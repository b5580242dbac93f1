package encoding

import (
	"fmt"
	"sort"

	"github.com/samuelfneumann/godial/dialogue"
	"github.com/samuelfneumann/godial/domain"
)

// ActionCodec is the bidirectional mapping between dialogue acts and
// their numeric encoding: a categorical intent id and a multi-hot
// slot-presence vector. The codec is fit once, at construction, over
// the union of all possible intents and all possible slots in the
// domain schema, never over observed data, so encodings are stable
// across a training run.
type ActionCodec struct {
	intents  []string
	intentID map[string]int

	slots  []string
	slotID map[string]int

	paramIntents map[string]bool
}

// NewActionCodec returns an ActionCodec fit over the given domain.
func NewActionCodec(dom *domain.Domain) *ActionCodec {
	intents := dedupeSorted(append(dom.ActsParams(), dom.SystemActs()...))
	slots := dedupeSorted(append(dom.RequestableSlots(),
		dom.SystemRequestableSlots()...))

	intentID := make(map[string]int, len(intents))
	for i, intent := range intents {
		intentID[intent] = i
	}
	slotID := make(map[string]int, len(slots))
	for i, slot := range slots {
		slotID[slot] = i
	}

	paramIntents := make(map[string]bool)
	for _, intent := range dom.ActsParams() {
		paramIntents[intent] = true
	}

	return &ActionCodec{
		intents:      intents,
		intentID:     intentID,
		slots:        slots,
		slotID:       slotID,
		paramIntents: paramIntents,
	}
}

// NumIntents returns the number of encodable intents.
func (c *ActionCodec) NumIntents() int {
	return len(c.intents)
}

// NumSlots returns the length of the multi-hot slot vector.
func (c *ActionCodec) NumSlots() int {
	return len(c.slots)
}

// IsParametrized reports whether acts with the given intent carry slot
// parameters.
func (c *ActionCodec) IsParametrized(intent string) bool {
	return c.paramIntents[intent]
}

// Encode returns the categorical id of intent and the multi-hot vector
// of slots. Slots outside the fitted vocabulary are silently dropped
// from the multi-hot vector.
func (c *ActionCodec) Encode(intent string, slots []string) (int,
	[]float64, error) {
	id, ok := c.intentID[intent]
	if !ok {
		return 0, nil, fmt.Errorf("encode: unknown intent %q", intent)
	}

	hot := make([]float64, len(c.slots))
	for _, slot := range slots {
		if i, ok := c.slotID[slot]; ok {
			hot[i] = 1.0
		}
	}
	return id, hot, nil
}

// EncodeActs encodes the single representative act of acts. A dialogue
// manager may bundle an offer with several informs; such bundles are
// truncated to their first act before encoding. After truncation
// exactly one act must remain: anything else is a caller contract
// violation and panics.
//
// Slots are taken from the act's parameters only when its intent is in
// the domain's parametrized set.
func (c *ActionCodec) EncodeActs(acts []dialogue.Act) (int, []float64,
	error) {
	for _, act := range acts {
		if act.Intent == "offer" {
			acts = acts[:1]
			break
		}
	}
	if len(acts) != 1 {
		panic(fmt.Sprintf("encodeacts: expected exactly one act, got %d",
			len(acts)))
	}

	act := acts[0]
	var slots []string
	if c.paramIntents[act.Intent] {
		slots = act.Slots()
	}
	return c.Encode(act.Intent, slots)
}

// Decode inverts Encode: it maps an intent id and a multi-hot slot
// vector back to a dialogue act. Decoding is lossless for any vector
// actually produced by Encode on valid domain values; behaviour on
// arbitrary vectors is implementation-defined.
func (c *ActionCodec) Decode(intentID int, slotHot []float64) []dialogue.Act {
	intent := c.intents[intentID]

	var params []dialogue.ActItem
	if c.paramIntents[intent] {
		for i, v := range slotHot {
			if i >= len(c.slots) {
				break
			}
			if v > 0.5 {
				params = append(params,
					dialogue.ActItem{Slot: c.slots[i], Op: dialogue.EQ})
			}
		}
	}
	return []dialogue.Act{{Intent: intent, Params: params}}
}

func dedupeSorted(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}
