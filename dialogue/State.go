package dialogue

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
)

// CanonicalVersion identifies the canonical-field list serialized by
// State.Canonical. Any change to canonicalState must bump this version,
// since it changes every state encoding.
const CanonicalVersion = 1

// State is a slot-filling dialogue state as maintained by a dialogue
// state tracker. Only the semantic fields participate in state
// encoding; the volatile fields below are per-turn bookkeeping that is
// excluded from Canonical so that two states differing only in those
// fields encode identically.
type State struct {
	SlotsFilled     map[string]string
	RequestedSlot   string
	SystemMadeOffer bool
	IsTerminal      bool
	TurnNumber      int
	DBMatchesRatio  float64
	LastSysActs     []Act
	UserActs        []Act

	// Volatile per-turn data, never encoded
	Context       map[string]string
	SlotEntropies map[string]float64
	DBResult      []map[string]string
	UUID          string
	UserGoal      map[string]string
	RawSlots      []string
	ItemInFocus   map[string]string
}

// canonicalState is the explicit, versioned field list serialized for
// state encoding. It enumerates exactly what the encoder sees: filled
// slot names (not values), the rounded database match percentage, and
// the compact stringified last acts.
type canonicalState struct {
	SlotsFilled     []string `json:"slots_filled"`
	RequestedSlot   string   `json:"requested_slot"`
	SystemMadeOffer bool     `json:"system_made_offer"`
	IsTerminal      bool     `json:"is_terminal_state"`
	TurnNumber      int      `json:"turn"`
	DBMatchesRatio  int      `json:"db_matches_ratio"`
	LastSysActs     string   `json:"last_sys_acts"`
	UserActs        string   `json:"user_acts"`
}

// Canonical serializes the state to its canonical string form. The
// serialization keeps only the names of filled slots, rounds the
// database match ratio to an integer percentage, and renders the last
// system and user acts with ActsToString. Field order is fixed by
// canonicalState, so the output is deterministic for a given state.
//
// The ratio is rounded in a single step, half away from zero, so for
// example 0.125 renders as 13. Any change to this rounding changes
// every state encoding and must bump CanonicalVersion.
func (s *State) Canonical() string {
	filled := make([]string, 0, len(s.SlotsFilled))
	for slot, value := range s.SlotsFilled {
		if value != "" {
			filled = append(filled, slot)
		}
	}
	sort.Strings(filled)

	var lastSys, userActs string
	if s.LastSysActs != nil {
		lastSys = ActsToString(s.LastSysActs, true)
		userActs = ActsToString(s.UserActs, false)
	}

	c := canonicalState{
		SlotsFilled:     filled,
		RequestedSlot:   s.RequestedSlot,
		SystemMadeOffer: s.SystemMadeOffer,
		IsTerminal:      s.IsTerminal,
		TurnNumber:      s.TurnNumber,
		DBMatchesRatio:  int(math.Round(s.DBMatchesRatio * 100)),
		LastSysActs:     lastSys,
		UserActs:        userActs,
	}

	b, err := json.Marshal(c)
	if err != nil {
		panic(fmt.Sprintf("canonical: could not serialize state: %v", err))
	}
	return string(b)
}
