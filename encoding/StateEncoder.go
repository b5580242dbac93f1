package encoding

import (
	"github.com/samuelfneumann/godial/dialogue"
	"github.com/samuelfneumann/godial/domain"
)

// DefaultMaxSeqLen is the default bound on encoded state length.
const DefaultMaxSeqLen = 64

// StateEncoder maps dialogue states to bounded-length sequences of
// token ids over a fixed vocabulary. The vocabulary is built once at
// construction; see NewVocab.
type StateEncoder struct {
	vocab  *Vocab
	maxLen int
}

// NewStateEncoder returns a StateEncoder for the given domain. If
// maxLen <= 0 the default bound is used.
func NewStateEncoder(dom *domain.Domain, maxLen int) *StateEncoder {
	if maxLen <= 0 {
		maxLen = DefaultMaxSeqLen
	}
	return &StateEncoder{
		vocab:  NewVocab(dom),
		maxLen: maxLen,
	}
}

// Encode serializes the state to its canonical form, tokenizes it, and
// maps the tokens through the vocabulary. Tokens absent from the
// vocabulary are silently dropped, not mapped to an unknown-token id.
// The result has length at most MaxLen and may be empty.
func (e *StateEncoder) Encode(state *dialogue.State) []int {
	ids := make([]int, 0, e.maxLen)
	for _, token := range Tokenize(state.Canonical()) {
		id, ok := e.vocab.ID(token)
		if !ok {
			continue
		}
		ids = append(ids, id)
		if len(ids) == e.maxLen {
			break
		}
	}
	return ids
}

// Vocab returns the encoder's fixed vocabulary.
func (e *StateEncoder) Vocab() *Vocab {
	return e.vocab
}

// VocabSize returns the size of the encoder's vocabulary.
func (e *StateEncoder) VocabSize() int {
	return e.vocab.Len()
}

// MaxLen returns the fixed maximum sequence length.
func (e *StateEncoder) MaxLen() int {
	return e.maxLen
}
