// Package encoding implements the bridge between structured dialogue
// data and fixed-size numeric tensors: the state tokenizer and
// vocabulary, the state encoder, and the action codec.
package encoding

import (
	"regexp"
	"strconv"

	"github.com/samuelfneumann/godial/dialogue"
	"github.com/samuelfneumann/godial/domain"
)

// tokenPattern matches words of at least two characters or any single
// non-space character.
var tokenPattern = regexp.MustCompile(`\b\w\w+\b|\S`)

// Tokenize splits text into tokens. Stray quote tokens produced by
// serialized state strings are dropped.
func Tokenize(text string) []string {
	matches := tokenPattern.FindAllString(text, -1)
	tokens := make([]string, 0, len(matches))
	for _, m := range matches {
		if m != `"` {
			tokens = append(tokens, m)
		}
	}
	return tokens
}

// padID is the token id reserved for sequence padding. It never maps
// to a vocabulary string.
const padID = 0

// Vocab maps tokens to stable integer ids. A Vocab is fit once, at
// construction, over the full domain schema rather than over observed
// data, so ids are stable across a whole training run.
type Vocab struct {
	stoi map[string]int
	itos []string
}

// NewVocab builds the fixed vocabulary for a domain: every schema
// string, the digits 0-9 (for numeric fields serialized into state
// strings), and the structural tokens of an empty state's canonical
// form. Ids are assigned in first-seen order starting after the
// reserved padding id.
func NewVocab(dom *domain.Domain) *Vocab {
	v := &Vocab{
		stoi: map[string]int{"<pad>": padID},
		itos: []string{"<pad>"},
	}

	for _, s := range dom.Strings() {
		v.add(s)
	}
	for k := 0; k < 10; k++ {
		v.add(strconv.Itoa(k))
	}
	empty := &dialogue.State{}
	for _, t := range Tokenize(empty.Canonical()) {
		v.add(t)
	}

	return v
}

func (v *Vocab) add(token string) {
	if _, ok := v.stoi[token]; ok {
		return
	}
	v.stoi[token] = len(v.itos)
	v.itos = append(v.itos, token)
}

// ID returns the id of token and whether token is in the vocabulary.
func (v *Vocab) ID(token string) (int, bool) {
	id, ok := v.stoi[token]
	return id, ok
}

// Token returns the string with the given id.
func (v *Vocab) Token(id int) string {
	return v.itos[id]
}

// Len returns the number of entries in the vocabulary, including the
// padding entry.
func (v *Vocab) Len() int {
	return len(v.itos)
}
