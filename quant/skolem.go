// Package quant holds the quantifier utilities shared by the solver host and
// the synthesis engine: skolemization with cached witnesses and the
// attribute table classifying universally quantified specifications.
package quant

import (
	"github.com/vhavlena/cegis-go/term"
)

// Skolemizer replaces the bound variables of a quantifier by fresh witness
// constants. Witnesses are created once per quantifier and reused.
type Skolemizer struct {
	m      *term.Manager
	consts map[term.Term][]term.Term
	bodies map[term.Term]term.Term
}

// NewSkolemizer creates a skolemizer over m.
func NewSkolemizer(m *term.Manager) *Skolemizer {
	return &Skolemizer{
		m:      m,
		consts: make(map[term.Term][]term.Term),
		bodies: make(map[term.Term]term.Term),
	}
}

// SkolemizedBody returns the body of q with each bound variable replaced by
// its witness constant. It panics if q is not a quantifier.
func (s *Skolemizer) SkolemizedBody(q term.Term) term.Term {
	if q.Kind() != term.KindForall {
		panic("quant: SkolemizedBody requires a quantified formula, got " + q.Kind().String())
	}
	if b, ok := s.bodies[q]; ok {
		return b
	}
	vars := q.BoundVars()
	sks := make([]term.Term, len(vars))
	for i, v := range vars {
		sks[i] = s.m.Fresh("sk_"+v.Name(), v.Sort())
	}
	b := q.Body().Substitute(vars, sks)
	s.consts[q] = sks
	s.bodies[q] = b
	return b
}

// SkolemConstants returns the witnesses of q in bound-variable order, or nil
// if q was never skolemized.
func (s *Skolemizer) SkolemConstants(q term.Term) []term.Term {
	return append([]term.Term(nil), s.consts[q]...)
}
