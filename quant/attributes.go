package quant

import (
	"strconv"

	"github.com/vhavlena/cegis-go/term"
)

// Attribute marks how a universally quantified formula is to be solved.
type Attribute uint8

const (
	AttrNone Attribute = iota
	// AttrSyntaxGuided marks a specification solved by counterexample-guided
	// refinement over its quantified disjuncts.
	AttrSyntaxGuided
	// AttrSynthesis marks a specification solved by plain instantiation with
	// candidate values.
	AttrSynthesis
)

var attributeNames = map[Attribute]string{
	AttrNone:         "none",
	AttrSyntaxGuided: "syntax-guided",
	AttrSynthesis:    "synthesis",
}

func (a Attribute) String() string {
	if s, ok := attributeNames[a]; ok {
		return s
	}
	return "Attribute(" + strconv.Itoa(int(a)) + ")"
}

// Attributes records quantifier attributes.
type Attributes struct {
	attrs map[term.Term]Attribute
}

// NewAttributes creates an empty attribute table.
func NewAttributes() *Attributes {
	return &Attributes{attrs: make(map[term.Term]Attribute)}
}

func (a *Attributes) set(q term.Term, attr Attribute) {
	if q.Kind() != term.KindForall {
		panic("quant: attributes apply to quantified formulas only")
	}
	a.attrs[q] = attr
}

// MarkSyntaxGuided tags q for syntax-guided synthesis.
func (a *Attributes) MarkSyntaxGuided(q term.Term) { a.set(q, AttrSyntaxGuided) }

// MarkSynthesis tags q for plain synthesis.
func (a *Attributes) MarkSynthesis(q term.Term) { a.set(q, AttrSynthesis) }

// Get returns the attribute of q.
func (a *Attributes) Get(q term.Term) Attribute { return a.attrs[q] }

func (a *Attributes) IsSyntaxGuided(q term.Term) bool { return a.attrs[q] == AttrSyntaxGuided }
func (a *Attributes) IsSynthesis(q term.Term) bool { return a.attrs[q] == AttrSynthesis }

// Transfer copies the attribute of from onto to, typically the normal form
// of from. It reports whether from carried an attribute.
func (a *Attributes) Transfer(from, to term.Term) bool {
	attr, ok := a.attrs[from]
	if !ok || attr == AttrNone {
		return false
	}
	a.set(to, attr)
	return true
}
