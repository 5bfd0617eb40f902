package cegis

import (
	"github.com/pkg/errors"

	"github.com/vhavlena/cegis-go/backtrack"
	"github.com/vhavlena/cegis-go/term"
)

// Class distinguishes the two supported kinds of conjecture.
type Class uint8

const (
	ClassNone Class = iota
	// ClassSyntaxGuided conjectures are refined per quantified disjunct.
	ClassSyntaxGuided
	// ClassPlain conjectures are instantiated with candidate values.
	ClassPlain
)

func (c Class) String() string {
	switch c {
	case ClassSyntaxGuided:
		return "syntax-guided"
	case ClassPlain:
		return "plain"
	default:
		return "none"
	}
}

// disjunct is one top-level disjunct of the base instantiation. inner holds
// the variables of a negated universal disjunct.
type disjunct struct {
	term  term.Term
	inner []term.Term
}

// quantified reports whether the disjunct has the shape not(forall ...).
func (d disjunct) quantified() bool { return len(d.inner) > 0 }

// Conjecture is the synthesis state. Fields reachable through Cells revert
// on backtracking; everything else only grows.
type Conjecture struct {
	quant      term.Term
	class      Class
	candidates []term.Term
	baseInst   term.Term
	disjuncts  []disjunct

	guard      term.Term
	guardSplit bool
	measure    term.Term
	lits       map[int]term.Term

	// skeletons holds one entry per counterexample round not yet refined:
	// per disjunct, the quantified formula whose witnesses form the
	// counterexample, or the null term.
	skeletons   [][]term.Term
	refinements int
	lastValues  []term.Term

	active     *backtrack.Cell[bool]
	infeasible *backtrack.Cell[bool]
	cursor     *backtrack.Cell[int]
}

func newConjecture(ctx *backtrack.Context) *Conjecture {
	return &Conjecture{
		lits:       make(map[int]term.Term),
		active:     backtrack.NewCell(ctx, false),
		infeasible: backtrack.NewCell(ctx, false),
		cursor:     backtrack.NewCell(ctx, 0),
	}
}

// IsAssigned reports whether a specification has been registered.
func (c *Conjecture) IsAssigned() bool { return !c.quant.IsNull() }

// IsGround reports whether no disjunct of the base instantiation is a
// negated universal.
func (c *Conjecture) IsGround() bool {
	for _, d := range c.disjuncts {
		if d.quantified() {
			return false
		}
	}
	return true
}

func (c *Conjecture) Quantifier() term.Term { return c.quant }
func (c *Conjecture) Class() Class          { return c.class }

// Candidates returns the candidate constants standing for the unknowns.
func (c *Conjecture) Candidates() []term.Term { return append([]term.Term(nil), c.candidates...) }

// BaseInstantiation is the rewritten body with unknowns replaced by candidates.
func (c *Conjecture) BaseInstantiation() term.Term { return c.baseInst }

// Disjuncts returns the top-level disjuncts of the base instantiation.
func (c *Conjecture) Disjuncts() []term.Term {
	out := make([]term.Term, len(c.disjuncts))
	for i, d := range c.disjuncts {
		out[i] = d.term
	}
	return out
}

// InnerVars returns the variables of the disjunct at index i, or nil if the
// disjunct is not a negated universal.
func (c *Conjecture) InnerVars(i int) []term.Term {
	return append([]term.Term(nil), c.disjuncts[i].inner...)
}

func (c *Conjecture) Guard() term.Term       { return c.guard }
func (c *Conjecture) MeasureTerm() term.Term { return c.measure }
func (c *Conjecture) Refinements() int       { return c.refinements }
func (c *Conjecture) PendingSkeletons() int  { return len(c.skeletons) }
func (c *Conjecture) Active() bool           { return c.active.Get() }
func (c *Conjecture) Infeasible() bool       { return c.infeasible.Get() }

// CurrentLiteralIndex is the position of the fairness ladder.
func (c *Conjecture) CurrentLiteralIndex() int { return c.cursor.Get() }

// Literal returns the cached fairness literal for bound i.
func (c *Conjecture) Literal(i int) (term.Term, bool) {
	lit, ok := c.lits[i]
	return lit, ok
}

// LastCandidate returns the candidate values seen by the latest check.
func (c *Conjecture) LastCandidate() []term.Term {
	return append([]term.Term(nil), c.lastValues...)
}

func classify(q term.Term, cls Classifier) Class {
	switch {
	case cls.IsSyntaxGuided(q):
		return ClassSyntaxGuided
	case cls.IsSynthesis(q):
		return ClassPlain
	default:
		return ClassNone
	}
}

// assign binds the conjecture to q. Nothing is modified on error.
func (c *Conjecture) assign(m *term.Manager, q term.Term, rw Rewriter, cls Classifier) error {
	if q.Kind() != term.KindForall {
		return errors.Wrapf(ErrNotQuantified, "assign %s", q)
	}
	class := classify(q, cls)
	if class == ClassNone {
		return errors.Wrapf(ErrUnclassified, "assign %s", q)
	}
	c.quant = q
	c.class = class
	vars := q.BoundVars()
	for _, v := range vars {
		c.candidates = append(c.candidates, m.Fresh("e", v.Sort()))
	}
	c.baseInst = rw.Rewrite(q.Body().Substitute(vars, c.candidates))
	if class == ClassSyntaxGuided {
		for _, d := range collectDisjuncts(c.baseInst, nil) {
			dj := disjunct{term: d}
			if d.Kind() == term.KindNot && d.Child(0).Kind() == term.KindForall {
				dj.inner = d.Child(0).BoundVars()
			}
			c.disjuncts = append(c.disjuncts, dj)
		}
	}
	return nil
}

// collectDisjuncts flattens nested disjunctions into out.
func collectDisjuncts(t term.Term, out []term.Term) []term.Term {
	if t.Kind() == term.KindOr {
		for _, c := range t.Children() {
			out = collectDisjuncts(c, out)
		}
		return out
	}
	return append(out, t)
}

// initializeGuard creates the feasibility guard on first use. For plain
// conjectures the guard also asserts the negated base instantiation.
func (c *Conjecture) initializeGuard(m *term.Manager, val Valuation, out Output) bool {
	if !c.guard.IsNull() {
		return false
	}
	c.guard = val.EnsureLiteral(m.Fresh("G", m.BoolSort()))
	out.RequirePhase(c.guard, true)
	if c.class == ClassPlain {
		out.Lemma(term.Or(term.Not(c.guard), term.Not(c.baseInst)))
	}
	return true
}
