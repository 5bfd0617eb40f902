package cegis

import (
	"log/slog"

	"github.com/vhavlena/cegis-go/term"
)

// literal returns the fairness literal measure <= i, creating it on first
// request. A new literal is announced with the split lemma (lit or not lit)
// and a preference for the true phase. It returns the null term when the
// conjecture has no measure term.
func (in *Instantiator) literal(i int) term.Term {
	c := in.conj
	if c.measure.IsNull() {
		return term.Term{}
	}
	if lit, ok := c.lits[i]; ok {
		return lit
	}
	lit := in.env.Rewriter.Rewrite(term.Leq(c.measure, in.env.Terms.Int(int64(i))))
	c.lits[i] = lit
	in.log.Debug("fairness literal", slog.Int("bound", i), slog.String("literal", lit.String()))
	in.env.Output.Lemma(term.Or(lit, term.Not(lit)))
	in.env.Output.RequirePhase(lit, true)
	return lit
}

// NextDecisionRequest proposes the next literal the host should decide. The
// guard comes first; once it is assigned the fairness ladder is walked:
// while the current bound is assigned false the cursor advances by one and
// the next bound is proposed.
func (in *Instantiator) NextDecisionRequest() (term.Term, bool) {
	c := in.conj
	if !c.IsAssigned() {
		return term.Term{}, false
	}
	c.initializeGuard(in.env.Terms, in.env.Valuation, in.env.Output)
	if _, ok := in.env.Valuation.SatValue(c.guard); !ok {
		if !c.guardSplit {
			c.guardSplit = true
			in.env.Output.Lemma(term.Or(term.Not(c.guard), c.guard))
		}
		in.log.Debug("decide on guard", slog.String("guard", c.guard.String()))
		return c.guard, true
	}
	if in.opts.Fairness == FairnessNone {
		return term.Term{}, false
	}
	lit := in.literal(c.cursor.Get())
	if lit.IsNull() {
		return term.Term{}, false
	}
	value, ok := in.env.Valuation.SatValue(lit)
	if !ok {
		in.log.Debug("decide on fairness literal", slog.String("literal", lit.String()))
		return lit, true
	}
	if value {
		return term.Term{}, false
	}
	c.cursor.Set(c.cursor.Get() + 1)
	lit = in.literal(c.cursor.Get())
	in.log.Debug("fairness bound raised", slog.Int("cursor", c.cursor.Get()))
	return lit, true
}
