package cegis

import (
	"log/slog"

	"github.com/pkg/errors"

	"github.com/vhavlena/cegis-go/term"
)

// Instantiator is the synthesis module. It is driven by a single host
// goroutine.
type Instantiator struct {
	env     Env
	opts    Options
	log     *slog.Logger
	conj    *Conjecture
	measure *MeasureCache
	// deferred is set when the latest Check lacked model values.
	deferred bool
}

// New creates a module with an unassigned conjecture.
func New(env Env, opts Options) *Instantiator {
	log := opts.Logger
	if log == nil {
		log = discardLogger()
	}
	return &Instantiator{
		env:     env,
		opts:    opts,
		log:     log.With(slog.String("component", "cegis")),
		conj:    newConjecture(env.Context),
		measure: NewMeasureCache(env.Terms),
	}
}

// Conjecture exposes the synthesis state.
func (in *Instantiator) Conjecture() *Conjecture { return in.conj }

// Measures exposes the size-function cache.
func (in *Instantiator) Measures() *MeasureCache { return in.measure }

// NeedsCheck reports whether Check does any work at effort e.
func (in *Instantiator) NeedsCheck(e Effort) bool { return e >= EffortLastCall }

// Register installs q as the conjecture. Registering the conjecture already
// held is a no-op; registering a different formula fails.
func (in *Instantiator) Register(q term.Term) error {
	c := in.conj
	if c.IsAssigned() {
		if c.quant == q {
			return nil
		}
		return errors.Wrapf(ErrAlreadyAssigned, "register %s", q)
	}
	if err := c.assign(in.env.Terms, q, in.env.Rewriter, in.env.Classifier); err != nil {
		return err
	}
	if in.opts.Fairness == FairnessUFSize {
		var sizes []term.Term
		for _, e := range c.candidates {
			if f, ok := in.measure.SizeFunction(e.Sort()); ok {
				sizes = append(sizes, in.env.Terms.Apply(f, e))
			}
		}
		switch len(sizes) {
		case 0:
		case 1:
			c.measure = sizes[0]
		default:
			c.measure = term.Plus(sizes...)
		}
	}
	in.log.Debug("registered conjecture",
		slog.String("class", c.class.String()),
		slog.String("base", c.baseInst.String()),
		slog.Int("disjuncts", len(c.disjuncts)),
		slog.Bool("ground", c.IsGround()),
	)
	return nil
}

// Assert notifies the module that lit was assigned polarity pol. Assigning
// the guard sets the infeasible flag to its negation; any assignment of the
// conjecture formula activates the conjecture.
func (in *Instantiator) Assert(lit term.Term, pol bool) {
	c := in.conj
	if !c.guard.IsNull() && lit == c.guard {
		c.infeasible.Set(!pol)
		in.log.Debug("guard asserted", slog.Bool("infeasible", !pol))
	}
	if c.IsAssigned() && lit == c.quant {
		c.active.Set(true)
	}
}

// Check runs one synthesis step at last-call effort when the conjecture is
// active and feasible.
func (in *Instantiator) Check(e Effort) {
	if !in.NeedsCheck(e) {
		return
	}
	in.deferred = false
	c := in.conj
	in.log.Debug("check",
		slog.String("effort", e.String()),
		slog.Bool("active", c.active.Get()),
		slog.Bool("feasible", !c.infeasible.Get()),
	)
	if c.IsAssigned() && c.active.Get() && !c.infeasible.Get() {
		in.checkConjecture()
	}
}

// Pending reports whether a counterexample awaits refinement while the
// conjecture can still make progress.
func (in *Instantiator) Pending() bool {
	c := in.conj
	return c.IsAssigned() && c.active.Get() && !c.infeasible.Get() && len(c.skeletons) > 0
}

// Deferred reports whether the latest Check skipped its step because the
// model left a candidate or witness value open. A deferred check says
// nothing about the conjecture.
func (in *Instantiator) Deferred() bool { return in.deferred }

// Solution returns the candidate values seen by the latest check.
func (in *Instantiator) Solution() []term.Term { return in.conj.LastCandidate() }

func (in *Instantiator) lemma(kind string, lem term.Term) {
	in.log.Debug("lemma", slog.String("kind", kind), slog.String("lemma", lem.String()))
	in.env.Output.Lemma(lem)
}

func (in *Instantiator) modelValues(ts []term.Term) ([]term.Term, bool) {
	vals := make([]term.Term, len(ts))
	complete := true
	for i, t := range ts {
		v, ok := in.env.Model.Value(t)
		if !ok {
			in.log.Debug("no model value", slog.String("term", t.String()))
			complete = false
			continue
		}
		in.log.Debug("model value", slog.String("term", t.String()), slog.String("value", v.String()))
		vals[i] = v
	}
	return vals, complete
}

func (in *Instantiator) checkConjecture() {
	c := in.conj
	if c.class == ClassPlain {
		in.checkPlain()
		return
	}
	if len(c.skeletons) == 0 {
		in.checkCandidate()
		return
	}
	in.refine()
}

// checkPlain instantiates the specification with the candidate values.
func (in *Instantiator) checkPlain() {
	c := in.conj
	vals, ok := in.modelValues(c.candidates)
	if !ok {
		in.deferred = true
		return
	}
	c.lastValues = vals
	inst := c.quant.Body().Substitute(c.quant.BoundVars(), vals)
	in.lemma("instantiation", in.env.Rewriter.Rewrite(term.Or(term.Not(c.quant), inst)))
}

// checkCandidate submits measure lemmas for the candidate values if any are
// new, and otherwise the counterexample lemma for the candidate.
func (in *Instantiator) checkCandidate() {
	c := in.conj
	vals, ok := in.modelValues(c.candidates)
	if !ok {
		in.deferred = true
		return
	}
	if in.opts.Fairness == FairnessUFSize {
		var lems []term.Term
		for i, e := range c.candidates {
			lems = in.measure.Lemmas(e, vals[i], lems)
		}
		if len(lems) > 0 {
			for _, lem := range lems {
				in.lemma("measure", lem)
			}
			return
		}
	}
	c.lastValues = vals
	inst := c.baseInst.Substitute(c.candidates, vals)
	record := !c.IsGround() || c.refinements == 0

	ds := collectDisjuncts(inst, nil)
	if len(ds) != len(c.disjuncts) {
		contract("check", "instantiation has %d disjuncts, base has %d", len(ds), len(c.disjuncts))
	}
	ic := []term.Term{term.Not(c.quant)}
	skeleton := make([]term.Term, len(ds))
	for i, d := range ds {
		dr := in.env.Rewriter.Rewrite(d)
		if dr.Kind() == term.KindNot && dr.Child(0).Kind() == term.KindForall {
			ceq := dr.Child(0)
			ic = append(ic, term.Not(in.env.Skolemizer.SkolemizedBody(ceq)))
			skeleton[i] = ceq
			continue
		}
		ic = append(ic, dr)
		if c.disjuncts[i].quantified() {
			in.log.Debug("quantified disjunct simplified under candidate", slog.Int("disjunct", i))
		}
	}
	if record {
		c.skeletons = append(c.skeletons, skeleton)
	}
	in.lemma("counterexample", in.env.Rewriter.Rewrite(term.Or(ic...)))
}

// refine turns every recorded counterexample into a guarded refinement
// lemma and then discards all entries.
func (in *Instantiator) refine() {
	c := in.conj
	c.initializeGuard(in.env.Terms, in.env.Valuation, in.env.Output)
	defer func() { c.skeletons = nil }()
	refined := 0
	for j, skeleton := range c.skeletons {
		if len(skeleton) != len(c.disjuncts) {
			contract("refine", "skeleton %d has %d entries, base has %d disjuncts", j, len(skeleton), len(c.disjuncts))
		}
		var obligations []term.Term
		complete := true
		for k, ceq := range skeleton {
			base := c.disjuncts[k]
			switch {
			case !ceq.IsNull():
				if !base.quantified() {
					contract("refine", "disjunct %d is not quantified but has a counterexample", k)
				}
				sks := in.env.Skolemizer.SkolemConstants(ceq)
				if len(sks) != len(base.inner) {
					contract("refine", "disjunct %d has %d witnesses for %d variables", k, len(sks), len(base.inner))
				}
				vals, ok := in.modelValues(sks)
				if !ok {
					complete = false
					break
				}
				matrix := base.term.Child(0).Body()
				obligations = append(obligations, matrix.Substitute(base.inner, vals))
			case !base.quantified():
				obligations = append(obligations, term.Not(base.term))
			default:
				in.log.Debug("no counterexample for quantified disjunct", slog.Int("disjunct", k))
			}
			if !complete {
				break
			}
		}
		if !complete {
			in.log.Debug("counterexample unavailable, skipping refinement", slog.Int("entry", j))
			continue
		}
		var body term.Term
		switch len(obligations) {
		case 0:
			body = in.env.Terms.True()
		case 1:
			body = obligations[0]
		default:
			body = term.And(obligations...)
		}
		in.lemma("refinement", in.env.Rewriter.Rewrite(term.Or(term.Not(c.guard), body)))
		c.refinements++
		refined++
	}
	in.deferred = refined == 0
}
