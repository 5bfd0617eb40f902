package smt

import (
	"context"
	"io"
	"log/slog"
	"strconv"

	"github.com/hashicorp/go-set/v2"
	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vhavlena/cegis-go/backtrack"
	"github.com/vhavlena/cegis-go/cegis"
	"github.com/vhavlena/cegis-go/quant"
	"github.com/vhavlena/cegis-go/rewrite"
	"github.com/vhavlena/cegis-go/term"
)

// Status is the verdict of a synthesis run.
type Status int

const (
	// StatusUnknown means the round budget ran out or the backend gave up.
	StatusUnknown Status = iota
	// StatusRefuted means the asserted conjecture is unsatisfiable, i.e. a
	// solution for the unknowns was found.
	StatusRefuted
	// StatusHolds means the conjecture is consistent with every lemma: no
	// candidate satisfies the specification.
	StatusHolds
)

var statusNames = map[Status]string{
	StatusUnknown: "unknown",
	StatusRefuted: "refuted",
	StatusHolds:   "holds",
}

func (s Status) String() string {
	if n, ok := statusNames[s]; ok {
		return n
	}
	return "Status(" + strconv.Itoa(int(s)) + ")"
}

// Binding pairs an unknown with its value.
type Binding struct {
	Name  string
	Value term.Term
}

func (b Binding) String() string { return b.Name + " = " + b.Value.String() }

// Outcome summarises a run.
type Outcome struct {
	Status      Status
	Rounds      int
	Lemmas      int
	Refinements int
	// Solution holds the candidate values of the latest check, keyed by the
	// names of the unknowns.
	Solution []Binding
}

// Options configure a Solver.
type Options struct {
	// MaxRounds bounds the number of final checks; zero means no bound.
	MaxRounds int
	Engine    cegis.Options
	Logger    *slog.Logger
}

// DefaultOptions returns a bounded run with the size fairness ladder.
func DefaultOptions() Options {
	return Options{MaxRounds: 256, Engine: cegis.DefaultOptions()}
}

// Solver runs the round loop: decide the literals requested by the module,
// check the backend, and hand the final model to the module until it has
// nothing left to say or the asserted formulas become unsatisfiable.
type Solver struct {
	terms   *term.Manager
	backend Backend
	opts    Options
	log     *slog.Logger
	tracer  trace.Tracer

	ctx     *backtrack.Context
	rw      *rewrite.Rewriter
	sk      *quant.Skolemizer
	attrs   *quant.Attributes
	synth   *cegis.Instantiator
	values  *backtrack.Map[term.Term, bool]
	phases  map[term.Term]bool
	lemmas  *set.Set[term.Term]
	fresh   int
	total   int
	model   bool
	err     error
	unknown []term.Term
}

// NewSolver creates a solver over m that decides ground formulas with b.
func NewSolver(m *term.Manager, b Backend, opts Options) *Solver {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Solver{
		terms:   m,
		backend: b,
		opts:    opts,
		log:     log.With(slog.String("component", "smt")),
		tracer:  otel.Tracer("cegis"),
		ctx:     backtrack.NewContext(),
		rw:      rewrite.New(m),
		sk:      quant.NewSkolemizer(m),
		attrs:   quant.NewAttributes(),
		phases:  make(map[term.Term]bool),
		lemmas:  set.New[term.Term](64),
	}
	s.values = backtrack.NewMap[term.Term, bool](s.ctx)
	engine := opts.Engine
	if engine.Logger == nil {
		engine.Logger = log
	}
	s.synth = cegis.New(cegis.Env{
		Terms:      m,
		Context:    s.ctx,
		Output:     s,
		Valuation:  s,
		Model:      s,
		Rewriter:   s.rw,
		Skolemizer: s.sk,
		Classifier: s.attrs,
	}, engine)
	return s
}

// Terms returns the term manager.
func (s *Solver) Terms() *term.Manager { return s.terms }

// Attributes returns the table used to classify asserted quantifiers.
func (s *Solver) Attributes() *quant.Attributes { return s.attrs }

// Rewriter returns the rewriter shared with the module.
func (s *Solver) Rewriter() *rewrite.Rewriter { return s.rw }

// Instantiator returns the synthesis module.
func (s *Solver) Instantiator() *cegis.Instantiator { return s.synth }

// Assert adds a Boolean formula. The formula is normalised first; a
// quantified formula marked as a synthesis conjecture is registered with the
// module and activated.
func (s *Solver) Assert(t term.Term) error {
	if !t.Sort().IsBool() {
		return errors.Errorf("assert: %s is not Boolean", t)
	}
	s.ctx.PopTo(0)
	n := s.rw.Rewrite(t)
	if n.Kind() == term.KindForall && s.attrs.Transfer(t, n) {
		if err := s.synth.Register(n); err != nil {
			return errors.Wrap(err, "assert")
		}
		s.unknown = n.BoundVars()
		s.synth.Assert(n, true)
	}
	s.log.Debug("assert", slog.String("formula", n.String()))
	return errors.Wrap(s.backend.Add(n), "assert")
}

// Lemma adds a lemma from the module. Trivially true lemmas and lemmas seen
// before are ignored.
func (s *Solver) Lemma(lem term.Term) {
	if s.err != nil {
		return
	}
	if v, ok := lem.BoolValue(); ok && v {
		return
	}
	if !s.lemmas.Insert(lem) {
		return
	}
	s.fresh++
	s.total++
	s.log.Debug("lemma", slog.String("lemma", lem.String()))
	if err := s.backend.Add(lem); err != nil {
		s.err = errors.Wrapf(err, "lemma %s", lem)
	}
}

// RequirePhase records the preferred polarity of a decision literal.
func (s *Solver) RequirePhase(lit term.Term, phase bool) { s.phases[lit] = phase }

// SatValue returns the value assigned to lit at the current level.
func (s *Solver) SatValue(lit term.Term) (bool, bool) {
	if v, ok := lit.BoolValue(); ok {
		return v, true
	}
	if lit.Kind() == term.KindNot {
		v, ok := s.SatValue(lit.Child(0))
		return !v, ok
	}
	return s.values.Get(lit)
}

// EnsureLiteral makes t available as a decision literal.
func (s *Solver) EnsureLiteral(t term.Term) term.Term {
	if _, ok := s.phases[t]; !ok {
		s.phases[t] = true
	}
	return t
}

// Value returns the model value of t from the last final check.
func (s *Solver) Value(t term.Term) (term.Term, bool) {
	if !s.model {
		return term.Term{}, false
	}
	return s.backend.Value(t)
}

func (s *Solver) takeError() error {
	err := s.err
	s.err = nil
	return err
}

// Solve runs rounds until a verdict is reached.
func (s *Solver) Solve(ctx context.Context) (out Outcome, err error) {
	ctx, span := s.tracer.Start(ctx, "smt.Solve",
		trace.WithAttributes(attribute.Int("max_rounds", s.opts.MaxRounds)),
	)
	defer func() {
		span.SetAttributes(
			attribute.String("status", out.Status.String()),
			attribute.Int("rounds", out.Rounds),
			attribute.Int("lemmas", out.Lemmas),
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "solve failed")
		}
		span.End()
	}()

	if err := s.takeError(); err != nil {
		return out, err
	}
	for round := 1; s.opts.MaxRounds <= 0 || round <= s.opts.MaxRounds; round++ {
		if err := ctx.Err(); err != nil {
			return s.outcome(out), errors.Wrap(err, "solve")
		}
		out.Rounds = round
		status, done, err := s.round(ctx, round)
		if err != nil {
			return s.outcome(out), err
		}
		if done {
			out.Status = status
			s.log.Info("solve finished",
				slog.String("status", status.String()),
				slog.Int("rounds", round),
				slog.Int("lemmas", s.total),
			)
			return s.outcome(out), nil
		}
	}
	out.Status = StatusUnknown
	s.log.Info("round budget exhausted", slog.Int("rounds", out.Rounds))
	return s.outcome(out), nil
}

func (s *Solver) outcome(out Outcome) Outcome {
	out.Lemmas = s.total
	out.Refinements = s.synth.Conjecture().Refinements()
	vals := s.synth.Solution()
	if len(vals) == len(s.unknown) {
		out.Solution = make([]Binding, len(vals))
		for i, v := range vals {
			out.Solution[i] = Binding{Name: s.unknown[i].Name(), Value: v}
		}
	}
	return out
}

func literal(lit term.Term, pol bool) term.Term {
	if pol {
		return lit
	}
	return term.Not(lit)
}

// round performs one decide-check cycle. It reports done when a verdict is
// reached.
func (s *Solver) round(ctx context.Context, n int) (Status, bool, error) {
	_, span := s.tracer.Start(ctx, "smt.round", trace.WithAttributes(attribute.Int("round", n)))
	defer span.End()

	s.ctx.PopTo(0)
	s.model = false
	s.fresh = 0

	var assumptions []term.Term
	for {
		lit, ok := s.synth.NextDecisionRequest()
		if err := s.takeError(); err != nil {
			return StatusUnknown, false, err
		}
		if !ok {
			break
		}
		if _, assigned := s.SatValue(lit); assigned {
			break
		}
		phase := true
		if p, ok := s.phases[lit]; ok {
			phase = p
		}
		decided := false
		for _, pol := range []bool{phase, !phase} {
			try := append(assumptions[:len(assumptions):len(assumptions)], literal(lit, pol))
			res, err := s.backend.Solve(try)
			if err != nil {
				return StatusUnknown, false, errors.Wrap(err, "decide")
			}
			if res == Unknown {
				return StatusUnknown, true, nil
			}
			if res != Sat {
				continue
			}
			s.ctx.Push()
			s.values.Set(lit, pol)
			s.synth.Assert(lit, pol)
			assumptions = try
			decided = true
			s.log.Debug("decision", slog.String("literal", lit.String()), slog.Bool("phase", pol), slog.Int("level", s.ctx.Level()))
			break
		}
		if !decided {
			if len(assumptions) == 0 {
				span.SetAttributes(attribute.String("verdict", "refuted"))
				return StatusRefuted, true, nil
			}
			return StatusUnknown, false, errors.Errorf("round %d: both phases of %s conflict with the decisions", n, lit)
		}
	}

	res, err := s.backend.Solve(assumptions)
	if err != nil {
		return StatusUnknown, false, errors.Wrap(err, "final check")
	}
	switch res {
	case Unsat:
		if len(assumptions) == 0 {
			return StatusRefuted, true, nil
		}
		return StatusUnknown, false, errors.Errorf("round %d: decisions became unsatisfiable", n)
	case Unknown:
		return StatusUnknown, true, nil
	}
	s.model = true
	refining := s.synth.Pending()
	s.synth.Check(cegis.EffortLastCall)
	if err := s.takeError(); err != nil {
		return StatusUnknown, false, err
	}
	span.SetAttributes(attribute.Int("lemmas", s.fresh))
	if s.synth.Deferred() {
		// A dropped refinement pass changes the state, so the next round
		// checks a new candidate. Otherwise the next round would repeat
		// this one.
		span.SetAttributes(attribute.Bool("deferred", true))
		if s.fresh == 0 && !refining {
			s.log.Info("model value missing, no verdict", slog.Int("round", n))
			return StatusUnknown, true, nil
		}
		return StatusUnknown, false, nil
	}
	if s.fresh == 0 && !s.synth.Pending() {
		return StatusHolds, true, nil
	}
	return StatusUnknown, false, nil
}
