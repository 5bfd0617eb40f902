// Package cegis implements counterexample-guided inductive synthesis as a
// module of an enclosing satisfiability solver.
//
// The module owns one synthesis conjecture: a universally quantified
// specification whose bound variables are the unknowns to synthesise. It
// replaces the unknowns by candidate constants, and on every final check it
// either submits a counterexample lemma for the current candidate values or
// turns previously found counterexamples into refinement lemmas guarded by a
// feasibility literal. An optional fairness ladder of size bounds over
// datatype-typed unknowns makes enumeration of candidates complete.
//
// The host solver drives the module through Register, Assert, Check and
// NextDecisionRequest and supplies the services in Env.
package cegis

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/pkg/errors"

	"github.com/vhavlena/cegis-go/backtrack"
	"github.com/vhavlena/cegis-go/term"
)

// Effort is the check effort requested by the host.
type Effort int

const (
	EffortStandard Effort = iota
	EffortFull
	EffortLastCall
)

var effortNames = map[Effort]string{
	EffortStandard: "standard",
	EffortFull:     "full",
	EffortLastCall: "last-call",
}

func (e Effort) String() string {
	if s, ok := effortNames[e]; ok {
		return s
	}
	return "Effort(" + strconv.Itoa(int(e)) + ")"
}

// FairnessMode selects the candidate enumeration strategy.
type FairnessMode int

const (
	// FairnessNone leaves candidate enumeration to the host.
	FairnessNone FairnessMode = iota
	// FairnessUFSize bounds the summed structural size of datatype-typed
	// unknowns by an increasing ladder of decision literals.
	FairnessUFSize
)

var fairnessNames = map[FairnessMode]string{
	FairnessNone:   "none",
	FairnessUFSize: "uf-dt-size",
}

func (f FairnessMode) String() string {
	if s, ok := fairnessNames[f]; ok {
		return s
	}
	return "FairnessMode(" + strconv.Itoa(int(f)) + ")"
}

// ParseFairnessMode parses the textual form produced by String.
func ParseFairnessMode(s string) (FairnessMode, error) {
	for mode, name := range fairnessNames {
		if name == s {
			return mode, nil
		}
	}
	return FairnessNone, errors.Errorf("unknown fairness mode %q", s)
}

// Options configure the module.
type Options struct {
	Fairness FairnessMode
	// Logger receives debug traces of lemmas and model values. Nil discards.
	Logger *slog.Logger
}

// DefaultOptions enables the size fairness ladder.
func DefaultOptions() Options {
	return Options{Fairness: FairnessUFSize}
}

// Output receives lemmas and phase preferences.
type Output interface {
	Lemma(lem term.Term)
	RequirePhase(lit term.Term, phase bool)
}

// Valuation exposes the host's current partial Boolean assignment.
type Valuation interface {
	// SatValue returns the value of lit if it is assigned.
	SatValue(lit term.Term) (value bool, ok bool)
	// EnsureLiteral registers t as a decision literal and returns it.
	EnsureLiteral(t term.Term) term.Term
}

// Model exposes the host's candidate model.
type Model interface {
	// Value returns the model value of t, or false if none is available.
	Value(t term.Term) (term.Term, bool)
}

// Rewriter normalises terms.
type Rewriter interface {
	Rewrite(t term.Term) term.Term
}

// Skolemizer provides cached witnesses for quantified formulas.
type Skolemizer interface {
	SkolemizedBody(q term.Term) term.Term
	SkolemConstants(q term.Term) []term.Term
}

// Classifier reports the attributes of quantified formulas.
type Classifier interface {
	IsSyntaxGuided(q term.Term) bool
	IsSynthesis(q term.Term) bool
}

// Env bundles the host services used by the module.
type Env struct {
	Terms      *term.Manager
	Context    *backtrack.Context
	Output     Output
	Valuation  Valuation
	Model      Model
	Rewriter   Rewriter
	Skolemizer Skolemizer
	Classifier Classifier
}

var (
	// ErrNotQuantified is returned when registering a formula that is not a
	// universal quantifier.
	ErrNotQuantified = errors.New("cegis: not a quantified formula")
	// ErrUnclassified is returned when the formula carries neither the
	// syntax-guided nor the synthesis attribute.
	ErrUnclassified = errors.New("cegis: quantified formula is not a synthesis conjecture")
	// ErrAlreadyAssigned is returned when a second, distinct specification is
	// registered.
	ErrAlreadyAssigned = errors.New("cegis: conjecture already assigned")
)

// ContractError reports a broken internal invariant, such as a candidate
// instantiation whose disjunct count differs from the base instantiation.
// The module panics with a *ContractError; these are programming errors, not
// solver outcomes.
type ContractError struct {
	Op     string
	Detail string
}

func (e *ContractError) Error() string {
	return "cegis: contract violated in " + e.Op + ": " + e.Detail
}

func contract(op, format string, args ...any) {
	panic(&ContractError{Op: op, Detail: fmt.Sprintf(format, args...)})
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
