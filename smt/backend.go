// Package smt hosts the synthesis module in a small lemma-driven solver loop.
//
// A Solver owns the term services the module needs (rewriter, skolemizer,
// attribute table, decision-level context) and delegates satisfiability of
// ground Boolean structure to a Backend. Quantified formulas are opaque atoms
// to the backend; their meaning reaches it only through the lemmas the
// synthesis module emits.
package smt

import (
	"strconv"

	"github.com/vhavlena/cegis-go/term"
)

// Result mirrors the outcome of a satisfiability check.
type Result int

const (
	Unknown Result = iota
	Sat
	Unsat
)

var resultNames = map[Result]string{
	Unknown: "unknown",
	Sat:     "sat",
	Unsat:   "unsat",
}

func (r Result) String() string {
	if s, ok := resultNames[r]; ok {
		return s
	}
	return "Result(" + strconv.Itoa(int(r)) + ")"
}

// Backend decides ground formulas. Implementations accept formulas
// incrementally and answer model queries for the last satisfiable Solve.
type Backend interface {
	// Add asserts t permanently.
	Add(t term.Term) error
	// Solve checks the asserted formulas under the given assumptions.
	Solve(assumptions []term.Term) (Result, error)
	// Value returns the model value of t after a satisfiable Solve.
	Value(t term.Term) (term.Term, bool)
	Close() error
}
