//go:build cgo
// +build cgo

package z3

/*
#include <stdlib.h>
#include "z3.h"
*/
import "C"

import (
	"runtime"

	"github.com/pkg/errors"
)

// Solver wraps an incremental Z3_solver.
type Solver struct {
	ctx *Context
	s   C.Z3_solver
}

// CheckResult captures the outcome of a solver check.
type CheckResult int

const (
	Unknown CheckResult = iota
	Sat
	Unsat
)

// NewSolver creates a solver attached to the context.
func (ctx *Context) NewSolver() *Solver {
	s := &Solver{ctx, C.Z3_mk_solver(ctx.c)}
	C.Z3_solver_inc_ref(ctx.c, s.s)
	runtime.SetFinalizer(s, func(x *Solver) { x.Close() })
	return s
}

// Close releases the solver. It is safe to call more than once.
func (s *Solver) Close() {
	if s != nil && s.s != nil && s.ctx.c != nil {
		C.Z3_solver_dec_ref(s.ctx.c, s.s)
		s.s = nil
	}
}

func (s *Solver) Assert(a AST) { C.Z3_solver_assert(s.ctx.c, s.s, a.a) }

// Push opens a scope; assertions made inside it are dropped by Pop.
func (s *Solver) Push() { C.Z3_solver_push(s.ctx.c, s.s) }

func (s *Solver) Pop(n uint) { C.Z3_solver_pop(s.ctx.c, s.s, C.uint(n)) }

// Check decides the asserted constraints. An unknown result carries Z3's
// reason as the error.
func (s *Solver) Check() (CheckResult, error) {
	switch C.Z3_solver_check(s.ctx.c, s.s) {
	case C.Z3_L_TRUE:
		return Sat, nil
	case C.Z3_L_FALSE:
		return Unsat, nil
	default:
		if reason := s.ReasonUnknown(); reason != "" {
			return Unknown, errors.New(reason)
		}
		return Unknown, errors.New("unknown")
	}
}

func (s *Solver) ReasonUnknown() string {
	rstr := C.Z3_solver_get_reason_unknown(s.ctx.c, s.s)
	if rstr == nil {
		return ""
	}
	return C.GoString(rstr)
}

// Model returns the model of the last satisfiable check, or nil. The caller
// closes it.
func (s *Solver) Model() *Model {
	m := C.Z3_solver_get_model(s.ctx.c, s.s)
	if m == nil {
		return nil
	}
	C.Z3_model_inc_ref(s.ctx.c, m)
	mod := &Model{s.ctx, m}
	runtime.SetFinalizer(mod, func(x *Model) { x.Close() })
	return mod
}
