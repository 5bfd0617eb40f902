//go:build cgo
// +build cgo

package z3

/*
#include "z3.h"
int model_eval_wrap(Z3_context c, Z3_model m, Z3_ast a, int model_completion, Z3_ast* out);
*/
import "C"

// Model wraps a reference-counted Z3_model. A model stays valid after the
// solver scope that produced it is popped.
type Model struct {
	ctx *Context
	m   C.Z3_model
}

// Close releases the model. It is safe to call more than once.
func (m *Model) Close() {
	if m != nil && m.m != nil && m.ctx.c != nil {
		C.Z3_model_dec_ref(m.ctx.c, m.m)
		m.m = nil
	}
}

// Eval evaluates a in the model. With completion, symbols the model leaves
// open are given default values. The result is null when evaluation fails.
func (m *Model) Eval(a AST, completion bool) AST {
	var out C.Z3_ast
	mc := C.int(0)
	if completion {
		mc = C.int(1)
	}
	if C.model_eval_wrap(m.ctx.c, m.m, a.a, mc, &out) == 0 {
		return AST{m.ctx, nil}
	}
	return m.ctx.ast(out)
}

func (m *Model) String() string {
	if m == nil || m.m == nil {
		return "<nil-model>"
	}
	s := C.Z3_model_to_string(m.ctx.c, m.m)
	if s == nil {
		return "<invalid-model>"
	}
	return C.GoString(s)
}
