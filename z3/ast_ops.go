//go:build cgo
// +build cgo

package z3

/*
#include "z3.h"
*/
import "C"

import "unsafe"

func cargs(args []AST) (C.uint, *C.Z3_ast) {
	if len(args) == 0 {
		return 0, nil
	}
	raw := make([]C.Z3_ast, len(args))
	for i, a := range args {
		raw[i] = a.a
	}
	return C.uint(len(raw)), (*C.Z3_ast)(unsafe.Pointer(&raw[0]))
}

func nary(op string, args []AST, mk func(C.Z3_context, C.uint, *C.Z3_ast) C.Z3_ast) AST {
	if len(args) == 0 {
		panic(op + " requires at least one arg")
	}
	ctx := args[0].ctx
	n, p := cargs(args)
	return ctx.ast(mk(ctx.c, n, p))
}

// Not returns the logical negation of the AST.
func (a AST) Not() AST { return a.ctx.ast(C.Z3_mk_not(a.ctx.c, a.a)) }

// And builds a conjunction over all provided ASTs.
func And(args ...AST) AST {
	return nary("And", args, func(c C.Z3_context, n C.uint, p *C.Z3_ast) C.Z3_ast { return C.Z3_mk_and(c, n, p) })
}

// Or builds a disjunction over all provided ASTs.
func Or(args ...AST) AST {
	return nary("Or", args, func(c C.Z3_context, n C.uint, p *C.Z3_ast) C.Z3_ast { return C.Z3_mk_or(c, n, p) })
}

// Add sums integer ASTs.
func Add(args ...AST) AST {
	return nary("Add", args, func(c C.Z3_context, n C.uint, p *C.Z3_ast) C.Z3_ast { return C.Z3_mk_add(c, n, p) })
}

func Eq(x, y AST) AST { return x.ctx.ast(C.Z3_mk_eq(x.ctx.c, x.a, y.a)) }

// Le builds the constraint x <= y.
func Le(x, y AST) AST { return x.ctx.ast(C.Z3_mk_le(x.ctx.c, x.a, y.a)) }

func Implies(x, y AST) AST { return x.ctx.ast(C.Z3_mk_implies(x.ctx.c, x.a, y.a)) }

// Ite builds an if-then-else over c, t and e.
func Ite(c, t, e AST) AST { return c.ctx.ast(C.Z3_mk_ite(c.ctx.c, c.a, t.a, e.a)) }

// App applies a function declaration, constructor, accessor or recognizer to
// args.
func (ctx *Context) App(f FuncDecl, args ...AST) AST {
	n, p := cargs(args)
	return ctx.ast(C.Z3_mk_app(ctx.c, f.d, n, p))
}
