//go:build cgo
// +build cgo

package z3

/*
#include <stdlib.h>
#include "z3.h"
*/
import "C"

import (
	"math/big"
	"strconv"
)

// ASTKind mirrors Z3_ast_kind.
type ASTKind int

const (
	ASTKindNumeral    ASTKind = ASTKind(C.Z3_NUMERAL_AST)
	ASTKindApp        ASTKind = ASTKind(C.Z3_APP_AST)
	ASTKindVar        ASTKind = ASTKind(C.Z3_VAR_AST)
	ASTKindQuantifier ASTKind = ASTKind(C.Z3_QUANTIFIER_AST)
	ASTKindUnknown    ASTKind = ASTKind(C.Z3_UNKNOWN_AST)
)

var astKindNames = map[ASTKind]string{
	ASTKindNumeral:    "numeral",
	ASTKindApp:        "app",
	ASTKindVar:        "var",
	ASTKindQuantifier: "quantifier",
	ASTKindUnknown:    "unknown",
}

func (k ASTKind) String() string {
	if s, ok := astKindNames[k]; ok {
		return s
	}
	return "ASTKind(" + strconv.Itoa(int(k)) + ")"
}

func (a AST) Kind() ASTKind {
	if a.IsNull() {
		return ASTKindUnknown
	}
	return ASTKind(C.Z3_get_ast_kind(a.ctx.c, a.a))
}

// IsApp reports whether a is an application, which includes constants and
// constructor terms.
func (a AST) IsApp() bool {
	if a.IsNull() {
		return false
	}
	return bool(C.Z3_is_app(a.ctx.c, a.a))
}

func (a AST) NumChildren() int {
	if !a.IsApp() {
		return 0
	}
	return int(C.Z3_get_app_num_args(a.ctx.c, C.Z3_to_app(a.ctx.c, a.a)))
}

// Child returns the i-th argument of an application.
func (a AST) Child(i int) AST {
	if i < 0 || i >= a.NumChildren() {
		return AST{}
	}
	return a.ctx.ast(C.Z3_get_app_arg(a.ctx.c, C.Z3_to_app(a.ctx.c, a.a), C.uint(i)))
}

// Decl returns the function declaration of an application.
func (a AST) Decl() FuncDecl {
	if !a.IsApp() {
		return FuncDecl{}
	}
	return FuncDecl{ctx: a.ctx, d: C.Z3_get_app_decl(a.ctx.c, C.Z3_to_app(a.ctx.c, a.a))}
}

func (d FuncDecl) Arity() int {
	if d.ctx == nil || d.d == nil {
		return 0
	}
	return int(C.Z3_get_arity(d.ctx.c, d.d))
}

// Name returns the symbol name of the declaration.
func (d FuncDecl) Name() string {
	if d.ctx == nil || d.d == nil {
		return ""
	}
	return symbolToString(d.ctx, C.Z3_get_decl_name(d.ctx.c, d.d))
}

func symbolToString(ctx *Context, sym C.Z3_symbol) string {
	if ctx == nil || ctx.c == nil || sym == nil {
		return ""
	}
	switch C.Z3_get_symbol_kind(ctx.c, sym) {
	case C.Z3_INT_SYMBOL:
		return "#" + strconv.Itoa(int(C.Z3_get_symbol_int(ctx.c, sym)))
	case C.Z3_STRING_SYMBOL:
		return C.GoString(C.Z3_get_symbol_string(ctx.c, sym))
	default:
		return ""
	}
}

// BoolValue reads a as a Boolean literal.
func (a AST) BoolValue() (bool, bool) {
	if a.IsNull() {
		return false, false
	}
	switch C.Z3_get_bool_value(a.ctx.c, a.a) {
	case C.Z3_L_TRUE:
		return true, true
	case C.Z3_L_FALSE:
		return false, true
	default:
		return false, false
	}
}

// AsInt64 reads a as an integer numeral that fits in 64 bits.
func (a AST) AsInt64() (int64, bool) {
	if a.Kind() != ASTKindNumeral {
		return 0, false
	}
	var out C.int64_t
	if bool(C.Z3_get_numeral_int64(a.ctx.c, a.a, &out)) {
		return int64(out), true
	}
	rat := new(big.Rat)
	if _, ok := rat.SetString(a.NumeralString()); ok && rat.IsInt() && rat.Num().IsInt64() {
		return rat.Num().Int64(), true
	}
	return 0, false
}
