//go:build cgo
// +build cgo

// Package z3 binds the parts of Z3's C API needed to decide the ground
// formulas of the synthesis loop: integers, uninterpreted functions and
// algebraic datatypes, incremental solving under assumptions and model
// evaluation. Backend lowers term.Term values onto the binding.
package z3

/*
#include <stdlib.h>
#include "z3.h"

int model_eval_wrap(Z3_context c, Z3_model m, Z3_ast a, int model_completion, Z3_ast* out) {
	return Z3_model_eval(c, m, a, model_completion, out);
}

// errors are read back through Z3_get_error_code instead of aborting
void go_z3_error_handler(Z3_context c, Z3_error_code e) {
}
static void z3_set_noop_error_handler(Z3_context c) {
	Z3_set_error_handler(c, go_z3_error_handler);
}
*/
import "C"
import (
	"runtime"
	"strconv"
	"unsafe"

	"github.com/pkg/errors"
)

// Context wraps Z3_context.
type Context struct {
	c C.Z3_context
}

// Config wraps Z3_config.
type Config struct{ cfg C.Z3_config }

// NewConfig creates a config with model construction enabled.
func NewConfig() *Config {
	cfg := &Config{cfg: C.Z3_mk_config()}
	cfg.SetParam("model", "true")
	return cfg
}

// SetParam sets a configuration parameter. Parameters are read when a
// context is created from the config.
func (cfg *Config) SetParam(key, value string) {
	if cfg == nil || cfg.cfg == nil {
		return
	}
	k := C.CString(key)
	v := C.CString(value)
	C.Z3_set_param_value(cfg.cfg, k, v)
	C.free(unsafe.Pointer(k))
	C.free(unsafe.Pointer(v))
}

// Close frees the config. It is safe to call more than once.
func (cfg *Config) Close() {
	if cfg != nil && cfg.cfg != nil {
		C.Z3_del_config(cfg.cfg)
		cfg.cfg = nil
	}
}

// NewContext creates a context from cfg, or from a default config when cfg is
// nil.
func NewContext(cfg *Config) *Context {
	var c C.Z3_context
	if cfg != nil {
		c = C.Z3_mk_context(cfg.cfg)
	} else {
		tmp := C.Z3_mk_config()
		c = C.Z3_mk_context(tmp)
		C.Z3_del_config(tmp)
	}
	C.z3_set_noop_error_handler(c)
	ctx := &Context{c: c}
	runtime.SetFinalizer(ctx, func(x *Context) { x.Close() })
	return ctx
}

// Close deletes the context. Every handle created from it becomes invalid.
func (ctx *Context) Close() {
	if ctx != nil && ctx.c != nil {
		C.Z3_del_context(ctx.c)
		ctx.c = nil
	}
}

// Err returns the error recorded by the last failing API call, if any.
func (ctx *Context) Err() error {
	code := C.Z3_get_error_code(ctx.c)
	if code == C.Z3_OK {
		return nil
	}
	msg := C.Z3_get_error_msg(ctx.c, code)
	if msg == nil {
		return errors.Errorf("z3: error code %d", int(code))
	}
	return errors.New("z3: " + C.GoString(msg))
}

// Sort wraps Z3_sort.
type Sort struct {
	ctx *Context
	s   C.Z3_sort
}

// AST wraps Z3_ast.
type AST struct {
	ctx *Context
	a   C.Z3_ast
}

// FuncDecl wraps Z3_func_decl.
type FuncDecl struct {
	ctx *Context
	d   C.Z3_func_decl
}

// IsNull reports whether a holds no expression.
func (a AST) IsNull() bool { return a.ctx == nil || a.a == nil }

func (ctx *Context) BoolSort() Sort { return Sort{ctx, C.Z3_mk_bool_sort(ctx.c)} }

func (ctx *Context) IntSort() Sort { return Sort{ctx, C.Z3_mk_int_sort(ctx.c)} }

func (ctx *Context) symbol(name string) C.Z3_symbol {
	cstr := C.CString(name)
	defer C.free(unsafe.Pointer(cstr))
	return C.Z3_mk_string_symbol(ctx.c, cstr)
}

func (ctx *Context) ast(a C.Z3_ast) AST {
	if a == nil {
		return AST{ctx, nil}
	}
	C.Z3_inc_ref(ctx.c, a)
	return AST{ctx, a}
}

// Const creates a constant with the given name and sort. Constants with the
// same name and sort denote the same symbol.
func (ctx *Context) Const(name string, s Sort) AST {
	return ctx.ast(C.Z3_mk_const(ctx.c, ctx.symbol(name), s.s))
}

// MkFuncDecl declares an uninterpreted function symbol.
func (ctx *Context) MkFuncDecl(name string, domain []Sort, rng Sort) FuncDecl {
	var dom *C.Z3_sort
	if len(domain) > 0 {
		sorts := make([]C.Z3_sort, len(domain))
		for i, s := range domain {
			sorts[i] = s.s
		}
		dom = (*C.Z3_sort)(unsafe.Pointer(&sorts[0]))
	}
	d := C.Z3_mk_func_decl(ctx.c, ctx.symbol(name), C.uint(len(domain)), dom, rng.s)
	return FuncDecl{ctx, d}
}

// IntVal creates an integer numeral. The numeral is built from its decimal
// text so that no platform-dependent C integer type is involved.
func (ctx *Context) IntVal(v int64) AST {
	cstr := C.CString(strconv.FormatInt(v, 10))
	defer C.free(unsafe.Pointer(cstr))
	return ctx.ast(C.Z3_mk_numeral(ctx.c, cstr, ctx.IntSort().s))
}

func (ctx *Context) BoolVal(b bool) AST {
	if b {
		return ctx.ast(C.Z3_mk_true(ctx.c))
	}
	return ctx.ast(C.Z3_mk_false(ctx.c))
}

// String renders the expression in SMT-LIB syntax.
func (a AST) String() string {
	if a.IsNull() {
		return "<nil>"
	}
	s := C.Z3_ast_to_string(a.ctx.c, a.a)
	if s == nil {
		return "<invalid>"
	}
	return C.GoString(s)
}

func (s Sort) String() string {
	if s.ctx == nil || s.s == nil {
		return ""
	}
	str := C.Z3_sort_to_string(s.ctx.c, s.s)
	if str == nil {
		return "<invalid-sort>"
	}
	return C.GoString(str)
}

// NumeralString returns the decimal text of a numeral.
func (a AST) NumeralString() string {
	if a.IsNull() {
		return ""
	}
	s := C.Z3_get_numeral_string(a.ctx.c, a.a)
	if s == nil {
		return ""
	}
	return C.GoString(s)
}
