//go:build cgo
// +build cgo

package z3

/*
#include <stdlib.h>
#include "z3.h"
*/
import "C"

import "unsafe"

// Constructor is a descriptor consumed by MkDatatype.
type Constructor struct {
	ctx *Context
	c   C.Z3_constructor
	n   int
}

// ADTField describes a constructor field. A field with Recursive set refers
// to the datatype being declared and its Sort is ignored.
type ADTField struct {
	Name      string
	Sort      Sort
	Recursive bool
}

// ADTConstructorDecl holds the declarations of one constructor: the
// constructor function, its recognizer (tester) and one accessor (selector)
// per field.
type ADTConstructorDecl struct {
	Constructor FuncDecl
	Recognizer  FuncDecl
	Accessors   []FuncDecl
}

// MkConstructor creates a constructor descriptor. The descriptor is freed by
// MkDatatype.
func (ctx *Context) MkConstructor(name, recognizer string, fields []ADTField) *Constructor {
	n := len(fields)
	var fieldSyms *C.Z3_symbol
	var fieldSorts *C.Z3_sort
	var sortRefs *C.uint
	if n > 0 {
		syms := make([]C.Z3_symbol, n)
		sorts := make([]C.Z3_sort, n)
		refs := make([]C.uint, n)
		for i, f := range fields {
			syms[i] = ctx.symbol(f.Name)
			if !f.Recursive {
				sorts[i] = f.Sort.s
			}
			// a null sort with reference 0 points at the datatype itself
		}
		fieldSyms = (*C.Z3_symbol)(unsafe.Pointer(&syms[0]))
		fieldSorts = (*C.Z3_sort)(unsafe.Pointer(&sorts[0]))
		sortRefs = (*C.uint)(unsafe.Pointer(&refs[0]))
	}
	c := C.Z3_mk_constructor(ctx.c, ctx.symbol(name), ctx.symbol(recognizer), C.uint(n), fieldSyms, fieldSorts, sortRefs)
	return &Constructor{ctx: ctx, c: c, n: n}
}

// MkDatatype declares a datatype sort from constructor descriptors and
// returns the declarations of each constructor in order.
func (ctx *Context) MkDatatype(name string, ctors []*Constructor) (Sort, []ADTConstructorDecl) {
	n := len(ctors)
	var arr *C.Z3_constructor
	if n > 0 {
		carr := make([]C.Z3_constructor, n)
		for i, k := range ctors {
			carr[i] = k.c
		}
		arr = (*C.Z3_constructor)(unsafe.Pointer(&carr[0]))
	}
	srt := C.Z3_mk_datatype(ctx.c, ctx.symbol(name), C.uint(n), arr)
	decls := make([]ADTConstructorDecl, n)
	for i, k := range ctors {
		var fdecl, rdecl C.Z3_func_decl
		var acc *C.Z3_func_decl
		var accArr []C.Z3_func_decl
		if k.n > 0 {
			accArr = make([]C.Z3_func_decl, k.n)
			acc = (*C.Z3_func_decl)(unsafe.Pointer(&accArr[0]))
		}
		C.Z3_query_constructor(ctx.c, k.c, C.uint(k.n), &fdecl, &rdecl, acc)
		d := ADTConstructorDecl{Constructor: FuncDecl{ctx, fdecl}, Recognizer: FuncDecl{ctx, rdecl}}
		for _, a := range accArr {
			d.Accessors = append(d.Accessors, FuncDecl{ctx, a})
		}
		decls[i] = d
		C.Z3_del_constructor(ctx.c, k.c)
	}
	return Sort{ctx, srt}, decls
}
