//go:build cgo
// +build cgo

package z3

import (
	"strconv"

	"github.com/pkg/errors"

	"github.com/vhavlena/cegis-go/smt"
	"github.com/vhavlena/cegis-go/term"
)

// Available reports whether this build links against Z3.
const Available = true

// ErrUnsupported is returned for terms the lowering cannot express, such as
// free variables or bare function symbols.
var ErrUnsupported = errors.New("z3: unsupported term")

type datatype struct {
	sort  Sort
	decls []ADTConstructorDecl
}

// Backend implements smt.Backend on an incremental Z3 solver. Terms are
// lowered once and cached. Quantified formulas become fresh Boolean
// constants, so the solver only ever sees ground formulas.
type Backend struct {
	terms *term.Manager
	cfg   *Config
	ctx   *Context
	s     *Solver
	model *Model

	sorts     map[term.Sort]Sort
	datatypes map[*term.Datatype]*datatype
	funcs     map[term.Term]FuncDecl
	cache     map[term.Term]AST
	names     map[string]bool
	solves    int
	reason    string
}

var _ smt.Backend = (*Backend)(nil)

// New creates a backend with its own Z3 context.
func New(m *term.Manager) (*Backend, error) {
	cfg := NewConfig()
	ctx := NewContext(cfg)
	b := &Backend{
		terms:     m,
		cfg:       cfg,
		ctx:       ctx,
		s:         ctx.NewSolver(),
		sorts:     make(map[term.Sort]Sort),
		datatypes: make(map[*term.Datatype]*datatype),
		funcs:     make(map[term.Term]FuncDecl),
		cache:     make(map[term.Term]AST),
		names:     make(map[string]bool),
	}
	if err := ctx.Err(); err != nil {
		b.Close()
		return nil, errors.Wrap(err, "new backend")
	}
	return b, nil
}

// Add asserts t.
func (b *Backend) Add(t term.Term) error {
	a, err := b.lower(t)
	if err != nil {
		return errors.Wrapf(err, "add %s", t)
	}
	b.s.Assert(a)
	return errors.Wrapf(b.ctx.Err(), "add %s", t)
}

// Solve checks the asserted formulas under the assumptions, which are
// asserted in a scope popped before returning.
func (b *Backend) Solve(assumptions []term.Term) (smt.Result, error) {
	b.dropModel()
	lits := make([]AST, len(assumptions))
	for i, t := range assumptions {
		a, err := b.lower(t)
		if err != nil {
			return smt.Unknown, errors.Wrapf(err, "assume %s", t)
		}
		lits[i] = a
	}
	b.solves++
	b.s.Push()
	defer b.s.Pop(1)
	for _, a := range lits {
		b.s.Assert(a)
	}
	res, err := b.s.Check()
	switch res {
	case Sat:
		b.model = b.s.Model()
		return smt.Sat, nil
	case Unsat:
		return smt.Unsat, nil
	default:
		if err != nil {
			b.reason = err.Error()
		}
		return smt.Unknown, nil
	}
}

// Value evaluates t in the model of the last satisfiable Solve, completing
// the model where needed.
func (b *Backend) Value(t term.Term) (term.Term, bool) {
	if b.model == nil {
		return term.Term{}, false
	}
	a, err := b.lower(t)
	if err != nil {
		return term.Term{}, false
	}
	return b.decode(t.Sort(), b.model.Eval(a, true))
}

// Solves returns the number of Solve calls so far.
func (b *Backend) Solves() int { return b.solves }

// Reason returns Z3's explanation of the last unknown result.
func (b *Backend) Reason() string { return b.reason }

// Close releases the model, solver and context.
func (b *Backend) Close() error {
	b.dropModel()
	b.s.Close()
	b.ctx.Close()
	b.cfg.Close()
	return nil
}

func (b *Backend) dropModel() {
	if b.model != nil {
		b.model.Close()
		b.model = nil
	}
}

func (b *Backend) decode(s term.Sort, v AST) (term.Term, bool) {
	if v.IsNull() {
		return term.Term{}, false
	}
	switch {
	case s.IsBool():
		if x, ok := v.BoolValue(); ok {
			return b.terms.Bool(x), true
		}
	case s.IsInt():
		if x, ok := v.AsInt64(); ok {
			return b.terms.Int(x), true
		}
	case s.IsDatatype():
		c, ok := s.Datatype().ConstructorByName(v.Decl().Name())
		if !ok || v.NumChildren() != c.Arity() {
			return term.Term{}, false
		}
		args := make([]term.Term, c.Arity())
		for i, f := range c.Fields() {
			arg, ok := b.decode(f.Sort, v.Child(i))
			if !ok {
				return term.Term{}, false
			}
			args[i] = arg
		}
		return b.terms.Ctor(c, args...), true
	}
	return term.Term{}, false
}

// name returns base, or base with a numeric suffix when base is taken.
func (b *Backend) name(base string) string {
	n := base
	for i := 1; b.names[n]; i++ {
		n = base + "!" + strconv.Itoa(i)
	}
	b.names[n] = true
	return n
}

func unsupported(t term.Term) error {
	return errors.Wrapf(ErrUnsupported, "%s of sort %s", t.Kind(), t.Sort())
}

func (b *Backend) sort(s term.Sort) (Sort, error) {
	if z, ok := b.sorts[s]; ok {
		return z, nil
	}
	var z Sort
	switch {
	case s.IsBool():
		z = b.ctx.BoolSort()
	case s.IsInt():
		z = b.ctx.IntSort()
	case s.IsDatatype():
		d, err := b.datatype(s.Datatype())
		if err != nil {
			return Sort{}, err
		}
		z = d.sort
	default:
		return Sort{}, errors.Wrapf(ErrUnsupported, "sort %s", s)
	}
	b.sorts[s] = z
	return z, nil
}

func (b *Backend) datatype(dt *term.Datatype) (*datatype, error) {
	if d, ok := b.datatypes[dt]; ok {
		return d, nil
	}
	ctors := make([]*Constructor, 0, dt.NumConstructors())
	for _, c := range dt.Constructors() {
		fields := make([]ADTField, c.Arity())
		for i, f := range c.Fields() {
			fields[i].Name = f.Name
			if f.Sort == dt.Sort() {
				fields[i].Recursive = true
				continue
			}
			s, err := b.sort(f.Sort)
			if err != nil {
				return nil, errors.Wrapf(err, "field %s of %s", f.Name, c.Name())
			}
			fields[i].Sort = s
		}
		ctors = append(ctors, b.ctx.MkConstructor(c.Name(), c.TesterName(), fields))
	}
	s, decls := b.ctx.MkDatatype(b.name(dt.Name()), ctors)
	d := &datatype{sort: s, decls: decls}
	b.datatypes[dt] = d
	return d, nil
}

func (b *Backend) funcDecl(f term.Term) (FuncDecl, error) {
	if d, ok := b.funcs[f]; ok {
		return d, nil
	}
	domain := f.Sort().Domain()
	dom := make([]Sort, len(domain))
	for i, s := range domain {
		z, err := b.sort(s)
		if err != nil {
			return FuncDecl{}, err
		}
		dom[i] = z
	}
	rng, err := b.sort(f.Sort().Range())
	if err != nil {
		return FuncDecl{}, err
	}
	d := b.ctx.MkFuncDecl(b.name(f.Name()), dom, rng)
	b.funcs[f] = d
	return d, nil
}

func (b *Backend) lowerAll(ts []term.Term) ([]AST, error) {
	out := make([]AST, len(ts))
	for i, t := range ts {
		a, err := b.lower(t)
		if err != nil {
			return nil, err
		}
		out[i] = a
	}
	return out, nil
}

func (b *Backend) lower(t term.Term) (AST, error) {
	if a, ok := b.cache[t]; ok {
		return a, nil
	}
	a, err := b.lowerNode(t)
	if err != nil {
		return AST{}, err
	}
	b.cache[t] = a
	return a, nil
}

func (b *Backend) lowerNode(t term.Term) (AST, error) {
	switch t.Kind() {
	case term.KindBool:
		v, _ := t.BoolValue()
		return b.ctx.BoolVal(v), nil
	case term.KindInt:
		v, _ := t.IntValue()
		return b.ctx.IntVal(v), nil
	case term.KindConst:
		s, err := b.sort(t.Sort())
		if err != nil {
			return AST{}, err
		}
		return b.ctx.Const(b.name(t.Name()), s), nil
	case term.KindForall:
		return b.ctx.Const(b.name("q"), b.ctx.BoolSort()), nil
	case term.KindApply:
		f, err := b.funcDecl(t.Function())
		if err != nil {
			return AST{}, err
		}
		args, err := b.lowerAll(t.Children()[1:])
		if err != nil {
			return AST{}, err
		}
		return b.ctx.App(f, args...), nil
	case term.KindConstructor, term.KindSelector, term.KindTester:
		return b.lowerDatatypeOp(t)
	case term.KindVar, term.KindFunc, term.KindNull:
		return AST{}, unsupported(t)
	}

	args, err := b.lowerAll(t.Children())
	if err != nil {
		return AST{}, err
	}
	switch t.Kind() {
	case term.KindNot:
		return args[0].Not(), nil
	case term.KindAnd:
		return And(args...), nil
	case term.KindOr:
		return Or(args...), nil
	case term.KindImplies:
		return Implies(args[0], args[1]), nil
	case term.KindIte:
		return Ite(args[0], args[1], args[2]), nil
	case term.KindEq:
		return Eq(args[0], args[1]), nil
	case term.KindLeq:
		return Le(args[0], args[1]), nil
	case term.KindPlus:
		return Add(args...), nil
	}
	return AST{}, unsupported(t)
}

func (b *Backend) lowerDatatypeOp(t term.Term) (AST, error) {
	c := t.Constructor()
	d, err := b.datatype(c.Datatype())
	if err != nil {
		return AST{}, err
	}
	args, err := b.lowerAll(t.Children())
	if err != nil {
		return AST{}, err
	}
	decl := d.decls[c.Index()]
	switch t.Kind() {
	case term.KindConstructor:
		return b.ctx.App(decl.Constructor, args...), nil
	case term.KindSelector:
		return b.ctx.App(decl.Accessors[t.FieldIndex()], args...), nil
	default:
		return b.ctx.App(decl.Recognizer, args...), nil
	}
}
