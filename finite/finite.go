// Package finite decides ground formulas over Booleans and enumeration
// datatypes by bit-blasting them into a gini circuit.
//
// Each Boolean atom becomes a circuit input; each enumeration-sorted constant
// becomes a one-hot group of inputs constrained to exactly one true member.
// Quantified formulas are opaque Boolean atoms. Integers, uninterpreted
// functions and recursive datatypes are not supported.
package finite

import (
	"maps"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"
	"github.com/pkg/errors"

	"github.com/vhavlena/cegis-go/smt"
	"github.com/vhavlena/cegis-go/term"
)

// ErrUnsupported is returned for terms outside the finite fragment.
var ErrUnsupported = errors.New("finite: unsupported term")

// Backend implements smt.Backend. The circuit grows monotonically; every
// Solve rebuilds the CNF of the whole circuit in a fresh gini instance.
type Backend struct {
	terms *term.Manager
	c     *logic.C
	g     *gini.Gini

	atoms  map[term.Term]z.Lit
	enums  map[term.Term][]z.Lit
	cache  map[term.Term]z.Lit
	roots  []z.Lit
	sat    bool
	solves int

	// model snapshots the inputs present at the last Solve; inputs created
	// later have no value in that solver instance.
	model struct {
		atoms map[term.Term]z.Lit
		enums map[term.Term][]z.Lit
	}
}

var _ smt.Backend = (*Backend)(nil)

// New creates an empty backend over m.
func New(m *term.Manager) *Backend {
	return &Backend{
		terms: m,
		c:     logic.NewC(),
		atoms: make(map[term.Term]z.Lit),
		enums: make(map[term.Term][]z.Lit),
		cache: make(map[term.Term]z.Lit),
	}
}

// Add asserts t.
func (b *Backend) Add(t term.Term) error {
	lit, err := b.encode(t)
	if err != nil {
		return errors.Wrapf(err, "add %s", t)
	}
	b.roots = append(b.roots, lit)
	return nil
}

// Solve checks the conjunction of all added formulas and the assumptions.
func (b *Backend) Solve(assumptions []term.Term) (smt.Result, error) {
	lits := make([]z.Lit, 0, len(assumptions))
	for _, a := range assumptions {
		lit, err := b.encode(a)
		if err != nil {
			return smt.Unknown, errors.Wrapf(err, "assume %s", a)
		}
		lits = append(lits, lit)
	}
	g := gini.New()
	b.c.ToCnf(g)
	g.Add(b.c.T)
	g.Add(0)
	for _, r := range b.roots {
		g.Add(r)
		g.Add(0)
	}
	g.Assume(lits...)
	b.g = g
	b.model.atoms = maps.Clone(b.atoms)
	b.model.enums = maps.Clone(b.enums)
	b.solves++
	switch g.Solve() {
	case 1:
		b.sat = true
		return smt.Sat, nil
	case -1:
		b.sat = false
		return smt.Unsat, nil
	default:
		b.sat = false
		return smt.Unknown, nil
	}
}

// Solves returns the number of Solve calls so far.
func (b *Backend) Solves() int { return b.solves }

// Close releases the solver.
func (b *Backend) Close() error {
	b.g = nil
	b.sat = false
	return nil
}

func unsupported(t term.Term) error {
	return errors.Wrapf(ErrUnsupported, "%s of sort %s", t.Kind(), t.Sort())
}

func (b *Backend) encode(t term.Term) (z.Lit, error) {
	if !t.Sort().IsBool() {
		return z.LitNull, unsupported(t)
	}
	if lit, ok := b.cache[t]; ok {
		return lit, nil
	}
	lit, err := b.encodeBool(t)
	if err != nil {
		return z.LitNull, err
	}
	b.cache[t] = lit
	return lit, nil
}

func (b *Backend) encodeBool(t term.Term) (z.Lit, error) {
	c := b.c
	switch t.Kind() {
	case term.KindBool:
		if v, _ := t.BoolValue(); v {
			return c.T, nil
		}
		return c.F, nil
	case term.KindConst, term.KindForall:
		return b.atom(t), nil
	case term.KindNot:
		x, err := b.encode(t.Child(0))
		if err != nil {
			return z.LitNull, err
		}
		return x.Not(), nil
	case term.KindAnd, term.KindOr:
		lits, err := b.encodeAll(t.Children())
		if err != nil {
			return z.LitNull, err
		}
		if t.Kind() == term.KindAnd {
			return b.and(lits...), nil
		}
		return b.or(lits...), nil
	case term.KindImplies:
		lits, err := b.encodeAll(t.Children())
		if err != nil {
			return z.LitNull, err
		}
		return c.Or(lits[0].Not(), lits[1]), nil
	case term.KindIte:
		lits, err := b.encodeAll(t.Children())
		if err != nil {
			return z.LitNull, err
		}
		return b.ite(lits[0], lits[1], lits[2]), nil
	case term.KindEq:
		x, y := t.Child(0), t.Child(1)
		if x.Sort().IsBool() {
			lits, err := b.encodeAll([]term.Term{x, y})
			if err != nil {
				return z.LitNull, err
			}
			return b.iff(lits[0], lits[1]), nil
		}
		xs, err := b.encodeEnum(x)
		if err != nil {
			return z.LitNull, err
		}
		ys, err := b.encodeEnum(y)
		if err != nil {
			return z.LitNull, err
		}
		same := make([]z.Lit, len(xs))
		for i := range xs {
			same[i] = c.And(xs[i], ys[i])
		}
		return b.or(same...), nil
	case term.KindTester:
		xs, err := b.encodeEnum(t.Child(0))
		if err != nil {
			return z.LitNull, err
		}
		return xs[t.Constructor().Index()], nil
	default:
		return z.LitNull, unsupported(t)
	}
}

func (b *Backend) encodeAll(ts []term.Term) ([]z.Lit, error) {
	lits := make([]z.Lit, len(ts))
	for i, t := range ts {
		lit, err := b.encode(t)
		if err != nil {
			return nil, err
		}
		lits[i] = lit
	}
	return lits, nil
}

// encodeEnum returns the one-hot encoding of an enumeration-sorted term.
func (b *Backend) encodeEnum(t term.Term) ([]z.Lit, error) {
	dt := t.Sort().Datatype()
	if dt == nil || !dt.IsEnumeration() {
		return nil, unsupported(t)
	}
	switch t.Kind() {
	case term.KindConstructor:
		lits := make([]z.Lit, dt.NumConstructors())
		for i := range lits {
			lits[i] = b.c.F
		}
		lits[t.Constructor().Index()] = b.c.T
		return lits, nil
	case term.KindConst:
		if lits, ok := b.enums[t]; ok {
			return lits, nil
		}
		lits := make([]z.Lit, dt.NumConstructors())
		for i := range lits {
			lits[i] = b.c.Lit()
		}
		b.roots = append(b.roots, b.exactlyOne(lits))
		b.enums[t] = lits
		return lits, nil
	case term.KindIte:
		cond, err := b.encode(t.Child(0))
		if err != nil {
			return nil, err
		}
		xs, err := b.encodeEnum(t.Child(1))
		if err != nil {
			return nil, err
		}
		ys, err := b.encodeEnum(t.Child(2))
		if err != nil {
			return nil, err
		}
		lits := make([]z.Lit, len(xs))
		for i := range xs {
			lits[i] = b.ite(cond, xs[i], ys[i])
		}
		return lits, nil
	default:
		return nil, unsupported(t)
	}
}

func (b *Backend) atom(t term.Term) z.Lit {
	if lit, ok := b.atoms[t]; ok {
		return lit
	}
	lit := b.c.Lit()
	b.atoms[t] = lit
	return lit
}

func (b *Backend) and(lits ...z.Lit) z.Lit {
	acc := b.c.T
	for _, l := range lits {
		acc = b.c.And(acc, l)
	}
	return acc
}

func (b *Backend) or(lits ...z.Lit) z.Lit {
	acc := b.c.F
	for _, l := range lits {
		acc = b.c.Or(acc, l)
	}
	return acc
}

func (b *Backend) ite(cond, x, y z.Lit) z.Lit {
	return b.c.Or(b.c.And(cond, x), b.c.And(cond.Not(), y))
}

func (b *Backend) iff(x, y z.Lit) z.Lit {
	return b.c.Or(b.c.And(x, y), b.c.And(x.Not(), y.Not()))
}

func (b *Backend) exactlyOne(lits []z.Lit) z.Lit {
	parts := []z.Lit{b.or(lits...)}
	for i := range lits {
		for j := i + 1; j < len(lits); j++ {
			parts = append(parts, b.c.Or(lits[i].Not(), lits[j].Not()))
		}
	}
	return b.and(parts...)
}
