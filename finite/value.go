package finite

import (
	"github.com/go-air/gini/z"

	"github.com/vhavlena/cegis-go/term"
)

// Value evaluates t in the model of the last satisfiable Solve. Constants
// that were not part of that Solve are completed with false or the first
// constructor of their sort.
func (b *Backend) Value(t term.Term) (term.Term, bool) {
	if !b.sat || b.g == nil {
		return term.Term{}, false
	}
	switch s := t.Sort(); {
	case s.IsBool():
		v, ok := b.evalBool(t)
		if !ok {
			return term.Term{}, false
		}
		return b.terms.Bool(v), true
	case s.IsDatatype() && s.Datatype().IsEnumeration():
		c, ok := b.evalEnum(t)
		if !ok {
			return term.Term{}, false
		}
		return b.terms.Ctor(c), true
	default:
		return term.Term{}, false
	}
}

func (b *Backend) lit(l z.Lit) bool { return b.g.Value(l) }

func (b *Backend) evalBool(t term.Term) (bool, bool) {
	switch t.Kind() {
	case term.KindBool:
		v, _ := t.BoolValue()
		return v, true
	case term.KindConst, term.KindForall:
		if lit, ok := b.model.atoms[t]; ok {
			return b.lit(lit), true
		}
		return false, true
	case term.KindNot:
		v, ok := b.evalBool(t.Child(0))
		return !v, ok
	case term.KindAnd, term.KindOr:
		want := t.Kind() == term.KindOr
		for _, c := range t.Children() {
			v, ok := b.evalBool(c)
			if !ok {
				return false, false
			}
			if v == want {
				return want, true
			}
		}
		return !want, true
	case term.KindImplies:
		x, ok := b.evalBool(t.Child(0))
		if !ok {
			return false, false
		}
		if !x {
			return true, true
		}
		return b.evalBool(t.Child(1))
	case term.KindIte:
		cond, ok := b.evalBool(t.Child(0))
		if !ok {
			return false, false
		}
		if cond {
			return b.evalBool(t.Child(1))
		}
		return b.evalBool(t.Child(2))
	case term.KindEq:
		x, y := t.Child(0), t.Child(1)
		if x.Sort().IsBool() {
			vx, okx := b.evalBool(x)
			vy, oky := b.evalBool(y)
			return vx == vy, okx && oky
		}
		cx, okx := b.evalEnum(x)
		cy, oky := b.evalEnum(y)
		return cx == cy, okx && oky
	case term.KindTester:
		c, ok := b.evalEnum(t.Child(0))
		return c == t.Constructor(), ok
	default:
		return false, false
	}
}

func (b *Backend) evalEnum(t term.Term) (*term.Constructor, bool) {
	dt := t.Sort().Datatype()
	if dt == nil || !dt.IsEnumeration() {
		return nil, false
	}
	switch t.Kind() {
	case term.KindConstructor:
		return t.Constructor(), true
	case term.KindConst:
		lits, ok := b.model.enums[t]
		if !ok {
			return dt.Constructor(0), true
		}
		for i, l := range lits {
			if b.lit(l) {
				return dt.Constructor(i), true
			}
		}
		return nil, false
	case term.KindIte:
		cond, ok := b.evalBool(t.Child(0))
		if !ok {
			return nil, false
		}
		if cond {
			return b.evalEnum(t.Child(1))
		}
		return b.evalEnum(t.Child(2))
	default:
		return nil, false
	}
}
