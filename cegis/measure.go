package cegis

import (
	"github.com/vhavlena/cegis-go/term"
)

// MeasureCache owns the uninterpreted size functions of datatype sorts and
// the size terms and size-definition lemmas built over them. Everything is
// created at most once.
type MeasureCache struct {
	m      *term.Manager
	fns    map[*term.Datatype]term.Term
	sizes  map[term.Term]term.Term
	lemmas map[term.Term]map[int]term.Term
}

// NewMeasureCache creates an empty cache over m.
func NewMeasureCache(m *term.Manager) *MeasureCache {
	return &MeasureCache{
		m:      m,
		fns:    make(map[*term.Datatype]term.Term),
		sizes:  make(map[term.Term]term.Term),
		lemmas: make(map[term.Term]map[int]term.Term),
	}
}

// SizeFunction returns the size function of a datatype sort, declaring it on
// first request. It reports false for sorts that are not datatypes.
func (mc *MeasureCache) SizeFunction(s term.Sort) (term.Term, bool) {
	dt := s.Datatype()
	if dt == nil {
		return term.Term{}, false
	}
	if f, ok := mc.fns[dt]; ok {
		return f, true
	}
	f := mc.m.Func("tsize_"+dt.Name(), []term.Sort{s}, mc.m.IntSort())
	mc.fns[dt] = f
	return f, true
}

// SizeTerm returns size(t) for a datatype-typed t. The first request for t
// appends the non-negativity lemma 0 <= size(t) to lems.
func (mc *MeasureCache) SizeTerm(t term.Term, lems []term.Term) (term.Term, []term.Term) {
	if st, ok := mc.sizes[t]; ok {
		return st, lems
	}
	f, ok := mc.SizeFunction(t.Sort())
	if !ok {
		contract("size term", "%s has non-datatype sort %s", t, t.Sort())
	}
	st := mc.m.Apply(f, t)
	mc.sizes[t] = st
	return st, append(lems, term.Leq(mc.m.Int(0), st))
}

// Lemmas appends the size-definition lemmas for t under its model value v.
// For the constructor C of v it emits, once per (t, C), the lemma
//
//	not is-C(t) or size(t) = size(sel_1(t)) + ... + size(sel_k(t)) + 1
//
// where the sum ranges over datatype-typed fields, or size(t) = 0 when there
// are none. It then descends into every argument of v through the total
// selectors of C.
func (mc *MeasureCache) Lemmas(t, v term.Term, lems []term.Term) []term.Term {
	if !t.Sort().IsDatatype() {
		return lems
	}
	if v.Sort() != t.Sort() || v.Kind() != term.KindConstructor {
		contract("measure lemmas", "model value %s of %s is not a constructor value", v, t)
	}
	ctor := v.Constructor()
	byCtor, ok := mc.lemmas[t]
	if !ok {
		byCtor = make(map[int]term.Term)
		mc.lemmas[t] = byCtor
	}
	if _, done := byCtor[ctor.Index()]; !done {
		var lhs term.Term
		lhs, lems = mc.SizeTerm(t, lems)
		var sum []term.Term
		for i, f := range ctor.Fields() {
			if f.Sort.IsDatatype() {
				var st term.Term
				st, lems = mc.SizeTerm(mc.m.Select(ctor, i, t), lems)
				sum = append(sum, st)
			}
		}
		rhs := mc.m.Int(0)
		if len(sum) > 0 {
			rhs = term.Plus(append(sum, mc.m.Int(1))...)
		}
		lem := term.Or(term.Not(mc.m.Test(ctor, t)), term.Eq(lhs, rhs))
		byCtor[ctor.Index()] = lem
		lems = append(lems, lem)
	}
	for i := 0; i < v.NumChildren(); i++ {
		lems = mc.Lemmas(mc.m.Select(ctor, i, t), v.Child(i), lems)
	}
	return lems
}

// Lemma returns the cached size-definition lemma of t for the constructor
// with the given index.
func (mc *MeasureCache) Lemma(t term.Term, ctorIndex int) (term.Term, bool) {
	lem, ok := mc.lemmas[t][ctorIndex]
	return lem, ok
}
