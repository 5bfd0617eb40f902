// Package rewrite normalises terms. The rewriter is meaning-preserving and
// idempotent: folding constants, flattening associative connectives,
// evaluating testers and selectors on constructor values and ordering
// commutative arguments by term id.
//
// Quantifiers keep their bound variables and their order unless none of them
// occurs in the rewritten body, in which case the quantifier is dropped.
package rewrite

import (
	"sort"

	"github.com/vhavlena/cegis-go/term"
)

// Rewriter memoises normal forms for one term manager.
type Rewriter struct {
	m     *term.Manager
	cache map[term.Term]term.Term
}

// New creates a rewriter over m.
func New(m *term.Manager) *Rewriter {
	return &Rewriter{m: m, cache: make(map[term.Term]term.Term)}
}

// Rewrite returns the normal form of t.
func (r *Rewriter) Rewrite(t term.Term) term.Term {
	if t.IsNull() {
		return t
	}
	if res, ok := r.cache[t]; ok {
		return res
	}
	var res term.Term
	switch t.Kind() {
	case term.KindBool, term.KindInt, term.KindConst, term.KindVar, term.KindFunc:
		res = t
	case term.KindForall:
		res = r.forall(t)
	default:
		children := t.Children()
		for i := range children {
			children[i] = r.Rewrite(children[i])
		}
		res = r.simplify(t, children)
	}
	r.cache[t] = res
	r.cache[res] = res
	return res
}

func (r *Rewriter) simplify(t term.Term, ch []term.Term) term.Term {
	switch t.Kind() {
	case term.KindNot:
		return r.not(ch[0])
	case term.KindAnd:
		return r.and(ch)
	case term.KindOr:
		return r.or(ch)
	case term.KindImplies:
		return r.or([]term.Term{r.not(ch[0]), ch[1]})
	case term.KindIte:
		return r.ite(ch[0], ch[1], ch[2])
	case term.KindEq:
		return r.eq(ch[0], ch[1])
	case term.KindLeq:
		return r.leq(ch[0], ch[1])
	case term.KindPlus:
		return r.plus(ch)
	case term.KindTester:
		return r.tester(t.Constructor(), ch[0])
	case term.KindSelector:
		return r.selector(t.Constructor(), t.FieldIndex(), ch[0])
	default:
		return t.WithChildren(ch)
	}
}

func (r *Rewriter) forall(q term.Term) term.Term {
	body := r.Rewrite(q.Body())
	if _, ok := body.BoolValue(); ok {
		return body
	}
	vars := q.BoundVars()
	free := body.FreeVars()
	for _, v := range vars {
		if free.Contains(v) {
			return r.m.Forall(vars, body)
		}
	}
	return body
}

func (r *Rewriter) not(x term.Term) term.Term {
	if v, ok := x.BoolValue(); ok {
		return r.m.Bool(!v)
	}
	if x.Kind() == term.KindNot {
		return x.Child(0)
	}
	return term.Not(x)
}

func (r *Rewriter) and(ch []term.Term) term.Term {
	return r.junction(term.KindAnd, ch, false)
}

func (r *Rewriter) or(ch []term.Term) term.Term {
	return r.junction(term.KindOr, ch, true)
}

// junction normalises a conjunction (absorbing = false) or a disjunction
// (absorbing = true). Operands are already in normal form.
func (r *Rewriter) junction(kind term.Kind, ch []term.Term, absorbing bool) term.Term {
	seen := make(map[term.Term]bool, len(ch))
	var flat []term.Term
	var add func(x term.Term) bool
	add = func(x term.Term) bool {
		if v, ok := x.BoolValue(); ok {
			return v == absorbing
		}
		if x.Kind() == kind {
			for _, c := range x.Children() {
				if add(c) {
					return true
				}
			}
			return false
		}
		if !seen[x] {
			seen[x] = true
			flat = append(flat, x)
		}
		return false
	}
	for _, x := range ch {
		if add(x) {
			return r.m.Bool(absorbing)
		}
	}
	for _, x := range flat {
		if x.Kind() == term.KindNot && seen[x.Child(0)] {
			return r.m.Bool(absorbing)
		}
	}
	switch len(flat) {
	case 0:
		return r.m.Bool(!absorbing)
	case 1:
		return flat[0]
	}
	sortByID(flat)
	if kind == term.KindAnd {
		return term.And(flat...)
	}
	return term.Or(flat...)
}

func (r *Rewriter) ite(c, a, b term.Term) term.Term {
	if v, ok := c.BoolValue(); ok {
		if v {
			return a
		}
		return b
	}
	if a == b {
		return a
	}
	if c.Kind() == term.KindNot {
		return r.ite(c.Child(0), b, a)
	}
	if a.Sort().IsBool() {
		return r.or([]term.Term{r.and([]term.Term{c, a}), r.and([]term.Term{r.not(c), b})})
	}
	return term.Ite(c, a, b)
}

func (r *Rewriter) eq(a, b term.Term) term.Term {
	if a == b {
		return r.m.True()
	}
	if a.IsValue() && b.IsValue() {
		return r.m.False()
	}
	if a.Sort().IsBool() {
		if v, ok := a.BoolValue(); ok {
			if v {
				return b
			}
			return r.not(b)
		}
		if v, ok := b.BoolValue(); ok {
			if v {
				return a
			}
			return r.not(a)
		}
		if r.not(a) == b {
			return r.m.False()
		}
	}
	if a.Kind() == term.KindConstructor && b.Kind() == term.KindConstructor {
		if a.Constructor() != b.Constructor() {
			return r.m.False()
		}
		parts := make([]term.Term, a.NumChildren())
		for i := range parts {
			parts[i] = r.eq(a.Child(i), b.Child(i))
		}
		return r.and(parts)
	}
	if a.ID() > b.ID() {
		a, b = b, a
	}
	return term.Eq(a, b)
}

func (r *Rewriter) leq(a, b term.Term) term.Term {
	if a == b {
		return r.m.True()
	}
	x, okx := a.IntValue()
	y, oky := b.IntValue()
	if okx && oky {
		return r.m.Bool(x <= y)
	}
	return term.Leq(a, b)
}

func (r *Rewriter) plus(ch []term.Term) term.Term {
	var sum int64
	var rest []term.Term
	var add func(x term.Term)
	add = func(x term.Term) {
		if v, ok := x.IntValue(); ok {
			sum += v
			return
		}
		if x.Kind() == term.KindPlus {
			for _, c := range x.Children() {
				add(c)
			}
			return
		}
		rest = append(rest, x)
	}
	for _, x := range ch {
		add(x)
	}
	sortByID(rest)
	if sum != 0 || len(rest) == 0 {
		rest = append(rest, r.m.Int(sum))
	}
	if len(rest) == 1 {
		return rest[0]
	}
	return term.Plus(rest...)
}

func (r *Rewriter) tester(c *term.Constructor, x term.Term) term.Term {
	if x.Kind() == term.KindConstructor {
		return r.m.Bool(x.Constructor() == c)
	}
	if c.Datatype().NumConstructors() == 1 {
		return r.m.True()
	}
	return r.m.Test(c, x)
}

func (r *Rewriter) selector(c *term.Constructor, i int, x term.Term) term.Term {
	if x.Kind() == term.KindConstructor && x.Constructor() == c {
		return x.Child(i)
	}
	return r.m.Select(c, i, x)
}

func sortByID(ts []term.Term) {
	sort.Slice(ts, func(i, j int) bool { return ts[i].ID() < ts[j].ID() })
}
