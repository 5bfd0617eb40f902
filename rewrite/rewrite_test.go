package rewrite

import (
	"testing"

	"github.com/vhavlena/cegis-go/term"
)

type env struct {
	m         *term.Manager
	r         *Rewriter
	p, q      term.Term
	n         term.Term
	bit       *term.Datatype
	zero, one term.Term
	pair      *term.Datatype
	mkPair    *term.Constructor
}

func newEnv() *env {
	m := term.NewManager()
	e := &env{m: m, r: New(m)}
	e.p = m.Const("p", m.BoolSort())
	e.q = m.Const("q", m.BoolSort())
	e.n = m.Const("n", m.IntSort())
	e.bit = m.DeclareDatatype("Bit", []term.ConstructorDecl{{Name: "Zero"}, {Name: "One"}})
	e.zero = m.Ctor(e.bit.Constructor(0))
	e.one = m.Ctor(e.bit.Constructor(1))
	e.pair = m.DeclareDatatype("Pair", []term.ConstructorDecl{
		{Name: "mk", Fields: []term.FieldDecl{{Name: "fst", Sort: e.bit.Sort()}, {Name: "snd", Sort: m.IntSort()}}},
	})
	e.mkPair = e.pair.Constructor(0)
	return e
}

func (e *env) check(t *testing.T, in, want term.Term) {
	t.Helper()
	got := e.r.Rewrite(in)
	if got != want {
		t.Fatalf("rewrite %s: expected %s, got %s", in, want, got)
	}
	if again := e.r.Rewrite(got); again != got {
		t.Fatalf("rewrite is not idempotent on %s: %s", got, again)
	}
}

func TestBooleanConnectives(t *testing.T) {
	e := newEnv()
	m, p, q := e.m, e.p, e.q

	e.check(t, term.Not(term.Not(p)), p)
	e.check(t, term.Not(m.True()), m.False())
	e.check(t, term.And(p, m.True(), p), p)
	e.check(t, term.And(p, m.False()), m.False())
	e.check(t, term.Or(p, term.Not(p)), m.True())
	e.check(t, term.And(q, term.And(p, q)), term.And(p, q))
	e.check(t, term.Or(q, p), term.Or(p, q))
	e.check(t, term.Or(m.False()), m.False())
	e.check(t, term.Implies(p, q), term.Or(q, term.Not(p)))
	e.check(t, term.Implies(m.False(), q), m.True())
}

func TestIte(t *testing.T) {
	e := newEnv()
	m, p, q := e.m, e.p, e.q

	e.check(t, term.Ite(m.True(), e.zero, e.one), e.zero)
	e.check(t, term.Ite(p, e.one, e.one), e.one)
	e.check(t, term.Ite(term.Not(p), e.zero, e.one), term.Ite(p, e.one, e.zero))
	e.check(t, term.Ite(p, q, m.False()), term.And(p, q))
	e.check(t, term.Ite(term.Not(p), m.True(), q), term.Or(term.Not(p), term.And(p, q)))
}

func TestEquality(t *testing.T) {
	e := newEnv()
	m, p, n := e.m, e.p, e.n
	x := m.Const("x", e.bit.Sort())

	e.check(t, term.Eq(x, x), m.True())
	e.check(t, term.Eq(e.zero, e.one), m.False())
	e.check(t, term.Eq(m.Int(2), m.Int(3)), m.False())
	e.check(t, term.Eq(e.one, x), term.Eq(e.one, x))
	e.check(t, term.Eq(x, e.one), term.Eq(e.one, x))
	e.check(t, term.Eq(m.True(), p), p)
	e.check(t, term.Eq(p, m.False()), term.Not(p))
	e.check(t, term.Eq(term.Not(p), p), m.False())

	pair := m.Ctor(e.mkPair, x, n)
	fst := term.Eq(e.zero, x)
	snd := term.Eq(n, m.Int(1))
	e.check(t, term.Eq(pair, m.Ctor(e.mkPair, e.zero, m.Int(1))), term.And(fst, snd))
}

func TestArithmetic(t *testing.T) {
	e := newEnv()
	m, n := e.m, e.n
	k := m.Const("k", m.IntSort())

	e.check(t, term.Leq(m.Int(1), m.Int(2)), m.True())
	e.check(t, term.Leq(m.Int(3), m.Int(2)), m.False())
	e.check(t, term.Leq(n, n), m.True())
	e.check(t, term.Plus(m.Int(1), m.Int(2)), m.Int(3))
	e.check(t, term.Plus(n, m.Int(0)), n)
	e.check(t, term.Plus(k, term.Plus(m.Int(1), n), m.Int(2)), term.Plus(n, k, m.Int(3)))
	e.check(t, term.Leq(term.Plus(m.Int(2), m.Int(2)), m.Int(4)), m.True())
}

func TestDatatypeOperators(t *testing.T) {
	e := newEnv()
	m, n := e.m, e.n
	x := m.Const("x", e.bit.Sort())
	pr := m.Const("pr", e.pair.Sort())
	v := m.Ctor(e.mkPair, e.one, n)

	e.check(t, m.Test(e.bit.Constructor(0), e.zero), m.True())
	e.check(t, m.Test(e.bit.Constructor(1), e.zero), m.False())
	e.check(t, m.Test(e.bit.Constructor(1), x), m.Test(e.bit.Constructor(1), x))
	e.check(t, m.Test(e.mkPair, pr), m.True())
	e.check(t, m.Select(e.mkPair, 1, v), n)
	e.check(t, m.Select(e.mkPair, 0, pr), m.Select(e.mkPair, 0, pr))
}

func TestQuantifiers(t *testing.T) {
	e := newEnv()
	m := e.m
	x := m.Var("x", e.bit.Sort())
	y := m.Var("y", e.bit.Sort())

	e.check(t, m.Forall([]term.Term{x}, term.Or(e.p, term.Not(e.p))), m.True())
	e.check(t, m.Forall([]term.Term{x}, e.p), e.p)

	body := term.Eq(e.one, x)
	e.check(t, m.Forall([]term.Term{x, y}, term.And(body, m.True())), m.Forall([]term.Term{x, y}, body))
	e.check(t, m.Forall([]term.Term{x}, term.Eq(x, x)), m.True())
}

func TestRewriteIsCached(t *testing.T) {
	e := newEnv()
	in := term.And(e.q, term.Not(term.Not(e.p)))
	first := e.r.Rewrite(in)
	if len(e.r.cache) == 0 {
		t.Fatalf("expected cached entries")
	}
	if e.r.Rewrite(in) != first {
		t.Fatalf("cached rewrite differs")
	}
	if e.r.Rewrite(term.Term{}) != (term.Term{}) {
		t.Fatalf("null term must rewrite to itself")
	}
}
