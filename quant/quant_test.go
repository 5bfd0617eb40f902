package quant

import (
	"strings"
	"testing"

	"github.com/vhavlena/cegis-go/term"
)

func TestSkolemizedBodyIsCached(t *testing.T) {
	m := term.NewManager()
	x := m.Var("x", m.IntSort())
	y := m.Var("y", m.IntSort())
	q := m.Forall([]term.Term{x, y}, term.Leq(x, y))

	sk := NewSkolemizer(m)
	if got := sk.SkolemConstants(q); got != nil {
		t.Fatalf("expected no witnesses before skolemization, got %v", got)
	}
	body := sk.SkolemizedBody(q)
	consts := sk.SkolemConstants(q)
	if len(consts) != 2 {
		t.Fatalf("expected 2 witnesses, got %d", len(consts))
	}
	if !strings.HasPrefix(consts[0].Name(), "sk_x") || !strings.HasPrefix(consts[1].Name(), "sk_y") {
		t.Fatalf("unexpected witness names %s %s", consts[0].Name(), consts[1].Name())
	}
	if body != term.Leq(consts[0], consts[1]) {
		t.Fatalf("unexpected skolemized body %s", body)
	}
	if sk.SkolemizedBody(q) != body {
		t.Fatalf("skolemization must be cached")
	}
	consts[0] = m.Int(0)
	if sk.SkolemConstants(q)[0] == m.Int(0) {
		t.Fatalf("SkolemConstants must return a copy")
	}
}

func TestSkolemizedBodyRejectsGroundFormula(t *testing.T) {
	m := term.NewManager()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewSkolemizer(m).SkolemizedBody(m.True())
}

func TestAttributes(t *testing.T) {
	m := term.NewManager()
	x := m.Var("x", m.BoolSort())
	q := m.Forall([]term.Term{x}, term.Or(x, term.Not(x)))
	r := m.Forall([]term.Term{x}, x)

	a := NewAttributes()
	if a.Get(q) != AttrNone || a.IsSyntaxGuided(q) || a.IsSynthesis(q) {
		t.Fatalf("expected no attribute")
	}
	a.MarkSyntaxGuided(q)
	if !a.IsSyntaxGuided(q) || a.IsSynthesis(q) {
		t.Fatalf("expected syntax-guided")
	}
	if !a.Transfer(q, r) || a.Get(r) != AttrSyntaxGuided {
		t.Fatalf("expected the attribute to transfer")
	}
	a.MarkSynthesis(r)
	if !a.IsSynthesis(r) || a.Get(r).String() != "synthesis" {
		t.Fatalf("expected synthesis, got %v", a.Get(r))
	}
	if a.Transfer(m.Forall([]term.Term{x}, term.Not(x)), r) {
		t.Fatalf("unmarked formula must not transfer")
	}
	if Attribute(7).String() != "Attribute(7)" {
		t.Fatalf("unexpected fallback name")
	}
}

func TestAttributesRequireQuantifier(t *testing.T) {
	m := term.NewManager()
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic")
		}
	}()
	NewAttributes().MarkSynthesis(m.Const("p", m.BoolSort()))
}
