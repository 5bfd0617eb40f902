package cegis

import (
	"testing"

	"github.com/vhavlena/cegis-go/term"
)

// treeConjecture is forall t:Tree. not (is-Node(t) and is-Node(left(t))).
func (f *fixture) treeConjecture() term.Term {
	v := f.m.Var("t", f.tree.Sort())
	body := term.Not(term.And(f.m.Test(f.nodeCtor, v), f.m.Test(f.nodeCtor, f.m.Select(f.nodeCtor, 0, v))))
	return f.rw.Rewrite(f.m.Forall([]term.Term{v}, body))
}

func TestSizeFunctionOnlyForDatatypes(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	mc := NewMeasureCache(f.m)
	if _, ok := mc.SizeFunction(f.m.IntSort()); ok {
		t.Fatalf("Int has no size function")
	}
	fn, ok := mc.SizeFunction(f.tree.Sort())
	if !ok {
		t.Fatalf("expected a size function for Tree")
	}
	if again, _ := mc.SizeFunction(f.tree.Sort()); again != fn {
		t.Fatalf("size function must be created once")
	}
	if fn.Sort().Range() != f.m.IntSort() {
		t.Fatalf("size function must return Int, got %s", fn.Sort())
	}
}

func TestSizeTermEmitsNonNegativityOnce(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	mc := NewMeasureCache(f.m)
	x := f.m.Const("x", f.tree.Sort())

	st, lems := mc.SizeTerm(x, nil)
	if len(lems) != 1 || lems[0] != term.Leq(f.m.Int(0), st) {
		t.Fatalf("expected non-negativity lemma, got %v", lems)
	}
	again, lems := mc.SizeTerm(x, nil)
	if again != st || len(lems) != 0 {
		t.Fatalf("size term must be cached, got %s %v", again, lems)
	}
}

func TestMeasureLemmasForTreeValue(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	mc := NewMeasureCache(f.m)
	x := f.m.Const("x", f.tree.Sort())
	v := f.node(f.leaf(), f.leaf())

	lems := mc.Lemmas(x, v, nil)

	fn, _ := mc.SizeFunction(f.tree.Sort())
	size := func(t term.Term) term.Term { return f.m.Apply(fn, t) }
	left := f.m.Select(f.nodeCtor, 0, x)
	right := f.m.Select(f.nodeCtor, 1, x)
	want := []term.Term{
		term.Leq(f.m.Int(0), size(x)),
		term.Leq(f.m.Int(0), size(left)),
		term.Leq(f.m.Int(0), size(right)),
		term.Or(term.Not(f.m.Test(f.nodeCtor, x)), term.Eq(size(x), term.Plus(size(left), size(right), f.m.Int(1)))),
		term.Or(term.Not(f.m.Test(f.leafCtor, left)), term.Eq(size(left), f.m.Int(0))),
		term.Or(term.Not(f.m.Test(f.leafCtor, right)), term.Eq(size(right), f.m.Int(0))),
	}
	if len(lems) != len(want) {
		t.Fatalf("expected %d lemmas, got %d: %v", len(want), len(lems), lems)
	}
	for i := range want {
		if lems[i] != want[i] {
			t.Fatalf("lemma %d: expected %s, got %s", i, want[i], lems[i])
		}
	}
	if lem, ok := mc.Lemma(x, f.nodeCtor.Index()); !ok || lem != want[3] {
		t.Fatalf("expected cached Node lemma for x")
	}

	if again := mc.Lemmas(x, v, nil); len(again) != 0 {
		t.Fatalf("lemmas must be emitted once, got %v", again)
	}

	// A different constructor for the same term yields exactly one new lemma.
	if lems := mc.Lemmas(x, f.leaf(), nil); len(lems) != 1 {
		t.Fatalf("expected one Leaf lemma for x, got %v", lems)
	}
}

func TestMeasureLemmasIgnoreNonDatatypes(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	mc := NewMeasureCache(f.m)
	n := f.m.Const("n", f.m.IntSort())
	if lems := mc.Lemmas(n, f.m.Int(3), nil); len(lems) != 0 {
		t.Fatalf("expected no lemmas for Int, got %v", lems)
	}
}

func TestMeasureLemmasRejectNonConstructorValue(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	mc := NewMeasureCache(f.m)
	x := f.m.Const("x", f.tree.Sort())
	y := f.m.Const("y", f.tree.Sort())
	got := expectPanic(t, func() { mc.Lemmas(x, y, nil) })
	if _, ok := got.(*ContractError); !ok {
		t.Fatalf("expected *ContractError, got %T", got)
	}
}

func TestMeasureTermCombinesCandidates(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	a := f.m.Var("a", f.tree.Sort())
	b := f.m.Var("b", f.tree.Sort())
	n := f.m.Var("n", f.m.IntSort())
	body := term.Not(term.And(term.Eq(a, b), term.Leq(n, f.m.Int(0))))
	f.register(t, f.rw.Rewrite(f.m.Forall([]term.Term{a, b, n}, body)))

	c := f.in.Conjecture()
	mt := c.MeasureTerm()
	if mt.Kind() != term.KindPlus || mt.NumChildren() != 2 {
		t.Fatalf("expected the sum of two size terms, got %s", mt)
	}
	cands := c.Candidates()
	for i, child := range mt.Children() {
		if child.Kind() != term.KindApply || child.Child(1) != cands[i] {
			t.Fatalf("summand %d should measure candidate %s, got %s", i, cands[i], child)
		}
	}
}

func TestNoMeasureWithoutDatatypeCandidates(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	n := f.m.Var("n", f.m.IntSort())
	f.register(t, f.rw.Rewrite(f.m.Forall([]term.Term{n}, term.Leq(n, f.m.Int(0)))))
	if !f.in.Conjecture().MeasureTerm().IsNull() {
		t.Fatalf("expected no measure term")
	}
	f.decide(t, true)
	if _, ok := f.in.NextDecisionRequest(); ok {
		t.Fatalf("no fairness literal without a measure term")
	}
}

func TestFairnessLadder(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	f.register(t, f.treeConjecture())
	c := f.in.Conjecture()
	mt := c.MeasureTerm()
	if mt.Kind() != term.KindApply {
		t.Fatalf("expected a single size term, got %s", mt)
	}
	f.decide(t, true)
	f.host.drain()

	lit0, ok := f.in.NextDecisionRequest()
	want := f.rw.Rewrite(term.Leq(mt, f.m.Int(0)))
	if !ok || lit0 != want {
		t.Fatalf("expected %s, got %s", want, lit0)
	}
	lems := f.host.drain()
	if len(lems) != 1 || lems[0] != term.Or(lit0, term.Not(lit0)) {
		t.Fatalf("expected split lemma for the first bound, got %v", lems)
	}
	if phase := f.host.phases[lit0]; !phase {
		t.Fatalf("fairness literal should prefer the true phase")
	}
	if again, _ := f.in.NextDecisionRequest(); again != lit0 {
		t.Fatalf("unassigned bound must be proposed again, got %s", again)
	}
	if lems := f.host.drain(); len(lems) != 0 {
		t.Fatalf("cached literal must not be re-announced, got %v", lems)
	}

	f.ctx.Push()
	f.host.values[lit0] = false
	lit1, ok := f.in.NextDecisionRequest()
	if !ok || lit1 != f.rw.Rewrite(term.Leq(mt, f.m.Int(1))) {
		t.Fatalf("expected the next bound, got %s", lit1)
	}
	if c.CurrentLiteralIndex() != 1 {
		t.Fatalf("cursor should advance to 1, got %d", c.CurrentLiteralIndex())
	}

	f.ctx.PopTo(0)
	delete(f.host.values, lit0)
	if c.CurrentLiteralIndex() != 0 {
		t.Fatalf("cursor should revert on backtracking, got %d", c.CurrentLiteralIndex())
	}
	if cached, ok := c.Literal(1); !ok || cached != lit1 {
		t.Fatalf("fairness literals survive backtracking")
	}

	f.host.values[lit0] = true
	if _, ok := f.in.NextDecisionRequest(); ok {
		t.Fatalf("a true bound needs no further decision")
	}
}

func TestFairnessNoneProposesOnlyGuard(t *testing.T) {
	f := newFixture(t, FairnessNone)
	f.register(t, f.treeConjecture())
	if !f.in.Conjecture().MeasureTerm().IsNull() {
		t.Fatalf("no measure term without fairness")
	}
	f.decide(t, true)
	if _, ok := f.in.NextDecisionRequest(); ok {
		t.Fatalf("expected no decision after the guard")
	}
}

func TestCheckEmitsMeasureLemmasBeforeCounterexample(t *testing.T) {
	f := newFixture(t, FairnessUFSize)
	q := f.treeConjecture()
	f.register(t, q)
	c := f.in.Conjecture()
	e := c.Candidates()[0]
	f.decide(t, true)
	f.host.drain()

	f.host.model[e] = f.leaf()
	f.in.Check(EffortLastCall)
	lems := f.host.drain()
	if len(lems) != 2 {
		t.Fatalf("expected two measure lemmas, got %v", lems)
	}
	if c.PendingSkeletons() != 0 {
		t.Fatalf("measure round must not record a skeleton")
	}

	f.in.Check(EffortLastCall)
	lems = f.host.drain()
	if len(lems) != 1 || lems[0] != f.m.True() {
		t.Fatalf("expected the counterexample lemma true for Leaf, got %v", lems)
	}
	if c.PendingSkeletons() != 1 {
		t.Fatalf("expected a pending skeleton")
	}

	f.in.Check(EffortLastCall)
	lems = f.host.drain()
	want := f.rw.Rewrite(term.Or(term.Not(c.Guard()), term.Not(c.BaseInstantiation())))
	if len(lems) != 1 || lems[0] != want {
		t.Fatalf("expected refinement %s, got %v", want, lems)
	}
}
