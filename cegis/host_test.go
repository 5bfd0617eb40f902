package cegis

import (
	"testing"

	"github.com/vhavlena/cegis-go/backtrack"
	"github.com/vhavlena/cegis-go/quant"
	"github.com/vhavlena/cegis-go/rewrite"
	"github.com/vhavlena/cegis-go/term"
)

// testHost records everything the module sends to its host and answers
// valuation and model queries from plain maps.
type testHost struct {
	lemmas []term.Term
	phases map[term.Term]bool
	values map[term.Term]bool
	model  map[term.Term]term.Term
}

func newTestHost() *testHost {
	return &testHost{
		phases: make(map[term.Term]bool),
		values: make(map[term.Term]bool),
		model:  make(map[term.Term]term.Term),
	}
}

func (h *testHost) Lemma(lem term.Term) { h.lemmas = append(h.lemmas, lem) }
func (h *testHost) RequirePhase(lit term.Term, phase bool) { h.phases[lit] = phase }
func (h *testHost) EnsureLiteral(t term.Term) term.Term { return t }

func (h *testHost) SatValue(lit term.Term) (bool, bool) {
	v, ok := h.values[lit]
	return v, ok
}

func (h *testHost) Value(t term.Term) (term.Term, bool) {
	v, ok := h.model[t]
	return v, ok
}

// drain returns the lemmas received since the previous call.
func (h *testHost) drain() []term.Term {
	out := h.lemmas
	h.lemmas = nil
	return out
}

type fixture struct {
	m     *term.Manager
	ctx   *backtrack.Context
	host  *testHost
	rw    *rewrite.Rewriter
	sk    *quant.Skolemizer
	attrs *quant.Attributes
	in    *Instantiator

	bit                *term.Datatype
	zero, one          term.Term
	color              *term.Datatype
	red, green, blue   term.Term
	tree               *term.Datatype
	leafCtor, nodeCtor *term.Constructor
}

func newFixture(t *testing.T, fairness FairnessMode) *fixture {
	t.Helper()
	m := term.NewManager()
	f := &fixture{
		m:     m,
		ctx:   backtrack.NewContext(),
		host:  newTestHost(),
		rw:    rewrite.New(m),
		sk:    quant.NewSkolemizer(m),
		attrs: quant.NewAttributes(),
	}
	f.bit = m.DeclareDatatype("Bit", []term.ConstructorDecl{{Name: "Zero"}, {Name: "One"}})
	f.zero = m.Ctor(f.bit.Constructor(0))
	f.one = m.Ctor(f.bit.Constructor(1))
	f.color = m.DeclareDatatype("Color", []term.ConstructorDecl{{Name: "Red"}, {Name: "Green"}, {Name: "Blue"}})
	f.red = m.Ctor(f.color.Constructor(0))
	f.green = m.Ctor(f.color.Constructor(1))
	f.blue = m.Ctor(f.color.Constructor(2))
	f.tree = m.DeclareDatatype("Tree", []term.ConstructorDecl{
		{Name: "Leaf"},
		{Name: "Node", Fields: []term.FieldDecl{{Name: "left", Self: true}, {Name: "right", Self: true}}},
	})
	f.leafCtor = f.tree.Constructor(0)
	f.nodeCtor = f.tree.Constructor(1)
	f.in = New(Env{
		Terms:      m,
		Context:    f.ctx,
		Output:     f.host,
		Valuation:  f.host,
		Model:      f.host,
		Rewriter:   f.rw,
		Skolemizer: f.sk,
		Classifier: f.attrs,
	}, Options{Fairness: fairness})
	return f
}

func (f *fixture) leaf() term.Term { return f.m.Ctor(f.leafCtor) }

func (f *fixture) node(l, r term.Term) term.Term { return f.m.Ctor(f.nodeCtor, l, r) }

// register builds and registers a syntax-guided conjecture.
func (f *fixture) register(t *testing.T, q term.Term) {
	t.Helper()
	f.attrs.MarkSyntaxGuided(q)
	if err := f.in.Register(q); err != nil {
		t.Fatalf("register: %v", err)
	}
	f.in.Assert(q, true)
}

// decide answers the decision request with the given polarity.
func (f *fixture) decide(t *testing.T, pol bool) term.Term {
	t.Helper()
	lit, ok := f.in.NextDecisionRequest()
	if !ok {
		t.Fatalf("expected a decision request")
	}
	f.host.values[lit] = pol
	f.in.Assert(lit, pol)
	return lit
}

func expectPanic(t *testing.T, fn func()) any {
	t.Helper()
	var got any
	func() {
		defer func() { got = recover() }()
		fn()
	}()
	if got == nil {
		t.Fatalf("expected panic")
	}
	return got
}
