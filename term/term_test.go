package term

import (
	"strings"
	"testing"
)

func newTree(m *Manager) *Datatype {
	return m.DeclareDatatype("Tree", []ConstructorDecl{
		{Name: "Leaf"},
		{Name: "Node", Fields: []FieldDecl{{Name: "left", Self: true}, {Name: "val", Sort: m.IntSort()}, {Name: "right", Self: true}}},
	})
}

func TestHashConsing(t *testing.T) {
	m := NewManager()
	x := m.Const("x", m.IntSort())
	y := m.Const("x", m.IntSort())
	if x == y {
		t.Fatalf("constants with the same name must be distinct")
	}
	a := Plus(x, m.Int(1))
	b := Plus(x, m.Int(1))
	if a != b {
		t.Fatalf("structurally equal terms must share a node")
	}
	if Plus(y, m.Int(1)) == a {
		t.Fatalf("terms over distinct constants must differ")
	}
	if m.Int(-3) != m.Int(-3) || m.True() == m.False() {
		t.Fatalf("literal sharing is broken")
	}
	if m.Len() == 0 {
		t.Fatalf("expected allocated nodes")
	}
}

func TestFreshNames(t *testing.T) {
	m := NewManager()
	a := m.Fresh("e", m.BoolSort())
	b := m.Fresh("e", m.BoolSort())
	c := m.Fresh("G", m.BoolSort())
	if a.Name() != "e!0" || b.Name() != "e!1" || c.Name() != "G!0" {
		t.Fatalf("unexpected fresh names %s %s %s", a.Name(), b.Name(), c.Name())
	}
}

func TestDatatypeDeclaration(t *testing.T) {
	m := NewManager()
	tree := newTree(m)
	if !tree.IsRecursive() || tree.IsEnumeration() {
		t.Fatalf("Tree must be recursive and not an enumeration")
	}
	node, ok := tree.ConstructorByName("Node")
	if !ok || node.Index() != 1 || node.Arity() != 3 {
		t.Fatalf("unexpected Node constructor")
	}
	if node.TesterName() != "is-Node" || node.Field(0).Sort != tree.Sort() {
		t.Fatalf("unexpected tester or field sort")
	}
	if _, ok := tree.ConstructorByName("Missing"); ok {
		t.Fatalf("unexpected constructor")
	}
	if got := tree.Sort().Datatype(); got != tree {
		t.Fatalf("sort does not point back to its datatype")
	}
	if len(m.Datatypes()) != 1 {
		t.Fatalf("expected one datatype")
	}

	color := m.DeclareDatatype("Color", []ConstructorDecl{{Name: "Red", Tester: "red?"}, {Name: "Blue"}})
	if !color.IsEnumeration() || color.IsRecursive() {
		t.Fatalf("Color must be an enumeration")
	}
	if color.Constructor(0).TesterName() != "red?" {
		t.Fatalf("explicit tester name lost")
	}
}

func TestFuncSortsAreShared(t *testing.T) {
	m := NewManager()
	tree := newTree(m)
	s1 := m.FuncSort([]Sort{tree.Sort()}, m.IntSort())
	s2 := m.FuncSort([]Sort{tree.Sort()}, m.IntSort())
	if s1 != s2 {
		t.Fatalf("function sorts must be shared")
	}
	if s1 == m.FuncSort([]Sort{m.IntSort()}, m.IntSort()) {
		t.Fatalf("distinct signatures must differ")
	}
	if s1.String() != "(-> Tree Int)" {
		t.Fatalf("unexpected sort rendering %s", s1)
	}
}

func TestStringRendering(t *testing.T) {
	m := NewManager()
	tree := newTree(m)
	leaf := m.Ctor(tree.Constructor(0))
	node := tree.Constructor(1)
	v := m.Var("t", tree.Sort())
	size := m.Func("size", []Sort{tree.Sort()}, m.IntSort())

	cases := []struct {
		term Term
		want string
	}{
		{m.Int(-4), "(- 4)"},
		{m.Ctor(node, leaf, m.Int(2), leaf), "(Node Leaf 2 Leaf)"},
		{m.Test(node, v), "(is-Node t)"},
		{m.Select(node, 1, v), "(val t)"},
		{Leq(m.Apply(size, v), m.Int(3)), "(<= (size t) 3)"},
		{m.Forall([]Term{v}, Implies(m.Test(node, v), m.True())), "(forall ((t Tree)) (=> (is-Node t) true))"},
		{Term{}, "<null>"},
	}
	for _, c := range cases {
		if got := c.term.String(); got != c.want {
			t.Fatalf("expected %s, got %s", c.want, got)
		}
	}
}

func TestSubstituteRespectsShadowing(t *testing.T) {
	m := NewManager()
	x := m.Var("x", m.IntSort())
	y := m.Var("y", m.IntSort())
	c := m.Const("c", m.IntSort())
	inner := m.Forall([]Term{x}, Leq(x, y))
	f := And(Leq(x, m.Int(0)), inner)

	got := f.Substitute([]Term{x, y}, []Term{c, m.Int(5)})
	want := And(Leq(c, m.Int(0)), m.Forall([]Term{x}, Leq(x, m.Int(5))))
	if got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if f.Substitute(nil, nil) != f {
		t.Fatalf("empty substitution must be the identity")
	}
}

func TestSubstituteRejectsSortChange(t *testing.T) {
	m := NewManager()
	x := m.Var("x", m.IntSort())
	defer func() {
		r := recover()
		if r == nil || !strings.Contains(r.(string), "sort") {
			t.Fatalf("expected sort panic, got %v", r)
		}
	}()
	Leq(x, x).Substitute([]Term{x}, []Term{m.True()})
}

func TestFreeVarsAndConstants(t *testing.T) {
	m := NewManager()
	x := m.Var("x", m.IntSort())
	y := m.Var("y", m.IntSort())
	a := m.Const("a", m.IntSort())
	b := m.Const("b", m.IntSort())
	f := Or(Leq(a, y), m.Forall([]Term{x}, Leq(x, Plus(b, a))))

	free := f.FreeVars()
	if free.Size() != 1 || !free.Contains(y) {
		t.Fatalf("expected only y free, got %v", free.Slice())
	}
	if f.IsGround() || !m.Forall([]Term{y}, f).IsGround() {
		t.Fatalf("groundness is wrong")
	}
	consts := f.Constants()
	if len(consts) != 2 || consts[0] != a || consts[1] != b {
		t.Fatalf("expected [a b], got %v", consts)
	}
	if !f.Contains(b) || f.Contains(m.Int(7)) {
		t.Fatalf("Contains is wrong")
	}
}

func TestAccessors(t *testing.T) {
	m := NewManager()
	tree := newTree(m)
	node := tree.Constructor(1)
	v := m.Var("t", tree.Sort())
	q := m.Forall([]Term{v}, m.Test(node, v))

	if bv := q.BoundVars(); len(bv) != 1 || bv[0] != v {
		t.Fatalf("unexpected bound vars")
	}
	if q.Body().Kind() != KindTester || q.Body().Constructor() != node {
		t.Fatalf("unexpected body")
	}
	if sel := m.Select(node, 2, v); sel.FieldIndex() != 2 || sel.Sort() != tree.Sort() {
		t.Fatalf("unexpected selector")
	}
	leaf := m.Ctor(tree.Constructor(0))
	if !m.Ctor(node, leaf, m.Int(1), leaf).IsValue() || m.Ctor(node, leaf, m.Int(1), v).IsValue() {
		t.Fatalf("IsValue is wrong")
	}
	if (Term{}).Kind() != KindNull || Kind(99).String() != "Kind(99)" {
		t.Fatalf("null handling is wrong")
	}
	size := m.Func("size", []Sort{tree.Sort()}, m.IntSort())
	if app := m.Apply(size, v); app.Function() != size || app.Sort() != m.IntSort() {
		t.Fatalf("unexpected application")
	}
}

func TestBuilderPanics(t *testing.T) {
	m := NewManager()
	other := NewManager()
	tree := newTree(m)
	x := m.Const("x", m.IntSort())
	cases := map[string]func(){
		"empty and":      func() { And() },
		"non-bool not":   func() { Not(x) },
		"eq sorts":       func() { Eq(x, m.True()) },
		"foreign child":  func() { And(m.True(), other.True()) },
		"forall non-var": func() { m.Forall([]Term{x}, m.True()) },
		"ctor arity":     func() { m.Ctor(tree.Constructor(1)) },
		"selector index": func() { m.Select(tree.Constructor(0), 0, m.Ctor(tree.Constructor(0))) },
	}
	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			fn()
		})
	}
}
