// Package problems is a catalogue of small synthesis conjectures used by the
// command line tool, the examples and the end-to-end tests.
//
// Every problem asks for values of its unknowns satisfying a property P. It
// is stated as the conjecture forall unknowns. not P; refuting the
// conjecture yields a solution, while a conjecture that holds proves P
// unsatisfiable.
package problems

import (
	"sort"

	"github.com/vhavlena/cegis-go/cegis"
	"github.com/vhavlena/cegis-go/quant"
	"github.com/vhavlena/cegis-go/smt"
	"github.com/vhavlena/cegis-go/term"
)

// Problem describes one conjecture.
type Problem struct {
	Name        string
	Description string
	// Fairness is the enumeration strategy the problem is meant to run with.
	Fairness cegis.FairnessMode
	// Finite reports whether the problem stays inside the Boolean and
	// enumeration fragment decided by the finite backend.
	Finite bool
	// Expect is the verdict a correct run reaches.
	Expect smt.Status
	// Build declares the problem's datatypes on m, marks the conjecture in
	// attrs and returns it.
	Build func(m *term.Manager, attrs *quant.Attributes) term.Term
}

var catalogue = map[string]Problem{}

func register(p Problem) {
	if _, dup := catalogue[p.Name]; dup {
		panic("problems: duplicate problem " + p.Name)
	}
	catalogue[p.Name] = p
}

// All returns every problem sorted by name.
func All() []Problem {
	out := make([]Problem, 0, len(catalogue))
	for _, p := range catalogue {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Lookup finds a problem by name.
func Lookup(name string) (Problem, bool) {
	p, ok := catalogue[name]
	return p, ok
}

// Bit declares the datatype Bit = Zero | One.
func Bit(m *term.Manager) *term.Datatype {
	return m.DeclareDatatype("Bit", []term.ConstructorDecl{{Name: "Zero"}, {Name: "One"}})
}

// Color declares the datatype Color = Red | Green | Blue.
func Color(m *term.Manager) *term.Datatype {
	return m.DeclareDatatype("Color", []term.ConstructorDecl{{Name: "Red"}, {Name: "Green"}, {Name: "Blue"}})
}

// Tree declares the datatype Tree = Leaf | Node(left: Tree, right: Tree).
func Tree(m *term.Manager) *term.Datatype {
	return m.DeclareDatatype("Tree", []term.ConstructorDecl{
		{Name: "Leaf"},
		{Name: "Node", Fields: []term.FieldDecl{{Name: "left", Self: true}, {Name: "right", Self: true}}},
	})
}

func syntaxGuided(attrs *quant.Attributes, q term.Term) term.Term {
	attrs.MarkSyntaxGuided(q)
	return q
}

func init() {
	register(Problem{
		Name:        "nonzero",
		Description: "find e:Bit with e != Zero",
		Fairness:    cegis.FairnessNone,
		Finite:      true,
		Expect:      smt.StatusRefuted,
		Build: func(m *term.Manager, attrs *quant.Attributes) term.Term {
			bit := Bit(m)
			e := m.Var("e", bit.Sort())
			p := term.Not(term.Eq(e, m.Ctor(bit.Constructor(0))))
			return syntaxGuided(attrs, m.Forall([]term.Term{e}, term.Not(p)))
		},
	})
	register(Problem{
		Name:        "witness",
		Description: "find e:Color with forall x:Color. e = x => x = Blue",
		Fairness:    cegis.FairnessNone,
		Finite:      true,
		Expect:      smt.StatusRefuted,
		Build: func(m *term.Manager, attrs *quant.Attributes) term.Term {
			color := Color(m)
			blue := m.Ctor(color.Constructor(2))
			e := m.Var("e", color.Sort())
			x := m.Var("x", color.Sort())
			p := m.Forall([]term.Term{x}, term.Implies(term.Eq(e, x), term.Eq(x, blue)))
			return syntaxGuided(attrs, m.Forall([]term.Term{e}, term.Not(p)))
		},
	})
	register(Problem{
		Name:        "pair",
		Description: "find Booleans a, b with a and not b",
		Fairness:    cegis.FairnessNone,
		Finite:      true,
		Expect:      smt.StatusRefuted,
		Build: func(m *term.Manager, attrs *quant.Attributes) term.Term {
			a := m.Var("a", m.BoolSort())
			b := m.Var("b", m.BoolSort())
			p := term.And(a, term.Not(b))
			return syntaxGuided(attrs, m.Forall([]term.Term{a, b}, term.Not(p)))
		},
	})
	register(Problem{
		Name:        "plain",
		Description: "find e:Bit with e = One by plain instantiation",
		Fairness:    cegis.FairnessNone,
		Finite:      true,
		Expect:      smt.StatusRefuted,
		Build: func(m *term.Manager, attrs *quant.Attributes) term.Term {
			bit := Bit(m)
			e := m.Var("e", bit.Sort())
			p := term.Eq(e, m.Ctor(bit.Constructor(1)))
			q := m.Forall([]term.Term{e}, term.Not(p))
			attrs.MarkSynthesis(q)
			return q
		},
	})
	register(Problem{
		Name:        "impossible",
		Description: "show no e:Bit differs from both Zero and One",
		Fairness:    cegis.FairnessNone,
		Finite:      true,
		Expect:      smt.StatusHolds,
		Build: func(m *term.Manager, attrs *quant.Attributes) term.Term {
			bit := Bit(m)
			e := m.Var("e", bit.Sort())
			p := term.And(
				term.Not(term.Eq(e, m.Ctor(bit.Constructor(0)))),
				term.Not(term.Eq(e, m.Ctor(bit.Constructor(1)))),
			)
			return syntaxGuided(attrs, m.Forall([]term.Term{e}, term.Not(p)))
		},
	})
	register(Problem{
		Name:        "three",
		Description: "find n:Int with 3 <= n <= 3",
		Fairness:    cegis.FairnessNone,
		Expect:      smt.StatusRefuted,
		Build: func(m *term.Manager, attrs *quant.Attributes) term.Term {
			n := m.Var("n", m.IntSort())
			three := m.Int(3)
			p := term.And(term.Leq(three, n), term.Leq(n, three))
			return syntaxGuided(attrs, m.Forall([]term.Term{n}, term.Not(p)))
		},
	})
	register(Problem{
		Name:        "tree",
		Description: "find t:Tree whose left child is a Node, enumerating by size",
		Fairness:    cegis.FairnessUFSize,
		Expect:      smt.StatusRefuted,
		Build: func(m *term.Manager, attrs *quant.Attributes) term.Term {
			tree := Tree(m)
			node := tree.Constructor(1)
			t := m.Var("t", tree.Sort())
			p := term.And(m.Test(node, t), m.Test(node, m.Select(node, 0, t)))
			return syntaxGuided(attrs, m.Forall([]term.Term{t}, term.Not(p)))
		},
	})
}
