package term

// The constructors below never simplify; normalisation is the job of the
// rewrite package.

func owner(args []Term, op string) *Manager {
	if len(args) == 0 {
		panic(op + " requires at least one arg")
	}
	m := args[0].m
	if m == nil {
		panic(op + " applied to the null term")
	}
	return m
}

func requireBool(op string, args ...Term) {
	for _, a := range args {
		if !a.Sort().IsBool() {
			panic(op + " requires Boolean arguments")
		}
	}
}

func requireInt(op string, args ...Term) {
	for _, a := range args {
		if !a.Sort().IsInt() {
			panic(op + " requires Int arguments")
		}
	}
}

// Not returns the logical negation of t.
func Not(t Term) Term {
	m := owner([]Term{t}, "Not")
	requireBool("Not", t)
	return m.mk(node{kind: KindNot, sort: m.boolSort, children: []Term{t}})
}

// And builds a conjunction over all provided terms.
func And(args ...Term) Term {
	m := owner(args, "And")
	requireBool("And", args...)
	return m.mk(node{kind: KindAnd, sort: m.boolSort, children: append([]Term(nil), args...)})
}

// Or builds a disjunction over all provided terms.
func Or(args ...Term) Term {
	m := owner(args, "Or")
	requireBool("Or", args...)
	return m.mk(node{kind: KindOr, sort: m.boolSort, children: append([]Term(nil), args...)})
}

// Implies builds the implication x => y.
func Implies(x, y Term) Term {
	m := owner([]Term{x}, "Implies")
	requireBool("Implies", x, y)
	return m.mk(node{kind: KindImplies, sort: m.boolSort, children: []Term{x, y}})
}

// Ite builds an if-then-else over c, t and e.
func Ite(c, t, e Term) Term {
	m := owner([]Term{c}, "Ite")
	requireBool("Ite", c)
	if t.Sort() != e.Sort() {
		panic("Ite branches must have the same sort")
	}
	return m.mk(node{kind: KindIte, sort: t.Sort(), children: []Term{c, t, e}})
}

// Eq builds an equality between two terms of the same sort.
func Eq(x, y Term) Term {
	m := owner([]Term{x}, "Eq")
	if x.Sort() != y.Sort() {
		panic("Eq requires arguments of the same sort")
	}
	return m.mk(node{kind: KindEq, sort: m.boolSort, children: []Term{x, y}})
}

// Leq builds the constraint x <= y.
func Leq(x, y Term) Term {
	m := owner([]Term{x}, "Leq")
	requireInt("Leq", x, y)
	return m.mk(node{kind: KindLeq, sort: m.boolSort, children: []Term{x, y}})
}

// Plus sums all provided integer terms.
func Plus(args ...Term) Term {
	m := owner(args, "Plus")
	requireInt("Plus", args...)
	return m.mk(node{kind: KindPlus, sort: m.intSort, children: append([]Term(nil), args...)})
}
