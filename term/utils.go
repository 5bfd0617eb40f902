package term

import (
	"strconv"
	"strings"

	"github.com/hashicorp/go-set/v2"
)

// VisitFunc controls term traversal; returning false skips the children of
// the visited node.
type VisitFunc func(Term) bool

// Walk performs a depth-first pre-order traversal over t. Shared subterms
// are visited once per occurrence.
func (t Term) Walk(fn VisitFunc) {
	if fn == nil || t.IsNull() {
		return
	}
	stack := []Term{t}
	for len(stack) > 0 {
		idx := len(stack) - 1
		cur := stack[idx]
		stack = stack[:idx]
		if !fn(cur) {
			continue
		}
		children := cur.m.nodes[cur.id].children
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Contains reports whether sub occurs in t.
func (t Term) Contains(sub Term) bool {
	found := false
	t.Walk(func(n Term) bool {
		if n == sub {
			found = true
		}
		return !found
	})
	return found
}

// Substitute replaces every occurrence of from[i] by to[i]. Variables bound
// by an inner quantifier shadow the substitution inside its body.
func (t Term) Substitute(from, to []Term) Term {
	if len(from) != len(to) {
		panic("term: substitution length mismatch")
	}
	if len(from) == 0 || t.IsNull() {
		return t
	}
	sub := make(map[Term]Term, len(from))
	for i := range from {
		if from[i].Sort() != to[i].Sort() {
			panic("term: substitution changes sort of " + from[i].String())
		}
		sub[from[i]] = to[i]
	}
	return t.m.substitute(t, sub, make(map[Term]Term))
}

func (m *Manager) substitute(t Term, sub map[Term]Term, cache map[Term]Term) Term {
	if r, ok := sub[t]; ok {
		return r
	}
	if r, ok := cache[t]; ok {
		return r
	}
	n := m.nodes[t.id]
	if len(n.children) == 0 {
		return t
	}
	var r Term
	if n.kind == KindForall {
		vars := n.children[:n.val]
		inner, innerCache := sub, cache
		for _, v := range vars {
			if _, ok := sub[v]; ok {
				inner = make(map[Term]Term, len(sub))
				for k, val := range sub {
					inner[k] = val
				}
				for _, bv := range vars {
					delete(inner, bv)
				}
				innerCache = make(map[Term]Term)
				break
			}
		}
		body := m.substitute(n.children[len(n.children)-1], inner, innerCache)
		r = m.Forall(vars, body)
	} else {
		children := make([]Term, len(n.children))
		changed := false
		for i, c := range n.children {
			children[i] = m.substitute(c, sub, cache)
			if children[i] != c {
				changed = true
			}
		}
		r = t
		if changed {
			r = t.WithChildren(children)
		}
	}
	cache[t] = r
	return r
}

// FreeVars returns the variables occurring in t that no enclosing quantifier
// within t binds.
func (t Term) FreeVars() *set.Set[Term] {
	free := set.New[Term](4)
	if t.IsNull() {
		return free
	}
	t.m.freeVars(t, set.New[Term](0), free)
	return free
}

func (m *Manager) freeVars(t Term, bound, free *set.Set[Term]) {
	n := &m.nodes[t.id]
	switch n.kind {
	case KindVar:
		if !bound.Contains(t) {
			free.Insert(t)
		}
	case KindForall:
		inner := bound.Copy()
		inner.InsertSlice(n.children[:n.val])
		m.freeVars(n.children[len(n.children)-1], inner, free)
	default:
		for _, c := range n.children {
			m.freeVars(c, bound, free)
		}
	}
}

// IsGround reports whether t has no free variables.
func (t Term) IsGround() bool { return t.FreeVars().Empty() }

// Constants collects the uninterpreted constants occurring in t, in
// first-occurrence order.
func (t Term) Constants() []Term {
	seen := set.New[Term](8)
	var out []Term
	t.Walk(func(n Term) bool {
		if n.Kind() == KindConst && seen.Insert(n) {
			out = append(out, n)
		}
		return true
	})
	return out
}

// String renders t in SMT-LIB syntax.
func (t Term) String() string {
	if t.IsNull() {
		return "<null>"
	}
	var b strings.Builder
	t.write(&b)
	return b.String()
}

var opNames = map[Kind]string{
	KindNot:     "not",
	KindAnd:     "and",
	KindOr:      "or",
	KindImplies: "=>",
	KindIte:     "ite",
	KindEq:      "=",
	KindLeq:     "<=",
	KindPlus:    "+",
}

func (t Term) write(b *strings.Builder) {
	n := &t.m.nodes[t.id]
	switch n.kind {
	case KindBool:
		if n.val == 1 {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case KindInt:
		if n.val < 0 {
			b.WriteString("(- ")
			b.WriteString(strconv.FormatUint(uint64(-n.val), 10))
			b.WriteByte(')')
		} else {
			b.WriteString(strconv.FormatInt(n.val, 10))
		}
	case KindConst, KindVar, KindFunc:
		b.WriteString(n.name)
	case KindApply:
		writeApp(b, n.children[0].Name(), n.children[1:])
	case KindForall:
		b.WriteString("(forall (")
		for i, v := range n.children[:n.val] {
			if i > 0 {
				b.WriteByte(' ')
			}
			b.WriteByte('(')
			b.WriteString(v.Name())
			b.WriteByte(' ')
			b.WriteString(v.Sort().String())
			b.WriteByte(')')
		}
		b.WriteString(") ")
		n.children[len(n.children)-1].write(b)
		b.WriteByte(')')
	case KindConstructor:
		if len(n.children) == 0 {
			b.WriteString(n.ctor.name)
			return
		}
		writeApp(b, n.ctor.name, n.children)
	case KindSelector:
		writeApp(b, n.ctor.fields[n.val].Name, n.children)
	case KindTester:
		writeApp(b, n.ctor.tester, n.children)
	default:
		writeApp(b, opNames[n.kind], n.children)
	}
}

func writeApp(b *strings.Builder, head string, args []Term) {
	b.WriteByte('(')
	b.WriteString(head)
	for _, a := range args {
		b.WriteByte(' ')
		a.write(b)
	}
	b.WriteByte(')')
}
