// Package term provides a hash-consed term algebra for first-order formulas
// over Booleans, integers, uninterpreted functions and algebraic datatypes.
//
// Terms are lightweight handles into an arena owned by a Manager. Structurally
// identical terms built on the same Manager share one node, so two terms are
// equal exactly when the handles compare equal with ==. Fresh constants, bound
// variables and function symbols are never shared.
//
// A Manager is not safe for concurrent use.
package term

import (
	"encoding/binary"
	"strconv"
)

// Kind classifies term nodes.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindConst
	KindVar
	KindFunc
	KindApply
	KindNot
	KindAnd
	KindOr
	KindImplies
	KindIte
	KindEq
	KindLeq
	KindPlus
	KindForall
	KindConstructor
	KindSelector
	KindTester
)

var kindNames = map[Kind]string{
	KindNull:        "null",
	KindBool:        "bool",
	KindInt:         "int",
	KindConst:       "const",
	KindVar:         "var",
	KindFunc:        "func",
	KindApply:       "apply",
	KindNot:         "not",
	KindAnd:         "and",
	KindOr:          "or",
	KindImplies:     "implies",
	KindIte:         "ite",
	KindEq:          "eq",
	KindLeq:         "leq",
	KindPlus:        "plus",
	KindForall:      "forall",
	KindConstructor: "constructor",
	KindSelector:    "selector",
	KindTester:      "tester",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// node is the arena representation of a term. val holds the Boolean or
// integer payload of literals, the number of bound variables of a
// quantifier, or the field index of a selector.
type node struct {
	kind     Kind
	sort     Sort
	val      int64
	name     string
	ctor     *Constructor
	children []Term
}

// Manager owns the term arena, sorts and datatype declarations.
type Manager struct {
	nodes     []node
	intern    map[string]uint32
	counters  map[string]int
	sorts     []*sortInfo
	funcSorts map[string]Sort
	datatypes []*Datatype
	boolSort  Sort
	intSort   Sort
}

// NewManager creates an empty term arena with the built-in Bool and Int sorts.
func NewManager() *Manager {
	m := &Manager{
		nodes:     make([]node, 1, 256),
		intern:    make(map[string]uint32),
		counters:  make(map[string]int),
		funcSorts: make(map[string]Sort),
	}
	m.boolSort = m.newSort(&sortInfo{kind: SortBool, name: "Bool"})
	m.intSort = m.newSort(&sortInfo{kind: SortInt, name: "Int"})
	return m
}

// Len returns the number of nodes allocated so far.
func (m *Manager) Len() int { return len(m.nodes) - 1 }

// Term is a handle on a node. The zero Term is the null term.
type Term struct {
	m  *Manager
	id uint32
}

func (m *Manager) key(n *node) string {
	buf := make([]byte, 0, 16+4*len(n.children))
	buf = append(buf, byte(n.kind))
	buf = binary.AppendUvarint(buf, uint64(n.sort.id()))
	buf = binary.AppendVarint(buf, n.val)
	if n.ctor != nil {
		buf = binary.AppendUvarint(buf, uint64(n.ctor.dt.id))
		buf = binary.AppendUvarint(buf, uint64(n.ctor.index))
	}
	for _, c := range n.children {
		buf = binary.AppendUvarint(buf, uint64(c.id))
	}
	return string(buf)
}

// mk returns the shared node for n, allocating it on first use.
func (m *Manager) mk(n node) Term {
	for _, c := range n.children {
		m.own(c)
	}
	k := m.key(&n)
	if id, ok := m.intern[k]; ok {
		return Term{m, id}
	}
	id := uint32(len(m.nodes))
	m.nodes = append(m.nodes, n)
	m.intern[k] = id
	return Term{m, id}
}

// fresh allocates an unshared node.
func (m *Manager) fresh(n node) Term {
	id := uint32(len(m.nodes))
	m.nodes = append(m.nodes, n)
	return Term{m, id}
}

func (m *Manager) own(t Term) {
	if t.m != m || t.id == 0 {
		panic("term: term is null or belongs to another manager")
	}
}

func (m *Manager) freshName(prefix string) string {
	n := m.counters[prefix]
	m.counters[prefix] = n + 1
	return prefix + "!" + strconv.Itoa(n)
}

// True returns the Boolean constant true.
func (m *Manager) True() Term { return m.Bool(true) }

// False returns the Boolean constant false.
func (m *Manager) False() Term { return m.Bool(false) }

// Bool returns the Boolean constant b.
func (m *Manager) Bool(b bool) Term {
	var v int64
	if b {
		v = 1
	}
	return m.mk(node{kind: KindBool, sort: m.boolSort, val: v})
}

// Int returns the integer literal v.
func (m *Manager) Int(v int64) Term {
	return m.mk(node{kind: KindInt, sort: m.intSort, val: v})
}

// Const creates a new uninterpreted constant named name. Two calls with the
// same name yield distinct constants.
func (m *Manager) Const(name string, s Sort) Term {
	if s.IsNull() || s.IsFunction() {
		panic("term: Const requires a value sort")
	}
	return m.fresh(node{kind: KindConst, sort: s, name: name})
}

// Fresh creates a new uninterpreted constant whose name is derived from
// prefix and a per-prefix counter.
func (m *Manager) Fresh(prefix string, s Sort) Term {
	return m.Const(m.freshName(prefix), s)
}

// Var creates a new variable to be bound by Forall.
func (m *Manager) Var(name string, s Sort) Term {
	if s.IsNull() || s.IsFunction() {
		panic("term: Var requires a value sort")
	}
	return m.fresh(node{kind: KindVar, sort: s, name: name})
}

// Func declares a new uninterpreted function symbol.
func (m *Manager) Func(name string, domain []Sort, rng Sort) Term {
	if len(domain) == 0 {
		panic("term: Func requires at least one argument sort")
	}
	return m.fresh(node{kind: KindFunc, sort: m.FuncSort(domain, rng), name: name})
}

// Apply applies the function symbol f to args.
func (m *Manager) Apply(f Term, args ...Term) Term {
	m.own(f)
	if f.Kind() != KindFunc {
		panic("term: Apply requires a function symbol")
	}
	s := f.Sort()
	dom := s.s.domain
	if len(dom) != len(args) {
		panic("term: Apply arity mismatch for " + f.Name())
	}
	for i, a := range args {
		if a.Sort() != dom[i] {
			panic("term: Apply argument sort mismatch for " + f.Name())
		}
	}
	children := append([]Term{f}, args...)
	return m.mk(node{kind: KindApply, sort: s.s.rng, children: children})
}

// Forall binds vars in body. vars must be distinct variables created by Var.
func (m *Manager) Forall(vars []Term, body Term) Term {
	if len(vars) == 0 {
		panic("term: Forall requires at least one variable")
	}
	if !body.Sort().IsBool() {
		panic("term: Forall body must be Boolean")
	}
	children := make([]Term, 0, len(vars)+1)
	for _, v := range vars {
		if v.Kind() != KindVar {
			panic("term: Forall binds variables only")
		}
		children = append(children, v)
	}
	children = append(children, body)
	return m.mk(node{kind: KindForall, sort: m.boolSort, val: int64(len(vars)), children: children})
}

// Ctor applies constructor c to args.
func (m *Manager) Ctor(c *Constructor, args ...Term) Term {
	if len(args) != len(c.fields) {
		panic("term: constructor " + c.name + " arity mismatch")
	}
	for i, a := range args {
		if a.Sort() != c.fields[i].Sort {
			panic("term: constructor " + c.name + " argument sort mismatch")
		}
	}
	return m.mk(node{kind: KindConstructor, sort: c.dt.sort, ctor: c, children: append([]Term(nil), args...)})
}

// Select applies the selector of field i of constructor c to t. Selectors
// are total: applied to a value built by another constructor the result is
// unspecified but well-sorted.
func (m *Manager) Select(c *Constructor, i int, t Term) Term {
	if i < 0 || i >= len(c.fields) {
		panic("term: selector index out of range for " + c.name)
	}
	if t.Sort() != c.dt.sort {
		panic("term: selector applied to wrong sort")
	}
	return m.mk(node{kind: KindSelector, sort: c.fields[i].Sort, val: int64(i), ctor: c, children: []Term{t}})
}

// Test applies the tester of constructor c to t.
func (m *Manager) Test(c *Constructor, t Term) Term {
	if t.Sort() != c.dt.sort {
		panic("term: tester applied to wrong sort")
	}
	return m.mk(node{kind: KindTester, sort: m.boolSort, ctor: c, children: []Term{t}})
}

// IsNull reports whether t is the zero Term.
func (t Term) IsNull() bool { return t.m == nil || t.id == 0 }

// Manager returns the arena owning t.
func (t Term) Manager() *Manager { return t.m }

// ID returns a number identifying t within its manager. IDs increase with
// allocation order.
func (t Term) ID() uint32 { return t.id }

func (t Term) Kind() Kind {
	if t.IsNull() {
		return KindNull
	}
	return t.m.nodes[t.id].kind
}

func (t Term) Sort() Sort {
	if t.IsNull() {
		return Sort{}
	}
	return t.m.nodes[t.id].sort
}

// Name returns the name of a constant, variable or function symbol.
func (t Term) Name() string {
	if t.IsNull() {
		return ""
	}
	return t.m.nodes[t.id].name
}

func (t Term) NumChildren() int {
	if t.IsNull() {
		return 0
	}
	return len(t.m.nodes[t.id].children)
}

// Child returns the i-th child. For applications child 0 is the function
// symbol; for quantifiers the bound variables come first and the body last.
func (t Term) Child(i int) Term { return t.m.nodes[t.id].children[i] }

// Children returns a copy of the children of t.
func (t Term) Children() []Term {
	if t.IsNull() {
		return nil
	}
	return append([]Term(nil), t.m.nodes[t.id].children...)
}

// BoolValue returns the value of a Boolean constant.
func (t Term) BoolValue() (bool, bool) {
	if t.Kind() != KindBool {
		return false, false
	}
	return t.m.nodes[t.id].val == 1, true
}

// IntValue returns the value of an integer literal.
func (t Term) IntValue() (int64, bool) {
	if t.Kind() != KindInt {
		return 0, false
	}
	return t.m.nodes[t.id].val, true
}

// Constructor returns the constructor of a constructor application, selector
// or tester term, and nil for everything else.
func (t Term) Constructor() *Constructor {
	if t.IsNull() {
		return nil
	}
	return t.m.nodes[t.id].ctor
}

// FieldIndex returns the field selected by a selector term.
func (t Term) FieldIndex() int {
	if t.Kind() != KindSelector {
		return -1
	}
	return int(t.m.nodes[t.id].val)
}

// BoundVars returns the variables bound by a quantifier.
func (t Term) BoundVars() []Term {
	if t.Kind() != KindForall {
		return nil
	}
	n := &t.m.nodes[t.id]
	return append([]Term(nil), n.children[:n.val]...)
}

// Body returns the matrix of a quantifier.
func (t Term) Body() Term {
	if t.Kind() != KindForall {
		return Term{}
	}
	n := &t.m.nodes[t.id]
	return n.children[len(n.children)-1]
}

// Function returns the symbol of an application.
func (t Term) Function() Term {
	if t.Kind() != KindApply {
		return Term{}
	}
	return t.Child(0)
}

// Not returns the negation of t.
func (t Term) Not() Term { return Not(t) }

// IsValue reports whether t is a literal: a Boolean or integer constant or a
// constructor applied to literals.
func (t Term) IsValue() bool {
	switch t.Kind() {
	case KindBool, KindInt:
		return true
	case KindConstructor:
		for _, c := range t.m.nodes[t.id].children {
			if !c.IsValue() {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// WithChildren rebuilds t with new children of matching sorts. Leaves are
// returned unchanged.
func (t Term) WithChildren(children []Term) Term {
	if t.NumChildren() == 0 {
		return t
	}
	if len(children) != t.NumChildren() {
		panic("term: WithChildren arity mismatch")
	}
	n := t.m.nodes[t.id]
	n.children = append([]Term(nil), children...)
	return t.m.mk(n)
}
