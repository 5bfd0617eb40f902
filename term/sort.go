package term

import (
	"strconv"
	"strings"
)

// SortKind classifies sorts.
type SortKind uint8

const (
	SortNull SortKind = iota
	SortBool
	SortInt
	SortDatatype
	SortFunction
)

var sortKindNames = map[SortKind]string{
	SortNull:     "null",
	SortBool:     "bool",
	SortInt:      "int",
	SortDatatype: "datatype",
	SortFunction: "function",
}

func (k SortKind) String() string {
	if s, ok := sortKindNames[k]; ok {
		return s
	}
	return "SortKind(?)"
}

type sortInfo struct {
	id     int
	kind   SortKind
	name   string
	dt     *Datatype
	domain []Sort
	rng    Sort
}

// Sort is a handle on a sort owned by a Manager. Sorts compare equal iff they
// are the same sort. The zero Sort is the null sort.
type Sort struct {
	s *sortInfo
}

func (s Sort) id() int {
	if s.s == nil {
		return 0
	}
	return s.s.id
}

// IsNull reports whether s is the zero Sort.
func (s Sort) IsNull() bool { return s.s == nil }

// Kind returns the sort classification.
func (s Sort) Kind() SortKind {
	if s.s == nil {
		return SortNull
	}
	return s.s.kind
}

func (s Sort) IsBool() bool { return s.Kind() == SortBool }
func (s Sort) IsInt() bool { return s.Kind() == SortInt }
func (s Sort) IsDatatype() bool { return s.Kind() == SortDatatype }
func (s Sort) IsFunction() bool { return s.Kind() == SortFunction }

// Datatype returns the datatype declaration behind a datatype sort, or nil.
func (s Sort) Datatype() *Datatype {
	if s.s == nil {
		return nil
	}
	return s.s.dt
}

// Domain returns the argument sorts of a function sort.
func (s Sort) Domain() []Sort {
	if s.s == nil {
		return nil
	}
	return append([]Sort(nil), s.s.domain...)
}

// Range returns the result sort of a function sort.
func (s Sort) Range() Sort {
	if s.s == nil {
		return Sort{}
	}
	return s.s.rng
}

// Name returns the symbolic name of the sort.
func (s Sort) Name() string {
	if s.s == nil {
		return ""
	}
	return s.s.name
}

// String renders the sort in SMT-LIB syntax.
func (s Sort) String() string {
	switch s.Kind() {
	case SortNull:
		return "<null-sort>"
	case SortFunction:
		var b strings.Builder
		b.WriteString("(->")
		for _, d := range s.s.domain {
			b.WriteByte(' ')
			b.WriteString(d.String())
		}
		b.WriteByte(' ')
		b.WriteString(s.s.rng.String())
		b.WriteByte(')')
		return b.String()
	default:
		return s.s.name
	}
}

// Field describes one constructor argument. The selector for the field is
// applied with Manager.Select.
type Field struct {
	Name string
	Sort Sort
}

// Constructor is a datatype constructor together with its tester and
// selectors.
type Constructor struct {
	dt     *Datatype
	index  int
	name   string
	tester string
	fields []Field
}

func (c *Constructor) Index() int { return c.index }
func (c *Constructor) Name() string { return c.name }
func (c *Constructor) TesterName() string { return c.tester }
func (c *Constructor) Datatype() *Datatype { return c.dt }
func (c *Constructor) Arity() int { return len(c.fields) }
func (c *Constructor) Field(i int) Field { return c.fields[i] }
func (c *Constructor) Fields() []Field { return append([]Field(nil), c.fields...) }
func (c *Constructor) String() string { return c.name }

// Datatype is a declared algebraic datatype.
type Datatype struct {
	id    int
	name  string
	sort  Sort
	ctors []*Constructor
}

func (d *Datatype) Name() string { return d.name }
func (d *Datatype) Sort() Sort { return d.sort }
func (d *Datatype) NumConstructors() int { return len(d.ctors) }
func (d *Datatype) Constructor(i int) *Constructor { return d.ctors[i] }

// Constructors returns the constructors in declaration order.
func (d *Datatype) Constructors() []*Constructor {
	return append([]*Constructor(nil), d.ctors...)
}

// ConstructorByName finds a constructor by its declared name.
func (d *Datatype) ConstructorByName(name string) (*Constructor, bool) {
	for _, c := range d.ctors {
		if c.name == name {
			return c, true
		}
	}
	return nil, false
}

// IsEnumeration reports whether every constructor is nullary.
func (d *Datatype) IsEnumeration() bool {
	for _, c := range d.ctors {
		if len(c.fields) > 0 {
			return false
		}
	}
	return true
}

// IsRecursive reports whether some constructor has a field of this datatype.
func (d *Datatype) IsRecursive() bool {
	for _, c := range d.ctors {
		for _, f := range c.fields {
			if f.Sort == d.sort {
				return true
			}
		}
	}
	return false
}

// FieldDecl declares a constructor field. Self marks a field whose sort is the
// datatype being declared; Sort is ignored in that case.
type FieldDecl struct {
	Name string
	Sort Sort
	Self bool
}

// ConstructorDecl declares a constructor. An empty Tester defaults to
// "is-" followed by the constructor name.
type ConstructorDecl struct {
	Name   string
	Tester string
	Fields []FieldDecl
}

// DeclareDatatype creates a datatype sort from constructor declarations.
// Fields marked Self refer back to the new sort, which allows recursive
// datatypes such as lists and trees.
func (m *Manager) DeclareDatatype(name string, ctors []ConstructorDecl) *Datatype {
	if len(ctors) == 0 {
		panic("term: DeclareDatatype requires at least one constructor")
	}
	dt := &Datatype{id: len(m.datatypes) + 1, name: name}
	dt.sort = m.newSort(&sortInfo{kind: SortDatatype, name: name, dt: dt})
	for i, cd := range ctors {
		c := &Constructor{dt: dt, index: i, name: cd.Name, tester: cd.Tester}
		if c.tester == "" {
			c.tester = "is-" + cd.Name
		}
		for _, fd := range cd.Fields {
			s := fd.Sort
			if fd.Self {
				s = dt.sort
			}
			if s.IsNull() {
				panic("term: field " + fd.Name + " of " + cd.Name + " has no sort")
			}
			c.fields = append(c.fields, Field{Name: fd.Name, Sort: s})
		}
		dt.ctors = append(dt.ctors, c)
	}
	m.datatypes = append(m.datatypes, dt)
	return dt
}

// Datatypes returns every datatype declared on the manager.
func (m *Manager) Datatypes() []*Datatype {
	return append([]*Datatype(nil), m.datatypes...)
}

// BoolSort returns the Boolean sort.
func (m *Manager) BoolSort() Sort { return m.boolSort }

// IntSort returns the sort of mathematical integers.
func (m *Manager) IntSort() Sort { return m.intSort }

// FuncSort returns the function sort domain -> rng. Function sorts are shared:
// asking twice for the same signature yields the same sort.
func (m *Manager) FuncSort(domain []Sort, rng Sort) Sort {
	var key []byte
	for _, d := range domain {
		key = strconv.AppendInt(key, int64(d.id()), 10)
		key = append(key, ' ')
	}
	key = strconv.AppendInt(append(key, '>'), int64(rng.id()), 10)
	if s, ok := m.funcSorts[string(key)]; ok {
		return s
	}
	s := m.newSort(&sortInfo{kind: SortFunction, domain: append([]Sort(nil), domain...), rng: rng})
	m.funcSorts[string(key)] = s
	return s
}

func (m *Manager) newSort(info *sortInfo) Sort {
	m.sorts = append(m.sorts, info)
	info.id = len(m.sorts)
	return Sort{info}
}
