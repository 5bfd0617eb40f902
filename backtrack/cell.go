package backtrack

// Cell holds a value that reverts when the decision level at which it was
// written is popped.
type Cell[T any] struct {
	ctx   *Context
	val   T
	saved int
}

// NewCell creates a cell holding v. The initial value survives every pop.
func NewCell[T any](ctx *Context, v T) *Cell[T] {
	return &Cell[T]{ctx: ctx, val: v, saved: ctx.level}
}

// Get returns the current value.
func (c *Cell[T]) Get() T { return c.val }

// Set stores v at the current level. Only the first write per level is
// trailed.
func (c *Cell[T]) Set(v T) {
	if c.saved < c.ctx.level {
		old, oldSaved := c.val, c.saved
		c.ctx.record(func() {
			c.val = old
			c.saved = oldSaved
		})
		c.saved = c.ctx.level
	}
	c.val = v
}

// Map is a key-value store whose writes are undone on backtracking.
type Map[K comparable, V any] struct {
	ctx *Context
	m   map[K]V
}

// NewMap creates an empty map on ctx.
func NewMap[K comparable, V any](ctx *Context) *Map[K, V] {
	return &Map[K, V]{ctx: ctx, m: make(map[K]V)}
}

// Get returns the value stored under k.
func (m *Map[K, V]) Get(k K) (V, bool) {
	v, ok := m.m[k]
	return v, ok
}

// Set stores v under k at the current level.
func (m *Map[K, V]) Set(k K, v V) {
	old, had := m.m[k]
	m.ctx.record(func() {
		if had {
			m.m[k] = old
		} else {
			delete(m.m, k)
		}
	})
	m.m[k] = v
}

// Len returns the number of keys.
func (m *Map[K, V]) Len() int { return len(m.m) }
