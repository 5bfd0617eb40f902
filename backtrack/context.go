// Package backtrack provides decision-level scoped state. A Context tracks
// the current decision level and a trail of undo actions; Cells and Maps
// record their previous contents on the trail so that popping a level
// restores the state that held when the level was entered.
package backtrack

import "fmt"

type change struct {
	level int
	undo  func()
}

// Context is a stack of decision levels. Level 0 is the root and is never
// popped.
type Context struct {
	level int
	trail []change
}

// NewContext creates a context at level 0.
func NewContext() *Context {
	return &Context{trail: make([]change, 0, 64)}
}

// Level returns the current decision level.
func (c *Context) Level() int { return c.level }

// Push opens a new decision level.
func (c *Context) Push() { c.level++ }

// Pop closes the n innermost decision levels.
func (c *Context) Pop(n int) {
	if n < 0 || n > c.level {
		panic(fmt.Sprintf("backtrack: cannot pop %d of %d levels", n, c.level))
	}
	c.PopTo(c.level - n)
}

// PopTo backtracks to level, undoing every change recorded above it.
func (c *Context) PopTo(level int) {
	if level < 0 || level > c.level {
		panic(fmt.Sprintf("backtrack: cannot pop to level %d from %d", level, c.level))
	}
	for i := len(c.trail) - 1; i >= 0 && c.trail[i].level > level; i-- {
		c.trail[i].undo()
		c.trail = c.trail[:i]
	}
	c.level = level
}

func (c *Context) record(undo func()) {
	if c.level == 0 {
		return
	}
	c.trail = append(c.trail, change{level: c.level, undo: undo})
}
