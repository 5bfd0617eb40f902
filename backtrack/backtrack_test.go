package backtrack

import "testing"

func TestCellRestoresOnPop(t *testing.T) {
	ctx := NewContext()
	c := NewCell(ctx, 1)

	c.Set(2) // level 0 writes are permanent
	ctx.Push()
	c.Set(3)
	c.Set(4)
	ctx.Push()
	c.Set(5)
	if c.Get() != 5 || ctx.Level() != 2 {
		t.Fatalf("expected 5 at level 2, got %d at %d", c.Get(), ctx.Level())
	}
	ctx.Pop(1)
	if c.Get() != 4 {
		t.Fatalf("expected 4 after pop, got %d", c.Get())
	}
	ctx.PopTo(0)
	if c.Get() != 2 {
		t.Fatalf("expected 2 at root, got %d", c.Get())
	}
}

func TestCellRewrittenAfterPop(t *testing.T) {
	ctx := NewContext()
	c := NewCell(ctx, "root")
	ctx.Push()
	c.Set("a")
	ctx.PopTo(0)
	ctx.Push()
	c.Set("b")
	ctx.Push()
	c.Set("c")
	ctx.PopTo(1)
	if c.Get() != "b" {
		t.Fatalf("expected b, got %q", c.Get())
	}
	ctx.PopTo(0)
	if c.Get() != "root" {
		t.Fatalf("expected root, got %q", c.Get())
	}
}

func TestMapRestoresOnPop(t *testing.T) {
	ctx := NewContext()
	m := NewMap[string, int](ctx)
	m.Set("x", 1)

	ctx.Push()
	m.Set("x", 2)
	m.Set("y", 3)
	if m.Len() != 2 {
		t.Fatalf("expected 2 keys, got %d", m.Len())
	}
	ctx.Pop(1)
	if v, ok := m.Get("x"); !ok || v != 1 {
		t.Fatalf("expected x = 1, got %d (%v)", v, ok)
	}
	if _, ok := m.Get("y"); ok {
		t.Fatalf("expected y to be removed")
	}
}

func TestPopOutOfRangePanics(t *testing.T) {
	for name, fn := range map[string]func(*Context){
		"pop":      func(c *Context) { c.Pop(2) },
		"negative": func(c *Context) { c.Pop(-1) },
		"pop to":   func(c *Context) { c.PopTo(3) },
	} {
		t.Run(name, func(t *testing.T) {
			ctx := NewContext()
			ctx.Push()
			defer func() {
				if recover() == nil {
					t.Fatalf("expected panic")
				}
			}()
			fn(ctx)
		})
	}
}
