package edit

import "context"

// Composite groups child commands into one history entry.
//
// Execute runs children strictly in list order; Undo runs their undos in
// reverse order, unwinding dependencies created in forward order (an
// auto-arrange that moves several items must restore positions last-first).
//
// A composite is assembled with Add before it is ever executed. Children
// must not be independently pushed onto a Manager - the composite is the
// unit of history.
type Composite struct {
	meta
	children []Command
}

// NewComposite creates an empty composite command.
func (e *Env) NewComposite(description string) *Composite {
	return &Composite{meta: e.newMeta(description)}
}

// Add appends a child. Call only before the composite first executes.
func (c *Composite) Add(cmd Command) {
	c.children = append(c.children, cmd)
}

// Len returns the number of children.
func (c *Composite) Len() int { return len(c.children) }

// Execute runs all children in order. The first failure propagates;
// already-executed children are not rolled back here - the Manager never
// records a failed composite, and the caller decides whether to issue a
// compensating undo.
func (c *Composite) Execute(ctx context.Context) error {
	for _, child := range c.children {
		if err := child.Execute(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Undo reverses all children in reverse order.
func (c *Composite) Undo(ctx context.Context) error {
	for i := len(c.children) - 1; i >= 0; i-- {
		if err := c.children[i].Undo(ctx); err != nil {
			return err
		}
	}
	return nil
}
