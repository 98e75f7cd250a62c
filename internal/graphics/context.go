package graphics

import "mini-terrain/internal/gpu"

// Context owns a GPU device and tracks which program is bound on it.
// Programs created from the same Context share the active-program marker,
// so switching between them only reaches the device when the program
// actually changes. Independent contexts never see each other's state.
type Context struct {
	dev    gpu.Device
	active gpu.Program
	bound  bool
}

// NewContext wraps dev.
func NewContext(dev gpu.Device) *Context {
	return &Context{dev: dev}
}

// Device returns the wrapped device.
func (c *Context) Device() gpu.Device { return c.dev }

// Active reports the program currently bound through this context.
func (c *Context) Active() (gpu.Program, bool) { return c.active, c.bound }

func (c *Context) use(p gpu.Program) {
	if c.bound && c.active == p {
		return
	}
	c.dev.UseProgram(p)
	c.active = p
	c.bound = true
}

func (c *Context) forget(p gpu.Program) {
	if c.bound && c.active == p {
		c.active = 0
		c.bound = false
	}
}
