package demo

import (
	"github.com/vango-dev/autotrack/pkg/host"
	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// Counter shows a count and buttons that change it by step.
type Counter struct {
	State *track.Object
}

// NewCounter creates a counter with its own "counter" object.
func NewCounter(rt *track.Runtime) *Counter {
	return &Counter{
		State: rt.NewObject("counter", map[string]any{
			"count": 0,
			"step":  1,
		}),
	}
}

// Render implements host.Component.
func (c *Counter) Render(s *track.Scope) *vdom.VNode {
	count, _ := track.Get[int](c.State, s, "count")
	step, _ := track.Get[int](c.State, s, "step")

	return host.Element(s, "div", vdom.Props{"className": "counter"},
		host.Element(s, "button", vdom.Props{"onclick": c.Decrement}, "-"),
		host.Element(s, "span", vdom.Props{"className": "count"}, count),
		host.Element(s, "button", vdom.Props{"onclick": c.Increment}, "+"),
		host.Element(s, "small", nil, "step ", step),
	)
}

// Increment adds step to count.
func (c *Counter) Increment() { c.add(1) }

// Decrement subtracts step from count.
func (c *Counter) Decrement() { c.add(-1) }

func (c *Counter) add(sign int) {
	step, _ := c.State.Peek("step").(int)
	c.State.Update("count", func(v any) any {
		n, _ := v.(int)
		return n + sign*step
	})
}
