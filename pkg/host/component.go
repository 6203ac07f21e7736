package host

import (
	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// Component is a class-like component: a value with a render method.
// Reads made through s during Render are attributed to the component's
// Instance.
type Component interface {
	Render(s *track.Scope) *vdom.VNode
}

// Mounter is implemented by components that want a callback after their
// first render has been committed. Children are mounted before parents.
type Mounter interface {
	Mount()
}

// Unmounter is implemented by components that want a callback when they
// are removed. Dependencies are already released when it runs.
type Unmounter interface {
	Unmount()
}

// Updater is implemented by components that want a callback after each
// forced redraw has been committed.
type Updater interface {
	Updated()
}

// Func is a function component. props carries the element props, plus the
// created children under "children" as []*vdom.VNode.
type Func func(s *track.Scope, props vdom.Props) *vdom.VNode

// funcCall is one wrapped invocation of a function component.
type funcCall struct {
	fn    Func
	props vdom.Props
	scope *track.Scope
}

// invoke runs the function with the scope captured at wrap time
// re-established, whatever the scope's state is by then.
func (c *funcCall) invoke(rt *track.Runtime) *vdom.VNode {
	var out *vdom.VNode
	rt.Resume(c.scope, func(s *track.Scope) {
		out = c.fn(s, c.props)
	})
	return out
}
