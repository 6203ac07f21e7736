// Package host mounts component trees on a track.Runtime.
//
// Element is the single point where instrumentation is activated. Every
// element, child component and function component a render produces goes
// through it:
//
//	func (c *Counter) Render(s *track.Scope) *vdom.VNode {
//	    return host.Element(s, "div", nil,
//	        host.Element(s, "span", nil, c.count.Get(s)),
//	        host.Element(s, host.Func(Label), vdom.Props{"text": "clicks"}),
//	    )
//	}
//
// Class components (values implementing Component) are instrumented once
// per dynamic type and become Instances: observers that render under their
// own scope, redraw when a property they read changes, and release every
// dependency when unmounted. Function components have no identity of
// their own; each invocation is wrapped with the scope of the render that
// created it, so their reads count as reads of the enclosing component.
//
// A Tree is confined to the goroutine that runs its runtime's loop.
package host
