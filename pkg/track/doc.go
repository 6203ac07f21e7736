// Package track provides the dependency-tracking core of autotrack.
//
// Reading a tracked property while a component renders records a
// dependency edge between the (object, key) pair and the component.
// Writing the property queues every current reader for a single batched
// redraw on the next turn of the event loop.
//
// # Core Types
//
// Object is an explicitly tracked data holder:
//
//	user := rt.NewObject("user", map[string]any{"name": "Ada"})
//	name := user.Get(s, "name") // tracked when s is an active render scope
//	user.Set("name", "Grace")   // queues every reader of "name"
//
// Field[T] is a typed reactive cell bound to one property:
//
//	count := track.NewField[int](counter, "count")
//	count.Update(func(n int) int { return n + 1 })
//
// Scope is the render context. Runtime.Render opens a scope for one
// observer, clears the observer's previous dependencies and closes the
// scope on every exit path:
//
//	rt.Render(instance, func(s *track.Scope) {
//	    tree = component.Render(s)
//	})
//
// # Batching
//
// Writes never redraw synchronously. The Scheduler collects readers into a
// pending set and posts one flush to its Loop; the flush redraws each live
// observer exactly once.
//
// # Threading
//
// A Runtime and every Object it creates are confined to the goroutine that
// runs the Loop. Use EventLoop.Post or EventLoop.Call to reach them from
// other goroutines.
package track
