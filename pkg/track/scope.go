package track

// Scope is the render context of one observer.
//
// A scope is active only while the render that opened it is running.
// Reads through a nil scope, a closed scope or a scope of another runtime
// are not tracked. Scopes are passed explicitly down the render call, so a
// nested render always attributes reads to its own scope.
type Scope struct {
	rt       *Runtime
	observer Observer
	active   bool
}

// Observer returns the observer reads through this scope are attributed to.
func (s *Scope) Observer() Observer {
	if s == nil {
		return nil
	}
	return s.observer
}

// Runtime returns the runtime that opened the scope.
func (s *Scope) Runtime() *Runtime {
	if s == nil {
		return nil
	}
	return s.rt
}

// Active reports whether reads through the scope are currently tracked.
func (s *Scope) Active() bool {
	return s != nil && s.active
}

// tracking reports whether reads of rt's objects should be recorded.
func (s *Scope) tracking(rt *Runtime) bool {
	return s != nil && s.active && s.rt == rt && s.observer != nil
}
