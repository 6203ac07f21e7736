package host

import (
	"reflect"
	"sync"

	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// Kind classifies what Element was given. It is decided once per call
// from the static shape of the value, and each kind has its own
// instrumentation strategy.
type Kind uint8

const (
	// KindInvalid values are rendered as text.
	KindInvalid Kind = iota

	// KindHost is a plain element tag.
	KindHost

	// KindClass is a Component value. Its type is instrumented once.
	KindClass

	// KindFunc is a function component. Each invocation is wrapped.
	KindFunc
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindHost:
		return "host"
	case KindClass:
		return "class"
	case KindFunc:
		return "func"
	default:
		return "invalid"
	}
}

// KindOf returns the kind Element would dispatch typ as.
func KindOf(typ any) Kind {
	switch typ.(type) {
	case string:
		return KindHost
	case Func, func(*track.Scope, vdom.Props) *vdom.VNode:
		if isNilPointer(typ) {
			return KindInvalid
		}
		return KindFunc
	case Component:
		if isNilPointer(typ) {
			return KindInvalid
		}
		return KindClass
	default:
		return KindInvalid
	}
}

// classInfo is the instrumentation record of one component type.
type classInfo struct {
	typ       reflect.Type
	mounter   bool
	unmounter bool
	updater   bool
}

// registry maps reflect.Type to *classInfo.
var registry sync.Map

// instrument returns the record for c's type, creating it on first use.
// created is false when the type was already instrumented.
func instrument(c Component) (info *classInfo, created bool) {
	typ := reflect.TypeOf(c)
	if v, ok := registry.Load(typ); ok {
		return v.(*classInfo), false
	}

	_, mounter := c.(Mounter)
	_, unmounter := c.(Unmounter)
	_, updater := c.(Updater)
	info = &classInfo{
		typ:       typ,
		mounter:   mounter,
		unmounter: unmounter,
		updater:   updater,
	}

	actual, loaded := registry.LoadOrStore(typ, info)
	return actual.(*classInfo), !loaded
}

// Register instruments c's type ahead of its first render.
// It reports false if the type was already instrumented.
func Register(c Component) bool {
	if c == nil {
		return false
	}
	_, created := instrument(c)
	return created
}

// Instrumented reports whether c's type has been instrumented.
func Instrumented(c Component) bool {
	if c == nil {
		return false
	}
	_, ok := registry.Load(reflect.TypeOf(c))
	return ok
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
