package track

import (
	"reflect"
	"sort"
)

// Object is an observable data holder.
//
// Reads through Get record a dependency when they happen inside an active
// render Scope; writes through Set invalidate every current reader of the
// written key. Objects never fail loudly: a write the backing value cannot
// accept is dropped and logged at debug level, and reads of unknown keys
// return nil.
//
// An Object belongs to the Runtime that created it and shares its
// threading rules.
type Object struct {
	id    uint64
	name  string
	rt    *Runtime
	store store
}

// store is the backing value of an Object.
type store interface {
	load(key string) (any, bool)
	save(key string, value any) error
	remove(key string) error
	keys() []string
}

// ID returns the unique identifier of this object.
func (o *Object) ID() uint64 {
	if o == nil {
		return 0
	}
	return o.id
}

// Name returns the name the object was created with.
func (o *Object) Name() string {
	if o == nil {
		return ""
	}
	return o.name
}

// Runtime returns the runtime that owns this object.
func (o *Object) Runtime() *Runtime {
	if o == nil {
		return nil
	}
	return o.rt
}

// Get returns the value stored under key.
// If s is an active scope of the object's runtime, the scope's observer
// is recorded as a reader of key, whether or not the key currently exists.
func (o *Object) Get(s *Scope, key string) any {
	if o == nil {
		return nil
	}
	value, _ := o.store.load(key)
	o.track(s, key)
	return value
}

// Peek returns the value stored under key without recording a dependency.
func (o *Object) Peek(key string) any {
	if o == nil {
		return nil
	}
	value, _ := o.store.load(key)
	return value
}

// Has reports whether key currently exists. It does not track.
func (o *Object) Has(key string) bool {
	if o == nil {
		return false
	}
	_, ok := o.store.load(key)
	return ok
}

// Keys returns the current property names in sorted order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return o.store.keys()
}

// Set stores value under key and queues every current reader of key for
// redraw. Readers are never redrawn synchronously.
func (o *Object) Set(key string, value any) {
	if o == nil {
		return
	}
	if err := o.store.save(key, value); err != nil {
		o.rt.logger.Debug("write dropped", "object", o.name, "key", key, "error", err)
		return
	}
	o.rt.invalidate(o, key)
}

// Update replaces the value under key with fn applied to the current value.
func (o *Object) Update(key string, fn func(any) any) {
	if o == nil || fn == nil {
		return
	}
	o.Set(key, fn(o.Peek(key)))
}

// Delete removes key and queues its readers for redraw.
// Struct-backed objects have a fixed shape; deleting from them is dropped.
func (o *Object) Delete(key string) {
	if o == nil {
		return
	}
	if err := o.store.remove(key); err != nil {
		o.rt.logger.Debug("delete dropped", "object", o.name, "key", key, "error", err)
		return
	}
	o.rt.invalidate(o, key)
}

// track links (o, key) to the scope's observer if the scope is rendering.
func (o *Object) track(s *Scope, key string) {
	if !s.tracking(o.rt) {
		return
	}
	if o.rt.graph.Link(o, key, s.observer) {
		o.rt.metrics.linked()
	}
}

// Get reads key from o as a T.
// The read is tracked exactly like Object.Get. ok is false when the key is
// missing or holds a value of another type.
func Get[T any](o *Object, s *Scope, key string) (value T, ok bool) {
	value, ok = o.Get(s, key).(T)
	return value, ok
}

// =============================================================================
// Backing stores
// =============================================================================

// bagStore is a property bag owned by the object.
type bagStore map[string]any

func (b bagStore) load(key string) (any, bool) {
	v, ok := b[key]
	return v, ok
}

func (b bagStore) save(key string, value any) error {
	b[key] = value
	return nil
}

func (b bagStore) remove(key string) error {
	delete(b, key)
	return nil
}

func (b bagStore) keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// structStore exposes the exported fields of a struct through a pointer.
// Writes go straight into the caller's struct.
type structStore struct {
	value  reflect.Value
	fields map[string]int
	names  []string
}

func newStructStore(ptr reflect.Value) *structStore {
	elem := ptr.Elem()
	typ := elem.Type()
	s := &structStore{
		value:  elem,
		fields: make(map[string]int, typ.NumField()),
	}
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		if !f.IsExported() {
			continue
		}
		s.fields[f.Name] = i
		s.names = append(s.names, f.Name)
	}
	sort.Strings(s.names)
	return s
}

func (s *structStore) load(key string) (any, bool) {
	i, ok := s.fields[key]
	if !ok {
		return nil, false
	}
	return s.value.Field(i).Interface(), true
}

func (s *structStore) save(key string, value any) error {
	i, ok := s.fields[key]
	if !ok {
		return errUnknownField
	}
	field := s.value.Field(i)

	if value == nil {
		field.Set(reflect.Zero(field.Type()))
		return nil
	}

	v := reflect.ValueOf(value)
	switch {
	case v.Type().AssignableTo(field.Type()):
		field.Set(v)
	case isNumeric(v.Kind()) && isNumeric(field.Kind()) && v.Type().ConvertibleTo(field.Type()):
		field.Set(v.Convert(field.Type()))
	default:
		return errTypeMismatch
	}
	return nil
}

func (s *structStore) remove(string) error {
	return errFixedShape
}

func (s *structStore) keys() []string {
	return append([]string(nil), s.names...)
}

func isNumeric(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

// newStore picks the backing store for a caller-provided target.
// Unsupported targets fall back to an empty bag; ok reports whether the
// target was used.
func newStore(target any) (s store, ok bool) {
	switch t := target.(type) {
	case nil:
		return bagStore{}, false
	case map[string]any:
		if t == nil {
			return bagStore{}, false
		}
		return bagStore(t), true
	}

	v := reflect.ValueOf(target)
	if v.Kind() == reflect.Pointer && !v.IsNil() && v.Elem().Kind() == reflect.Struct {
		return newStructStore(v), true
	}
	return bagStore{}, false
}
