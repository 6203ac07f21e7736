package track

// Field is a typed reactive cell bound to one property of an Object.
//
//	count := track.NewField[int](counter, "count")
//	n := count.Get(s) // tracked during render
//	count.Set(n + 1)  // queues readers of "count"
type Field[T any] struct {
	obj *Object
	key string
}

// NewField binds a typed cell to key on o.
func NewField[T any](o *Object, key string) Field[T] {
	return Field[T]{obj: o, key: key}
}

// Get returns the value, recording a dependency if s is rendering.
// Returns the zero value if the property is missing or has another type.
func (f Field[T]) Get(s *Scope) T {
	v, _ := Get[T](f.obj, s, f.key)
	return v
}

// Peek returns the value without recording a dependency.
func (f Field[T]) Peek() T {
	v, _ := f.obj.Peek(f.key).(T)
	return v
}

// Set stores v and queues the property's readers.
func (f Field[T]) Set(v T) {
	f.obj.Set(f.key, v)
}

// Update stores fn applied to the current value.
func (f Field[T]) Update(fn func(T) T) {
	f.Set(fn(f.Peek()))
}

// Key returns the bound property name.
func (f Field[T]) Key() string {
	return f.key
}

// Object returns the bound object.
func (f Field[T]) Object() *Object {
	return f.obj
}
