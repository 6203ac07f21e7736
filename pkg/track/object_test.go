package track

import (
	"reflect"
	"testing"
)

func TestObjectBag(t *testing.T) {
	rt, _ := newTestRuntime()
	initial := map[string]any{"x": 1}
	o := rt.NewObject("o", initial)

	o.Set("x", 2)
	if initial["x"] != 1 {
		t.Error("NewObject should copy the initial map")
	}
	if got := o.Peek("x"); got != 2 {
		t.Errorf("Peek(x) = %v, want 2", got)
	}
	if o.Peek("missing") != nil {
		t.Error("Peek of a missing key should be nil")
	}

	o.Set("a", "b")
	if keys := o.Keys(); !reflect.DeepEqual(keys, []string{"a", "x"}) {
		t.Errorf("Keys = %v", keys)
	}

	o.Delete("a")
	if o.Has("a") {
		t.Error("Delete should remove the key")
	}
}

func TestObserveMapInPlace(t *testing.T) {
	rt, _ := newTestRuntime()
	target := map[string]any{"x": 1}
	o := rt.Observe("m", target)

	o.Set("x", 5)
	if target["x"] != 5 {
		t.Errorf("write should be visible in the caller's map, got %v", target["x"])
	}
}

type profile struct {
	Name  string
	Age   int
	Score float64
	Tags  []string
	note  string
}

func TestObserveStruct(t *testing.T) {
	rt, _ := newTestRuntime()
	p := &profile{Name: "Ada", Age: 36, note: "private"}
	o := rt.Observe("profile", p)

	if got := o.Peek("Name"); got != "Ada" {
		t.Errorf("Peek(Name) = %v", got)
	}
	if o.Has("note") {
		t.Error("unexported fields should not be exposed")
	}
	if keys := o.Keys(); !reflect.DeepEqual(keys, []string{"Age", "Name", "Score", "Tags"}) {
		t.Errorf("Keys = %v", keys)
	}

	o.Set("Name", "Grace")
	if p.Name != "Grace" {
		t.Errorf("struct field not written, Name = %q", p.Name)
	}

	// Numeric conversion
	o.Set("Age", int64(40))
	if p.Age != 40 {
		t.Errorf("Age = %d, want 40", p.Age)
	}
	o.Set("Score", 3)
	if p.Score != 3 {
		t.Errorf("Score = %v, want 3", p.Score)
	}

	// nil resets to zero
	p.Tags = []string{"a"}
	o.Set("Tags", nil)
	if p.Tags != nil {
		t.Errorf("Tags = %v, want nil", p.Tags)
	}
}

func TestObserveStructDropsBadWrites(t *testing.T) {
	rt, _ := newTestRuntime()
	p := &profile{Name: "Ada", Age: 36}
	o := rt.Observe("profile", p)
	obs := newTestObserver()
	rt.Render(obs, func(s *Scope) {
		o.Get(s, "Age")
		o.Get(s, "Missing")
	})

	tests := []struct {
		name string
		fn   func()
	}{
		{"type mismatch", func() { o.Set("Age", "old") }},
		{"unknown field", func() { o.Set("Missing", 1) }},
		{"string to int", func() { o.Set("Name", 5) }},
		{"delete", func() { o.Delete("Age") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn()
		})
	}

	if p.Age != 36 || p.Name != "Ada" {
		t.Errorf("dropped writes must not modify the struct, got %+v", *p)
	}
	if rt.Scheduler().Pending() != 0 {
		t.Error("dropped writes must not invalidate readers")
	}
}

func TestObserveUnsupportedTarget(t *testing.T) {
	rt, _ := newTestRuntime()

	for _, target := range []any{nil, 42, "str", profile{}, (*profile)(nil)} {
		o := rt.Observe("bad", target)
		if o == nil {
			t.Fatalf("Observe(%T) returned nil", target)
		}
		o.Set("k", 1)
		if o.Peek("k") != 1 {
			t.Errorf("fallback object for %T should behave as a bag", target)
		}
	}
}

func TestNilObjectIsSafe(t *testing.T) {
	var o *Object
	if o.Get(nil, "x") != nil || o.Peek("x") != nil || o.Has("x") || o.Keys() != nil {
		t.Error("nil object reads should be empty")
	}
	o.Set("x", 1)
	o.Delete("x")
	o.Update("x", func(v any) any { return v })
	if o.ID() != 0 || o.Name() != "" || o.Runtime() != nil {
		t.Error("nil object accessors should return zero values")
	}
}

func TestTypedGet(t *testing.T) {
	rt, _ := newTestRuntime()
	o := rt.NewObject("o", map[string]any{"n": 3, "s": "str"})

	if n, ok := Get[int](o, nil, "n"); !ok || n != 3 {
		t.Errorf("Get[int] = %d, %v", n, ok)
	}
	if _, ok := Get[int](o, nil, "s"); ok {
		t.Error("Get[int] of a string should report !ok")
	}
	if _, ok := Get[int](o, nil, "missing"); ok {
		t.Error("Get of a missing key should report !ok")
	}
}

func TestField(t *testing.T) {
	rt, q := newTestRuntime()
	o := rt.NewObject("counter", map[string]any{"count": 1})
	count := NewField[int](o, "count")
	obs := newTestObserver()

	var seen int
	rt.Render(obs, func(s *Scope) {
		seen = count.Get(s)
	})
	if seen != 1 {
		t.Errorf("Get = %d, want 1", seen)
	}
	if !rt.Graph().Has(o, "count", obs) {
		t.Error("Field.Get should track")
	}

	count.Update(func(n int) int { return n + 1 })
	if count.Peek() != 2 {
		t.Errorf("Peek = %d, want 2", count.Peek())
	}
	if count.Key() != "count" || count.Object() != o {
		t.Error("Field accessors")
	}

	q.RunPending()
	if obs.redraws != 1 {
		t.Errorf("redraws = %d, want 1", obs.redraws)
	}
}

func TestObjectUpdate(t *testing.T) {
	rt, _ := newTestRuntime()
	o := rt.NewObject("o", map[string]any{"n": 1})

	o.Update("n", func(v any) any { return v.(int) * 10 })
	if o.Peek("n") != 10 {
		t.Errorf("n = %v, want 10", o.Peek("n"))
	}
}
