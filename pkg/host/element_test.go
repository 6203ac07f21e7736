package host

import (
	"bytes"
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"github.com/vango-dev/autotrack/pkg/track"
	"github.com/vango-dev/autotrack/pkg/vdom"
)

// registerOnly is used only by TestRegisterIsIdempotent.
type registerOnly struct{}

func (registerOnly) Render(*track.Scope) *vdom.VNode { return nil }

// uninstrument forgets c's type so a test can observe first use again.
func uninstrument(c Component) {
	registry.Delete(reflect.TypeOf(c))
}

// elementOnly is used only by TestElementInstrumentsClassOnce.
type elementOnly struct{ n int }

func (*elementOnly) Render(*track.Scope) *vdom.VNode { return nil }

func TestKindOf(t *testing.T) {
	var nilComp *label
	var nilFunc Func

	tests := []struct {
		name string
		typ  any
		want Kind
	}{
		{"tag", "div", KindHost},
		{"class", &label{}, KindClass},
		{"value class", registerOnly{}, KindClass},
		{"func", Func(func(*track.Scope, vdom.Props) *vdom.VNode { return nil }), KindFunc},
		{"plain func", func(*track.Scope, vdom.Props) *vdom.VNode { return nil }, KindFunc},
		{"nil", nil, KindInvalid},
		{"nil class", nilComp, KindInvalid},
		{"nil func", nilFunc, KindInvalid},
		{"number", 42, KindInvalid},
		{"other func", func() {}, KindInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.typ); got != tt.want {
				t.Errorf("KindOf() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	uninstrument(registerOnly{})
	t.Cleanup(func() { uninstrument(registerOnly{}) })

	if Instrumented(registerOnly{}) {
		t.Fatal("type should not be instrumented before first use")
	}
	if !Register(registerOnly{}) {
		t.Error("first Register() should instrument the type")
	}
	if Register(registerOnly{}) {
		t.Error("second Register() should be a no-op")
	}
	if !Instrumented(registerOnly{}) {
		t.Error("Instrumented() should be true after Register()")
	}
	if Register(nil) {
		t.Error("Register(nil) should return false")
	}
}

func TestElementInstrumentsClassOnce(t *testing.T) {
	a, b := &elementOnly{n: 1}, &elementOnly{n: 2}

	first := Element(nil, a, nil)
	second := Element(nil, b, nil)

	if first.Kind != vdom.KindComponent || first.Comp != a {
		t.Errorf("Element(class) = %+v, want placeholder for a", first)
	}
	if second.Comp != b {
		t.Error("each Element call keeps its own component value")
	}

	info1, created := instrument(a)
	if created {
		t.Error("type should already be instrumented by Element")
	}
	info2, _ := instrument(b)
	if info1 != info2 {
		t.Error("instances of one type should share instrumentation")
	}
}

func TestElementClassDropsPropsAndChildren(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	rt := track.New(track.NewQueue(), track.WithLogger(logger))
	inst := &Instance{id: track.NextID(), comp: &wrapper{}, alive: true}

	var node *vdom.VNode
	rt.Render(inst, func(s *track.Scope) {
		node = Element(s, &label{}, vdom.Props{"key": "k", "title": "x"}, "child-text")
	})

	if node.Key != "k" || len(node.Children) != 0 {
		t.Errorf("Element(class) = %+v, want keyed placeholder without children", node)
	}
	out := buf.String()
	if !strings.Contains(out, "class component ignores props and children") ||
		!strings.Contains(out, "props=1") || !strings.Contains(out, "children=1") {
		t.Errorf("log = %q, want a debug line counting dropped props and children", out)
	}

	buf.Reset()
	rt.Render(inst, func(s *track.Scope) {
		Element(s, &label{}, vdom.Props{"key": "k"})
	})
	if buf.Len() != 0 {
		t.Errorf("a key alone should not be reported, log = %q", buf.String())
	}
}

func TestElementWrapsFuncWithScope(t *testing.T) {
	rt, _ := newRuntime()
	var captured *track.Scope
	obs := &wrapper{}
	inst := &Instance{id: track.NextID(), comp: obs, alive: true}

	var node *vdom.VNode
	rt.Render(inst, func(s *track.Scope) {
		captured = s
		node = Element(s, Func(func(*track.Scope, vdom.Props) *vdom.VNode { return nil }),
			vdom.Props{"key": "k1", "label": "x"}, "child")
	})

	call, ok := node.Comp.(*funcCall)
	if !ok {
		t.Fatalf("Comp = %T, want *funcCall", node.Comp)
	}
	if call.scope != captured {
		t.Error("wrapped call should capture the creating scope")
	}
	if node.Key != "k1" {
		t.Errorf("Key = %q, want k1", node.Key)
	}
	if call.props["label"] != "x" {
		t.Error("props should be passed through")
	}
	if children := Children(call.props); len(children) != 1 || children[0].Text != "child" {
		t.Errorf("children = %v, want [child]", children)
	}
}

func TestElementNormalizesChildren(t *testing.T) {
	var nilNode *vdom.VNode
	var nilComp *label

	node := Element(nil, "ul", vdom.Props{"className": "list"},
		"text",
		7,
		nil,
		nilNode,
		nilComp,
		[]*vdom.VNode{vdom.Text("a"), nil, vdom.Text("b")},
		vdom.Element("li", nil),
	)

	if node.Kind != vdom.KindElement || node.Tag != "ul" {
		t.Fatalf("Element() = %+v", node)
	}
	want := []string{"text", "7", "a", "b", ""}
	if len(node.Children) != len(want) {
		t.Fatalf("children = %d, want %d", len(node.Children), len(want))
	}
	for i, w := range want {
		if got := node.Children[i].Text; got != w {
			t.Errorf("child %d text = %q, want %q", i, got, w)
		}
	}
	if node.Children[4].Tag != "li" {
		t.Error("last child should be the li element")
	}
}

func TestElementInvalidType(t *testing.T) {
	if n := Element(nil, nil, nil); n != nil {
		t.Errorf("Element(nil) = %+v, want nil", n)
	}
	n := Element(nil, 3.5, nil)
	if n == nil || n.Kind != vdom.KindText || n.Text != "3.5" {
		t.Errorf("Element(3.5) = %+v, want text node", n)
	}
}
