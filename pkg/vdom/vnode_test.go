package vdom

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{VKind(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("VKind.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVNodeIsInteractive(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want bool
	}{
		{
			name: "nil node",
			node: nil,
			want: false,
		},
		{
			name: "text node",
			node: &VNode{Kind: KindText, Text: "hello"},
			want: false,
		},
		{
			name: "element without handlers",
			node: &VNode{Kind: KindElement, Tag: "div", Props: Props{"class": "test"}},
			want: false,
		},
		{
			name: "element with onclick",
			node: &VNode{Kind: KindElement, Tag: "button", Props: Props{"onclick": func() {}}},
			want: true,
		},
		{
			name: "element with nil props",
			node: &VNode{Kind: KindElement, Tag: "div"},
			want: false,
		},
		{
			name: "fragment node",
			node: &VNode{Kind: KindFragment},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsInteractive(); got != tt.want {
				t.Errorf("VNode.IsInteractive() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestElement(t *testing.T) {
	props := Props{"class": "row", "key": "a"}
	node := Element("li", props, Text("one"), nil, Text("two"))

	if node.Kind != KindElement || node.Tag != "li" {
		t.Fatalf("node = %+v", node)
	}
	if node.Key != "a" {
		t.Errorf("Key = %q, want a", node.Key)
	}
	if len(node.Children) != 2 {
		t.Errorf("nil children should be dropped, got %d", len(node.Children))
	}

	node.Props["class"] = "changed"
	if props["class"] != "row" {
		t.Error("Element should copy props")
	}
}

func TestFragmentAndPlaceholder(t *testing.T) {
	frag := Fragment(Text("a"), nil)
	if frag.Kind != KindFragment || len(frag.Children) != 1 {
		t.Errorf("Fragment = %+v", frag)
	}

	comp := &struct{ n int }{}
	ph := Placeholder(comp, "k")
	if ph.Kind != KindComponent || ph.Comp != any(comp) || ph.Key != "k" {
		t.Errorf("Placeholder = %+v", ph)
	}
}

func TestPropsHandler(t *testing.T) {
	props := Props{"onclick": func() {}, "oninput": nil}

	if _, ok := props.Handler("click"); !ok {
		t.Error("click handler should be found")
	}
	if _, ok := props.Handler("Click"); !ok {
		t.Error("event names are case-insensitive")
	}
	if _, ok := props.Handler("input"); ok {
		t.Error("nil handler should be reported missing")
	}
	if _, ok := props.Handler("submit"); ok {
		t.Error("missing handler should be reported missing")
	}
}

func TestWalkSkipsChildren(t *testing.T) {
	tree := Element("div", nil,
		Element("span", nil, Text("hidden")),
		Text("visible"),
	)

	var texts []string
	Walk(tree, func(v *VNode) bool {
		if v.Kind == KindText {
			texts = append(texts, v.Text)
		}
		return v.Tag != "span"
	})

	if strings.Join(texts, ",") != "visible" {
		t.Errorf("texts = %v, want [visible]", texts)
	}
}

func TestPatchOpString(t *testing.T) {
	tests := []struct {
		op   PatchOp
		want string
	}{
		{PatchSetText, "SetText"},
		{PatchSetAttr, "SetAttr"},
		{PatchRemoveAttr, "RemoveAttr"},
		{PatchInsertNode, "InsertNode"},
		{PatchRemoveNode, "RemoveNode"},
		{PatchMoveNode, "MoveNode"},
		{PatchReplaceNode, "ReplaceNode"},
		{PatchOp(255), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.op.String(); got != tt.want {
				t.Errorf("PatchOp.String() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPatchJSON(t *testing.T) {
	p := Patch{Op: PatchSetText, HID: "h3", Value: "hi", Node: Text("ignored")}

	b, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"op":"SetText","hid":"h3","value":"hi"}`
	if string(b) != want {
		t.Errorf("json = %s, want %s", b, want)
	}
}
