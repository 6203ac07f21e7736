package vdom

import (
	"fmt"
	"strings"
)

// VKind is the node type discriminator.
type VKind uint8

const (
	KindElement   VKind = iota // <div>, <button>, etc.
	KindText                   // Plain text node
	KindFragment               // Grouping without wrapper
	KindComponent              // Nested component
)

// String returns the string representation of the VKind.
func (k VKind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindFragment:
		return "Fragment"
	case KindComponent:
		return "Component"
	default:
		return "Unknown"
	}
}

// VNode is the virtual DOM node.
type VNode struct {
	Kind     VKind    // Node type
	Tag      string   // Element tag name (e.g., "div")
	Props    Props    // Attributes and event handlers
	Children []*VNode // Child nodes; the expansion of a component node
	Key      string   // Reconciliation key
	Text     string   // For KindText
	Comp     any      // For KindComponent, owned by the host
	HID      string   // Hydration ID
}

// Props holds attributes and event handlers.
type Props map[string]any

// Handler returns the handler for event ("click" looks up "onclick").
func (p Props) Handler(event string) (any, bool) {
	h, ok := p["on"+strings.ToLower(event)]
	return h, ok && h != nil
}

// IsInteractive returns true if this node has event handlers.
func (v *VNode) IsInteractive() bool {
	if v == nil || v.Kind != KindElement {
		return false
	}
	for key := range v.Props {
		if isEventHandler(key) {
			return true
		}
	}
	return false
}

// Element creates an element node. Props are copied; a "key" prop also
// sets the reconciliation key.
func Element(tag string, props Props, children ...*VNode) *VNode {
	node := &VNode{
		Kind:     KindElement,
		Tag:      tag,
		Props:    make(Props, len(props)),
		Children: make([]*VNode, 0, len(children)),
	}
	for k, v := range props {
		node.Props[k] = v
	}
	if key, ok := props["key"].(string); ok {
		node.Key = key
	}
	for _, child := range children {
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// Text creates a text node.
func Text(content string) *VNode {
	return &VNode{
		Kind: KindText,
		Text: content,
	}
}

// Textf creates a formatted text node.
func Textf(format string, args ...any) *VNode {
	return Text(fmt.Sprintf(format, args...))
}

// Fragment groups children without a wrapper element.
func Fragment(children ...*VNode) *VNode {
	node := &VNode{
		Kind:     KindFragment,
		Children: make([]*VNode, 0, len(children)),
	}
	for _, child := range children {
		if child != nil {
			node.Children = append(node.Children, child)
		}
	}
	return node
}

// Placeholder creates a component node for comp. The host fills Children.
func Placeholder(comp any, key string) *VNode {
	return &VNode{
		Kind: KindComponent,
		Comp: comp,
		Key:  key,
	}
}

// Walk calls fn for node and every descendant in document order.
// Returning false from fn skips the node's children.
func Walk(node *VNode, fn func(*VNode) bool) {
	if node == nil {
		return
	}
	if !fn(node) {
		return
	}
	for _, child := range node.Children {
		Walk(child, fn)
	}
}
