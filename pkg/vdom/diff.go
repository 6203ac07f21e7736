package vdom

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// Diff compares two VNode trees and returns the patches needed to turn
// prev into next. HIDs are carried over from prev to the matching nodes
// of next, so next can be diffed against the following render.
func Diff(prev, next *VNode) []Patch {
	d := &differ{}
	d.node(prev, next, "")
	return d.patches
}

// differ accumulates patches for one Diff call. parent is the HID of the
// nearest enclosing element; text and fragment patches target it.
//
// lost is set when a removed node could not be addressed, which happens
// for text nodes since they carry no HID. The enclosing element is then
// replaced as a whole.
type differ struct {
	patches []Patch
	lost    bool
}

func (d *differ) emit(p Patch) {
	d.patches = append(d.patches, p)
}

func (d *differ) node(prev, next *VNode, parent string) {
	switch {
	case prev == nil:
		// Insertions are emitted by the parent, which knows the index.
		return
	case next == nil:
		d.remove(prev)
		return
	case prev.Kind != next.Kind:
		d.replace(prev, next, parent)
		return
	}

	switch prev.Kind {
	case KindText:
		next.HID = prev.HID
		if prev.Text == next.Text {
			return
		}
		target := prev.HID
		if target == "" {
			target = parent
		}
		if target != "" {
			d.emit(Patch{Op: PatchSetText, HID: target, Value: next.Text})
		}

	case KindElement:
		if prev.Tag != next.Tag {
			d.replace(prev, next, "")
			return
		}
		next.HID = prev.HID
		sub := &differ{}
		sub.children(prev.HID, prev.Children, next.Children)
		if sub.lost {
			if prev.HID == "" {
				d.lost = true
				return
			}
			d.emit(Patch{Op: PatchReplaceNode, HID: prev.HID, Node: next})
			return
		}
		d.props(prev, next)
		d.patches = append(d.patches, sub.patches...)

	case KindFragment:
		next.HID = prev.HID
		d.children(parent, prev.Children, next.Children)

	case KindComponent:
		if !sameComponent(prev.Comp, next.Comp) {
			d.replace(prev, next, parent)
			return
		}
		d.positional(parent, prev.Children, next.Children)
	}
}

// sameComponent compares component identities without panicking on
// uncomparable dynamic types.
func sameComponent(a, b any) bool {
	if a == nil || b == nil {
		return false
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

// replace emits a ReplaceNode for prev. Nodes without their own HID are
// addressed through their first element, then through the parent.
func (d *differ) replace(prev, next *VNode, parent string) {
	hid := prev.HID
	if hid == "" {
		hid = FirstHID(prev)
	}
	if hid == "" {
		hid = parent
	}
	d.emit(Patch{Op: PatchReplaceNode, HID: hid, Node: next})
}

// remove emits a RemoveNode for prev, or one per element for nodes
// without an HID of their own. Text without an HID marks the diff lost.
func (d *differ) remove(prev *VNode) {
	if prev.HID != "" {
		d.emit(Patch{Op: PatchRemoveNode, HID: prev.HID})
		return
	}
	if prev.Kind == KindText {
		d.lost = true
		return
	}
	for _, child := range prev.Children {
		d.remove(child)
	}
}

func (d *differ) insert(parent string, index int, node *VNode) {
	d.emit(Patch{Op: PatchInsertNode, ParentID: parent, Index: index, Node: node})
}

// props emits attribute patches in key order. Handlers and the key are
// not attributes.
func (d *differ) props(prev, next *VNode) {
	keys := make([]string, 0, len(prev.Props)+len(next.Props))
	for k := range prev.Props {
		keys = append(keys, k)
	}
	for k := range next.Props {
		if _, ok := prev.Props[k]; !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		if k == "key" || isEventHandler(k) {
			continue
		}
		was, had := prev.Props[k]
		now, has := next.Props[k]
		switch {
		case !has:
			d.emit(Patch{Op: PatchRemoveAttr, HID: prev.HID, Key: k})
		case !had || !propsEqual(was, now):
			d.emit(Patch{Op: PatchSetAttr, HID: prev.HID, Key: k, Value: propToString(now)})
		}
	}
}

func (d *differ) children(parent string, prev, next []*VNode) {
	if hasKeys(prev) || hasKeys(next) {
		d.keyed(parent, prev, next)
		return
	}
	d.positional(parent, prev, next)
}

// positional matches children by index.
func (d *differ) positional(parent string, prev, next []*VNode) {
	for i := 0; i < len(prev) || i < len(next); i++ {
		switch {
		case i >= len(prev):
			d.insert(parent, i, next[i])
		case i >= len(next):
			d.remove(prev[i])
		default:
			d.node(prev[i], next[i], parent)
		}
	}
}

// keyed matches children by key. Matched children that changed position
// are moved; unkeyed children in a keyed list are always inserted.
func (d *differ) keyed(parent string, prev, next []*VNode) {
	index := make(map[string]int, len(prev))
	for i, child := range prev {
		if k := keyOf(child); k != "" {
			index[k] = i
		}
	}

	matched := make([]bool, len(prev))
	for i, child := range next {
		j, ok := index[keyOf(child)]
		if !ok {
			d.insert(parent, i, child)
			continue
		}
		matched[j] = true
		if j != i {
			d.emit(Patch{Op: PatchMoveNode, HID: prev[j].HID, ParentID: parent, Index: i})
		}
		d.node(prev[j], child, parent)
	}

	for i, child := range prev {
		if !matched[i] {
			d.remove(child)
		}
	}
}

// keyOf returns the node's key, falling back to a string "key" prop.
func keyOf(node *VNode) string {
	if node == nil {
		return ""
	}
	if node.Key != "" {
		return node.Key
	}
	k, _ := node.Props["key"].(string)
	return k
}

func hasKeys(children []*VNode) bool {
	for _, child := range children {
		if keyOf(child) != "" {
			return true
		}
	}
	return false
}

// isEventHandler reports whether key names a handler. The match is
// case-insensitive so onclick and OnClick are both skipped.
func isEventHandler(key string) bool {
	return len(key) > 2 && strings.EqualFold(key[:2], "on")
}

func propsEqual(a, b any) bool {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case int64:
		bv, ok := b.(int64)
		return ok && av == bv
	case float64:
		bv, ok := b.(float64)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	return reflect.DeepEqual(a, b)
}

// propToString formats a prop value as an attribute value.
func propToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}
