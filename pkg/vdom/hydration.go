package vdom

import (
	"fmt"
	"sync"
)

// HIDGenerator generates unique hydration IDs.
type HIDGenerator struct {
	counter uint32
	mu      sync.Mutex
}

// NewHIDGenerator creates a new HIDGenerator.
func NewHIDGenerator() *HIDGenerator {
	return &HIDGenerator{}
}

// Next returns the next hydration ID (e.g., "h1", "h2", ...).
func (g *HIDGenerator) Next() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("h%d", g.counter)
}

// Current returns the current counter value without incrementing.
func (g *HIDGenerator) Current() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.counter
}

// AssignHIDs gives every element without an HID a new one and returns how
// many were assigned. Existing HIDs are kept, so calling it after Diff
// only addresses newly created elements.
func AssignHIDs(node *VNode, gen *HIDGenerator) int {
	n := 0
	Walk(node, func(v *VNode) bool {
		if v.Kind == KindElement && v.HID == "" {
			v.HID = gen.Next()
			n++
		}
		return true
	})
	return n
}

// FindByHID finds a node by its HID in the tree.
func FindByHID(node *VNode, hid string) *VNode {
	var found *VNode
	Walk(node, func(v *VNode) bool {
		if found != nil {
			return false
		}
		if v.HID == hid {
			found = v
			return false
		}
		return true
	})
	return found
}

// FirstHID returns the HID of the first element in node's subtree.
// Component and fragment nodes have no HID of their own; patches that
// replace them address their first element.
func FirstHID(node *VNode) string {
	var hid string
	Walk(node, func(v *VNode) bool {
		if hid != "" {
			return false
		}
		if v.Kind == KindElement {
			hid = v.HID
			return false
		}
		return true
	})
	return hid
}
