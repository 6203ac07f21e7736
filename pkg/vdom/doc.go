// Package vdom provides the virtual node tree produced by component renders.
//
// A render returns a VNode tree built from elements, text and fragments.
// Component nodes are placeholders: Comp holds whatever the host put there
// and Children holds the host's current expansion of it.
//
// # Diffing
//
// Diff compares two trees and returns the Patch operations that turn the
// previous one into the next one. Keyed reconciliation is used when
// children carry keys. Diff moves hydration IDs from matched previous nodes
// onto next nodes, so after a diff only newly created nodes lack an HID.
//
// # Hydration
//
// AssignHIDs gives every element node without an HID a new one. HIDs are
// how patches address nodes on the client.
package vdom
