package vdom

import (
	"encoding/json"
	"fmt"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	PatchSetText     PatchOp = 0x01 // Update text content
	PatchSetAttr     PatchOp = 0x02 // Set/update attribute
	PatchRemoveAttr  PatchOp = 0x03 // Remove attribute
	PatchInsertNode  PatchOp = 0x04 // Insert new node
	PatchRemoveNode  PatchOp = 0x05 // Remove node
	PatchMoveNode    PatchOp = 0x06 // Move node to new position
	PatchReplaceNode PatchOp = 0x07 // Replace node entirely
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case PatchSetText:
		return "SetText"
	case PatchSetAttr:
		return "SetAttr"
	case PatchRemoveAttr:
		return "RemoveAttr"
	case PatchInsertNode:
		return "InsertNode"
	case PatchRemoveNode:
		return "RemoveNode"
	case PatchMoveNode:
		return "MoveNode"
	case PatchReplaceNode:
		return "ReplaceNode"
	default:
		return "Unknown"
	}
}

// MarshalText encodes the op by name.
func (op PatchOp) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// UnmarshalText decodes an op name written by MarshalText.
func (op *PatchOp) UnmarshalText(text []byte) error {
	for candidate := PatchSetText; candidate <= PatchReplaceNode; candidate++ {
		if candidate.String() == string(text) {
			*op = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown patch op %q", text)
}

// Patch represents a single DOM operation to apply.
type Patch struct {
	Op  PatchOp `json:"op"`
	HID string  `json:"hid,omitempty"`

	// Key is the attribute name for SetAttr and RemoveAttr.
	Key   string `json:"key,omitempty"`
	Value string `json:"value,omitempty"`

	// Node is the new subtree for InsertNode and ReplaceNode.
	Node     *VNode `json:"-"`
	Index    int    `json:"index,omitempty"`
	ParentID string `json:"parent,omitempty"`

	// HTML is Node rendered to markup, filled in before the patch is sent.
	HTML string `json:"html,omitempty"`
}

// String returns a compact description for logs.
func (p Patch) String() string {
	b, _ := json.Marshal(p)
	return string(b)
}
