package vdom

import (
	"strconv"
	"strings"
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
	PatchSetScopes   PatchOp = 0x08 // Change isolation scopes
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
	case PatchSetScopes:
		return "SetScopes"
	default:
		return "Unknown"
	}
}

// Structural reports whether the operation adds, removes, moves or re-scopes
// nodes, as opposed to changing text or attributes in place.
func (op PatchOp) Structural() bool {
	switch op {
	case PatchInsertNode, PatchRemoveNode, PatchMoveNode, PatchReplaceNode, PatchSetScopes:
		return true
	}
	return false
}

// NodePath addresses a node by child indexes from the tree root.
type NodePath []int

// Child returns a new path extended by index i.
func (p NodePath) Child(i int) NodePath {
	out := make(NodePath, len(p), len(p)+1)
	copy(out, p)
	return append(out, i)
}

// String renders the path as dotted indexes, or "." for the root.
func (p NodePath) String() string {
	if len(p) == 0 {
		return "."
	}
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// Patch represents a single DOM operation to apply.
type Patch struct {
	Op     PatchOp  // Operation type
	Target NodePath // Node the operation applies to (parent for InsertNode)
	Key    string   // Attribute key (for SetAttr/RemoveAttr)
	Value  string   // New value
	Node   *VNode   // For InsertNode/ReplaceNode
	Index  int      // Insert or move position
}

// HasStructuralChange reports whether any patch is structural.
func HasStructuralChange(patches []Patch) bool {
	for _, p := range patches {
		if p.Op.Structural() {
			return true
		}
	}
	return false
}
