package vdom

import (
	"fmt"
	"reflect"
	"strconv"
)

// Diff compares two VNode trees and returns the patches needed to transform
// prev into next. Patches address nodes by child index paths in prev, after
// fragments are flattened and components rendered. Neither tree is modified.
func Diff(prev, next *VNode) []Patch {
	var patches []Patch
	diff(prev, next, NodePath{}, &patches)
	return patches
}

// diff recursively compares nodes and appends patches.
func diff(prev, next *VNode, path NodePath, patches *[]Patch) {
	// Both nil - nothing to do
	if prev == nil && next == nil {
		return
	}

	// Node added at the root
	if prev == nil {
		*patches = append(*patches, Patch{Op: PatchInsertNode, Target: path, Node: next})
		return
	}

	// Node removed
	if next == nil {
		*patches = append(*patches, Patch{Op: PatchRemoveNode, Target: path})
		return
	}

	if prev.Kind == KindComponent && prev.Comp != nil {
		prev = prev.Comp.Render()
	}
	if next.Kind == KindComponent && next.Comp != nil {
		next = next.Comp.Render()
	}

	// Different types - replace
	if prev.Kind != next.Kind {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, Target: path, Node: next})
		return
	}

	// Same type, diff by kind
	switch prev.Kind {
	case KindText:
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: PatchSetText, Target: path, Value: next.Text})
		}
	case KindRaw:
		if prev.Text != next.Text {
			*patches = append(*patches, Patch{Op: PatchReplaceNode, Target: path, Node: next})
		}
	case KindElement:
		diffElement(prev, next, path, patches)
	case KindFragment:
		diffChildren(Flatten(prev.Children), Flatten(next.Children), path, patches)
	}
}

// diffElement compares element nodes.
func diffElement(prev, next *VNode, path NodePath, patches *[]Patch) {
	// Different tag - replace entire node
	if prev.Tag != next.Tag {
		*patches = append(*patches, Patch{Op: PatchReplaceNode, Target: path, Node: next})
		return
	}

	if !reflect.DeepEqual(prev.Scopes, next.Scopes) {
		*patches = append(*patches, Patch{Op: PatchSetScopes, Target: path, Node: next})
	}

	diffProps(prev, next, path, patches)
	diffChildren(Flatten(prev.Children), Flatten(next.Children), path, patches)
}

// diffProps compares and patches attributes.
func diffProps(prev, next *VNode, path NodePath, patches *[]Patch) {
	// Check for removed/changed props
	for key, prevVal := range prev.Props {
		nextVal, exists := next.Props[key]
		if !exists {
			*patches = append(*patches, Patch{Op: PatchRemoveAttr, Target: path, Key: key})
		} else if !propsEqual(prevVal, nextVal) {
			*patches = append(*patches, Patch{
				Op:     PatchSetAttr,
				Target: path,
				Key:    key,
				Value:  PropToString(nextVal),
			})
		}
	}

	// Check for added props
	for key, nextVal := range next.Props {
		if _, exists := prev.Props[key]; !exists {
			*patches = append(*patches, Patch{
				Op:     PatchSetAttr,
				Target: path,
				Key:    key,
				Value:  PropToString(nextVal),
			})
		}
	}
}

// diffChildren compares and patches child nodes.
func diffChildren(prev, next []*VNode, parent NodePath, patches *[]Patch) {
	if hasKeys(prev) || hasKeys(next) {
		diffKeyedChildren(prev, next, parent, patches)
	} else {
		diffUnkeyedChildren(prev, next, parent, patches)
	}
}

// diffUnkeyedChildren handles children without keys using positional matching.
func diffUnkeyedChildren(prev, next []*VNode, parent NodePath, patches *[]Patch) {
	maxLen := len(prev)
	if len(next) > maxLen {
		maxLen = len(next)
	}

	for i := 0; i < maxLen; i++ {
		switch {
		case i >= len(prev):
			*patches = append(*patches, Patch{
				Op:     PatchInsertNode,
				Target: parent,
				Index:  i,
				Node:   next[i],
			})
		case i >= len(next):
			*patches = append(*patches, Patch{Op: PatchRemoveNode, Target: parent.Child(i)})
		default:
			diff(prev[i], next[i], parent.Child(i), patches)
		}
	}
}

// diffKeyedChildren handles children with keys for efficient reordering.
func diffKeyedChildren(prev, next []*VNode, parent NodePath, patches *[]Patch) {
	// Build key map: key -> index
	prevKeyMap := make(map[string]int)
	for i, child := range prev {
		if key := getKey(child); key != "" {
			prevKeyMap[key] = i
		}
	}

	// Track which prev nodes have been matched
	matched := make(map[int]bool)

	// Process next children in order
	for nextIdx, nextChild := range next {
		key := getKey(nextChild)
		prevIdx, exists := prevKeyMap[key]
		if key == "" || !exists || matched[prevIdx] {
			*patches = append(*patches, Patch{
				Op:     PatchInsertNode,
				Target: parent,
				Index:  nextIdx,
				Node:   nextChild,
			})
			continue
		}

		matched[prevIdx] = true
		if prevIdx != nextIdx {
			*patches = append(*patches, Patch{
				Op:     PatchMoveNode,
				Target: parent.Child(prevIdx),
				Index:  nextIdx,
			})
		}
		diff(prev[prevIdx], nextChild, parent.Child(prevIdx), patches)
	}

	// Remove unmatched prev nodes
	for i := range prev {
		if !matched[i] {
			*patches = append(*patches, Patch{Op: PatchRemoveNode, Target: parent.Child(i)})
		}
	}
}

// getKey extracts the key from a node.
func getKey(node *VNode) string {
	if node == nil {
		return ""
	}
	return node.Key
}

// hasKeys returns true if any child has a key.
func hasKeys(children []*VNode) bool {
	for _, child := range children {
		if getKey(child) != "" {
			return true
		}
	}
	return false
}

// propsEqual compares two prop values for equality.
func propsEqual(a, b any) bool {
	// Fast path for common types
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case int:
		bv, ok := b.(int)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case nil:
		return b == nil
	}
	// Fallback to reflect for complex types
	return reflect.DeepEqual(a, b)
}

// PropToString converts a prop value to its attribute string.
func PropToString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		if val {
			return "true"
		}
		return "false"
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
