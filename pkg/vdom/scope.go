package vdom

import "github.com/vango-dev/isodom/pkg/scope"

// ApplyScope returns node tagged with the isolation scope id. The scope set is
// a union: tagging twice with the same id returns an equal node. The input is
// never modified.
//
// Components are rendered first. Each top-level node of a fragment is tagged
// separately. Text and raw nodes cannot carry a scope and are returned as is.
func ApplyScope(node *VNode, id string) *VNode {
	if node == nil {
		return nil
	}
	switch node.Kind {
	case KindComponent:
		if node.Comp == nil {
			return node
		}
		return ApplyScope(node.Comp.Render(), id)
	case KindFragment:
		out := *node
		out.Children = make([]*VNode, len(node.Children))
		for i, c := range node.Children {
			out.Children[i] = ApplyScope(c, id)
		}
		return &out
	case KindElement:
		if containsString(node.Scopes, id) {
			return node
		}
		out := *node
		out.Scopes = make([]string, len(node.Scopes), len(node.Scopes)+1)
		copy(out.Scopes, node.Scopes)
		out.Scopes = append(out.Scopes, id)
		return &out
	default:
		return node
	}
}

// HasScope reports whether id is applied to node.
func (v *VNode) HasScope(id string) bool {
	return v != nil && containsString(v.Scopes, id)
}

// ClassName returns the class attribute the element renders with: its own
// classes followed by one namespace class per scope, without duplicates.
func (v *VNode) ClassName() string {
	if v == nil {
		return ""
	}
	tokens := make([]string, len(v.Scopes))
	for i, id := range v.Scopes {
		tokens[i] = scope.Class(id)
	}
	return mergeClasses(v.Props["class"], tokens...)
}
