package vdom

import "fmt"

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

// Raw creates an unescaped HTML node.
// Use with caution - can lead to XSS if content is user-provided.
func Raw(html string) *VNode {
	return &VNode{
		Kind: KindRaw,
		Text: html,
	}
}

// Fragment groups children without a wrapper element.
func Fragment(children ...any) *VNode {
	node := &VNode{
		Kind:     KindFragment,
		Children: make([]*VNode, 0),
	}

	for _, child := range children {
		switch v := child.(type) {
		case nil:
			continue
		case *VNode:
			if v != nil {
				node.Children = append(node.Children, v)
			}
		case []*VNode:
			for _, c := range v {
				if c != nil {
					node.Children = append(node.Children, c)
				}
			}
		case string:
			node.Children = append(node.Children, Text(v))
		case Component:
			node.Children = append(node.Children, &VNode{
				Kind: KindComponent,
				Comp: v,
			})
		}
	}

	return node
}

// If returns the node if condition is true, nil otherwise.
func If(condition bool, node *VNode) *VNode {
	if condition {
		return node
	}
	return nil
}

// IfElse returns the first node if condition is true, the second otherwise.
func IfElse(condition bool, ifTrue, ifFalse *VNode) *VNode {
	if condition {
		return ifTrue
	}
	return ifFalse
}

// When is like If but with lazy evaluation.
// The function is only called if condition is true.
func When(condition bool, fn func() *VNode) *VNode {
	if condition {
		return fn()
	}
	return nil
}

// Range maps a slice to VNodes.
func Range[T any](items []T, fn func(item T, index int) *VNode) []*VNode {
	result := make([]*VNode, 0, len(items))
	for i, item := range items {
		node := fn(item, i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Repeat creates n nodes using the given function.
func Repeat(n int, fn func(i int) *VNode) []*VNode {
	if n <= 0 {
		return nil
	}
	result := make([]*VNode, 0, n)
	for i := 0; i < n; i++ {
		node := fn(i)
		if node != nil {
			result = append(result, node)
		}
	}
	return result
}

// Flatten expands fragments and renders components so that the result only
// holds element, text and raw nodes, in order.
func Flatten(children []*VNode) []*VNode {
	out := make([]*VNode, 0, len(children))
	for _, c := range children {
		switch {
		case c == nil:
		case c.Kind == KindFragment:
			out = append(out, Flatten(c.Children)...)
		case c.Kind == KindComponent:
			if c.Comp != nil {
				out = append(out, Flatten([]*VNode{c.Comp.Render()})...)
			}
		default:
			out = append(out, c)
		}
	}
	return out
}

// Resolve renders every component in node exactly once and returns an
// equivalent tree without component nodes. Subtrees holding no component are
// shared with the input; the input is never modified.
func Resolve(node *VNode) *VNode {
	if node == nil {
		return nil
	}
	if node.Kind == KindComponent {
		if node.Comp == nil {
			return nil
		}
		return Resolve(node.Comp.Render())
	}

	var children []*VNode
	changed := false
	for i, c := range node.Children {
		r := Resolve(c)
		if r != c && !changed {
			changed = true
			children = append(make([]*VNode, 0, len(node.Children)), node.Children[:i]...)
		}
		if changed && r != nil {
			children = append(children, r)
		}
	}
	if !changed {
		return node
	}
	cp := *node
	cp.Children = children
	return &cp
}
