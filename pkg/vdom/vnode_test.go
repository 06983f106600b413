package vdom

import "testing"

func TestVKindString(t *testing.T) {
	tests := []struct {
		kind VKind
		want string
	}{
		{KindElement, "Element"},
		{KindText, "Text"},
		{KindFragment, "Fragment"},
		{KindComponent, "Component"},
		{KindRaw, "Raw"},
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

func TestVNodeIsIsolated(t *testing.T) {
	tests := []struct {
		name string
		node *VNode
		want bool
	}{
		{"nil node", nil, false},
		{"plain element", Div(), false},
		{"scoped element", &VNode{Kind: KindElement, Tag: "div", Scopes: []string{"foo"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.node.IsIsolated(); got != tt.want {
				t.Errorf("VNode.IsIsolated() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAttrIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		attr Attr
		want bool
	}{
		{"empty attr", Attr{}, true},
		{"attr with key", Attr{Key: "class", Value: "test"}, false},
		{"attr with empty value", Attr{Key: "disabled", Value: ""}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.attr.IsEmpty(); got != tt.want {
				t.Errorf("Attr.IsEmpty() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFuncComponent(t *testing.T) {
	called := false
	comp := Func(func() *VNode {
		called = true
		return Div(Class("test"))
	})

	node := comp.Render()

	if !called {
		t.Error("Func component was not called")
	}
	if node == nil {
		t.Fatal("Render returned nil")
	}
	if node.Kind != KindElement {
		t.Errorf("Kind = %v, want KindElement", node.Kind)
	}
	if node.Tag != "div" {
		t.Errorf("Tag = %v, want div", node.Tag)
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
		{PatchSetScopes, "SetScopes"},
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

func TestNodePath(t *testing.T) {
	root := NodePath{}
	if got := root.String(); got != "." {
		t.Errorf("root String() = %q, want %q", got, ".")
	}
	p := root.Child(0).Child(2)
	if got := p.String(); got != "0.2" {
		t.Errorf("String() = %q, want %q", got, "0.2")
	}
	if len(root) != 0 {
		t.Error("Child must not modify the receiver")
	}
}
