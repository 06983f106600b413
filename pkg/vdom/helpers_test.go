package vdom

import "testing"

func TestText(t *testing.T) {
	node := Textf("n=%d", 3)
	if node.Kind != KindText {
		t.Errorf("Kind = %v, want KindText", node.Kind)
	}
	if node.Text != "n=3" {
		t.Errorf("Text = %q, want n=3", node.Text)
	}
}

func TestFragment(t *testing.T) {
	t.Run("with nil filtered", func(t *testing.T) {
		node := Fragment(Div(), nil, Span())
		if len(node.Children) != 2 {
			t.Errorf("Children len = %v, want 2", len(node.Children))
		}
	})

	t.Run("with string", func(t *testing.T) {
		node := Fragment("Hello")
		if len(node.Children) != 1 {
			t.Fatalf("Children len = %v, want 1", len(node.Children))
		}
		if node.Children[0].Kind != KindText {
			t.Errorf("Child kind = %v, want KindText", node.Children[0].Kind)
		}
	})
}

func TestConditionals(t *testing.T) {
	a, b := Div(), Span()
	if If(true, a) != a || If(false, a) != nil {
		t.Error("If returned the wrong node")
	}
	if IfElse(false, a, b) != b {
		t.Error("IfElse returned the wrong node")
	}
	called := false
	When(false, func() *VNode { called = true; return a })
	if called {
		t.Error("When evaluated a false branch")
	}
}

func TestRangeAndRepeat(t *testing.T) {
	nodes := Range([]string{"a", "", "c"}, func(s string, _ int) *VNode {
		if s == "" {
			return nil
		}
		return Li(Key(s))
	})
	if len(nodes) != 2 || nodes[1].Key != "c" {
		t.Errorf("Range = %v, want keys a, c", nodes)
	}
	if Repeat(0, func(int) *VNode { return Div() }) != nil {
		t.Error("Repeat(0) should be nil")
	}
	if got := len(Repeat(3, func(int) *VNode { return Div() })); got != 3 {
		t.Errorf("Repeat(3) len = %d, want 3", got)
	}
}

func TestFlatten(t *testing.T) {
	comp := Func(func() *VNode { return Fragment(Em(), "x") })
	children := []*VNode{
		Div(),
		Fragment(Span(), Fragment(P())),
		nil,
		{Kind: KindComponent, Comp: comp},
	}

	flat := Flatten(children)
	want := []string{"div", "span", "p", "em", ""}
	if len(flat) != len(want) {
		t.Fatalf("len = %d, want %d", len(flat), len(want))
	}
	for i, tag := range want {
		if flat[i].Tag != tag {
			t.Errorf("flat[%d].Tag = %q, want %q", i, flat[i].Tag, tag)
		}
	}
	if flat[4].Kind != KindText {
		t.Errorf("flat[4].Kind = %v, want KindText", flat[4].Kind)
	}
}

func TestResolveRendersComponentsOnce(t *testing.T) {
	calls := 0
	comp := Func(func() *VNode {
		calls++
		return Span(Text("inner"))
	})
	plain := Li(Text("plain"))
	tree := Div(Ul(plain), comp, &VNode{Kind: KindComponent})

	resolved := Resolve(tree)

	if calls != 1 {
		t.Errorf("Render called %d times, want 1", calls)
	}
	if len(resolved.Children) != 2 {
		t.Fatalf("Children len = %d, want 2", len(resolved.Children))
	}
	if resolved.Children[0] != tree.Children[0] {
		t.Error("component-free subtree should be shared")
	}
	if got := resolved.Children[1]; got.Kind != KindElement || got.Tag != "span" {
		t.Errorf("Children[1] = %v %q, want span element", got.Kind, got.Tag)
	}
	if tree.Children[1].Kind != KindComponent {
		t.Error("input was modified")
	}

	// Diff and Flatten over the resolved tree never render again.
	Diff(resolved, resolved)
	Flatten(resolved.Children)
	if calls != 1 {
		t.Errorf("Render called %d times after Diff and Flatten, want 1", calls)
	}

	if Resolve(plain) != plain {
		t.Error("Resolve should return component-free trees as is")
	}
	if Resolve(&VNode{Kind: KindComponent, Comp: comp}).Tag != "span" {
		t.Error("top-level component not rendered")
	}
}
