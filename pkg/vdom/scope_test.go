package vdom

import (
	"reflect"
	"testing"
)

func TestApplyScopeIdempotent(t *testing.T) {
	base := Div(Class("box"), Span())
	once := ApplyScope(base, "foo")
	twice := ApplyScope(once, "foo")

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("ApplyScope twice = %+v, want %+v", twice, once)
	}
	if got := twice.ClassName(); got != "box ___foo" {
		t.Errorf("ClassName() = %q, want %q", got, "box ___foo")
	}
	if len(base.Scopes) != 0 {
		t.Error("ApplyScope modified its input")
	}
}

func TestApplyScopeUnionKeepsOrder(t *testing.T) {
	node := ApplyScope(ApplyScope(Div(), "child"), "parent")
	if !reflect.DeepEqual(node.Scopes, []string{"child", "parent"}) {
		t.Errorf("Scopes = %v, want [child parent]", node.Scopes)
	}
	if !node.HasScope("parent") || node.HasScope("other") {
		t.Error("HasScope mismatch")
	}
	if got := node.ClassName(); got != "___child ___parent" {
		t.Errorf("ClassName() = %q", got)
	}
}

func TestApplyScopeClassAlreadyPresent(t *testing.T) {
	node := ApplyScope(Div(Class("___foo")), "foo")
	if got := node.ClassName(); got != "___foo" {
		t.Errorf("ClassName() = %q, want ___foo", got)
	}
}

func TestApplyScopeShapes(t *testing.T) {
	if ApplyScope(nil, "x") != nil {
		t.Error("nil should stay nil")
	}

	text := Text("hi")
	if ApplyScope(text, "x") != text {
		t.Error("text nodes are returned unchanged")
	}

	comp := &VNode{Kind: KindComponent, Comp: Func(func() *VNode { return Div() })}
	if got := ApplyScope(comp, "x"); got.Kind != KindElement || !got.HasScope("x") {
		t.Errorf("component result = %+v, want tagged div", got)
	}

	frag := ApplyScope(Fragment(Div(), Span()), "x")
	for i, c := range frag.Children {
		if !c.HasScope("x") {
			t.Errorf("fragment child %d not tagged", i)
		}
	}
}
