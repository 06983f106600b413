package vtest_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/vango-dev/isodom/pkg/delegate"
	"github.com/vango-dev/isodom/pkg/driver"
	"github.com/vango-dev/isodom/pkg/stream"
	"github.com/vango-dev/isodom/pkg/vdom"
	"github.com/vango-dev/isodom/pkg/vtest"
)

// recordingTB captures failures instead of failing the real test.
type recordingTB struct {
	testing.TB
	failed bool
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Errorf(format string, args ...any) {
	r.failed = true
}

func counter() driver.Component {
	return func(src driver.DOMSource) stream.Stream[*vdom.VNode] {
		clicks := src.Select("button").Events("click")
		count := stream.Fold(clicks, 0, func(n int, _ *delegate.Event) int { return n + 1 })
		return stream.Map(count, func(n int) *vdom.VNode {
			return vdom.Div(vdom.Button(vdom.Textf("clicked %d", n)))
		})
	}
}

func TestRenderToString(t *testing.T) {
	node := vdom.Div(
		vdom.Class("container"),
		vdom.H1(vdom.Text("Hello")),
		vdom.P(vdom.Text("World")),
	)

	html := vtest.RenderToString(node)

	if !strings.HasPrefix(html, "<div") {
		t.Errorf("RenderToString() = %q, want a div", html)
	}
	for _, want := range []string{"container", "<h1>Hello</h1>", "<p>World</p>"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected %q in %s", want, html)
		}
	}
	if strings.Contains(html, `id=`) {
		t.Errorf("render root leaked into output: %s", html)
	}
}

func TestExpectHelpers(t *testing.T) {
	node := vdom.Div(vdom.Class("greeting"), vdom.Text("Hello World"))

	tests := []struct {
		name   string
		check  func(tb testing.TB)
		failed bool
	}{
		{"contains", func(tb testing.TB) { vtest.ExpectContains(tb, node, "Hello") }, false},
		{"contains missing", func(tb testing.TB) { vtest.ExpectContains(tb, node, "Goodbye") }, true},
		{"not contains", func(tb testing.TB) { vtest.ExpectNotContains(tb, node, "Goodbye") }, false},
		{"not contains present", func(tb testing.TB) { vtest.ExpectNotContains(tb, node, "World") }, true},
		{"element", func(tb testing.TB) { vtest.ExpectElement(tb, node, "div") }, false},
		{"element missing", func(tb testing.TB) { vtest.ExpectElement(tb, node, "span") }, true},
		{"attribute", func(tb testing.TB) { vtest.ExpectAttribute(tb, node, "class", "greeting") }, false},
		{"attribute missing", func(tb testing.TB) { vtest.ExpectAttribute(tb, node, "class", "other") }, true},
	}

	for _, tt := range tests {
		rec := &recordingTB{TB: t}
		tt.check(rec)
		if rec.failed != tt.failed {
			t.Errorf("%s: failed = %v, want %v", tt.name, rec.failed, tt.failed)
		}
	}
}

func TestHarnessMountAndClick(t *testing.T) {
	h := vtest.Mount(t, counter())

	h.ExpectText(t, "button", "clicked 0")
	button := h.First(t, "button")
	for i := 1; i <= 3; i++ {
		h.Click(t, button)
		h.ExpectText(t, "button", fmt.Sprintf("clicked %d", i))
	}

	if got := h.Texts("button"); len(got) != 1 || got[0] != "clicked 3" {
		t.Errorf("Texts() = %v", got)
	}
	if !strings.HasPrefix(h.HTML(), `<div id="app">`) {
		t.Errorf("HTML() = %s", h.HTML())
	}
	if !strings.Contains(h.Logs(), "render") {
		t.Errorf("expected debug render logs, got %q", h.Logs())
	}
}

func TestHarnessDisposedOnCleanup(t *testing.T) {
	var h *vtest.Harness
	t.Run("mounted", func(t *testing.T) {
		h = vtest.Mount(t, counter())
		if h.Driver.Disposed() {
			t.Fatal("driver disposed while the test runs")
		}
	})
	if !h.Driver.Disposed() {
		t.Error("driver not disposed after the subtest ended")
	}
}
