package vtest

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/driver"
	"github.com/vango-dev/isodom/pkg/vdom"
)

// RootID is the id of the render root every harness mounts into.
const RootID = "app"

// Harness is a mounted component.
type Harness struct {
	Driver *driver.Driver
	logs   *bytes.Buffer
}

// Mount renders c into a fresh document. The driver logs to a buffer read
// by Logs and is disposed when the test ends.
func Mount(tb testing.TB, c driver.Component, opts ...driver.Option) *Harness {
	tb.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]driver.Option{driver.WithLogger(logger)}, opts...)

	d, err := driver.Mount(dom.NewDocument(RootID), c, opts...)
	if err != nil {
		tb.Fatalf("mount failed: %v", err)
	}
	tb.Cleanup(d.Dispose)
	return &Harness{Driver: d, logs: logs}
}

// Query returns a goquery document over the render root.
func (h *Harness) Query() *goquery.Document {
	return goquery.NewDocumentFromNode(h.Driver.Document().Root())
}

// Find returns every element matching sel, in document order.
func (h *Harness) Find(sel string) []*html.Node {
	return h.Query().Find(sel).Nodes
}

// First returns the first element matching sel, failing the test if none.
func (h *Harness) First(tb testing.TB, sel string) *html.Node {
	tb.Helper()
	nodes := h.Find(sel)
	if len(nodes) == 0 {
		tb.Fatalf("no element matches %q in:\n%s", sel, truncate(h.HTML(), 500))
	}
	return nodes[0]
}

// Texts returns the text content of every element matching sel.
func (h *Harness) Texts(sel string) []string {
	var out []string
	for _, n := range h.Find(sel) {
		out = append(out, dom.TextContent(n))
	}
	return out
}

// Attrs returns the value of key on every element matching sel.
func (h *Harness) Attrs(sel, key string) []string {
	var out []string
	for _, n := range h.Find(sel) {
		v, _ := dom.Attr(n, key)
		out = append(out, v)
	}
	return out
}

// Dispatch fires typ at n, failing the test if n is not attached.
func (h *Harness) Dispatch(tb testing.TB, n *html.Node, typ string) *dom.Event {
	tb.Helper()
	ev, err := h.Driver.Dispatch(n, typ)
	if err != nil {
		tb.Fatalf("dispatch %s failed: %v", typ, err)
	}
	return ev
}

// Click dispatches a click at n.
func (h *Harness) Click(tb testing.TB, n *html.Node) *dom.Event {
	tb.Helper()
	return h.Dispatch(tb, n, "click")
}

// HTML returns the render root's markup.
func (h *Harness) HTML() string {
	return h.Driver.HTML()
}

// Logs returns everything the driver logged so far.
func (h *Harness) Logs() string {
	return h.logs.String()
}

// ExpectText asserts that the first element matching sel has text want.
func (h *Harness) ExpectText(tb testing.TB, sel, want string) {
	tb.Helper()
	if got := dom.TextContent(h.First(tb, sel)); got != want {
		tb.Errorf("text of %q = %q, want %q", sel, got, want)
	}
}

// RenderToString renders node into a detached document and returns its
// markup, without the render root.
//
// Example:
//
//	html := vtest.RenderToString(view)
//	if !strings.Contains(html, "expected text") {
//	    t.Error("missing expected text")
//	}
func RenderToString(node *vdom.VNode) string {
	r := dom.NewRenderer(dom.NewDocument(""))
	if err := r.Render(node); err != nil {
		return ""
	}
	var b strings.Builder
	for _, n := range r.Roots() {
		b.WriteString(dom.OuterHTML(n))
	}
	return b.String()
}

// ExpectContains asserts that rendered output contains expected substring.
//
// Example:
//
//	vtest.ExpectContains(t, view, "Welcome Admin")
func ExpectContains(tb testing.TB, node *vdom.VNode, expected string) {
	tb.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, expected) {
		tb.Errorf("expected rendered output to contain %q, got:\n%s", expected, truncate(html, 500))
	}
}

// ExpectNotContains asserts that rendered output does not contain substring.
func ExpectNotContains(tb testing.TB, node *vdom.VNode, unexpected string) {
	tb.Helper()
	html := RenderToString(node)
	if strings.Contains(html, unexpected) {
		tb.Errorf("expected rendered output to NOT contain %q, got:\n%s", unexpected, truncate(html, 500))
	}
}

// ExpectElement asserts that rendered output contains a specific tag.
func ExpectElement(tb testing.TB, node *vdom.VNode, tag string) {
	tb.Helper()
	html := RenderToString(node)
	if !strings.Contains(html, "<"+tag) {
		tb.Errorf("expected rendered output to contain <%s> element, got:\n%s", tag, truncate(html, 500))
	}
}

// ExpectAttribute asserts that rendered output contains an attribute value.
//
// Example:
//
//	vtest.ExpectAttribute(t, view, "class", "toggle")
func ExpectAttribute(tb testing.TB, node *vdom.VNode, attr, value string) {
	tb.Helper()
	html := RenderToString(node)
	needle := attr + `="` + value + `"`
	if !strings.Contains(html, needle) {
		tb.Errorf("expected attribute %s=%q not found, got:\n%s", attr, value, truncate(html, 500))
	}
}

// truncate truncates a string to max length with ellipsis.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
