package selector

import (
	"strings"
	"testing"

	"github.com/andybalholm/cascadia"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/scope"
	"github.com/vango-dev/isodom/pkg/vdom"
)

func mount(t *testing.T, tree *vdom.VNode) *dom.Document {
	t.Helper()
	doc := dom.NewDocument("app")
	require.NoError(t, dom.NewRenderer(doc).Render(tree))
	return doc
}

func texts(nodes []*html.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = dom.TextContent(n)
	}
	return out
}

func tags(nodes []*html.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Data
	}
	return out
}

func resolve(t *testing.T, doc *dom.Document, path scope.Path, sel string) []*html.Node {
	t.Helper()
	nodes, err := Resolve(doc.Root(), path, sel)
	require.NoError(t, err)
	return nodes
}

func TestScopedMatchExcludesSibling(t *testing.T) {
	doc := mount(t, vdom.Div(
		vdom.ApplyScope(vdom.Div(vdom.H("span.x", "inside")), "foo"),
		vdom.H("span.x", "outside"),
	))

	assert.Equal(t, []string{"inside"}, texts(resolve(t, doc, scope.Path{"foo"}, ".x")))
	assert.Equal(t, []string{"outside"}, texts(resolve(t, doc, scope.Root, ".x")))
}

func TestAncestorCannotSeeChildInternals(t *testing.T) {
	doc := mount(t, vdom.Div(
		vdom.ApplyScope(vdom.Div(vdom.H("b.inner", "hidden")), "B"),
	))

	assert.Empty(t, resolve(t, doc, scope.Root, ".inner"))
	assert.Empty(t, resolve(t, doc, scope.Root, "b"))
	assert.Len(t, resolve(t, doc, scope.Path{"B"}, ".inner"), 1)
}

func TestWildcardIsDOMBound(t *testing.T) {
	doc := mount(t, vdom.ApplyScope(vdom.Div(
		vdom.P("p"),
		vdom.Span("s"),
		vdom.ApplyScope(vdom.Div(vdom.Em("e")), "bar"),
	), "foo"))

	all := resolve(t, doc, scope.Path{"foo"}, "*")
	assert.Equal(t, []string{"p", "span", "div", "em"}, tags(all))
}

func TestRootSelectorReturnsBoundaries(t *testing.T) {
	doc := mount(t, vdom.Fragment(
		vdom.ApplyScope(vdom.Div(vdom.ID("one")), "foo"),
		vdom.ApplyScope(vdom.Div(vdom.ID("two")), "foo"),
	))

	bounds := resolve(t, doc, scope.Path{"foo"}, ":root")
	require.Len(t, bounds, 2)
	id, _ := dom.Attr(bounds[0], "id")
	assert.Equal(t, "one", id)

	assert.Equal(t, []*html.Node{doc.Root()}, resolve(t, doc, scope.Root, ":root"))
	assert.Equal(t, bounds, resolve(t, doc, scope.Path{"foo"}, ""))
	assert.Equal(t, bounds, resolve(t, doc, scope.Path{"foo"}, ":root li"))
}

func TestRecursiveIdentifierIsPositional(t *testing.T) {
	doc := mount(t, vdom.ApplyScope(vdom.Div(
		vdom.Button("outer"),
		vdom.ApplyScope(vdom.Div(vdom.Button("inner")), "ISO"),
	), "ISO"))

	one := scope.Root.Child("ISO")
	two := one.Child("ISO")

	assert.Equal(t, []string{"outer"}, texts(resolve(t, doc, one, "button")))
	assert.Equal(t, []string{"inner"}, texts(resolve(t, doc, two, "button")))
	assert.Len(t, Boundaries(doc.Root(), one), 1)
	assert.Len(t, Boundaries(doc.Root(), two), 1)
	assert.NotSame(t, Boundaries(doc.Root(), one)[0], Boundaries(doc.Root(), two)[0])
}

func TestDoubleTaggedElementOpensBothScopes(t *testing.T) {
	doc := mount(t, vdom.ApplyScope(vdom.ApplyScope(vdom.Div(vdom.Span("x")), "child"), "parent"))

	parent := scope.Path{"parent"}
	child := parent.Child("child")

	pb := Boundaries(doc.Root(), parent)
	cb := Boundaries(doc.Root(), child)
	require.Len(t, pb, 1)
	require.Len(t, cb, 1)
	assert.Same(t, pb[0], cb[0])

	assert.Empty(t, resolve(t, doc, parent, "span"))
	assert.Len(t, resolve(t, doc, child, "span"), 1)

	owner, ok := OwnerPath(doc.Root(), pb[0])
	require.True(t, ok)
	assert.Equal(t, child, owner)
}

func TestInvalidSelector(t *testing.T) {
	doc := mount(t, vdom.Div())

	_, err := Resolve(doc.Root(), scope.Root, "div[[")
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, "E102"))
	assert.Panics(t, func() { MustCompile("a[") })
}

func TestMatchGatesByOwner(t *testing.T) {
	doc := mount(t, vdom.Div(
		vdom.ApplyScope(vdom.Div(vdom.H("button.go", "in")), "foo"),
		vdom.H("button.go", "out"),
	))
	root := doc.Root()
	inner := resolve(t, doc, scope.Path{"foo"}, ".go")[0]
	outer := resolve(t, doc, scope.Root, ".go")[0]
	foo := Boundaries(root, scope.Path{"foo"})[0]

	css := MustCompile(".go")
	assert.True(t, css.Match(root, scope.Path{"foo"}, inner))
	assert.False(t, css.Match(root, scope.Path{"foo"}, outer))
	assert.True(t, css.Match(root, scope.Root, outer))
	assert.False(t, css.Match(root, scope.Root, inner))

	all := MustCompile("*")
	assert.True(t, all.Match(root, scope.Path{"foo"}, inner))
	assert.False(t, all.Match(root, scope.Path{"foo"}, foo))
	assert.False(t, all.Match(root, scope.Root, inner))

	rs := MustCompile(":root")
	assert.True(t, rs.Match(root, scope.Path{"foo"}, foo))
	assert.True(t, rs.Match(root, scope.Root, root))
	assert.False(t, rs.Match(root, scope.Root, foo))
}

func TestOwnerPathOutsideRoot(t *testing.T) {
	doc := mount(t, vdom.Div())
	loose := &html.Node{Type: html.ElementNode, Data: "p"}

	_, ok := OwnerPath(doc.Root(), loose)
	assert.False(t, ok)
	assert.False(t, MustCompile("p").Match(doc.Root(), scope.Root, loose))

	owner, ok := OwnerPath(doc.Root(), doc.Root())
	assert.True(t, ok)
	assert.Empty(t, owner)
}

func TestMatchesCompilesOnDemand(t *testing.T) {
	doc := mount(t, vdom.Div(vdom.H("a.link", "x")))
	link := resolve(t, doc, scope.Root, "a")[0]

	ok, err := Matches(doc.Root(), scope.Root, "div > a.link", link)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Matches(doc.Root(), scope.Root, "a[", link)
	assert.True(t, errors.HasCode(err, "E102"))
}

func TestCSSMatchIsAnchoredAtBoundary(t *testing.T) {
	doc := mount(t, vdom.H("section.outer",
		vdom.H("span.x", "outside"),
		vdom.ApplyScope(vdom.Div(vdom.H("span.x", "inside")), "foo"),
	))
	foo := scope.Path{"foo"}

	assert.Empty(t, resolve(t, doc, foo, "section.outer .x"))
	assert.Empty(t, resolve(t, doc, foo, "section > div > .x"))
	assert.Empty(t, resolve(t, doc, foo, "span ~ div .x"))
	assert.Equal(t, []string{"inside"}, texts(resolve(t, doc, foo, ".x")))
	assert.Equal(t, []string{"inside"}, texts(resolve(t, doc, foo, "div > .x")))
	assert.Equal(t, []string{"outside"}, texts(resolve(t, doc, scope.Root, "section.outer .x")))

	inside := resolve(t, doc, foo, ".x")[0]
	for sel, want := range map[string]bool{"section .x": false, "div .x": true} {
		ok, err := Matches(doc.Root(), foo, sel, inside)
		require.NoError(t, err)
		assert.Equal(t, want, ok, sel)
	}

	// The tree is intact afterwards.
	box := inside.Parent
	assert.Equal(t, "section", box.Parent.Data)
	assert.Equal(t, "span", box.PrevSibling.Data)
}

func TestRootPathIsAnchoredAtRenderRoot(t *testing.T) {
	page, err := html.Parse(strings.NewReader(`<main class="page"><div id="app"></div></main>`))
	require.NoError(t, err)
	doc := dom.Wrap(cascadia.MustCompile("#app").MatchFirst(page))
	require.NoError(t, dom.NewRenderer(doc).Render(vdom.H("span.x", "in")))

	assert.Empty(t, resolve(t, doc, scope.Root, "main .x"))
	assert.Equal(t, []string{"in"}, texts(resolve(t, doc, scope.Root, "#app > .x")))
	assert.Equal(t, "main", doc.Root().Parent.Data)
}
