// Package selector resolves CSS selectors inside one isolation scope of a
// live document.
//
// Every element has an owner path: the scope path of the innermost isolation
// boundary enclosing it, where an element carrying scope markers opens a new
// boundary that it belongs to itself. Owner paths are computed from DOM
// position, so the same identifier applied at different nesting depths yields
// different paths.
//
// Three selector forms are special:
//
//   - ":root" (and anything starting with it) selects the scope's boundary
//     elements themselves.
//   - "*" selects every element below the boundaries, crossing nested
//     isolation boundaries; it is limited only by DOM nesting.
//   - "" selects the boundaries, like ":root".
//
// Everything else is compiled with cascadia and matches elements, boundaries
// included, whose owner path equals the scope path. Matching is anchored at
// the enclosing boundary: combinators see the boundary and its descendants,
// never its ancestors or siblings. Anchoring briefly unlinks the boundary, so
// resolution needs the same exclusive access as rendering.
package selector

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/scope"
)

// Wildcard and RootSelector are the special selector forms.
const (
	Wildcard     = "*"
	RootSelector = ":root"
)

type kind uint8

const (
	kindRoot kind = iota
	kindAll
	kindCSS
)

// Selector is a compiled selector.
type Selector struct {
	raw   string
	kind  kind
	match cascadia.Sel
}

// Compile parses sel. Invalid CSS fails with E102.
func Compile(sel string) (*Selector, error) {
	sel = strings.TrimSpace(sel)
	s := &Selector{raw: sel}
	switch {
	case sel == "" || strings.HasPrefix(sel, RootSelector):
		s.kind = kindRoot
	case sel == Wildcard:
		s.kind = kindAll
	default:
		m, err := cascadia.Parse(sel)
		if err != nil {
			return nil, errors.New("E102").
				WithDetail(`selector "` + sel + `"`).
				WithSuggestion("use tag, .class, #id, attribute or combinator syntax").
				Wrap(err)
		}
		s.kind = kindCSS
		s.match = m
	}
	return s, nil
}

// MustCompile is like Compile but panics on error. For static selectors.
func MustCompile(sel string) *Selector {
	s, err := Compile(sel)
	if err != nil {
		panic(err)
	}
	return s
}

// String returns the selector source.
func (s *Selector) String() string {
	return s.raw
}

// Resolve compiles sel and resolves it; see Selector.Resolve.
func Resolve(root *html.Node, path scope.Path, sel string) ([]*html.Node, error) {
	s, err := Compile(sel)
	if err != nil {
		return nil, err
	}
	return s.Resolve(root, path), nil
}

// Resolve returns the elements selected inside the scope path under root,
// deduplicated, in document order.
func (s *Selector) Resolve(root *html.Node, path scope.Path) []*html.Node {
	switch s.kind {
	case kindRoot:
		return Boundaries(root, path)
	case kindAll:
		seen := make(map[*html.Node]bool)
		var out []*html.Node
		for _, b := range Boundaries(root, path) {
			for c := b.FirstChild; c != nil; c = c.NextSibling {
				walkElements(c, func(n *html.Node) {
					if !seen[n] {
						seen[n] = true
						out = append(out, n)
					}
				})
			}
		}
		return out
	default:
		var out []*html.Node
		for _, b := range boundaries(root, path) {
			restore := detach(b.node)
			visit(b.node, b.owner, func(n *html.Node, _, owner scope.Path) {
				if owner.Equal(path) && s.match.Match(n) {
					out = append(out, n)
				}
			})
			restore()
		}
		return out
	}
}

// Match reports whether the event delivery walk visiting n should notify a
// listener registered with this selector at path. Wildcards are gated by
// isolation here: only elements the scope owns match, never its boundaries.
func (s *Selector) Match(root *html.Node, path scope.Path, n *html.Node) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}
	ctx, owner, ok := locate(root, n)
	if !ok {
		return false
	}
	switch s.kind {
	case kindRoot:
		return isBoundary(n, ctx, owner, path, root)
	case kindAll:
		return owner.Equal(path) && !isBoundary(n, ctx, owner, path, root)
	default:
		if !owner.Equal(path) {
			return false
		}
		defer detach(boundaryOf(root, path, n))()
		return s.match.Match(n)
	}
}

// Matches compiles sel and reports whether it matches n; see Selector.Match.
func Matches(root *html.Node, path scope.Path, sel string, n *html.Node) (bool, error) {
	s, err := Compile(sel)
	if err != nil {
		return false, err
	}
	return s.Match(root, path, n), nil
}

// Boundaries returns the elements that open the scope path under root, in
// document order. The root path's only boundary is root itself.
func Boundaries(root *html.Node, path scope.Path) []*html.Node {
	bs := boundaries(root, path)
	out := make([]*html.Node, len(bs))
	for i, b := range bs {
		out[i] = b.node
	}
	return out
}

type boundary struct {
	node  *html.Node
	owner scope.Path
}

func boundaries(root *html.Node, path scope.Path) []boundary {
	if len(path) == 0 {
		return []boundary{{root, scope.Root}}
	}
	var out []boundary
	visit(root, scope.Root, func(n *html.Node, ctx, owner scope.Path) {
		if isBoundary(n, ctx, owner, path, root) {
			out = append(out, boundary{n, owner})
		}
	})
	return out
}

// boundaryOf returns the boundary of path enclosing n, which path owns.
func boundaryOf(root *html.Node, path scope.Path, n *html.Node) *html.Node {
	if len(path) == 0 {
		return root
	}
	var chain []*html.Node
	for c := n; c != root; c = c.Parent {
		chain = append(chain, c)
	}
	owner := scope.Root
	for i := len(chain) - 1; i >= 0; i-- {
		owner = extend(owner, chain[i])
		if len(owner) >= len(path) {
			return chain[i]
		}
	}
	return root
}

// detach unlinks n from its parent and siblings until restore is called.
func detach(n *html.Node) (restore func()) {
	parent, prev, next := n.Parent, n.PrevSibling, n.NextSibling
	n.Parent, n.PrevSibling, n.NextSibling = nil, nil, nil
	return func() {
		n.Parent, n.PrevSibling, n.NextSibling = parent, prev, next
	}
}

// OwnerPath returns the scope path that owns n, which must be root or one of
// its descendants. The second result is false for nodes outside root.
func OwnerPath(root, n *html.Node) (scope.Path, bool) {
	_, owner, ok := locate(root, n)
	return owner, ok
}

// isBoundary reports whether n opens path. ctx is the path enclosing n and
// owner the path n belongs to.
func isBoundary(n *html.Node, ctx, owner, path scope.Path, root *html.Node) bool {
	if len(path) == 0 {
		return n == root
	}
	if n == root || len(owner) == len(ctx) {
		return false
	}
	return len(path) > len(ctx) && path.HasPrefix(ctx) && owner.HasPrefix(path)
}

// locate computes the enclosing and owner paths of n by climbing to root.
func locate(root, n *html.Node) (ctx, owner scope.Path, ok bool) {
	var chain []*html.Node
	for c := n; c != root; c = c.Parent {
		if c == nil {
			return nil, nil, false
		}
		chain = append(chain, c)
	}
	owner = scope.Root
	for i := len(chain) - 1; i >= 0; i-- {
		ctx = owner
		owner = extend(owner, chain[i])
	}
	if len(chain) == 0 {
		ctx = scope.Root
	}
	return ctx, owner, true
}

// visit walks root's element subtree in document order, reporting each
// element with its enclosing and owner paths. The root's own markers are
// ignored: it is the boundary of the root path.
func visit(root *html.Node, base scope.Path, fn func(n *html.Node, ctx, owner scope.Path)) {
	var walk func(n *html.Node, ctx scope.Path)
	walk = func(n *html.Node, ctx scope.Path) {
		if n.Type != html.ElementNode {
			return
		}
		owner := extend(ctx, n)
		fn(n, ctx, owner)
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, owner)
		}
	}
	fn(root, base, base)
	for c := root.FirstChild; c != nil; c = c.NextSibling {
		walk(c, base)
	}
}

// extend appends n's scope markers, outermost first, to ctx.
func extend(ctx scope.Path, n *html.Node) scope.Path {
	ids := markers(n)
	if len(ids) == 0 {
		return ctx
	}
	out := make(scope.Path, len(ctx), len(ctx)+len(ids))
	copy(out, ctx)
	for i := len(ids) - 1; i >= 0; i-- {
		out = append(out, ids[i])
	}
	return out
}

// markers returns n's scope identifiers, innermost first.
func markers(n *html.Node) []string {
	if n.Type != html.ElementNode {
		return nil
	}
	for _, a := range n.Attr {
		if a.Key == scope.Attr {
			return scope.Decode(a.Val)
		}
	}
	return nil
}

func walkElements(n *html.Node, fn func(*html.Node)) {
	if n.Type != html.ElementNode {
		return
	}
	fn(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkElements(c, fn)
	}
}
