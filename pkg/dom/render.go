package dom

import (
	"sort"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/isodom/pkg/scope"
	"github.com/vango-dev/isodom/pkg/vdom"
)

// Renderer reconciles virtual trees into a document's render root.
type Renderer struct {
	doc   *Document
	roots []*mounted
}

// mounted pairs a rendered virtual node with the live nodes it produced.
// Raw nodes may produce several live nodes; all other kinds produce one.
type mounted struct {
	v        *vdom.VNode
	nodes    []*html.Node
	children []*mounted
}

// NewRenderer creates a renderer that owns the children of doc's render root.
func NewRenderer(doc *Document) *Renderer {
	return &Renderer{doc: doc}
}

// Render makes the render root's children reflect tree. A nil tree empties
// the root. Fragments at the top level produce several root children.
func (r *Renderer) Render(tree *vdom.VNode) error {
	var next []*vdom.VNode
	if tree != nil {
		next = vdom.Flatten([]*vdom.VNode{tree})
	}
	roots, err := reconcileChildren(r.doc.root, r.roots, next)
	if err != nil {
		return err
	}
	r.roots = roots
	return nil
}

// Roots returns the live top-level nodes produced by the last render.
func (r *Renderer) Roots() []*html.Node {
	var out []*html.Node
	for _, m := range r.roots {
		out = append(out, m.nodes...)
	}
	return out
}

// Clear detaches everything the renderer created.
func (r *Renderer) Clear() {
	for _, m := range r.roots {
		detach(m)
	}
	r.roots = nil
}

// reconcileChildren updates parent's children from prev to next and returns
// the new mounted list.
func reconcileChildren(parent *html.Node, prev []*mounted, next []*vdom.VNode) ([]*mounted, error) {
	keyed := make(map[string]*mounted)
	var unkeyed []*mounted
	for _, m := range prev {
		if m.v.Key != "" {
			keyed[m.v.Key] = m
		} else {
			unkeyed = append(unkeyed, m)
		}
	}

	used := make(map[*mounted]bool, len(prev))
	result := make([]*mounted, 0, len(next))
	u := 0
	for _, v := range next {
		var reuse *mounted
		if v.Key != "" {
			if m, ok := keyed[v.Key]; ok && !used[m] && sameNode(m.v, v) {
				reuse = m
			}
		} else if u < len(unkeyed) {
			if sameNode(unkeyed[u].v, v) {
				reuse = unkeyed[u]
			}
			u++
		}

		var (
			m   *mounted
			err error
		)
		if reuse != nil {
			used[reuse] = true
			m, err = update(reuse, v)
		} else {
			m, err = create(parent, v)
		}
		if err != nil {
			return nil, err
		}
		result = append(result, m)
	}

	for _, m := range prev {
		if !used[m] {
			detach(m)
		}
	}

	// Place nodes in order, moving only those out of position.
	var last *html.Node
	for _, m := range result {
		for _, n := range m.nodes {
			want := parent.FirstChild
			if last != nil {
				want = last.NextSibling
			}
			if want != n {
				if n.Parent != nil {
					n.Parent.RemoveChild(n)
				}
				parent.InsertBefore(n, want)
			}
			last = n
		}
	}
	return result, nil
}

// sameNode reports whether a live node rendered from prev can be reused for next.
func sameNode(prev, next *vdom.VNode) bool {
	if prev.Kind != next.Kind || prev.Key != next.Key {
		return false
	}
	switch prev.Kind {
	case vdom.KindElement:
		return prev.Tag == next.Tag
	case vdom.KindRaw:
		return prev.Text == next.Text
	default:
		return true
	}
}

// create builds the live nodes for v. parent is the parsing context for raw HTML.
func create(parent *html.Node, v *vdom.VNode) (*mounted, error) {
	m := &mounted{v: v}
	switch v.Kind {
	case vdom.KindText:
		m.nodes = []*html.Node{{Type: html.TextNode, Data: v.Text}}
	case vdom.KindRaw:
		nodes, err := html.ParseFragment(strings.NewReader(v.Text), parent)
		if err != nil {
			return nil, err
		}
		m.nodes = nodes
	default:
		n := &html.Node{
			Type:     html.ElementNode,
			Data:     v.Tag,
			DataAtom: atom.Lookup([]byte(v.Tag)),
			Attr:     attributes(v),
		}
		children, err := reconcileChildren(n, nil, vdom.Flatten(v.Children))
		if err != nil {
			return nil, err
		}
		m.nodes = []*html.Node{n}
		m.children = children
	}
	return m, nil
}

// update patches a reusable mounted node in place.
func update(m *mounted, v *vdom.VNode) (*mounted, error) {
	switch v.Kind {
	case vdom.KindText:
		m.nodes[0].Data = v.Text
	case vdom.KindElement:
		n := m.nodes[0]
		n.Attr = attributes(v)
		children, err := reconcileChildren(n, m.children, vdom.Flatten(v.Children))
		if err != nil {
			return nil, err
		}
		m.children = children
	}
	m.v = v
	return m, nil
}

// detach removes m's live nodes from their parent.
func detach(m *mounted) {
	for _, n := range m.nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}
	}
}

// attributes renders v's props, namespace classes and scope marker, sorted by key.
func attributes(v *vdom.VNode) []html.Attribute {
	attrs := make([]html.Attribute, 0, len(v.Props)+2)
	for key, val := range v.Props {
		if key == "class" {
			continue
		}
		switch b := val.(type) {
		case nil:
			continue
		case bool:
			if !b {
				continue
			}
			attrs = append(attrs, html.Attribute{Key: key})
			continue
		}
		attrs = append(attrs, html.Attribute{Key: key, Val: vdom.PropToString(val)})
	}
	if class := v.ClassName(); class != "" {
		attrs = append(attrs, html.Attribute{Key: "class", Val: class})
	}
	if len(v.Scopes) > 0 {
		attrs = append(attrs, html.Attribute{Key: scope.Attr, Val: scope.Encode(v.Scopes)})
	}
	sort.Slice(attrs, func(i, j int) bool { return attrs[i].Key < attrs[j].Key })
	return attrs
}
