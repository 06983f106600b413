package dom

import (
	"bytes"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/vango-dev/isodom/internal/errors"
)

// Document is a live HTML tree with one render root and native listeners.
// A Document must be used from a single goroutine.
type Document struct {
	root      *html.Node
	listeners map[*html.Node]map[string][]*nativeListener
	nextID    uint64
}

type nativeListener struct {
	id uint64
	fn func(*Event)
}

// NewDocument creates a document whose render root is <div id="id">.
func NewDocument(id string) *Document {
	root := &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
	}
	if id != "" {
		root.Attr = []html.Attribute{{Key: "id", Val: id}}
	}
	return Wrap(root)
}

// Wrap adopts an existing element as render root. The element may sit inside
// a larger parsed page; only its subtree is managed.
func Wrap(root *html.Node) *Document {
	return &Document{
		root:      root,
		listeners: make(map[*html.Node]map[string][]*nativeListener),
	}
}

// Root returns the render root element.
func (d *Document) Root() *html.Node {
	return d.root
}

// Attached reports whether n is the render root or one of its descendants.
// Nodes removed by the renderer are detached even if the caller still holds
// them and their own children.
func (d *Document) Attached(n *html.Node) bool {
	return Contains(d.root, n)
}

// Contains reports whether n is ancestor or a descendant of it.
func Contains(ancestor, n *html.Node) bool {
	for c := n; c != nil; c = c.Parent {
		if c == ancestor {
			return true
		}
	}
	return false
}

// AddEventListener attaches fn to n for events of type typ and returns the
// function that removes it.
func (d *Document) AddEventListener(n *html.Node, typ string, fn func(*Event)) func() {
	byType, ok := d.listeners[n]
	if !ok {
		byType = make(map[string][]*nativeListener)
		d.listeners[n] = byType
	}
	d.nextID++
	id := d.nextID
	byType[typ] = append(byType[typ], &nativeListener{id: id, fn: fn})

	return func() { d.removeListener(n, typ, id) }
}

func (d *Document) removeListener(n *html.Node, typ string, id uint64) {
	byType := d.listeners[n]
	list := byType[typ]
	for i, l := range list {
		if l.id == id {
			byType[typ] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(byType[typ]) == 0 {
		delete(byType, typ)
	}
	if len(byType) == 0 {
		delete(d.listeners, n)
	}
}

// ListenerCount returns the number of listeners attached to n for typ.
func (d *Document) ListenerCount(n *html.Node, typ string) int {
	return len(d.listeners[n][typ])
}

// Dispatch fires a native event of type typ at target. The event bubbles from
// target through each ancestor until StopPropagation is called. Dispatching
// at a node outside the render root fails with E105.
func (d *Document) Dispatch(target *html.Node, typ string, detail map[string]any) (*Event, error) {
	if target == nil || !d.Attached(target) {
		return nil, errors.New("E105").WithDetail("event type " + typ)
	}
	ev := &Event{Type: typ, Target: target, Detail: detail}

	// The path is fixed before any listener runs.
	var path []*html.Node
	for n := target; n != nil; n = n.Parent {
		path = append(path, n)
	}

	for _, n := range path {
		list := d.listeners[n][typ]
		if len(list) == 0 {
			continue
		}
		snapshot := make([]*nativeListener, len(list))
		copy(snapshot, list)
		ev.CurrentTarget = n
		for _, l := range snapshot {
			l.fn(ev)
		}
		if ev.Stopped() {
			break
		}
	}
	ev.CurrentTarget = nil
	return ev, nil
}

// ElementAt returns the element reached by following child element indexes
// from the render root. Text nodes are not counted.
func (d *Document) ElementAt(path []int) (*html.Node, bool) {
	n := d.root
	for _, idx := range path {
		n = childElement(n, idx)
		if n == nil {
			return nil, false
		}
	}
	return n, true
}

// PathOf is the inverse of ElementAt.
func (d *Document) PathOf(n *html.Node) ([]int, bool) {
	var rev []int
	for c := n; c != d.root; c = c.Parent {
		if c == nil || c.Parent == nil {
			return nil, false
		}
		idx := 0
		for s := c.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode {
				idx++
			}
		}
		rev = append(rev, idx)
	}
	out := make([]int, len(rev))
	for i, v := range rev {
		out[len(rev)-1-i] = v
	}
	return out, true
}

func childElement(n *html.Node, idx int) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if idx == 0 {
			return c
		}
		idx--
	}
	return nil
}

// HTML renders the render root and its subtree.
func (d *Document) HTML() string {
	return OuterHTML(d.root)
}

// OuterHTML renders n and its subtree.
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return ""
	}
	return buf.String()
}

// Attr returns the value of attribute key on n.
func Attr(n *html.Node, key string) (string, bool) {
	if n == nil {
		return "", false
	}
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// TextContent concatenates the text nodes below n.
func TextContent(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
		for k := c.FirstChild; k != nil; k = k.NextSibling {
			walk(k)
		}
	}
	walk(n)
	return sb.String()
}
