package driver

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/delegate"
	"github.com/vango-dev/isodom/pkg/scope"
	"github.com/vango-dev/isodom/pkg/selector"
	"github.com/vango-dev/isodom/pkg/stream"
	"github.com/vango-dev/isodom/pkg/vdom"
)

// DOMSource is the read side of a driver as seen by one component.
// Every scoped source, at any isolation depth, offers the same capabilities.
type DOMSource interface {
	// Select narrows the source to elements matching sel. Calls chain as
	// descendant combinators: Select("ul").Select("li") means "ul li".
	Select(sel string) DOMSource

	// Elements emits the selected elements after every render.
	// An invalid selector errors the stream with E102.
	Elements() stream.Stream[[]*html.Node]

	// Events emits the events of type typ delivered to the selected
	// elements inside this source's scope.
	Events(typ string) stream.Stream[*delegate.Event]

	// IsolateSource derives the source for child scope id of src.
	IsolateSource(src DOMSource, id string) (DOMSource, error)

	// IsolateSink tags every tree of s with scope id.
	IsolateSink(s stream.Stream[*vdom.VNode], id string) (stream.Stream[*vdom.VNode], error)

	// Path returns the scope path the source is bound to.
	Path() scope.Path
}

// source is the DOMSource implementation shared by every scope.
type source struct {
	d         *Driver
	path      scope.Path
	selectors []string
}

func (s *source) Select(sel string) DOMSource {
	sels := make([]string, len(s.selectors), len(s.selectors)+1)
	copy(sels, s.selectors)
	return &source{d: s.d, path: s.path, selectors: append(sels, sel)}
}

func (s *source) joined() string {
	return strings.TrimSpace(strings.Join(s.selectors, " "))
}

func (s *source) Elements() stream.Stream[[]*html.Node] {
	d, path, raw := s.d, s.path, s.joined()
	return stream.New(func(l stream.Listener[[]*html.Node]) func() {
		sel, err := selector.Compile(raw)
		if err != nil {
			l.Error(err)
			return nil
		}
		sub := d.roots.Stream().Subscribe(stream.Listener[*html.Node]{
			Next: func(root *html.Node) {
				l.Next(sel.Resolve(root, path))
			},
			Error:    l.Error,
			Complete: l.Complete,
		})
		return sub.Unsubscribe
	})
}

func (s *source) Events(typ string) stream.Stream[*delegate.Event] {
	d, path, raw := s.d, s.path, s.joined()
	return stream.New(func(l stream.Listener[*delegate.Event]) func() {
		sel, err := selector.Compile(raw)
		if err != nil {
			l.Error(err)
			return nil
		}
		remove, err := d.registry.Add(path, sel, typ, l.Next, l.Error)
		if err != nil {
			l.Error(err)
			return nil
		}
		end := d.lifecycle.Stream().Subscribe(stream.Listener[struct{}]{
			Complete: l.Complete,
		})
		return func() {
			remove()
			end.Unsubscribe()
		}
	})
}

func (s *source) IsolateSource(src DOMSource, id string) (DOMSource, error) {
	return IsolateSource(src, id)
}

func (s *source) IsolateSink(tree stream.Stream[*vdom.VNode], id string) (stream.Stream[*vdom.VNode], error) {
	return IsolateSink(tree, id)
}

func (s *source) Path() scope.Path {
	return s.path
}

// child returns the source for scope id below s. Selections are reset.
func (s *source) child(id string) DOMSource {
	return &source{d: s.d, path: s.path.Child(id)}
}

// scoped is implemented by sources created by a driver.
type scoped interface {
	child(id string) DOMSource
}

var _ scoped = (*source)(nil)

// IsolateSource returns the source for child scope id of src, bound to
// src.Path() followed by id. The same id used at different depths yields
// distinct sources. An empty id fails with E100.
func IsolateSource(src DOMSource, id string) (DOMSource, error) {
	if id == "" {
		return nil, errors.New("E100")
	}
	c, ok := src.(scoped)
	if !ok {
		return nil, errors.New("E107")
	}
	return c.child(id), nil
}

// IsolateSink returns s with every emitted tree tagged with scope id. An
// empty id fails with E100 and an invalid stream with E101.
func IsolateSink(s stream.Stream[*vdom.VNode], id string) (stream.Stream[*vdom.VNode], error) {
	if id == "" {
		return stream.Stream[*vdom.VNode]{}, errors.New("E100")
	}
	if !s.Valid() {
		return stream.Stream[*vdom.VNode]{}, errors.New("E101")
	}
	return stream.Map(s, func(tree *vdom.VNode) *vdom.VNode {
		return vdom.ApplyScope(tree, id)
	}), nil
}
