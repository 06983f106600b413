// Package demo contains small applications used by the isodom CLI and the
// bridge: a toggle button, a recursively self-isolating toggle and a keyed
// list.
package demo

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/delegate"
	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/driver"
	"github.com/vango-dev/isodom/pkg/stream"
	"github.com/vango-dev/isodom/pkg/vdom"
)

// RecursiveScope is the fixed scope every level of Recursive isolates with.
const RecursiveScope = "ISOLATION"

var builders = map[string]func(depth int) driver.Component{
	"toggle":    func(int) driver.Component { return Toggle("toggle") },
	"recursive": Recursive,
	"list":      func(int) driver.Component { return List() },
}

// Names returns the available demos, sorted.
func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the named demo. depth only applies to "recursive".
func Lookup(name string, depth int) (driver.Component, error) {
	build, ok := builders[name]
	if !ok {
		return nil, errors.New("E106").
			WithDetail(fmt.Sprintf("unknown demo %q", name)).
			WithSuggestion(fmt.Sprintf("choose one of %v", Names()))
	}
	return build(depth), nil
}

// toggleButton renders one toggle.
func toggleButton(label string, on bool) *vdom.VNode {
	state := "off"
	if on {
		state = "on"
	}
	return vdom.H("button.toggle", vdom.AriaPressed(on), label+": "+state)
}

// toggled folds clicks on the scope's toggle buttons into an on/off state.
func toggled(src driver.DOMSource) stream.Stream[bool] {
	clicks := src.Select(".toggle").Events("click")
	return stream.Fold(clicks, false, func(on bool, _ *delegate.Event) bool {
		return !on
	})
}

// Toggle is a button that flips between on and off when clicked.
func Toggle(label string) driver.Component {
	return func(src driver.DOMSource) stream.Stream[*vdom.VNode] {
		return stream.Map(toggled(src), func(on bool) *vdom.VNode {
			return toggleButton(label, on)
		})
	}
}

// Recursive renders a toggle followed by an isolated copy of itself, depth
// levels deep. Every level uses RecursiveScope, so levels are told apart
// only by their position.
func Recursive(depth int) driver.Component {
	return func(src driver.DOMSource) stream.Stream[*vdom.VNode] {
		label := "level " + strconv.Itoa(src.Path().Depth())
		on := toggled(src)
		if depth <= 0 {
			return stream.Map(on, func(on bool) *vdom.VNode {
				return vdom.H("div.level", toggleButton(label, on))
			})
		}
		child := driver.Isolate(Recursive(depth-1), RecursiveScope)(src)
		return stream.Combine2(on, child, func(on bool, c *vdom.VNode) *vdom.VNode {
			return vdom.H("div.level", toggleButton(label, on), c)
		})
	}
}

type listState struct {
	items []string
	next  int
}

type listAction func(listState) listState

// List is a keyed list with an add button and a remove button per item.
func List() driver.Component {
	return func(src driver.DOMSource) stream.Stream[*vdom.VNode] {
		adds := stream.Map(src.Select(".add").Events("click"), func(*delegate.Event) listAction {
			return func(s listState) listState {
				s.next++
				items := append([]string(nil), s.items...)
				s.items = append(items, "item-"+strconv.Itoa(s.next))
				return s
			}
		})
		removes := stream.Map(src.Select(".remove").Events("click"), func(e *delegate.Event) listAction {
			key, _ := dom.Attr(e.CurrentTarget, "data-key")
			return func(s listState) listState {
				items := make([]string, 0, len(s.items))
				for _, it := range s.items {
					if it != key {
						items = append(items, it)
					}
				}
				s.items = items
				return s
			}
		})

		initial := listState{items: []string{"item-1", "item-2"}, next: 2}
		state := stream.Fold(stream.Merge(adds, removes), initial, func(s listState, act listAction) listState {
			return act(s)
		})
		return stream.Map(state, func(s listState) *vdom.VNode {
			return vdom.H("div.list",
				vdom.H("button.add", "add"),
				vdom.Ul(vdom.Range(s.items, func(it string, _ int) *vdom.VNode {
					return vdom.Li(vdom.Key(it),
						vdom.Span(it),
						vdom.H("button.remove", vdom.Data("key", it), "remove"))
				})),
			)
		})
	}
}
