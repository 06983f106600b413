// Package delegate routes native events captured at a render root to the
// scoped listeners registered by components.
//
// A Registry installs a single native listener per event type on the render
// root. When an event occurs it captures the ancestor chain from the target
// up to the root, then visits that chain innermost first. At each attached
// node every listener whose selector matches the node inside its own scope
// receives a synthetic Event, deeper scope paths before shallower ones and
// otherwise in registration order. A listener calling StopPropagation ends
// the walk once the current node is done.
//
// Nodes detached while the walk is in progress are skipped. A panic in one
// listener is recovered, reported to that listener alone with code E103, and
// the listener is removed; the walk continues for everyone else.
package delegate

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"

	"golang.org/x/net/html"

	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/scope"
	"github.com/vango-dev/isodom/pkg/selector"
)

// Observer receives delivery statistics. Implementations must be cheap.
type Observer interface {
	Delivered(typ string)
	Panicked(typ string)
	ListenersChanged(n int)
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithObserver attaches an Observer.
func WithObserver(o Observer) Option {
	return func(r *Registry) {
		r.observer = o
	}
}

// Registry is the per-driver table of scoped event listeners.
type Registry struct {
	doc      *dom.Document
	logger   *slog.Logger
	observer Observer

	mu       sync.Mutex
	entries  map[string][]*entry
	natives  map[string]func()
	nextID   uint64
	disposed bool
}

type entry struct {
	id      uint64
	typ     string
	path    scope.Path
	sel     *selector.Selector
	deliver func(*Event)
	fail    func(error)
	removed bool
}

// New creates a registry for doc's render root.
func New(doc *dom.Document, opts ...Option) *Registry {
	r := &Registry{
		doc:     doc,
		logger:  slog.Default(),
		entries: make(map[string][]*entry),
		natives: make(map[string]func()),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Add registers a listener for events of type typ on elements matched by sel
// inside path. deliver receives each synthetic event; fail receives the E103
// error if deliver panics. The returned function removes the listener and is
// safe to call more than once. Adding to a disposed registry returns E104.
func (r *Registry) Add(path scope.Path, sel *selector.Selector, typ string, deliver func(*Event), fail func(error)) (func(), error) {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return func() {}, errors.New("E104").WithDetail("event type " + typ)
	}
	r.nextID++
	e := &entry{
		id:      r.nextID,
		typ:     typ,
		path:    append(scope.Path(nil), path...),
		sel:     sel,
		deliver: deliver,
		fail:    fail,
	}
	r.entries[typ] = append(r.entries[typ], e)
	_, installed := r.natives[typ]
	if !installed {
		r.natives[typ] = nil
	}
	n := r.countLocked()
	r.mu.Unlock()

	// The native listener is attached outside the lock; the document calls
	// back into handle synchronously during Dispatch.
	if !installed {
		remove := r.doc.AddEventListener(r.doc.Root(), typ, r.handle)
		r.mu.Lock()
		r.natives[typ] = remove
		r.mu.Unlock()
		r.logger.Debug("native listener installed", "type", typ)
	}
	r.changed(n)

	return func() { r.remove(e) }, nil
}

func (r *Registry) remove(e *entry) {
	r.mu.Lock()
	if e.removed {
		r.mu.Unlock()
		return
	}
	e.removed = true
	list := r.entries[e.typ]
	for i, x := range list {
		if x == e {
			r.entries[e.typ] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	n := r.countLocked()
	r.mu.Unlock()
	r.changed(n)
}

// Count returns the number of registered listeners.
func (r *Registry) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.countLocked()
}

func (r *Registry) countLocked() int {
	n := 0
	for _, list := range r.entries {
		n += len(list)
	}
	return n
}

// Types returns the event types with an installed native listener, sorted.
func (r *Registry) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.natives))
	for typ := range r.natives {
		out = append(out, typ)
	}
	sort.Strings(out)
	return out
}

// Dispose removes every native listener and forgets every entry. Entries are
// not notified; their owners complete their own streams. Later calls to Add
// fail with E104.
func (r *Registry) Dispose() {
	r.mu.Lock()
	if r.disposed {
		r.mu.Unlock()
		return
	}
	r.disposed = true
	natives := r.natives
	for _, list := range r.entries {
		for _, e := range list {
			e.removed = true
		}
	}
	r.entries = make(map[string][]*entry)
	r.natives = make(map[string]func())
	r.mu.Unlock()

	for _, remove := range natives {
		if remove != nil {
			remove()
		}
	}
	r.changed(0)
}

func (r *Registry) changed(n int) {
	if r.observer != nil {
		r.observer.ListenersChanged(n)
	}
}

// snapshot returns the live entries for typ ordered for delivery: deeper
// paths first, then registration order.
func (r *Registry) snapshot(typ string) []*entry {
	r.mu.Lock()
	list := make([]*entry, len(r.entries[typ]))
	copy(list, r.entries[typ])
	r.mu.Unlock()

	sort.SliceStable(list, func(i, j int) bool {
		return len(list[i].path) > len(list[j].path)
	})
	return list
}

// handle is the native listener installed on the render root.
func (r *Registry) handle(native *dom.Event) {
	r.mu.Lock()
	disposed := r.disposed
	r.mu.Unlock()
	if disposed {
		return
	}

	root := r.doc.Root()
	entries := r.snapshot(native.Type)
	if len(entries) == 0 {
		return
	}

	// The chain is captured before any listener runs.
	var chain []*html.Node
	for n := native.Target; n != nil; n = n.Parent {
		chain = append(chain, n)
		if n == root {
			break
		}
	}

	for i := 0; i < len(chain); i++ {
		n := chain[i]
		if !r.doc.Attached(n) {
			r.logger.Warn("skipping detached node",
				"type", native.Type,
				"tag", n.Data,
				"step", i)
			continue
		}
		for _, e := range entries {
			if e.removed || !e.sel.Match(root, e.path, n) {
				continue
			}
			r.deliver(e, &Event{
				Type:          native.Type,
				Target:        native.Target,
				CurrentTarget: n,
				Path:          e.path,
				Native:        native,
			})
		}
		if native.Stopped() {
			break
		}
	}
}

// deliver runs one listener with panic recovery.
func (r *Registry) deliver(e *entry, ev *Event) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("listener panic",
				"panic", rec,
				"type", e.typ,
				"path", e.path.String(),
				"selector", e.sel.String(),
				"stack", string(debug.Stack()))
			if r.observer != nil {
				r.observer.Panicked(e.typ)
			}
			r.remove(e)
			r.fail(e, errors.New("E103").
				WithDetail(fmt.Sprintf("%s listener at %s: %v", e.typ, e.path, rec)))
		}
	}()

	e.deliver(ev)
	if r.observer != nil {
		r.observer.Delivered(e.typ)
	}
}

// fail reports err to the entry's owner. A panic there is logged and dropped.
func (r *Registry) fail(e *entry, err error) {
	if e.fail == nil {
		return
	}
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("error handler panic", "panic", rec, "type", e.typ)
		}
	}()
	e.fail(err)
}
