// Package driver connects a stream of virtual trees to a live document and
// exposes scoped DOM sources to the components that produced those trees.
//
// A Driver owns one render root. Every tree the stream emits is reconciled
// into the root, and the root is republished to Elements consumers after
// every render. Components read the document through a DOMSource,
// narrowing it with Select and IsolateSource, and tag their output with
// IsolateSink so the two halves meet at the same isolation boundary.
//
//	doc := dom.NewDocument("app")
//	d, err := driver.Mount(doc, func(src driver.DOMSource) stream.Stream[*vdom.VNode] {
//	    clicks := src.Select("button").Events("click")
//	    count := stream.Fold(clicks, 0, func(n int, _ *delegate.Event) int { return n + 1 })
//	    return stream.Map(count, func(n int) *vdom.VNode {
//	        return vdom.Button(vdom.Textf("clicked %d", n))
//	    })
//	})
//
// A Driver is not safe for concurrent use; see Loop.
package driver

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/net/html"

	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/delegate"
	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/stream"
	"github.com/vango-dev/isodom/pkg/vdom"
)

// Driver renders a tree stream into a document and routes its events.
type Driver struct {
	id       string
	doc      *dom.Document
	renderer *dom.Renderer
	registry *delegate.Registry
	logger   *slog.Logger
	metrics  *metrics
	tracer   trace.Tracer

	roots     *stream.Subject[*html.Node]
	updates   *stream.Subject[*html.Node]
	lifecycle *stream.Subject[struct{}]

	subs      []*stream.Subscription
	prev      *vdom.VNode
	renders   int
	delivered int
	disposed  bool
}

// New creates a driver rendering tree into doc. The stream is subscribed
// immediately, so a stream that emits synchronously renders before New
// returns. An invalid stream fails with E101.
func New(doc *dom.Document, tree stream.Stream[*vdom.VNode], opts ...Option) (*Driver, error) {
	if !tree.Valid() {
		return nil, errors.New("E101")
	}
	d := newDriver(doc, opts)
	d.connect(tree)
	return d, nil
}

// Mount creates a driver whose tree is produced by app from the driver's own
// root source. The cycle is closed before Mount returns.
func Mount(doc *dom.Document, app Component, opts ...Option) (*Driver, error) {
	d := newDriver(doc, opts)
	tree := app(d.Source())
	if !tree.Valid() {
		d.Dispose()
		return nil, errors.New("E101").WithDetail("component returned an invalid stream")
	}
	d.connect(tree)
	return d, nil
}

func newDriver(doc *dom.Document, opts []Option) *Driver {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	d := &Driver{
		id:        id,
		doc:       doc,
		renderer:  dom.NewRenderer(doc),
		logger:    o.logger.With("driver_id", id),
		tracer:    o.tracer(),
		roots:     stream.NewMemorySubject[*html.Node](),
		updates:   stream.NewSubject[*html.Node](),
		lifecycle: stream.NewSubject[struct{}](),
	}
	if o.registerer != nil {
		d.metrics = newMetrics(o.registerer, o.namespace)
	}
	d.registry = delegate.New(doc,
		delegate.WithLogger(d.logger),
		delegate.WithObserver(observer{d}))
	return d
}

func (d *Driver) connect(tree stream.Stream[*vdom.VNode]) {
	sub := tree.Subscribe(stream.Listener[*vdom.VNode]{
		Next:  d.render,
		Error: d.fail,
		Complete: func() {
			d.logger.Debug("tree stream completed")
		},
	})
	d.subs = append(d.subs, sub)
}

// ID returns the driver's unique id.
func (d *Driver) ID() string {
	return d.id
}

// Document returns the document the driver renders into.
func (d *Driver) Document() *dom.Document {
	return d.doc
}

// Source returns the unscoped source bound to the render root.
func (d *Driver) Source() DOMSource {
	return &source{d: d}
}

// Updates emits the render root after every render. Unlike Elements it
// neither replays nor carries tree stream errors.
func (d *Driver) Updates() stream.Stream[*html.Node] {
	return d.updates.Stream()
}

// HTML renders the current document.
func (d *Driver) HTML() string {
	return d.doc.HTML()
}

// Listeners returns the number of registered scoped listeners.
func (d *Driver) Listeners() int {
	return d.registry.Count()
}

// Disposed reports whether Dispose was called.
func (d *Driver) Disposed() bool {
	return d.disposed
}

// render reconciles one emitted tree.
func (d *Driver) render(tree *vdom.VNode) {
	if d.disposed {
		return
	}
	_, span := d.tracer.Start(context.Background(), "isodom.render",
		trace.WithAttributes(attribute.String("isodom.driver_id", d.id)))
	defer span.End()

	start := time.Now()
	// Components render once per emission; Diff and the renderer share the result.
	tree = vdom.Resolve(tree)
	structural := d.renders == 0 || vdom.HasStructuralChange(vdom.Diff(d.prev, tree))
	if err := d.renderer.Render(tree); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Error("render failed", "error", err)
		return
	}
	d.prev = tree
	d.renders++
	elapsed := time.Since(start)

	span.SetAttributes(
		attribute.Int("isodom.render.count", d.renders),
		attribute.Bool("isodom.render.structural", structural))
	if d.metrics != nil {
		d.metrics.renders.Inc()
		d.metrics.renderDuration.Observe(elapsed.Seconds())
	}
	d.logger.Debug("rendered",
		"count", d.renders,
		"structural", structural,
		"duration", elapsed)

	// Attribute patches can change what a selector resolves to, so every
	// render republishes.
	d.roots.Next(d.doc.Root())
	d.updates.Next(d.doc.Root())
}

// fail handles an error from the tree stream.
func (d *Driver) fail(err error) {
	d.logger.Error("tree stream failed", "error", err)
	d.roots.Error(err)
}

// Dispatch fires a native event of type typ at target and runs delegation
// synchronously. It fails with E104 after Dispose and E105 when target is
// not attached to the render root.
func (d *Driver) Dispatch(target *html.Node, typ string) (*dom.Event, error) {
	return d.DispatchDetail(target, typ, nil)
}

// DispatchDetail is Dispatch with a payload available as Event.Detail.
func (d *Driver) DispatchDetail(target *html.Node, typ string, detail map[string]any) (*dom.Event, error) {
	if d.disposed {
		return nil, errors.New("E104").WithDetail("dispatch " + typ)
	}
	_, span := d.tracer.Start(context.Background(), "isodom.dispatch",
		trace.WithAttributes(
			attribute.String("isodom.driver_id", d.id),
			attribute.String("isodom.event.type", typ)))
	defer span.End()

	if d.metrics != nil {
		d.metrics.dispatches.WithLabelValues(typ).Inc()
	}
	before := d.delivered
	ev, err := d.doc.Dispatch(target, typ, detail)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		d.logger.Debug("dispatch rejected", "type", typ, "error", err)
		return nil, err
	}
	delivered := d.delivered - before
	span.SetAttributes(
		attribute.Int("isodom.event.deliveries", delivered),
		attribute.Bool("isodom.event.stopped", ev.Stopped()))
	d.logger.Debug("dispatched", "type", typ, "deliveries", delivered)
	return ev, nil
}

// Dispose stops rendering and event delivery. The tree stream is
// unsubscribed, native listeners are removed, and every Elements and Events
// stream completes. The live DOM is left as it is. Safe to call twice.
func (d *Driver) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	for _, sub := range d.subs {
		sub.Unsubscribe()
	}
	d.subs = nil
	d.registry.Dispose()
	d.lifecycle.Complete()
	d.roots.Complete()
	d.updates.Complete()
	d.logger.Debug("disposed", "renders", d.renders)
}

// observer feeds registry statistics to the driver and its metrics.
type observer struct {
	d *Driver
}

func (o observer) Delivered(typ string) {
	o.d.delivered++
	if o.d.metrics != nil {
		o.d.metrics.Delivered(typ)
	}
}

func (o observer) Panicked(typ string) {
	if o.d.metrics != nil {
		o.d.metrics.Panicked(typ)
	}
}

func (o observer) ListenersChanged(n int) {
	if o.d.metrics != nil {
		o.d.metrics.ListenersChanged(n)
	}
}
