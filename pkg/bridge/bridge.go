// Package bridge exposes a driver to a browser over a websocket.
//
// The browser sends native events addressed by child element indexes from
// the render root; the bridge dispatches them on the driver's loop and pushes
// the rendered HTML back after every render.
//
//	loop := driver.NewLoop(0, logger)
//	d, _ := driver.Mount(dom.NewDocument("app"), app)
//	b, _ := bridge.New(d, loop, bridge.WithLogger(logger))
//	go loop.Run(ctx)
//	http.ListenAndServe(":8080", b)
package bridge

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/net/html"

	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/driver"
	"github.com/vango-dev/isodom/pkg/stream"
)

const (
	// WritePeriod bounds a single websocket write.
	WritePeriod = 10 * time.Second

	// SendBuffer is the number of outbound messages queued per connection.
	SendBuffer = 8
)

// Inbound is a native event sent by the browser.
type Inbound struct {
	Type   string         `json:"type"`
	Path   []int          `json:"path"`
	Detail map[string]any `json:"detail,omitempty"`
}

// Outbound is pushed to the browser: the rendered HTML, or an error for the
// event the connection sent last.
type Outbound struct {
	HTML  string `json:"html,omitempty"`
	Code  string `json:"code,omitempty"`
	Error string `json:"error,omitempty"`
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(b *Bridge) {
		if l != nil {
			b.logger = l
		}
	}
}

// WithHandler mounts h at path on the bridge router, e.g. a metrics endpoint.
func WithHandler(path string, h http.Handler) Option {
	return func(b *Bridge) {
		b.extra = append(b.extra, route{path, h})
	}
}

// WithCheckOrigin overrides the websocket origin check.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(b *Bridge) {
		b.upgrader.CheckOrigin = fn
	}
}

type route struct {
	path string
	h    http.Handler
}

// Bridge serves one driver to any number of websocket connections.
type Bridge struct {
	d        *driver.Driver
	loop     *driver.Loop
	logger   *slog.Logger
	upgrader websocket.Upgrader
	router   chi.Router
	extra    []route
	sub      *stream.Subscription

	mu      sync.RWMutex
	clients map[string]*client
}

// New creates a bridge for d. Every driver call is made through loop, which
// the caller runs.
func New(d *driver.Driver, loop *driver.Loop, opts ...Option) (*Bridge, error) {
	if d == nil || d.Disposed() {
		return nil, errors.New("E104").WithDetail("bridge needs a live driver")
	}
	b := &Bridge{
		d:      d,
		loop:   loop,
		logger: slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		clients: make(map[string]*client),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.logger = b.logger.With("driver_id", d.ID())

	// Renders happen on the loop goroutine, so reading the document here is safe.
	b.sub = d.Updates().Subscribe(stream.Listener[*html.Node]{
		Next: func(*html.Node) { b.broadcast(Outbound{HTML: d.HTML()}) },
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", b.serveIndex)
	r.Get("/html", b.serveHTML)
	r.Get("/ws", b.serveWS)
	for _, rt := range b.extra {
		r.Handle(rt.path, rt.h)
	}
	b.router = r
	return b, nil
}

// ServeHTTP implements http.Handler.
func (b *Bridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.router.ServeHTTP(w, r)
}

// Clients returns the number of open connections.
func (b *Bridge) Clients() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close stops pushing renders and closes every connection.
func (b *Bridge) Close() {
	b.sub.Unsubscribe()

	b.mu.Lock()
	clients := b.clients
	b.clients = make(map[string]*client)
	b.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

// snapshot reads the current HTML on the loop.
func (b *Bridge) snapshot(r *http.Request) (string, error) {
	var out string
	err := b.loop.Call(r.Context(), func() { out = b.d.HTML() })
	return out, err
}

func (b *Bridge) serveHTML(w http.ResponseWriter, r *http.Request) {
	markup, err := b.snapshot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(markup))
}

func (b *Bridge) serveIndex(w http.ResponseWriter, r *http.Request) {
	markup, err := b.snapshot(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(page(markup)))
}

func (b *Bridge) broadcast(msg Outbound) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, c := range b.clients {
		c.push(msg)
	}
}

func (b *Bridge) add(c *client) {
	b.mu.Lock()
	b.clients[c.id] = c
	b.mu.Unlock()
}

func (b *Bridge) remove(c *client) {
	b.mu.Lock()
	delete(b.clients, c.id)
	b.mu.Unlock()
}
