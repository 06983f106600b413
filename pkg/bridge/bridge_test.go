package bridge

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vango-dev/isodom/internal/demo"
	"github.com/vango-dev/isodom/internal/errors"
	"github.com/vango-dev/isodom/pkg/dom"
	"github.com/vango-dev/isodom/pkg/driver"
)

type harness struct {
	d   *driver.Driver
	b   *Bridge
	srv *httptest.Server
}

func newHarness(t *testing.T, dopts []driver.Option, opts ...Option) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	loop := driver.NewLoop(0, logger)
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)

	dopts = append(dopts, driver.WithLogger(logger))
	d, err := driver.Mount(dom.NewDocument("app"), demo.Toggle("lamp"), dopts...)
	require.NoError(t, err)

	b, err := New(d, loop, append(opts, WithLogger(logger))...)
	require.NoError(t, err)
	srv := httptest.NewServer(b)

	t.Cleanup(func() {
		b.Close()
		srv.Close()
		loop.Call(context.Background(), d.Dispose)
		cancel()
	})
	return &harness{d: d, b: b, srv: srv}
}

func (h *harness) dial(t *testing.T) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(h.srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func read(t *testing.T, conn *websocket.Conn) Outbound {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var msg Outbound
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func TestIndexServesLivePage(t *testing.T) {
	h := newHarness(t, nil)

	code, body := get(t, h.srv.URL+"/")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `id="app"`)
	assert.Contains(t, body, "lamp: off")
	assert.Contains(t, body, "'/ws'")

	code, body = get(t, h.srv.URL+"/html")
	assert.Equal(t, http.StatusOK, code)
	assert.True(t, strings.HasPrefix(body, "<div"), body)
	assert.NotContains(t, body, "<script>")
}

func TestWebsocketPushesRenders(t *testing.T) {
	h := newHarness(t, nil)
	conn := h.dial(t)

	assert.Contains(t, read(t, conn).HTML, "lamp: off")

	require.NoError(t, conn.WriteJSON(Inbound{Type: "click", Path: []int{0}}))
	assert.Contains(t, read(t, conn).HTML, "lamp: on")

	require.NoError(t, conn.WriteJSON(Inbound{Type: "click", Path: []int{0}}))
	assert.Contains(t, read(t, conn).HTML, "lamp: off")
}

func TestRendersReachEveryClient(t *testing.T) {
	h := newHarness(t, nil)
	one, two := h.dial(t), h.dial(t)
	read(t, one)
	read(t, two)
	assert.Equal(t, 2, h.b.Clients())

	require.NoError(t, one.WriteJSON(Inbound{Type: "click", Path: []int{0}}))
	assert.Contains(t, read(t, one).HTML, "lamp: on")
	assert.Contains(t, read(t, two).HTML, "lamp: on")

	two.Close()
	assert.Eventually(t, func() bool { return h.b.Clients() == 1 }, 5*time.Second, 10*time.Millisecond)
}

func TestBadEventsReportErrors(t *testing.T) {
	h := newHarness(t, nil)
	conn := h.dial(t)
	read(t, conn)

	require.NoError(t, conn.WriteJSON(Inbound{Type: "click", Path: []int{3}}))
	msg := read(t, conn)
	assert.Equal(t, "E105", msg.Code)
	assert.Empty(t, msg.HTML)

	require.NoError(t, conn.WriteJSON(Inbound{Path: []int{0}}))
	assert.Equal(t, "E105", read(t, conn).Code)

	// The connection stays usable.
	require.NoError(t, conn.WriteJSON(Inbound{Type: "click", Path: []int{0}}))
	assert.Contains(t, read(t, conn).HTML, "lamp: on")
}

func TestExtraHandlersAreMounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	h := newHarness(t,
		[]driver.Option{driver.WithMetrics(reg)},
		WithHandler("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	code, body := get(t, h.srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "isodom_renders_total 1")
}

func TestNewRejectsDisposedDriver(t *testing.T) {
	d, err := driver.Mount(dom.NewDocument("app"), demo.Toggle("x"))
	require.NoError(t, err)
	d.Dispose()

	_, err = New(d, driver.NewLoop(0, nil))
	assert.True(t, errors.HasCode(err, "E104"))
}
