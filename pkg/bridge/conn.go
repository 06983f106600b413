package bridge

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/vango-dev/isodom/internal/errors"
)

// client is one websocket connection.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan Outbound
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// push queues msg, dropping the oldest queued message when the buffer is
// full. A later render supersedes an earlier one.
func (c *client) push(msg Outbound) {
	for {
		select {
		case <-c.done:
			return
		case c.send <- msg:
			return
		default:
		}
		select {
		case <-c.send:
			c.logger.Debug("dropped stale message")
		default:
		}
	}
}

func (c *client) close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (b *Bridge) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := b.upgrader.Upgrade(w, r, nil)
	if err != nil {
		b.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	id := uuid.NewString()
	c := &client{
		id:     id,
		conn:   conn,
		send:   make(chan Outbound, SendBuffer),
		done:   make(chan struct{}),
		logger: b.logger.With("conn_id", id),
	}
	b.add(c)
	defer func() {
		b.remove(c)
		c.close()
		c.logger.Info("connection closed")
	}()
	c.logger.Info("connection opened", "remote", r.RemoteAddr)

	markup, err := b.snapshot(r)
	if err != nil {
		c.logger.Error("initial render unavailable", "error", err)
		return
	}
	c.push(Outbound{HTML: markup})

	go b.writeLoop(c)
	b.readLoop(r.Context(), c)
}

func (b *Bridge) writeLoop(c *client) {
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(WritePeriod))
			if err := c.conn.WriteJSON(msg); err != nil {
				c.logger.Warn("write failed", "error", err)
				c.close()
				return
			}
		}
	}
}

func (b *Bridge) readLoop(ctx context.Context, c *client) {
	for {
		var in Inbound
		if err := c.conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Error("read error", "error", err)
			}
			return
		}
		if err := b.dispatch(ctx, in); err != nil {
			c.logger.Debug("dispatch failed", "type", in.Type, "path", in.Path, "error", err)
			c.push(Outbound{Code: errors.Code(err), Error: err.Error()})
		}
	}
}

// dispatch fires in at the addressed element on the loop. Rendering caused
// by the event reaches every client through the update subscription.
func (b *Bridge) dispatch(ctx context.Context, in Inbound) error {
	if in.Type == "" {
		return errors.New("E105").WithDetail("event type missing")
	}
	var result error
	err := b.loop.Call(ctx, func() {
		target, ok := b.d.Document().ElementAt(in.Path)
		if !ok {
			result = errors.New("E105").WithDetail("no element at the given path")
			return
		}
		_, result = b.d.DispatchDetail(target, in.Type, in.Detail)
	})
	if err != nil {
		return err
	}
	return result
}
