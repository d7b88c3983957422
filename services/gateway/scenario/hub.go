// Copyright (C) 2026 StrataView Systems (eng@strataview.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package scenario drives the scripted demo timelines: a registry of
// WebSocket clients (the hub), a timer-driven step runner, a timeline
// manager with hot reload, and the live metric feed.
package scenario

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/strataview/strataview/services/gateway/datatypes"
)

// sendBuffer is the per-client outbound queue. A client that falls
// this many messages behind is dropped rather than blocking the hub.
const sendBuffer = 32

// Client is one connected WebSocket peer.
type Client struct {
	conn *websocket.Conn
	send chan []byte
}

// writePump drains the send queue onto the socket. Runs in its own
// goroutine per client; exits when the send channel closes.
func (c *Client) writePump() {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			slog.Debug("websocket write failed", "error", err)
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
}

// Hub fans broadcasts out to every connected client in insertion
// order. Live samples are rate-capped; scenario steps and state
// changes are always delivered.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	broadcast  chan datatypes.WSMessage
	done       chan struct{}
	clients    map[*Client]bool
	limiter    *rate.Limiter
	count      atomic.Int64
	onCount    func(int64)
}

// NewHub builds a hub. sampleRate caps live-sample broadcasts per
// second; onCount (optional) observes the client count for a gauge.
func NewHub(sampleRate rate.Limit, onCount func(int64)) *Hub {
	if onCount == nil {
		onCount = func(int64) {}
	}
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan datatypes.WSMessage, 64),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		limiter:    rate.NewLimiter(sampleRate, int(sampleRate)+1),
		onCount:    onCount,
	}
}

// Run owns the client registry. Single goroutine; all map access
// happens here. Closing done releases any registrar that arrives
// during shutdown.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.count.Store(0)
			h.onCount(0)
			return

		case c := <-h.register:
			h.clients[c] = true
			h.onCount(h.count.Add(1))
			slog.Info("websocket client connected", "clients", len(h.clients))

		case c := <-h.unregister:
			if h.clients[c] {
				delete(h.clients, c)
				close(c.send)
				h.onCount(h.count.Add(-1))
			}

		case msg := <-h.broadcast:
			if msg.Type == datatypes.MessageTypeSample && !h.limiter.Allow() {
				continue
			}
			raw, err := json.Marshal(msg)
			if err != nil {
				slog.Error("could not marshal broadcast", "type", msg.Type, "error", err)
				continue
			}
			for c := range h.clients {
				select {
				case c.send <- raw:
				default:
					// Slow client: drop it instead of stalling the demo.
					delete(h.clients, c)
					close(c.send)
					h.onCount(h.count.Add(-1))
					slog.Warn("dropping slow websocket client")
				}
			}
		}
	}
}

// Register attaches a connection and starts its write pump. The read
// side stays with the HTTP handler. A connection that arrives after
// the hub shut down is closed immediately.
func (h *Hub) Register(conn *websocket.Conn) *Client {
	c := &Client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
		go c.writePump()
	case <-h.done:
		close(c.send)
		conn.Close()
	}
	return c
}

// Unregister detaches a client and closes its queue.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues a message for every client. Drops the message when
// the hub's queue is full rather than blocking the caller.
func (h *Hub) Broadcast(msg datatypes.WSMessage) {
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	select {
	case h.broadcast <- msg:
	default:
		slog.Warn("broadcast queue full, dropping message", "type", msg.Type)
	}
}

// ClientCount reports the connected client count.
func (h *Hub) ClientCount() int64 {
	return h.count.Load()
}
