// Package client runs one participant: the room connection, the seats,
// the proximity conference and the peer sessions behind them.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

var ErrConnClosed = errors.New("room connection closed")

// RoomConn is the client end of the room channel.
type RoomConn interface {
	Send(msg any) error
	Incoming() <-chan []byte
	Close() error
}

// WSConn is a RoomConn over a websocket.
type WSConn struct {
	conn     *websocket.Conn
	incoming chan []byte
	outgoing chan []byte
	done     chan struct{}

	mu     sync.Mutex
	closed bool
}

// Dial connects to the room server. header may carry the "ct" cookie of an
// earlier session.
func Dial(ctx context.Context, url string, header http.Header) (*WSConn, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	c := &WSConn{
		conn:     conn,
		incoming: make(chan []byte, 32),
		outgoing: make(chan []byte, 32),
		done:     make(chan struct{}),
	}
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	go c.readPump()
	go c.writePump()
	return c, nil
}

func (c *WSConn) readPump() {
	defer func() {
		_ = c.conn.Close()
		close(c.incoming)
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("module", "client.conn").Msg("read failed")
			}
			return
		}
		select {
		case c.incoming <- data:
		case <-c.done:
			return
		}
	}
}

func (c *WSConn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.outgoing:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				log.Warn().Err(err).Str("module", "client.conn").Msg("write failed")
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

// Send queues msg as JSON. It fails when the queue is full or closed.
func (c *WSConn) Send(msg any) error {
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrConnClosed
	}
	select {
	case c.outgoing <- b:
		return nil
	default:
		return fmt.Errorf("room connection: send queue full")
	}
}

func (c *WSConn) Incoming() <-chan []byte { return c.incoming }

func (c *WSConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	close(c.done)
	return nil
}
