// Package transport lets the engine play over a websocket instead of
// stdin/stdout. Each text message from the server may carry one or more
// protocol lines; writes are sent as text messages holding whole lines.
package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Config holds websocket connection settings.
type Config struct {
	ConnectTimeout time.Duration
	// ReadTimeout bounds the wait for the next server message. Zero
	// means wait forever; the server normally enforces turn time itself.
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Header       http.Header
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		ConnectTimeout: 10 * time.Second,
		WriteTimeout:   5 * time.Second,
	}
}

// Conn adapts a websocket connection to io.Reader and io.Writer.
type Conn struct {
	ws     *websocket.Conn
	config Config

	readMu  sync.Mutex
	pending bytes.Buffer

	writeMu sync.Mutex
	partial bytes.Buffer
}

// Dial connects to a game server endpoint.
func Dial(ctx context.Context, url string, config Config) (*Conn, error) {
	dialer := websocket.Dialer{
		HandshakeTimeout: config.ConnectTimeout,
	}
	ws, _, err := dialer.DialContext(ctx, url, config.Header)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	return NewConn(ws, config), nil
}

// NewConn wraps an established websocket, client or server side.
func NewConn(ws *websocket.Conn, config Config) *Conn {
	return &Conn{ws: ws, config: config}
}

// Read returns protocol bytes. A normal close from the server is io.EOF.
func (c *Conn) Read(p []byte) (int, error) {
	c.readMu.Lock()
	defer c.readMu.Unlock()

	for c.pending.Len() == 0 {
		if c.config.ReadTimeout > 0 {
			c.ws.SetReadDeadline(time.Now().Add(c.config.ReadTimeout))
		}
		msgType, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return 0, io.EOF
			}
			return 0, fmt.Errorf("read error: %w", err)
		}
		if msgType != websocket.TextMessage {
			continue
		}
		c.pending.Write(message)
		if len(message) > 0 && message[len(message)-1] != '\n' {
			c.pending.WriteByte('\n')
		}
	}
	return c.pending.Read(p)
}

// Write sends every complete line in p as one text message. A trailing
// partial line is held until a later write finishes it, so a line is
// never split across messages.
func (c *Conn) Write(p []byte) (int, error) {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.partial.Write(p)
	buf := c.partial.Bytes()
	end := bytes.LastIndexByte(buf, '\n')
	if end < 0 {
		return len(p), nil
	}
	if err := c.send(buf[:end+1]); err != nil {
		return 0, err
	}
	c.partial.Next(end + 1)
	return len(p), nil
}

func (c *Conn) send(msg []byte) error {
	if c.config.WriteTimeout > 0 {
		c.ws.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	}
	if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
		return fmt.Errorf("write error: %w", err)
	}
	return nil
}

// Close sends any held partial line, then a normal close frame, and
// closes the socket.
func (c *Conn) Close() error {
	c.writeMu.Lock()
	if c.partial.Len() > 0 {
		_ = c.send(c.partial.Bytes())
		c.partial.Reset()
	}
	deadline := time.Now().Add(time.Second)
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.ws.WriteControl(websocket.CloseMessage, msg, deadline)
	c.writeMu.Unlock()
	return c.ws.Close()
}
