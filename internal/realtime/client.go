package realtime

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/tableroapp/tablero/internal/domain/entity"
)

const (
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	writeWait      = 10 * time.Second
	maxMessageSize = 64 * 1024
	sendBuffer     = 256
)

// Client is one realtime connection. user is the optional identity resolved
// at handshake time (session cookie or signed ticket); a nil user is an
// anonymous connection, which the channel allows.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	addr   string
	user   *entity.User
	closed bool
	logger *logrus.Logger
}

func NewClient(conn *websocket.Conn, hub *Hub, user *entity.User, logger *logrus.Logger) *Client {
	addr := ""
	if conn != nil {
		conn.SetReadLimit(maxMessageSize)
		addr = conn.RemoteAddr().String()
	}
	return &Client{
		conn:   conn,
		send:   make(chan []byte, sendBuffer),
		hub:    hub,
		addr:   addr,
		user:   user,
		logger: logger,
	}
}

// Username reports the connection identity for logging, or "anonymous".
func (c *Client) Username() string {
	if c.user == nil {
		return "anonymous"
	}
	return c.user.Username
}

func (c *Client) readPump() {
	defer func() {
		// once the hub loop has stopped nobody drains unregister
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			c.logReadError(err)
			return
		}
		var env Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			c.logger.WithField("addr", c.addr).Warn("invalid frame dropped")
			continue
		}
		select {
		case c.hub.events <- inboundEvent{client: c, event: env.Event, data: env.Data}:
		case <-c.hub.ctx.Done():
			return
		}
	}
}

func (c *Client) logReadError(err error) {
	if websocket.IsCloseError(err,
		websocket.CloseNormalClosure,
		websocket.CloseGoingAway,
		websocket.CloseAbnormalClosure) || errors.Is(err, io.EOF) || isExpectedCloseError(err) {
		c.logger.WithField("addr", c.addr).Debug("connection closed")
		return
	}
	c.logger.WithError(err).WithField("addr", c.addr).Warn("read error")
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.hub.ctx.Done():
			return
		}
	}
}

func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "use of closed network connection") ||
		strings.Contains(s, "websocket: close sent") ||
		strings.Contains(s, "broken pipe")
}
