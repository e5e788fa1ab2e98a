// Package realtime owns the set of connected board clients and guarantees
// that every mutating event ends in a full-state re-broadcast to all of them.
package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tableroapp/tablero/internal/application"
	"github.com/tableroapp/tablero/internal/domain/entity"
	"github.com/tableroapp/tablero/internal/domain/repository"
)

// Wire event names. Server→client: productos, mensajes, errorMsg.
// Client→server: newProduct, newMessage.
const (
	EventProducts   = "productos"
	EventMessages   = "mensajes"
	EventError      = "errorMsg"
	EventNewProduct = "newProduct"
	EventNewMessage = "newMessage"
)

// Envelope is the JSON frame exchanged over the channel in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type inboundEvent struct {
	client *Client
	event  string
	data   json.RawMessage
}

// Hub maintains the connected-client set and processes inbound events one at
// a time: persist, re-fetch the full collection, broadcast to every client.
// Because a single goroutine drains the events channel, the
// persist-then-refetch-then-broadcast sequence never interleaves for two
// events on the same hub.
type Hub struct {
	products repository.ProductStore
	messages repository.MessageStore
	logger   *logrus.Logger

	storeTimeout time.Duration

	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	events     chan inboundEvent

	mutex  sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

func NewHub(products repository.ProductStore, messages repository.MessageStore, storeTimeout time.Duration, logger *logrus.Logger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		products:     products,
		messages:     messages,
		logger:       logger,
		storeTimeout: storeTimeout,
		clients:      make(map[*Client]bool),
		register:     make(chan *Client),
		unregister:   make(chan *Client),
		events:       make(chan inboundEvent, 64),
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

// Register hands a client to the hub event loop.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.ctx.Done():
	}
}

// Run is the hub's main event loop. Call it in its own goroutine.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.shutdownClients()
			return

		case client := <-h.register:
			if client == nil {
				continue
			}
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.logger.WithFields(logrus.Fields{"addr": client.addr, "user": client.Username(), "clients": count}).Info("realtime client connected")

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

			h.initialSync(client)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closed = true
				count := len(h.clients)
				h.mutex.Unlock()
				close(client.send)
				h.logger.WithFields(logrus.Fields{"addr": client.addr, "clients": count}).Info("realtime client disconnected")
			} else {
				h.mutex.Unlock()
			}

		case ev := <-h.events:
			h.handleEvent(ev)
		}
	}
}

func (h *Hub) storeCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(h.ctx, h.storeTimeout)
}

// initialSync pushes the current full product list and normalized message
// view to a newly connected client. This happens once per connection,
// independent of other connections' activity.
func (h *Hub) initialSync(c *Client) {
	ctx, cancel := h.storeCtx()
	defer cancel()

	if products, err := h.products.ListAll(ctx); err != nil {
		h.logger.WithError(err).Warn("initial product sync failed")
	} else {
		h.sendTo(c, EventProducts, products)
	}

	if raw, err := h.messages.GetAll(ctx); err != nil {
		h.logger.WithError(err).Warn("initial message sync failed")
	} else {
		view := application.Normalize(raw)
		if view.Dropped > 0 {
			h.logger.WithField("dropped", view.Dropped).Warn("malformed messages excluded from view")
		}
		h.sendTo(c, EventMessages, view)
	}
}

// handleEvent runs the full persist→refetch→broadcast sequence for one
// inbound event. A persist failure is reported to the originator only; a
// refetch failure after a successful persist is logged and left to the next
// successful event on the same collection to resynchronize everyone.
func (h *Hub) handleEvent(ev inboundEvent) {
	switch ev.event {
	case EventNewProduct:
		var p entity.Product
		if err := json.Unmarshal(ev.data, &p); err != nil {
			h.sendTo(ev.client, EventError, "invalid product payload")
			return
		}
		ctx, cancel := h.storeCtx()
		_, err := h.products.Append(ctx, p)
		cancel()
		if err != nil {
			h.logger.WithError(err).Error("product persist failed")
			h.sendTo(ev.client, EventError, "product not saved")
			return
		}
		h.broadcastProducts()

	case EventNewMessage:
		var m entity.Message
		if err := json.Unmarshal(ev.data, &m); err != nil {
			h.sendTo(ev.client, EventError, "invalid message payload")
			return
		}
		if m.Author.Email == "" && ev.client.user != nil {
			m.Author.Email = ev.client.user.Email
			m.Author.Name = ev.client.user.FirstName
		}
		ctx, cancel := h.storeCtx()
		_, err := h.messages.Append(ctx, m)
		cancel()
		if err != nil {
			h.logger.WithError(err).Error("message persist failed")
			h.sendTo(ev.client, EventError, "message not saved")
			return
		}
		h.broadcastMessages()

	default:
		h.sendTo(ev.client, EventError, "unknown event: "+ev.event)
	}
}

func (h *Hub) broadcastProducts() {
	ctx, cancel := h.storeCtx()
	defer cancel()
	products, err := h.products.ListAll(ctx)
	if err != nil {
		// Write already succeeded; clients resynchronize on the next
		// successful product event.
		h.logger.WithError(err).Error("product refetch failed after persist")
		return
	}
	h.broadcast(EventProducts, products)
}

func (h *Hub) broadcastMessages() {
	ctx, cancel := h.storeCtx()
	defer cancel()
	raw, err := h.messages.GetAll(ctx)
	if err != nil {
		h.logger.WithError(err).Error("message refetch failed after persist")
		return
	}
	view := application.Normalize(raw)
	if view.Dropped > 0 {
		h.logger.WithField("dropped", view.Dropped).Warn("malformed messages excluded from view")
	}
	h.broadcast(EventMessages, view)
}

// broadcast sends an event to every client known at broadcast time. The
// client set is snapshotted first; clients that disconnect mid-flight are
// dropped silently.
func (h *Hub) broadcast(event string, data any) {
	frame, err := marshalFrame(event, data)
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("broadcast marshal failed")
		return
	}
	for _, client := range h.snapshot() {
		h.safeSend(client, frame)
	}
}

func (h *Hub) sendTo(c *Client, event string, data any) {
	frame, err := marshalFrame(event, data)
	if err != nil {
		h.logger.WithError(err).WithField("event", event).Error("send marshal failed")
		return
	}
	h.safeSend(c, frame)
}

func marshalFrame(event string, data any) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}

func (h *Hub) snapshot() []*Client {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	return clients
}

// safeSend delivers a frame to one client without blocking the event loop.
// A full buffer or a closed client loses the frame for that client only.
func (h *Hub) safeSend(c *Client, frame []byte) bool {
	defer func() {
		// send channel may close under us when the client unregisters
		// mid-broadcast
		_ = recover()
	}()

	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if _, ok := h.clients[c]; !ok || c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

func (h *Hub) shutdownClients() {
	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		if client.conn != nil {
			_ = client.conn.Close()
		}
	}
	h.logger.WithField("clients", len(clients)).Info("realtime channel closed")
}

// Shutdown stops the event loop, closes every connection, and waits for the
// client goroutines to finish or the timeout to pass.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
