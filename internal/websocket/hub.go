// WorldSense - GDELT Event Dashboard Sessions and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/worldsense

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/tomtom215/worldsense/internal/logging"
	"github.com/tomtom215/worldsense/internal/metrics"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	// ShutdownReasonContextCanceled indicates the parent context was canceled.
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"

	// ShutdownReasonContextDeadline indicates the context deadline was exceeded.
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Message types for WebSocket communication
const (
	MessageTypeState         = "state"
	MessageTypePanel         = "panel"
	MessageTypeSummary       = "summary"
	MessageTypeViewportFit   = "viewport.fit"
	MessageTypeSessionClosed = "session.closed"
	MessageTypeMoveEnd       = "moveend"
	MessageTypePing          = "ping"
	MessageTypePong          = "pong"
)

// Message is one websocket frame. Topic routes it and is not serialized.
type Message struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data"`
	Topic string      `json:"-"`
}

// InboundMessage is a frame received from a browser. Data is decoded by
// the handler that knows its type.
type InboundMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Hub maintains the set of active clients and routes messages to them by topic
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	closeTopic chan string
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub
func NewHub() *Hub {
	return &Hub{
		broadcast:  make(chan Message, 256),
		closeTopic: make(chan string, 16),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		clients:    make(map[*Client]bool),
	}
}

// RunWithContext runs the hub until ctx is canceled, then closes every
// client and returns ctx.Err(). Designed for suture supervision.
//
// Selection is prioritized: shutdown first, then client lifecycle, then
// messages, so a client registered before a publish always receives it.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.register(client)
			continue
		case client := <-h.Unregister:
			h.unregister(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.register(client)
		case client := <-h.Unregister:
			h.unregister(client)
		case topic := <-h.closeTopic:
			h.closeTopicClients(topic)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// Serve implements suture.Service.
func (h *Hub) Serve(ctx context.Context) error {
	return h.RunWithContext(ctx)
}

// String implements fmt.Stringer for suture logging.
func (h *Hub) String() string {
	return "websocket-hub"
}

func (h *Hub) register(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnections.Set(float64(total))
	logging.Info().Str("topic", logging.SanitizeSessionID(client.topic)).Int("total_clients", total).Msg("websocket client connected")
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; ok {
		delete(h.clients, client)
		close(client.send)
	}
	total := len(h.clients)
	h.mu.Unlock()
	metrics.WebSocketConnections.Set(float64(total))
	logging.Info().Int("total_clients", total).Msg("websocket client disconnected")
}

// logGracefulShutdown closes every client and logs why the hub stopped.
// ctx.Err() is not logged as an error because cancellation is the normal
// shutdown path.
func (h *Hub) logGracefulShutdown(ctx context.Context) {
	clientCount := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", clientCount).
		Msg("websocket hub stopped")
}

// getShutdownReason determines the shutdown reason from the context error.
func getShutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// sortedClients returns the clients matching keep in ID order. Caller must
// hold h.mu.
func (h *Hub) sortedClients(keep func(*Client) bool) []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		if keep(client) {
			clients = append(clients, client)
		}
	}
	sort.Slice(clients, func(i, j int) bool {
		return clients[i].id < clients[j].id
	})
	return clients
}

// broadcastToClients sends a message to every client of its topic in ID
// order. Clients whose send buffer is full are dropped.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.sortedClients(func(c *Client) bool { return c.topic == message.Topic })

	var toRemove []*Client
	for _, client := range clients {
		select {
		case client.send <- message:
			metrics.WebSocketMessagesSent.WithLabelValues(message.Type).Inc()
		default:
			toRemove = append(toRemove, client)
		}
	}

	for _, client := range toRemove {
		close(client.send)
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WebSocketConnections.Set(float64(len(h.clients)))
		logging.Warn().Int("dropped", len(toRemove)).Msg("dropped slow websocket clients")
	}
}

// closeTopicClients tells every client of topic that its session ended and
// disconnects them.
func (h *Hub) closeTopicClients(topic string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients(func(c *Client) bool { return c.topic == topic }) {
		select {
		case client.send <- Message{Type: MessageTypeSessionClosed, Topic: topic}:
		default:
		}
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebSocketConnections.Set(float64(len(h.clients)))
}

// closeAllClients closes every client in ID order. Called during shutdown.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients(func(*Client) bool { return true }) {
		close(client.send)
		delete(h.clients, client)
	}
	metrics.WebSocketConnections.Set(0)
	logging.Info().Msg("closed all websocket clients during shutdown")
}

// Publish queues a message for the clients of topic. It never blocks; a
// full queue drops the message.
func (h *Hub) Publish(topic, messageType string, data interface{}) {
	message := Message{Type: messageType, Data: data, Topic: topic}
	select {
	case h.broadcast <- message:
	default:
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
	}
}

// CloseTopic disconnects every client of topic after sending
// session.closed.
func (h *Hub) CloseTopic(topic string) {
	select {
	case h.closeTopic <- topic:
	default:
		logging.Warn().Msg("close-topic channel full, clients will time out instead")
	}
}

// GetClientCount returns the number of connected clients
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// TopicClientCount returns the number of clients subscribed to topic.
func (h *Hub) TopicClientCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for client := range h.clients {
		if client.topic == topic {
			n++
		}
	}
	return n
}

// MarshalMessage converts a message to JSON
func MarshalMessage(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}
