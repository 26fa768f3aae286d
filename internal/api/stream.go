package api

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jonastieppo/SimpleAIAgentRequest/internal/browser"
)

// NavigationEvent describes websocket payloads emitted when the displayed image changes
// or a prompt is processed.
type NavigationEvent struct {
	Type      string        `json:"type"`
	RequestID string        `json:"request_id,omitempty"`
	Action    string        `json:"action,omitempty"`
	Outcome   string        `json:"outcome,omitempty"`
	State     browser.State `json:"state"`
	Message   string        `json:"message,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// wsClient wraps a websocket connection with write locking.
type wsClient struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

// NavigationNotifier keeps track of websocket clients and broadcasts navigation events.
type NavigationNotifier struct {
	mu        sync.Mutex
	clients   map[*wsClient]struct{}
	lastEvent *NavigationEvent
}

// NewNavigationNotifier constructs a notifier instance.
func NewNavigationNotifier() *NavigationNotifier {
	return &NavigationNotifier{clients: make(map[*wsClient]struct{})}
}

// Register attaches a websocket connection and replays the latest event to it.
func (n *NavigationNotifier) Register(conn *websocket.Conn) *wsClient {
	client := &wsClient{conn: conn}
	n.mu.Lock()
	n.clients[client] = struct{}{}
	last := n.lastEvent
	n.mu.Unlock()

	if last != nil {
		_ = client.writeJSON(*last)
	}
	return client
}

// Unregister removes the websocket client from the notifier and closes the socket.
func (n *NavigationNotifier) Unregister(client *wsClient) {
	if client == nil {
		return
	}
	n.mu.Lock()
	delete(n.clients, client)
	n.mu.Unlock()
	_ = client.conn.Close()
}

// Broadcast sends event to every registered client, dropping those that fail.
func (n *NavigationNotifier) Broadcast(event NavigationEvent) {
	event.Timestamp = time.Now().UTC()

	n.mu.Lock()
	snapshot := event
	n.lastEvent = &snapshot
	clients := make([]*wsClient, 0, len(n.clients))
	for client := range n.clients {
		clients = append(clients, client)
	}
	n.mu.Unlock()

	for _, client := range clients {
		if err := client.writeJSON(event); err != nil {
			n.Unregister(client)
		}
	}
}

// LastEvent returns a copy of the most recent event, if any.
func (n *NavigationNotifier) LastEvent() *NavigationEvent {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.lastEvent == nil {
		return nil
	}
	event := *n.lastEvent
	return &event
}

func (c *wsClient) writeJSON(payload interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return c.conn.WriteJSON(payload)
}
