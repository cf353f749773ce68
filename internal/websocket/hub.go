package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel/metric"

	"leadscout/internal/infrastructure"
)

// Message types sent to clients
const (
	TypeConnection   = "connection"
	TypeLeadsRefresh = "leads:refresh"
	TypeError        = "error"
)

// broadcastQueue bounds the number of pending broadcasts
const broadcastQueue = 64

// Message is the envelope of every frame written to clients
type Message struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	TraceID   string    `json:"trace_id,omitempty"`
}

// Stats is a point-in-time view of hub activity
type Stats struct {
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	MessagesDropped  int64 `json:"messages_dropped"`
}

// Hub maintains the set of active clients and broadcasts messages to them
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client

	mu      sync.RWMutex
	running bool
	quit    chan struct{}
	done    chan struct{}

	clock   clockwork.Clock
	logger  *slog.Logger
	metrics *hubMetrics

	totalConnections atomic.Int64
	messagesSent     atomic.Int64
	messagesDropped  atomic.Int64
}

// HubOption configures a Hub
type HubOption func(*Hub)

// WithClock sets the clock used for message timestamps
func WithClock(clock clockwork.Clock) HubOption {
	return func(h *Hub) { h.clock = clock }
}

// WithMeter records client and message counts on meter
func WithMeter(meter metric.Meter) HubOption {
	return func(h *Hub) {
		m, err := newHubMetrics(meter)
		if err != nil {
			h.logger.Warn("WebSocket metrics disabled", slog.String("error", err.Error()))
			return
		}
		h.metrics = m
	}
}

// NewHub creates a new Hub instance with dependency injection
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan []byte, broadcastQueue),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		done:       make(chan struct{}),
		clock:      clockwork.NewRealClock(),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Start runs the hub loop in its own goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.mu.Unlock()

	go h.Run()
}

// Run is the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.quit:
			h.closeAll()
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case message := <-h.broadcast:
			h.fanOut(message)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	h.totalConnections.Add(1)

	ctx := client.context()
	h.metrics.clientDelta(ctx, 1)
	h.logger.InfoContext(ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr))

	data, err := h.encode(TypeConnection, map[string]any{
		"status":    "connected",
		"message":   "Connected to lead feed",
		"client_id": client.id,
	}, client.traceID)
	if err != nil {
		return
	}
	select {
	case client.send <- data:
	default:
		h.logger.WarnContext(ctx, "Failed to send connection message, client buffer full",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client)
	close(client.send)
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.clientDelta(ctx, -1)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", client.id),
		slog.Duration("connection_duration", h.clock.Since(client.connectedAt)))
}

func (h *Hub) fanOut(message []byte) {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	var sent, dropped int
	for _, client := range clients {
		select {
		case client.send <- message:
			sent++
		default:
			// a client that cannot keep up is disconnected
			dropped++
			h.removeClient(client)
		}
	}

	h.messagesSent.Add(int64(sent))
	h.messagesDropped.Add(int64(dropped))
	h.metrics.recordMessages(context.Background(), sent, dropped)

	h.logger.Debug("Broadcast delivered",
		slog.Int("sent", sent),
		slog.Int("dropped", dropped),
		slog.Int("message_size", len(message)))
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) encode(msgType string, data any, traceID string) ([]byte, error) {
	payload, err := json.Marshal(Message{
		Type:      msgType,
		Data:      data,
		Timestamp: h.clock.Now().UTC(),
		TraceID:   traceID,
	})
	if err != nil {
		h.logger.Error("Error marshaling message",
			slog.String("message_type", msgType),
			slog.String("error", err.Error()))
	}
	return payload, err
}

// Broadcast queues a message of msgType for every connected client. The trace
// ID of ctx is carried in the envelope. Messages are dropped when the hub is
// stopped or its queue is full.
func (h *Hub) Broadcast(ctx context.Context, msgType string, data any) {
	payload, err := h.encode(msgType, data, infrastructure.GetTraceID(ctx))
	if err != nil {
		return
	}

	select {
	case <-h.quit:
		return
	default:
	}

	select {
	case h.broadcast <- payload:
	case <-h.quit:
	default:
		h.messagesDropped.Add(1)
		h.logger.WarnContext(ctx, "Broadcast queue full, message dropped",
			slog.String("message_type", msgType))
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stats returns current hub counters
func (h *Hub) Stats() Stats {
	return Stats{
		ActiveClients:    h.ClientCount(),
		TotalConnections: h.totalConnections.Load(),
		MessagesSent:     h.messagesSent.Load(),
		MessagesDropped:  h.messagesDropped.Load(),
	}
}

// Stop terminates the hub loop and closes every client. It waits for the loop
// to exit when the hub was started.
func (h *Hub) Stop() {
	h.mu.Lock()
	select {
	case <-h.quit:
		h.mu.Unlock()
		return
	default:
	}
	close(h.quit)
	wasRunning := h.running
	h.running = false
	h.mu.Unlock()

	if wasRunning {
		<-h.done
	}
}
