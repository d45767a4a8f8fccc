package ws

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"tripbroker/internal/stream"
)

// PushMessage is the frame pushed to connected clients.
type PushMessage struct {
	Topic  string `json:"topic"`
	Kind   string `json:"kind"`
	ID     string `json:"id"`
	TripID string `json:"trip_id,omitempty"`
}

// broadcast targets specific users, or everyone when UserIDs is nil.
type broadcast struct {
	UserIDs []string
	Payload []byte
}

// Hub maintains the set of connected clients and fans bus events out to them.
// One user may hold several connections.
type Hub struct {
	clients map[string]map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	outbound   chan broadcast

	bus    stream.Bus
	logger *zap.Logger
}

// NewHub creates a Hub fed by the given event bus.
func NewHub(bus stream.Bus, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		outbound:   make(chan broadcast, 256),
		bus:        bus,
		logger:     logger,
	}
}

// Run processes registrations and broadcasts until ctx is cancelled. It
// subscribes to the trip and offer topics on entry.
func (h *Hub) Run(ctx context.Context) {
	if h.bus != nil {
		trips, cancelTrips := h.bus.Subscribe(stream.TopicTrips)
		offers, cancelOffers := h.bus.Subscribe(stream.TopicOffers)
		defer cancelTrips()
		defer cancelOffers()
		go h.forward(ctx, trips)
		go h.forward(ctx, offers)
	}

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.outbound:
			h.deliver(msg)
		}
	}
}

// Broadcast queues a push to the listed users, or to everyone when userIDs
// is nil. Drops the message if the hub's queue is full.
func (h *Hub) Broadcast(userIDs []string, msg PushMessage) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.logger.Warn("push marshal failed", zap.Error(err))
		return
	}
	select {
	case h.outbound <- broadcast{UserIDs: userIDs, Payload: payload}:
	default:
		h.logger.Warn("push queue full, dropping message",
			zap.String("topic", msg.Topic),
			zap.String("kind", msg.Kind),
		)
	}
}

// ConnectedClients reports how many connections a user holds.
func (h *Hub) ConnectedClients(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// forward drains one bus subscription into the hub. Trip and offer events go
// to every connected client; clients filter on the trips they care about.
func (h *Hub) forward(ctx context.Context, events <-chan stream.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			h.Broadcast(nil, PushMessage{
				Topic:  string(ev.Topic),
				Kind:   ev.Kind,
				ID:     ev.ID,
				TripID: ev.TripID,
			})
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.userID] == nil {
		h.clients[client.userID] = make(map[*Client]bool)
	}
	h.clients[client.userID][client] = true

	h.logger.Debug("ws client connected",
		zap.String("user_id", client.userID),
		zap.Int("connections", len(h.clients[client.userID])),
	)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients, ok := h.clients[client.userID]
	if !ok {
		return
	}
	if _, exists := clients[client]; !exists {
		return
	}
	delete(clients, client)
	client.close()
	if len(clients) == 0 {
		delete(h.clients, client.userID)
	}

	h.logger.Debug("ws client disconnected", zap.String("user_id", client.userID))
}

func (h *Hub) deliver(msg broadcast) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if msg.UserIDs == nil {
		for _, clients := range h.clients {
			for client := range clients {
				client.send(msg.Payload)
			}
		}
		return
	}
	for _, userID := range msg.UserIDs {
		for client := range h.clients[userID] {
			client.send(msg.Payload)
		}
	}
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, clients := range h.clients {
		for client := range clients {
			client.close()
		}
	}
	h.clients = make(map[string]map[*Client]bool)
}
