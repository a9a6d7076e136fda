package bridge

import (
	"context"
	"encoding/json"
	"sync"

	"sigillo/entities"
	"sigillo/metrics"

	watermillMessage "github.com/ThreeDotsLabs/watermill/message"
	"github.com/sirupsen/logrus"
)

// Hub fans status pushes out to every connected WebSocket client. Each
// client gets a buffered outbound queue drained by its own write pump, so
// one slow client cannot stall the actor or the other clients.
type Hub struct {
	metrics *metrics.Metrics

	mu      sync.Mutex
	clients map[*client]struct{}
}

type client struct {
	send chan []byte
}

const clientQueueSize = 16

func NewHub(m *metrics.Metrics) *Hub {
	return &Hub{
		metrics: m,
		clients: make(map[*client]struct{}),
	}
}

func (h *Hub) register(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.BridgeClients.Set(float64(count))
	}
	logrus.WithField("clients", count).Info("Bridge client connected")
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.BridgeClients.Set(float64(count))
	}
	logrus.WithField("clients", count).Info("Bridge client disconnected")
}

// broadcast queues payload for every client. A client whose queue is full is
// dropped rather than waited on.
func (h *Hub) broadcast(payload []byte) {
	h.mu.Lock()
	var stalled []*client
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			stalled = append(stalled, c)
		}
	}
	h.mu.Unlock()

	for _, c := range stalled {
		h.unregister(c)
	}
}

// Run consumes status snapshots from the in-process bus and re-encodes them
// as pushes in the client wire format. Returns when ctx is done.
func (h *Hub) Run(ctx context.Context, subscriber watermillMessage.Subscriber) error {
	messages, err := subscriber.Subscribe(ctx, StatusTopic)
	if err != nil {
		return err
	}

	for msg := range messages {
		var event entities.CardStatusChanged_v1
		if err := json.Unmarshal(msg.Payload, &event); err != nil {
			logrus.WithError(err).Error("Malformed card status event")
			msg.Ack()
			continue
		}

		push, err := json.Marshal(Response{Type: "status", Success: true, Data: event.Status})
		if err != nil {
			logrus.WithError(err).Error("Could not encode status push")
			msg.Ack()
			continue
		}
		h.broadcast(push)
		msg.Ack()
	}
	return nil
}
