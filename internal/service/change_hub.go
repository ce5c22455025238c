package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
	"github.com/noah-isme/emphasis-lines-api/pkg/jobs"
)

// EventClient is one connected change subscriber.
type EventClient interface {
	Send(payload []byte) error
	Close() error
}

// ChangeHub fans document change events out to subscribers. Events are delivered in commit
// order by a single queue worker; a subscriber whose write fails is dropped.
type ChangeHub struct {
	queue   *jobs.Queue[models.ChangeEvent]
	logger  *zap.Logger
	metrics *MetricsService

	mu      sync.RWMutex
	clients map[EventClient]struct{}
}

// NewChangeHub constructs a hub; buffer bounds the number of undelivered events.
func NewChangeHub(buffer int, metrics *MetricsService, logger *zap.Logger) *ChangeHub {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &ChangeHub{
		logger:  logger,
		metrics: metrics,
		clients: make(map[EventClient]struct{}),
	}
	h.queue = jobs.NewQueue("change-events", h.broadcast, jobs.QueueConfig{
		Workers:    1,
		BufferSize: buffer,
		Logger:     logger,
	})
	return h
}

// Start runs the delivery worker until ctx is cancelled or Stop is called.
func (h *ChangeHub) Start(ctx context.Context) {
	h.queue.Start(ctx)
}

// Stop halts delivery and disconnects every subscriber.
func (h *ChangeHub) Stop() {
	h.queue.Stop()
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		_ = client.Close()
		delete(h.clients, client)
		h.metrics.AddEventClients(-1)
	}
}

// Publish is registered as a store listener and never blocks.
func (h *ChangeHub) Publish(event models.ChangeEvent) {
	if err := h.queue.Enqueue(event); err != nil {
		h.logger.Warn("change event dropped", zap.String("kind", string(event.Kind)), zap.Int64("revision", event.Revision), zap.Error(err))
	}
}

// Register adds a subscriber.
func (h *ChangeHub) Register(client EventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; ok {
		return
	}
	h.clients[client] = struct{}{}
	h.metrics.AddEventClients(1)
}

// Unregister removes and closes a subscriber.
func (h *ChangeHub) Unregister(client EventClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	_ = client.Close()
	h.metrics.AddEventClients(-1)
}

// ClientCount returns the number of connected subscribers.
func (h *ChangeHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *ChangeHub) broadcast(_ context.Context, job jobs.Job[models.ChangeEvent]) error {
	payload, err := json.Marshal(job.Payload)
	if err != nil {
		return err
	}

	h.mu.RLock()
	clients := make([]EventClient, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mu.RUnlock()

	for _, client := range clients {
		if err := client.Send(payload); err != nil {
			h.logger.Debug("dropping event client", zap.Error(err))
			h.Unregister(client)
		}
	}
	return nil
}
