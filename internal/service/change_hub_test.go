package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/emphasis-lines-api/internal/models"
)

type fakeClient struct {
	mu       sync.Mutex
	payloads [][]byte
	fail     bool
	closed   bool
}

func (c *fakeClient) Send(payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) events(t *testing.T) []models.ChangeEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.ChangeEvent, 0, len(c.payloads))
	for _, p := range c.payloads {
		var event models.ChangeEvent
		require.NoError(t, json.Unmarshal(p, &event))
		out = append(out, event)
	}
	return out
}

func TestChangeHubDeliversInOrder(t *testing.T) {
	metrics := NewMetricsService()
	hub := NewChangeHub(16, metrics, nil)
	hub.Start(context.Background())
	defer hub.Stop()

	good := &fakeClient{}
	bad := &fakeClient{fail: true}
	hub.Register(good)
	hub.Register(bad)
	assert.Equal(t, int64(2), metrics.Snapshot().EventClients)

	for rev := int64(1); rev <= 3; rev++ {
		hub.Publish(models.ChangeEvent{Kind: models.ChangeMutated, Revision: rev})
	}

	assert.Eventually(t, func() bool { return len(good.events(t)) == 3 }, 2*time.Second, 10*time.Millisecond)
	events := good.events(t)
	assert.Equal(t, []int64{1, 2, 3}, []int64{events[0].Revision, events[1].Revision, events[2].Revision})
	assert.Equal(t, 1, hub.ClientCount())
	assert.True(t, bad.closed)
	assert.Equal(t, int64(1), metrics.Snapshot().EventClients)
}

func TestChangeHubFollowsStore(t *testing.T) {
	s, _ := newTestStore(t)
	hub := NewChangeHub(16, nil, nil)
	hub.Start(context.Background())
	defer hub.Stop()
	client := &fakeClient{}
	hub.Register(client)
	s.OnChange(hub.Publish)

	createLine(t, s, "A", 5)

	assert.Eventually(t, func() bool { return len(client.events(t)) == 1 }, 2*time.Second, 10*time.Millisecond)
	event := client.events(t)[0]
	assert.Equal(t, models.ChangeMutated, event.Kind)
	assert.Equal(t, s.Revision(), event.Revision)

	hub.Stop()
	assert.Zero(t, hub.ClientCount())
	assert.True(t, client.closed)
}
