package streaming

import (
	"fmt"
	"sync"
	"time"
)

// Event types published during level generation.
const (
	EventRunStarted  = "run_started"
	EventChunkPlaced = "chunk_placed"
	EventChunkRemoved = "chunk_removed"
	EventRunFinished = "run_finished"
	EventNotice      = "notice"
)

// Event describes a single generation progress message pushed to subscribers.
type Event struct {
	Type    string    `json:"type"`
	RunID   string    `json:"run_id,omitempty"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Subscription tracks an individual client's event feed.
type Subscription struct {
	ID        string
	ClientID  string
	Events    chan Event
	CreatedAt time.Time
}

// Manager coordinates generation event subscriptions.
type Manager struct {
	mu            sync.RWMutex
	subscriptions map[string]*Subscription
	nextID        int64
}

// NewManager builds a streaming manager instance.
func NewManager() *Manager {
	return &Manager{
		subscriptions: make(map[string]*Subscription),
	}
}

// Subscribe registers a new event feed for a client. The returned
// subscription's Events channel is buffered; slow consumers drop events
// rather than stalling generation.
func (m *Manager) Subscribe(clientID string) *Subscription {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	sub := &Subscription{
		ID:        fmt.Sprintf("sub_%d_%d", m.nextID, time.Now().UnixNano()),
		ClientID:  clientID,
		Events:    make(chan Event, 64),
		CreatedAt: time.Now(),
	}
	m.subscriptions[sub.ID] = sub
	return sub
}

// Unsubscribe removes a subscription and closes its event channel.
func (m *Manager) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return
	}
	delete(m.subscriptions, subscriptionID)
	close(sub.Events)
}

// GetSubscription retrieves a subscription by ID.
func (m *Manager) GetSubscription(subscriptionID string) (*Subscription, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sub, ok := m.subscriptions[subscriptionID]
	if !ok {
		return nil, fmt.Errorf("subscription %s not found", subscriptionID)
	}
	return sub, nil
}

// SubscriberCount returns the number of active subscriptions.
func (m *Manager) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Publish fans an event out to every subscriber. Events are dropped for
// subscribers whose buffers are full.
func (m *Manager) Publish(event Event) {
	if event.Time.IsZero() {
		event.Time = time.Now()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, sub := range m.subscriptions {
		select {
		case sub.Events <- event:
		default:
		}
	}
}
