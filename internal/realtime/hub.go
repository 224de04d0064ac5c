// Package realtime fans row changes out to subscribers watching a table for
// one owner.
package realtime

import (
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Change event kinds
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Change describes one row mutation
type Change struct {
	ID     string      `json:"id"`
	Table  string      `json:"table"`
	Event  string      `json:"event"`
	UserID string      `json:"user_id"`
	Record interface{} `json:"record"`
	At     time.Time   `json:"at"`
}

// Publisher is implemented by anything that can broadcast a change
type Publisher interface {
	Publish(table, userID, event string, record interface{})
}

type topicKey struct {
	table  string
	userID string
}

// Hub routes published changes to subscriptions keyed by table and owner
type Hub struct {
	mu     sync.RWMutex
	topics map[topicKey]map[*Subscription]struct{}
	buffer int
}

// NewHub creates a hub whose subscriptions buffer up to buffer changes
func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = 16
	}
	return &Hub{
		topics: make(map[topicKey]map[*Subscription]struct{}),
		buffer: buffer,
	}
}

// Subscription receives changes for one table and owner until closed
type Subscription struct {
	Table  string
	UserID string

	hub  *Hub
	c    chan Change
	once sync.Once
}

// C returns the channel changes are delivered on. It is closed by Close.
func (s *Subscription) C() <-chan Change {
	return s.c
}

// Close detaches the subscription from the hub. It is safe to call twice.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.c)
	})
}

// Subscribe registers interest in changes to table rows owned by userID
func (h *Hub) Subscribe(table, userID string) *Subscription {
	sub := &Subscription{
		Table:  table,
		UserID: userID,
		hub:    h,
		c:      make(chan Change, h.buffer),
	}

	key := topicKey{table: table, userID: userID}
	h.mu.Lock()
	if h.topics[key] == nil {
		h.topics[key] = make(map[*Subscription]struct{})
	}
	h.topics[key][sub] = struct{}{}
	h.mu.Unlock()

	return sub
}

func (h *Hub) remove(sub *Subscription) {
	key := topicKey{table: sub.Table, userID: sub.UserID}
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.topics[key], sub)
	if len(h.topics[key]) == 0 {
		delete(h.topics, key)
	}
}

// Publish delivers a change to every matching subscription. Slow
// subscribers whose buffer is full miss the change.
func (h *Hub) Publish(table, userID, event string, record interface{}) {
	change := Change{
		ID:     ulid.Make().String(),
		Table:  table,
		Event:  event,
		UserID: userID,
		Record: record,
		At:     time.Now().UTC(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.topics[topicKey{table: table, userID: userID}] {
		select {
		case sub.c <- change:
		default:
			log.Printf("realtime: dropping %s %s change %s for slow subscriber", table, event, change.ID)
		}
	}
}

// Subscribers returns the number of open subscriptions for a table and owner
func (h *Hub) Subscribers(table, userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.topics[topicKey{table: table, userID: userID}])
}
