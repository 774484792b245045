package hub

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"relgraph/internal/domain"
	"relgraph/internal/logger"
)

// Notification says that the data of one field of a resource changed
type Notification struct {
	Identifier domain.Identifier `json:"identifier"`
	Bucket     string            `json:"bucket"`
	Key        string            `json:"key"`
}

// Handler receives notifications synchronously, in dispatch order
type Handler func(Notification)

type subscriber struct {
	id      uint64
	handler Handler
	events  chan<- Notification
}

// Hub fans notifications out to subscribers. Handlers run inline; channel
// subscribers that are not ready miss the notification.
type Hub struct {
	mu          sync.RWMutex
	subscribers []*subscriber
	nextID      uint64
	dropped     atomic.Int64
	log         *slog.Logger
}

// New creates a new Hub
func New(log *slog.Logger) *Hub {
	if log == nil {
		log = logger.Discard()
	}
	return &Hub{log: log.With(logger.Scope("hub"))}
}

// Subscribe registers fn and returns a func that removes it
func (h *Hub) Subscribe(fn Handler) func() {
	return h.add(&subscriber{handler: fn})
}

// SubscribeChan delivers notifications to ch without blocking
func (h *Hub) SubscribeChan(ch chan<- Notification) func() {
	return h.add(&subscriber{events: ch})
}

func (h *Hub) add(s *subscriber) func() {
	h.mu.Lock()
	h.nextID++
	s.id = h.nextID
	h.subscribers = append(h.subscribers, s)
	count := len(h.subscribers)
	h.mu.Unlock()
	h.log.Debug("subscriber added", "total", count)

	var once sync.Once
	return func() {
		once.Do(func() { h.remove(s.id) })
	}
}

func (h *Hub) remove(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, s := range h.subscribers {
		if s.id == id {
			h.subscribers = append(h.subscribers[:i], h.subscribers[i+1:]...)
			return
		}
	}
}

// Notify dispatches a notification to every subscriber
func (h *Hub) Notify(id domain.Identifier, bucket, key string) {
	n := Notification{Identifier: id, Bucket: bucket, Key: key}

	h.mu.RLock()
	subs := make([]*subscriber, len(h.subscribers))
	copy(subs, h.subscribers)
	h.mu.RUnlock()

	for _, s := range subs {
		if s.handler != nil {
			s.handler(n)
			continue
		}
		select {
		case s.events <- n:
		default:
			// Subscriber is slow, skip
			h.dropped.Add(1)
			h.log.Warn("subscriber is slow, dropping notification", "identifier", id.String(), "key", key)
		}
	}
}

// SubscriberCount returns the number of subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// Dropped returns how many notifications slow channel subscribers missed
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}
