package grpc

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-migrant-health/internal/models"
)

const subscriberBuffer = 100 // one sync worth of alerts

// Filter narrows a subscription to one district and a minimum severity.
// Zero values match every alert.
type Filter struct {
	District    string
	MinSeverity models.Severity
}

func (f Filter) Match(a *models.HotspotAlert) bool {
	if f.District != "" && f.District != models.AllDistricts && a.District != f.District {
		return false
	}
	if f.MinSeverity != "" && a.Severity.Rank() < f.MinSeverity.Rank() {
		return false
	}
	return true
}

type subscriber struct {
	filter  Filter
	ch      chan *models.HotspotAlert
	dropped atomic.Int64
}

// Broadcaster fans hotspot changes out to live subscribers. Each
// subscriber only receives alerts matching its filter; a subscriber
// whose buffer is full misses the alert.
type Broadcaster struct {
	mu          sync.RWMutex
	subscribers map[uint64]*subscriber
	closed      bool
	nextID      atomic.Uint64
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subscribers: make(map[uint64]*subscriber),
	}
}

// Subscribe registers a filtered subscription. After Close the returned
// channel is already closed.
func (b *Broadcaster) Subscribe(f Filter) (uint64, <-chan *models.HotspotAlert) {
	id := b.nextID.Add(1)
	sub := &subscriber{filter: f, ch: make(chan *models.HotspotAlert, subscriberBuffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(sub.ch)
		return id, sub.ch
	}
	b.subscribers[id] = sub
	return id, sub.ch
}

func (b *Broadcaster) Unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if sub, ok := b.subscribers[id]; ok {
		close(sub.ch)
		delete(b.subscribers, id)
		if n := sub.dropped.Load(); n > 0 {
			slog.Warn("hotspot subscriber missed alerts", "subscriber_id", id, "dropped", n)
		}
	}
}

// Broadcast delivers a to every matching subscriber and returns how many
// received it.
func (b *Broadcaster) Broadcast(a *models.HotspotAlert) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	delivered := 0
	for _, sub := range b.subscribers {
		if !sub.filter.Match(a) {
			continue
		}
		select {
		case sub.ch <- a:
			delivered++
		default:
			sub.dropped.Add(1)
		}
	}
	return delivered
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped returns how many alerts subscriber id missed on a full buffer.
func (b *Broadcaster) Dropped(id uint64) int64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if sub, ok := b.subscribers[id]; ok {
		return sub.dropped.Load()
	}
	return 0
}

// Close closes all subscriber channels so streams exit.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for id, sub := range b.subscribers {
		close(sub.ch)
		delete(b.subscribers, id)
	}
}
