package bus

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Collection names announced on the bus.
const (
	Trucks        = "trucks"
	Drivers       = "drivers"
	Trips         = "trips"
	Destinations  = "destinations"
	Maintenances  = "scheduled-maintenance"
	Notifications = "notifications"
)

// Event announces that a collection changed so dependent readers re-fetch.
type Event struct {
	Collection string `json:"collection"`
	Action     string `json:"action"` // created, updated, deleted, reconciled
	ID         string `json:"id,omitempty"`
}

type subscriber struct {
	ch          chan Event
	collections map[string]bool // empty means all
}

// Bus is an in-process publish-subscribe channel keyed by collection name.
// Delivery is best-effort: a subscriber that cannot keep up loses events
// rather than blocking the publisher.
type Bus struct {
	mu   sync.RWMutex
	subs map[int]*subscriber
	next int
}

func New() *Bus {
	return &Bus{subs: make(map[int]*subscriber)}
}

// Subscribe returns a channel of events for the given collections (all
// collections when none are named) and a cancel function that closes it.
func (b *Bus) Subscribe(collections ...string) (<-chan Event, func()) {
	sub := &subscriber{
		ch:          make(chan Event, 16),
		collections: make(map[string]bool, len(collections)),
	}
	for _, c := range collections {
		sub.collections[c] = true
	}

	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = sub
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		if s, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(s.ch)
		}
		b.mu.Unlock()
	}
	return sub.ch, cancel
}

// Publish fans the event out to matching subscribers without blocking.
func (b *Bus) Publish(ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, sub := range b.subs {
		if len(sub.collections) > 0 && !sub.collections[ev.Collection] {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
			logrus.WithField("collection", ev.Collection).
				Debug("bus subscriber full, dropping event")
		}
	}
}
