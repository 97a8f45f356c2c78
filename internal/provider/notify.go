package provider

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Change tells a subscriber which cached view is now stale: a single row
// (ID set) or the collection at large (ID zero).
type Change struct {
	Locator Locator
	ID      int64
}

// Subscription is a cancellable handle on the change feed. Cancel is safe
// to call more than once.
type Subscription struct {
	C      chan Change
	id     string
	cancel func()
	once   sync.Once
}

func (s *Subscription) Cancel() { s.once.Do(s.cancel) }

// Notifier fans successful mutations out to subscribers and keeps a
// monotonic revision counter for pull-based staleness checks. Delivery is
// non-blocking: a subscriber that falls behind misses events but can
// always compare Revision.
type Notifier struct {
	mu   sync.Mutex
	subs map[string]*Subscription
	rev  atomic.Uint64
}

func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]*Subscription)}
}

func (n *Notifier) Subscribe() *Subscription {
	id := uuid.NewString()
	sub := &Subscription{C: make(chan Change, 16), id: id}
	sub.cancel = func() {
		n.mu.Lock()
		delete(n.subs, id)
		n.mu.Unlock()
		close(sub.C)
	}
	n.mu.Lock()
	n.subs[id] = sub
	n.mu.Unlock()
	return sub
}

// Revision increments on every published change.
func (n *Notifier) Revision() uint64 { return n.rev.Load() }

func (n *Notifier) publish(ch Change) {
	n.rev.Add(1)
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, sub := range n.subs {
		select {
		case sub.C <- ch:
		default:
		}
	}
}
