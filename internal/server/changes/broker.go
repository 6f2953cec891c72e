// Package changes fans schedule change events out to Watch streams.
//
// A Broker holds the live subscriptions of one server instance. Events reach
// it either from services through a BrokerNotifier or from the database
// through a Listener.
package changes

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
)

// DefaultBuffer is the per-subscription channel capacity.
const DefaultBuffer = 16

// Broker delivers published events to every subscription whose scope
// includes them. A subscriber whose buffer is full misses the event.
type Broker struct {
	mu     sync.Mutex
	subs   map[*subscription]struct{}
	buffer int
	logger logging.Logger
	closed bool
}

// NewBroker creates a Broker. A non-positive buffer selects DefaultBuffer.
func NewBroker(buffer int, logger logging.Logger) *Broker {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Broker{
		subs:   make(map[*subscription]struct{}),
		buffer: buffer,
		logger: logger.With("module", "changes"),
	}
}

// Subscribe registers a subscription for scope. The subscription is closed
// automatically when ctx ends.
func (b *Broker) Subscribe(ctx context.Context, scope schedule.Scope) schedule.Subscription {
	s := &subscription{
		broker: b,
		scope:  scope,
		ch:     make(chan schedule.ChangeEvent, b.buffer),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	if b.closed {
		s.closeLocked()
		b.mu.Unlock()
		return s
	}
	b.subs[s] = struct{}{}
	b.mu.Unlock()

	go func() {
		select {
		case <-ctx.Done():
			_ = s.Close()
		case <-s.done:
		}
	}()

	return s
}

// Publish delivers ev to matching subscriptions without blocking.
func (b *Broker) Publish(ctx context.Context, ev schedule.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for s := range b.subs {
		if !s.scope.Includes(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			b.logger.Warn(ctx, "subscriber is lagging, event dropped", "user", s.scope.UserID, "table", ev.Table)
		}
	}
}

// Len reports the number of live subscriptions.
func (b *Broker) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close ends every subscription. Later Subscribe calls return already
// closed subscriptions.
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		s.closeLocked()
	}
}

func (b *Broker) remove(s *subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s.closeLocked()
}

type subscription struct {
	broker *Broker
	scope  schedule.Scope
	ch     chan schedule.ChangeEvent
	done   chan struct{}
	once   sync.Once
}

func (s *subscription) Events() <-chan schedule.ChangeEvent { return s.ch }

func (s *subscription) Close() error {
	s.broker.remove(s)
	return nil
}

// closeLocked must be called with broker.mu held.
func (s *subscription) closeLocked() {
	s.once.Do(func() {
		delete(s.broker.subs, s)
		close(s.ch)
		close(s.done)
	})
}
