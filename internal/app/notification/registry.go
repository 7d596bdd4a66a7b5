// Package notification provides the observer registries used to broadcast
// controller and scheduler events.
package notification

import (
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	zlog "github.com/rs/zerolog/log"
)

// ErrClosed is returned when closing a registry twice.
var ErrClosed = errors.New("registry already closed")

// Handler receives published events.
type Handler[T any] func(event T)

type subscription[T any] struct {
	id      string
	handler Handler[T]
}

// Registry delivers events to subscribers synchronously, in subscription
// order. Handlers run outside the registry lock, so they may subscribe or
// unsubscribe; such changes apply from the next Publish.
type Registry[T any] struct {
	name string

	mu            sync.RWMutex
	subscriptions []subscription[T]
	closed        bool

	sequenceNo   uint64
	sequenceNoMu sync.Mutex
}

// NewRegistry creates a registry. name is used in log messages.
func NewRegistry[T any](name string) *Registry[T] {
	return &Registry[T]{name: name}
}

// Subscribe adds a handler and returns its subscription ID.
// Subscribing to a closed registry returns an empty ID and registers nothing.
func (r *Registry[T]) Subscribe(handler Handler[T]) string {
	if handler == nil {
		panic("notification handler cannot be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ""
	}

	id := uuid.New().String()
	r.subscriptions = append(r.subscriptions, subscription[T]{id: id, handler: handler})
	return id
}

// Unsubscribe removes a subscription. It reports whether the ID was registered.
func (r *Registry[T]) Unsubscribe(subscriptionID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.subscriptions {
		if sub.id == subscriptionID {
			r.subscriptions = append(r.subscriptions[:i:i], r.subscriptions[i+1:]...)
			return true
		}
	}
	return false
}

// Publish delivers event to every subscriber and returns its sequence number.
// A panicking handler is logged and does not stop delivery to the others.
func (r *Registry[T]) Publish(event T) uint64 {
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return 0
	}
	// Copy subscriptions to avoid holding lock during delivery
	subs := make([]subscription[T], len(r.subscriptions))
	copy(subs, r.subscriptions)
	r.mu.RUnlock()

	seq := r.NextSequenceNo()
	for _, sub := range subs {
		r.deliver(sub, event)
	}
	return seq
}

func (r *Registry[T]) deliver(sub subscription[T], event T) {
	defer func() {
		if rec := recover(); rec != nil {
			zlog.Error().Msgf("notification: %s handler panicked: subscription=%s panic=%v", r.name, sub.id, rec)
		}
	}()
	sub.handler(event)
}

// NextSequenceNo returns the next sequence number and increments the counter.
func (r *Registry[T]) NextSequenceNo() uint64 {
	r.sequenceNoMu.Lock()
	defer r.sequenceNoMu.Unlock()
	r.sequenceNo++
	return r.sequenceNo
}

// SubscriberCount returns the number of active subscribers.
func (r *Registry[T]) SubscriberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subscriptions)
}

// Close removes all subscriptions. Later publishes are dropped.
func (r *Registry[T]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}
	r.closed = true
	r.subscriptions = nil
	return nil
}
