package eventbus

import (
	"context"
	"sync/atomic"
)

// Subscription is a scoped registration: it owns a handler id and
// unsubscribes it on Close. It replaces the RAII connection object of a
// destructor-based design; pair it with defer:
//
//	sub, err := eventbus.SubscribeScoped(ctx, bus, eventbus.PriorityNormal, handler)
//	if err != nil { ... }
//	defer sub.Close()
//
// A Subscription must not be copied. The zero value owns nothing and all
// methods on it are no-ops.
type Subscription struct {
	bus *Bus
	id  atomic.Uint64
}

// NewSubscription wraps an already-issued handler id. Passing NoHandler
// yields a subscription that owns nothing.
func NewSubscription(b *Bus, id HandlerID) *Subscription {
	s := &Subscription{bus: b}
	s.id.Store(uint64(id))
	return s
}

// SubscribeScoped registers a handler like Subscribe and returns it
// wrapped in a Subscription. On an in-flight invocation error the handler
// is still registered and owned by the returned Subscription.
func SubscribeScoped[E any](ctx context.Context, b *Bus, priority Priority, fn HandlerFunc[E], opts ...SubscribeOption) (*Subscription, error) {
	id, err := Subscribe(ctx, b, priority, fn, opts...)
	return NewSubscription(b, id), err
}

// ID returns the owned handler id, or NoHandler after Close or Release.
func (s *Subscription) ID() HandlerID {
	return HandlerID(s.id.Load())
}

// Close unsubscribes the owned handler. Idempotent: the first call
// releases ownership, later calls are no-ops.
func (s *Subscription) Close() {
	id := s.id.Swap(0)
	if id != 0 && s.bus != nil {
		s.bus.Unsubscribe(HandlerID(id))
	}
}

// Release gives up ownership without unsubscribing and returns the id.
// After Release, Close is a no-op and the caller is responsible for the
// handler's lifetime.
func (s *Subscription) Release() HandlerID {
	return HandlerID(s.id.Swap(0))
}
