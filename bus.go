package eventbus

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/dshills/eventbus/internal/dispatch"
)

// Bus is the cross-type coordinator. It routes subscribe, publish and
// unsubscribe calls to per-event-type dispatchers, allocates handler
// identifiers, and integrates handlers subscribed during an in-flight
// delivery into that delivery.
//
// A Bus must not be copied after first use. The zero value is not usable;
// create one with New.
type Bus struct {
	mu          sync.Mutex
	dispatchers map[reflect.Type]*dispatch.Dispatcher
	handlerType map[HandlerID]reflect.Type

	nextID atomic.Uint64

	config busConfig

	// Stats
	eventsPublished  atomic.Uint64
	handlersExecuted atomic.Uint64
	handlerErrors    atomic.Uint64
	handlerPanics    atomic.Uint64
}

// New creates an event bus with the given options.
func New(opts ...Option) *Bus {
	var config busConfig
	for _, opt := range opts {
		opt(&config)
	}

	return &Bus{
		dispatchers: make(map[reflect.Type]*dispatch.Dispatcher),
		handlerType: make(map[HandlerID]reflect.Type),
		config:      config,
	}
}

// Subscribe registers a handler for events of type E and returns its
// identifier. Registration itself cannot fail.
//
// If ctx carries an in-flight delivery of E on this bus (i.e. Subscribe
// was called from inside a handler with the context that handler
// received), the new handler is additionally invoked on the current event
// before the outer delivery proceeds. The returned error reports a failure
// of that immediate invocation only; the handler stays registered either
// way.
func Subscribe[E any](ctx context.Context, b *Bus, priority Priority, fn HandlerFunc[E], opts ...SubscribeOption) (HandlerID, error) {
	return subscribe(ctx, b, priority, fn, false, opts)
}

// SubscribeOnce registers a one-shot handler for events of type E. The
// handler is invoked at most once, ever, regardless of how many publishes
// race for it; the winning delivery consumes the registration.
//
// A one-shot handler subscribed during an in-flight delivery of E is
// consumed by that delivery.
func SubscribeOnce[E any](ctx context.Context, b *Bus, priority Priority, fn HandlerFunc[E], opts ...SubscribeOption) (HandlerID, error) {
	return subscribe(ctx, b, priority, fn, true, opts)
}

func subscribe[E any](ctx context.Context, b *Bus, priority Priority, fn HandlerFunc[E], oneShot bool, opts []SubscribeOption) (HandlerID, error) {
	if fn == nil {
		panic("eventbus: nil handler")
	}

	var config subscribeConfig
	for _, opt := range opts {
		opt(&config)
	}

	id := HandlerID(b.nextID.Add(1))
	typ := reflect.TypeFor[E]()
	d := b.dispatcher(typ)

	cb := func(ctx context.Context, event any) error {
		ev, ok := event.(E)
		if !ok {
			// Cannot happen through Publish; skip silently.
			return nil
		}
		return fn(ctx, ev)
	}
	d.Add(uint64(id), int8(priority), cb, oneShot, dispatch.Filter(config.filter))

	b.mu.Lock()
	b.handlerType[id] = typ
	b.mu.Unlock()

	if l := b.config.logger; l != nil {
		l.Debug("handler subscribed", "id", id, "type", typ.String(), "priority", priority, "once", oneShot)
	}

	// A subscription issued from inside a handler joins the innermost
	// in-flight delivery of the same event type on this bus, so the new
	// handler observes the current event exactly once.
	if f := findFrame(ctx, b, typ); f != nil {
		n, err := f.disp.DeliverOne(ctx, uint64(id), f.event)
		b.recordDelivery(n, err)
		return id, err
	}
	return id, nil
}

// Publish delivers event to every active handler registered for type E, in
// priority order (high first, subscription order within a priority).
// Handlers run synchronously on the caller's goroutine.
//
// The first handler error or panic aborts the delivery: handlers not yet
// visited are skipped and the failure is returned, as a *HandlerError or
// *PanicError respectively. The bus remains fully usable afterwards.
//
// Publishing a type with no subscribers is a no-op.
func Publish[E any](ctx context.Context, b *Bus, event E) error {
	typ := reflect.TypeFor[E]()
	d := b.dispatcher(typ)

	b.eventsPublished.Add(1)

	ctx = withFrame(ctx, &frame{bus: b, typ: typ, disp: d, event: event})
	n, err := d.Deliver(ctx, event)
	b.recordDelivery(n, err)
	return err
}

// HandlerCount returns the number of active handlers for event type E.
func HandlerCount[E any](b *Bus) int {
	b.mu.Lock()
	d := b.dispatchers[reflect.TypeFor[E]()]
	b.mu.Unlock()

	if d == nil {
		return 0
	}
	return d.ActiveCount()
}

// Unsubscribe removes the handler with the given id. Unknown ids,
// including ids already unsubscribed and the reserved NoHandler, are a
// silent no-op. Safe to call from within a handler, including for the
// handler's own id: the running invocation completes normally and
// subsequent deliveries no longer see it. A handler not yet visited by an
// in-flight delivery is skipped by it.
func (b *Bus) Unsubscribe(id HandlerID) {
	b.mu.Lock()
	typ, ok := b.handlerType[id]
	if !ok {
		b.mu.Unlock()
		return
	}
	delete(b.handlerType, id)
	d := b.dispatchers[typ]
	b.mu.Unlock()

	if d != nil {
		d.Remove(uint64(id))
	}

	if l := b.config.logger; l != nil {
		l.Debug("handler unsubscribed", "id", id, "type", typ.String())
	}
}

// ActiveHandlers returns the number of active registrations across all
// event types.
func (b *Bus) ActiveHandlers() int {
	b.mu.Lock()
	ds := make([]*dispatch.Dispatcher, 0, len(b.dispatchers))
	for _, d := range b.dispatchers {
		ds = append(ds, d)
	}
	b.mu.Unlock()

	n := 0
	for _, d := range ds {
		n += d.ActiveCount()
	}
	return n
}

// Stats returns current bus counters.
func (b *Bus) Stats() Stats {
	return Stats{
		EventsPublished:  b.eventsPublished.Load(),
		HandlersExecuted: b.handlersExecuted.Load(),
		HandlerErrors:    b.handlerErrors.Load(),
		HandlerPanics:    b.handlerPanics.Load(),
		ActiveHandlers:   b.ActiveHandlers(),
	}
}

// dispatcher returns the dispatcher for typ, creating it if needed.
// Exactly one dispatcher exists per event type for the bus's lifetime.
func (b *Bus) dispatcher(typ reflect.Type) *dispatch.Dispatcher {
	b.mu.Lock()
	defer b.mu.Unlock()

	if d, ok := b.dispatchers[typ]; ok {
		return d
	}

	var opts []dispatch.Option
	if h := b.config.panicHandler; h != nil {
		opts = append(opts, dispatch.WithPanicHook(dispatch.PanicHook(h)))
	}
	d := dispatch.New(opts...)
	b.dispatchers[typ] = d

	if l := b.config.logger; l != nil {
		l.Debug("dispatcher created", "type", typ.String())
	}
	return d
}

// recordDelivery updates stats and logs after a delivery attempt.
func (b *Bus) recordDelivery(invoked int, err error) {
	if invoked > 0 {
		b.handlersExecuted.Add(uint64(invoked))
	}
	if err == nil {
		return
	}

	var pe *PanicError
	if errors.As(err, &pe) {
		b.handlerPanics.Add(1)
		if l := b.config.logger; l != nil {
			l.Error("handler panicked", "id", pe.HandlerID, "value", pe.Value)
		}
		return
	}

	b.handlerErrors.Add(1)
	if l := b.config.logger; l != nil {
		var he *HandlerError
		if errors.As(err, &he) {
			l.Error("handler failed", "id", he.HandlerID, "err", he.Err)
		} else {
			l.Error("delivery failed", "err", err)
		}
	}
}
