// Package eventbus provides a synchronous, type-safe, re-entrant
// in-process event bus.
//
// Producers publish value events of any Go type; previously registered
// handlers receive them on the publishing goroutine in priority order.
// Each event type gets its own dispatcher, so distinct types never contend
// on a shared handler list.
//
// # Basic Usage
//
//	type KeyPress struct{ Code int }
//
//	bus := eventbus.New()
//
//	id, _ := eventbus.Subscribe(ctx, bus, eventbus.PriorityHigh,
//	    func(ctx context.Context, e KeyPress) error {
//	        fmt.Println("key:", e.Code)
//	        return nil
//	    })
//	defer bus.Unsubscribe(id)
//
//	err := eventbus.Publish(ctx, bus, KeyPress{Code: 32})
//
// # Ordering
//
// Within one Publish call, handlers run High, then Normal, then Low;
// handlers of equal priority run in subscription order. Across concurrent
// Publish calls no ordering is guaranteed.
//
// # Re-entrancy
//
// Handlers may publish further events, subscribe new handlers and
// unsubscribe any handler, including themselves, while a delivery is in
// progress. The rules inside one delivery:
//
//   - A handler unsubscribed mid-delivery is skipped if not yet visited.
//   - A handler subscribed mid-delivery (with the context the subscribing
//     handler received) observes the current event exactly once, before
//     the outer iteration continues.
//   - Nested Publish of the same event type uses a fresh snapshot and
//     cannot deadlock.
//
// The in-flight delivery a subscription joins is found through the
// context: Publish threads a dispatch frame through the context it hands
// to handlers. Subscribing with an unrelated context simply registers for
// future publishes.
//
// # One-Shot Handlers
//
// SubscribeOnce registers a handler that is invoked at most once across
// the process lifetime, no matter how many goroutines publish
// concurrently; the claim is a single compare-and-swap on the
// registration's active flag.
//
// # Failure
//
// A handler error or panic aborts the remaining delivery and is returned
// from Publish as a *HandlerError or *PanicError; the bus stays fully
// usable. One-shot handlers consumed before the failure stay consumed.
//
// # Scoped Registrations
//
// Subscription ties a handler id to a Close call for defer-based
// lifetimes, mirroring the registration scope of the surrounding code.
package eventbus
