package dispatch

import (
	"context"
	"runtime/debug"
	"sync/atomic"
)

// Callback is a type-erased handler. The typed assertion lives in the
// closure built by the bus; the dispatcher never inspects the event.
type Callback func(ctx context.Context, event any) error

// Filter is an optional per-slot delivery predicate. A slot whose filter
// rejects the event is skipped without being claimed or invoked.
type Filter func(event any) bool

// PanicHook observes recovered handler panics before they are returned as
// a *PanicError. It must not panic; if it does, the secondary panic is
// swallowed.
type PanicHook func(event any, recovered any, stack []byte)

// slot is a single registration. All fields except active are immutable
// after creation. Slots are shared between the dispatcher's list and
// in-flight delivery snapshots; the active flag is the only coordination
// point between them.
type slot struct {
	id       uint64
	priority int8
	fn       Callback
	filter   Filter
	oneShot  bool
	active   atomic.Bool
}

func newSlot(id uint64, priority int8, fn Callback, oneShot bool, filter Filter) *slot {
	s := &slot{
		id:       id,
		priority: priority,
		fn:       fn,
		filter:   filter,
		oneShot:  oneShot,
	}
	s.active.Store(true)
	return s
}

// invoke runs the callback with panic recovery. A returned error is
// wrapped in *HandlerError; a panic becomes a *PanicError after the hook
// has seen it.
func (s *slot) invoke(ctx context.Context, event any, hook PanicHook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			if hook != nil {
				func() {
					defer func() { _ = recover() }()
					hook(event, r, stack)
				}()
			}
			err = &PanicError{HandlerID: s.id, Value: r, Stack: stack}
		}
	}()

	if herr := s.fn(ctx, event); herr != nil {
		return &HandlerError{HandlerID: s.id, Err: herr}
	}
	return nil
}
