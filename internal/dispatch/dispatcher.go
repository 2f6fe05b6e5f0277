package dispatch

import (
	"context"
	"sort"
	"sync"
)

// Dispatcher owns the ordered slot list for one event type and executes
// delivery. It is safe for concurrent use and re-entrant: handlers may add
// and remove slots, including their own, while a delivery is running.
type Dispatcher struct {
	mu    sync.RWMutex
	slots []*slot
	hook  PanicHook
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPanicHook sets the hook invoked when a handler panics.
func WithPanicHook(h PanicHook) Option {
	return func(d *Dispatcher) {
		d.hook = h
	}
}

// New creates an empty dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Add registers a new slot. The slot list is re-sorted with a stable sort
// so higher priorities deliver first and equal priorities keep their
// subscription order. Safe to call concurrently with delivery and from
// within a handler.
func (d *Dispatcher) Add(id uint64, priority int8, fn Callback, oneShot bool, filter Filter) {
	s := newSlot(id, priority, fn, oneShot, filter)

	d.mu.Lock()
	defer d.mu.Unlock()

	d.slots = append(d.slots, s)
	sort.SliceStable(d.slots, func(i, j int) bool {
		return d.slots[i].priority > d.slots[j].priority
	})
}

// Remove logically removes the slot with the given id. It returns false if
// the id is unknown or the slot is already inactive. Inactive slots are
// excised from the list; in-flight snapshots keep their own references.
func (d *Dispatcher) Remove(id uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, s := range d.slots {
		if s.id != id {
			continue
		}
		if !s.active.CompareAndSwap(true, false) {
			return false
		}
		d.compactLocked()
		return true
	}
	return false
}

// Deliver invokes every active slot for event in priority order. It
// snapshots the slot list under the read lock, then iterates the snapshot
// with no lock held. One-shot slots are claimed with a compare-and-swap so
// they fire at most once across any number of concurrent deliveries.
//
// The first handler error or panic aborts the iteration; slots not yet
// visited are not invoked. Claimed one-shot slots are excised before the
// error is returned. The returned int is the number of handlers invoked.
func (d *Dispatcher) Deliver(ctx context.Context, event any) (int, error) {
	d.mu.RLock()
	snapshot := make([]*slot, len(d.slots))
	copy(snapshot, d.slots)
	d.mu.RUnlock()

	invoked := 0
	needCleanup := false
	defer func() {
		if needCleanup {
			d.compact()
		}
	}()

	for _, s := range snapshot {
		if s.filter != nil && !s.filter(event) {
			continue
		}

		if s.oneShot {
			// The CAS is the sole arbiter: only the winner invokes.
			if !s.active.CompareAndSwap(true, false) {
				continue
			}
			needCleanup = true
		} else if !s.active.Load() {
			continue
		}

		invoked++
		if err := s.invoke(ctx, event, d.hook); err != nil {
			return invoked, err
		}
	}
	return invoked, nil
}

// DeliverOne invokes exactly the slot identified by id on event, applying
// the same filter and one-shot claim protocol as Deliver. The bus uses it
// to run a handler subscribed during an in-flight delivery on the current
// event. Unknown or inactive ids are a no-op.
func (d *Dispatcher) DeliverOne(ctx context.Context, id uint64, event any) (int, error) {
	var target *slot

	d.mu.RLock()
	for _, s := range d.slots {
		if s.id == id {
			target = s
			break
		}
	}
	d.mu.RUnlock()

	if target == nil {
		return 0, nil
	}
	if target.filter != nil && !target.filter(event) {
		return 0, nil
	}

	needCleanup := false
	if target.oneShot {
		if !target.active.CompareAndSwap(true, false) {
			return 0, nil
		}
		needCleanup = true
	} else if !target.active.Load() {
		return 0, nil
	}

	defer func() {
		if needCleanup {
			d.compact()
		}
	}()

	return 1, target.invoke(ctx, event, d.hook)
}

// ActiveCount returns the number of active slots.
func (d *Dispatcher) ActiveCount() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	n := 0
	for _, s := range d.slots {
		if s.active.Load() {
			n++
		}
	}
	return n
}

// compact excises inactive slots under the write lock.
func (d *Dispatcher) compact() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.compactLocked()
}

func (d *Dispatcher) compactLocked() {
	kept := d.slots[:0]
	for _, s := range d.slots {
		if s.active.Load() {
			kept = append(kept, s)
		}
	}
	// Drop trailing references so removed slots can be collected once the
	// last snapshot lets go of them.
	for i := len(kept); i < len(d.slots); i++ {
		d.slots[i] = nil
	}
	d.slots = kept
}
