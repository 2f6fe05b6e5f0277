// Package dispatch implements the per-event-type delivery engine for the
// event bus.
//
// Each Dispatcher owns the ordered slot list for exactly one event type and
// executes synchronous delivery in the caller's goroutine. The engine is
// built around three mechanisms:
//
//   - Snapshot iteration: Deliver copies the slot slice under a read lock
//     and iterates the copy, so handlers may subscribe and unsubscribe
//     freely while a delivery is in flight. Removals are still honored
//     because the per-slot active flag is re-read just before invocation.
//
//   - One-shot claims: a one-shot slot is claimed with a single
//     compare-and-swap on its active flag. Under any number of concurrent
//     Deliver calls exactly one caller wins the claim and invokes the
//     handler; everyone else observes an inactive slot and skips it.
//
//   - Logical removal: Remove flips the active flag and excises inactive
//     slots under the write lock. In-flight snapshots keep their own slot
//     references, so a concurrently removed handler is never freed out from
//     under an iterator.
//
// # Panic Recovery
//
// Handler panics are recovered and surfaced as *PanicError with the
// captured stack, after any pending one-shot cleanup has run. A panic never
// leaves the slot list in an inconsistent state.
//
// # Locking
//
// The slot list is guarded by a read-write mutex held only for snapshots
// and structural edits. Handlers always execute with no lock held, which is
// what makes nested delivery and subscribe-during-dispatch safe on the same
// goroutine.
package dispatch
