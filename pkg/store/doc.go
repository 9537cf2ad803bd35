// Package store is the authoritative in-memory collection of active toasts.
//
// The store owns display order, the capacity bound and every auto-dismiss
// timer. Renderers and transports only read snapshots and call the
// toast.Notifier methods; they never mutate the collection directly.
//
// # Ordering
//
// Toasts are kept in insertion order, newest last. When a Show pushes the
// collection past MaxToasts, the oldest toast is evicted (bounded FIFO).
//
// # Timers
//
// Each auto-dismissing toast has a timer record {remaining, startedAt,
// timer, generation}. Pause subtracts the elapsed time from remaining and
// stops the timer; Resume re-arms it for what is left. A timer callback only
// dismisses when its generation still matches, so a timer racing a manual
// Dismiss, a replacement Show or ClearAll is a no-op.
//
// # Concurrency
//
// All methods are safe for concurrent use. Mutations are serialised by one
// mutex; subscribers are called after the mutation, outside the lock.
package store
