// Package turn provides cooperative scheduling turns for single-threaded
// components.
//
// A turn is one unit of work followed by every callback that work deferred.
// Components such as the overflow engine are not safe for concurrent use
// and coalesce bursts of triggers into one recomputation per turn; this
// package supplies the primitives they need:
//
//   - [Scheduler]: anything that can run a callback later in the same turn.
//   - [Queue]: a FIFO of deferred callbacks, drained explicitly by its owner
//     (a bubbletea Update, an HTTP request, a test).
//   - [Loop]: a single goroutine that runs posted tasks one at a time and
//     drains its deferred queue after each task.
//   - [Debouncer]: collapses any number of triggers within one turn into a
//     single call.
//
// Example:
//
//	loop := turn.NewLoop(16)
//	go loop.Run(ctx)
//
//	d := turn.NewDebouncer(loop, recompute)
//	_ = loop.Post(func() {
//	    d.Trigger()
//	    d.Trigger() // coalesced
//	})
package turn
