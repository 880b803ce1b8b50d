// Package resize delivers container size changes to an overflow engine.
//
// A [Notifier] publishes sizes from wherever they are measured: a terminal,
// a client connection or a test. An [Observer] subscribes to one and feeds a
// [overflow.Manager] on its event loop. Reports arriving within one turn
// collapse into a single Resize carrying the latest size, so bursts cost one
// fitting pass and the final state is never missed.
//
//	src := resize.NewSource()
//	obs := resize.Observe(src, manager, loop)
//	defer obs.Close()
//
//	src.Set(overflow.Size{Width: 120, Height: 1})
package resize
