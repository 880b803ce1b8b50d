package turn

// Debouncer collapses triggers within one turn into a single call of fn.
//
// The pending flag is cleared before fn runs, so a trigger issued by fn
// itself schedules another call rather than being lost. Not safe for
// concurrent use.
type Debouncer struct {
	sched   Scheduler
	fn      func()
	pending bool
}

// NewDebouncer creates a debouncer that defers fn through sched.
func NewDebouncer(sched Scheduler, fn func()) *Debouncer {
	return &Debouncer{sched: sched, fn: fn}
}

// Trigger schedules fn unless a call is already pending.
func (d *Debouncer) Trigger() {
	if d.pending {
		return
	}
	d.pending = true
	d.sched.Defer(func() {
		d.pending = false
		d.fn()
	})
}

// Pending reports whether a call is scheduled but has not run yet.
func (d *Debouncer) Pending() bool {
	return d.pending
}
