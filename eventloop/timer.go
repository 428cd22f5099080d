package eventloop

// TimerResult is returned by a time-event handler.
type TimerResult struct {
	// Reschedule, when true, reinstalls the timer delayMs from now;
	// otherwise the timer is marked deleted (the "one-shot" sentinel).
	Reschedule bool
	DelayMs    int64
}

// Oneshot returns a TimerResult that deletes the timer after this firing.
func Oneshot() TimerResult { return TimerResult{Reschedule: false} }

// After returns a TimerResult that reschedules delayMs from now.
func After(delayMs int64) TimerResult { return TimerResult{Reschedule: true, DelayMs: delayMs} }

// TimerHandler fires when a time event is due.
type TimerHandler func(id int64, now int64) TimerResult

// TimerFinalizer runs once, when a deleted timer is physically removed by
// the sweep. Loop.Close does not run the finalizers of timers still
// installed.
type TimerFinalizer func(id int64)

// timeEvent is a node in the loop's unsorted time-event list. Deletion is
// logical (deleted=true); physical removal happens at the next sweep —
// spec.md §4.F "Deletion is logical (mark id = sentinel)".
type timeEvent struct {
	id        int64
	whenMs    int64
	handler   TimerHandler
	finalizer TimerFinalizer
	deleted   bool
}
