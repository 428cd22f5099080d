package eventloop

import (
	"time"

	"github.com/pkg/errors"
)

// FileHandler fires when fd becomes ready in one of the directions its
// mask covers. A handler may remove its own fd.
type FileHandler func(fd int, mask FileMask)

type fileEvent struct {
	mask     FileMask
	readable FileHandler
	writable FileHandler
}

// Hook runs around the OS wait call.
type Hook func()

// Loop is the single-threaded cooperative reactor of spec.md §4.F.
type Loop struct {
	poller Poller

	fileEvents map[int]*fileEvent
	timeEvents []*timeEvent
	nextID     int64

	preSleep  Hook
	postSleep Hook

	lastTimeMs int64
	stop       bool

	metrics *Metrics
}

// New returns a Loop using the build's default Poller (epoll on Linux,
// select elsewhere).
func New() (*Loop, error) {
	p, err := newPoller()
	if err != nil {
		return nil, errors.Wrap(err, "eventloop: new poller")
	}
	return &Loop{poller: p, fileEvents: make(map[int]*fileEvent)}, nil
}

// SetHooks installs the pre/post-sleep hooks spec.md §4.F's scheduling
// model runs around the OS wait call.
func (l *Loop) SetHooks(pre, post Hook) { l.preSleep, l.postSleep = pre, post }

// SetMetrics attaches a Metrics recorder; nil (the default) disables
// metrics entirely.
func (l *Loop) SetMetrics(m *Metrics) { l.metrics = m }

// AddFileEvent registers handlers for fd under mask, replacing any prior
// registration for the same fd.
func (l *Loop) AddFileEvent(fd int, mask FileMask, readable, writable FileHandler) error {
	l.fileEvents[fd] = &fileEvent{mask: mask, readable: readable, writable: writable}
	if err := l.poller.Add(fd, mask); err != nil {
		return l.poller.Modify(fd, mask)
	}
	return nil
}

// RemoveFileEvent drops fd entirely.
func (l *Loop) RemoveFileEvent(fd int) {
	delete(l.fileEvents, fd)
	_ = l.poller.Remove(fd)
}

// AddTimeEvent installs a timer firing delayMs from now, returning its id.
func (l *Loop) AddTimeEvent(nowMs, delayMs int64, handler TimerHandler, finalizer TimerFinalizer) int64 {
	l.nextID++
	id := l.nextID
	l.timeEvents = append(l.timeEvents, &timeEvent{id: id, whenMs: nowMs + delayMs, handler: handler, finalizer: finalizer})
	return id
}

// RemoveTimeEvent logically deletes a timer by id; a sweep reclaims it.
func (l *Loop) RemoveTimeEvent(id int64) {
	for _, te := range l.timeEvents {
		if te.id == id {
			te.deleted = true
			return
		}
	}
}

// Stop sets the loop's stop flag. Nothing in this package reads the flag:
// ProcessCycle behaves the same whether or not Stop was called.
func (l *Loop) Stop() { l.stop = true }

// nearestTimer returns the earliest non-deleted timer's due time, and
// whether any timer exists at all. Finding it is O(N) — spec.md §4.F.
func (l *Loop) nearestTimer() (whenMs int64, ok bool) {
	for _, te := range l.timeEvents {
		if te.deleted {
			continue
		}
		if !ok || te.whenMs < whenMs {
			whenMs, ok = te.whenMs, true
		}
	}
	return whenMs, ok
}

// recoverClockSkew implements spec.md §4.F/§4.E: if wall time has moved
// backward relative to the last recorded tick, zero every timer's whenMs
// so everything fires on the next cycle.
func (l *Loop) recoverClockSkew(nowMs int64) {
	if l.lastTimeMs != 0 && nowMs < l.lastTimeMs {
		for _, te := range l.timeEvents {
			te.whenMs = 0
		}
	}
	l.lastTimeMs = nowMs
}

// ProcessCycle runs one full iteration: pre-sleep hook, OS wait, post-sleep
// hook, fired file events, due time events. nowMs is the caller's wall
// clock, threaded in rather than read internally so tests can control it
// and so clock-skew recovery is deterministic.
func (l *Loop) ProcessCycle(nowMs int64, dontWait bool) error {
	start := time.Now()
	l.recoverClockSkew(nowMs)

	if l.preSleep != nil {
		l.preSleep()
	}

	timeout := l.sleepDuration(nowMs, dontWait)
	ready, err := l.poller.Wait(timeout)
	if err != nil {
		return errors.Wrap(err, "eventloop: poll wait")
	}

	if l.postSleep != nil {
		l.postSleep()
	}

	l.dispatchFileEvents(ready)
	fired := l.dispatchTimeEvents(nowMs)
	l.sweepDeletedTimers()

	if l.metrics != nil {
		l.metrics.observeCycle(time.Since(start), len(ready), fired)
	}
	return nil
}

// sleepDuration implements spec.md §4.F: block indefinitely absent timers
// (unless dontWait), otherwise until the earliest timer is due; dontWait
// overrides everything to a zero-length wait.
func (l *Loop) sleepDuration(nowMs int64, dontWait bool) time.Duration {
	if dontWait {
		return 0
	}
	whenMs, ok := l.nearestTimer()
	if !ok {
		return -1
	}
	delay := whenMs - nowMs
	if delay < 0 {
		delay = 0
	}
	return time.Duration(delay) * time.Millisecond
}

// dispatchFileEvents invokes at most one handler per direction per fd this
// tick, honoring the barrier policy bit — spec.md §4.F.
func (l *Loop) dispatchFileEvents(ready []Ready) {
	for _, r := range ready {
		fe, ok := l.fileEvents[r.Fd]
		if !ok {
			continue
		}
		mask := r.Mask & fe.mask
		writeFirst := fe.mask&Barrier != 0
		if writeFirst {
			l.fireDirection(r.Fd, fe, mask, Writable)
			l.fireDirection(r.Fd, fe, mask, Readable)
		} else {
			l.fireDirection(r.Fd, fe, mask, Readable)
			l.fireDirection(r.Fd, fe, mask, Writable)
		}
	}
}

func (l *Loop) fireDirection(fd int, fe *fileEvent, mask, dir FileMask) {
	if mask&dir == 0 {
		return
	}
	// A handler may have removed fd already (e.g. the readable handler
	// closed the connection); re-check before firing the other direction.
	if _, stillRegistered := l.fileEvents[fd]; !stillRegistered {
		return
	}
	if dir == Readable && fe.readable != nil {
		fe.readable(fd, dir)
	} else if dir == Writable && fe.writable != nil {
		fe.writable(fd, dir)
	}
}

func (l *Loop) dispatchTimeEvents(nowMs int64) int {
	fired := 0
	for _, te := range l.timeEvents {
		if te.deleted || te.whenMs > nowMs {
			continue
		}
		fired++
		result := te.handler(te.id, nowMs)
		if result.Reschedule {
			te.whenMs = nowMs + result.DelayMs
		} else {
			te.deleted = true
		}
	}
	return fired
}

func (l *Loop) sweepDeletedTimers() {
	kept := l.timeEvents[:0]
	for _, te := range l.timeEvents {
		if te.deleted {
			if te.finalizer != nil {
				te.finalizer(te.id)
			}
			continue
		}
		kept = append(kept, te)
	}
	l.timeEvents = kept
}

// Close releases the underlying Poller.
func (l *Loop) Close() error { return l.poller.Close() }
