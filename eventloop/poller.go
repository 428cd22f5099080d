// Package eventloop implements the single-threaded, cooperative reactor of
// spec.md §4.F: a readiness-multiplexed file-event table, an unsorted
// time-event list, pre/post-sleep hooks and clock-skew recovery. The OS
// readiness primitive is selected at build time (poll_epoll.go on Linux,
// poll_select.go elsewhere) behind the Poller interface.
package eventloop

import "time"

// FileMask is a bitset over the directions a file descriptor can be
// interested in.
type FileMask int

const (
	Readable FileMask = 1 << iota
	Writable
	// Barrier is a policy bit, not a readiness direction: "if both
	// readable and writable fired this tick, run writable before
	// readable" — spec.md §4.F, used to flush pending output before
	// accepting more input.
	Barrier
)

// Ready reports one fd's fired directions for the current tick.
type Ready struct {
	Fd   int
	Mask FileMask
}

// Poller is the OS readiness primitive the Loop drives. Add/Modify/Remove
// register interest; Wait blocks until something is ready or timeout
// elapses (a negative timeout blocks indefinitely, zero returns
// immediately — the "don't wait" case of spec.md §4.F's sleep-duration
// computation).
type Poller interface {
	Add(fd int, mask FileMask) error
	Modify(fd int, mask FileMask) error
	Remove(fd int) error
	Wait(timeout time.Duration) ([]Ready, error)
	Close() error
}
