//go:build !linux

package eventloop

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// selectPoller is the portable fallback Poller for build tags other than
// linux (darwin, the BSDs) using unix.Select, per spec.md §4.F's "selected
// at build time" language.
type selectPoller struct {
	interest map[int]FileMask
}

func newPoller() (Poller, error) {
	return &selectPoller{interest: make(map[int]FileMask)}, nil
}

func (p *selectPoller) Add(fd int, mask FileMask) error {
	p.interest[fd] = mask
	return nil
}

func (p *selectPoller) Modify(fd int, mask FileMask) error {
	p.interest[fd] = mask
	return nil
}

func (p *selectPoller) Remove(fd int) error {
	delete(p.interest, fd)
	return nil
}

func (p *selectPoller) Wait(timeout time.Duration) ([]Ready, error) {
	var rfds, wfds unix.FdSet
	maxFd := 0
	for fd, mask := range p.interest {
		if mask&Readable != 0 {
			fdSet(&rfds, fd)
		}
		if mask&Writable != 0 {
			fdSet(&wfds, fd)
		}
		if fd > maxFd {
			maxFd = fd
		}
	}
	var tv *unix.Timeval
	if timeout >= 0 {
		t := unix.NsecToTimeval(timeout.Nanoseconds())
		tv = &t
	}
	n, err := unix.Select(maxFd+1, &rfds, &wfds, nil, tv)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errors.Wrap(err, "eventloop: select")
	}
	out := make([]Ready, 0, n)
	for fd, mask := range p.interest {
		var ready FileMask
		if mask&Readable != 0 && fdIsSet(&rfds, fd) {
			ready |= Readable
		}
		if mask&Writable != 0 && fdIsSet(&wfds, fd) {
			ready |= Writable
		}
		if ready != 0 {
			out = append(out, Ready{Fd: fd, Mask: ready})
		}
	}
	return out, nil
}

func (p *selectPoller) Close() error { return nil }

func fdSet(set *unix.FdSet, fd int) {
	set.Bits[fd/64] |= 1 << (uint(fd) % 64)
}

func fdIsSet(set *unix.FdSet, fd int) bool {
	return set.Bits[fd/64]&(1<<(uint(fd)%64)) != 0
}
