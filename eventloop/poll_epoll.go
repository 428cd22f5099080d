//go:build linux

package eventloop

import (
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// epollPoller is the Linux Poller, backed by golang.org/x/sys/unix's
// epoll wrappers — the corpus's transitive golang.org/x/sys dependency
// gives this a grounded home.
type epollPoller struct {
	epfd   int
	events []unix.EpollEvent
}

func newPoller() (Poller, error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errors.Wrap(err, "eventloop: epoll_create1")
	}
	return &epollPoller{epfd: fd, events: make([]unix.EpollEvent, 256)}, nil
}

func toEpollEvents(mask FileMask) uint32 {
	var e uint32
	if mask&Readable != 0 {
		e |= unix.EPOLLIN
	}
	if mask&Writable != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func (p *epollPoller) Add(fd int, mask FileMask) error {
	ev := unix.EpollEvent{Events: toEpollEvents(mask), Fd: int32(fd)}
	return errors.Wrap(unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev), "eventloop: epoll_ctl add")
}

func (p *epollPoller) Modify(fd int, mask FileMask) error {
	ev := unix.EpollEvent{Events: toEpollEvents(mask), Fd: int32(fd)}
	return errors.Wrap(unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev), "eventloop: epoll_ctl mod")
}

func (p *epollPoller) Remove(fd int) error {
	return errors.Wrap(unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil), "eventloop: epoll_ctl del")
}

func (p *epollPoller) Wait(timeout time.Duration) ([]Ready, error) {
	ms := -1
	if timeout >= 0 {
		ms = int(timeout / time.Millisecond)
	}
	n, err := unix.EpollWait(p.epfd, p.events, ms)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, errors.Wrap(err, "eventloop: epoll_wait")
	}
	out := make([]Ready, 0, n)
	for i := 0; i < n; i++ {
		ev := p.events[i]
		var mask FileMask
		if ev.Events&(unix.EPOLLIN|unix.EPOLLHUP|unix.EPOLLERR) != 0 {
			mask |= Readable
		}
		if ev.Events&unix.EPOLLOUT != 0 {
			mask |= Writable
		}
		out = append(out, Ready{Fd: int(ev.Fd), Mask: mask})
	}
	return out, nil
}

func (p *epollPoller) Close() error { return unix.Close(p.epfd) }
