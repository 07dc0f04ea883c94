/*
 * MIT License
 *
 * Copyright (c) 2026 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

//go:build linux

// Package reactor runs one non-blocking epoll loop per bus endpoint,
// multiplexing every connection's readability/writability callbacks and any
// number of interval timers (backed by timerfd) onto a single goroutine.
package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/logging"
	"github.com/nabbar/obus/metrics"
)

// Callbacks is the set of handlers one registered descriptor is polled
// against. Any may be nil; write readiness is polled only while it is
// armed, by Register when OnWritable is non-nil or later by SetWritable.
type Callbacks struct {
	OnReadable func()
	OnWritable func()
	OnError    func(err errs.Error)
}

type registration struct {
	fd        int
	cb        Callbacks
	wantWrite bool
}

// Reactor is one epoll instance plus the registration table it multiplexes.
type Reactor struct {
	epfd int
	log  logging.Logger
	m    *metrics.Collectors

	mu      sync.Mutex
	regs    map[int]*registration
	timers  map[int]func()
	closeCh chan struct{}
	closed  bool
}

// New creates the underlying epoll instance.
func New(log logging.Logger, m *metrics.Collectors) (*Reactor, errs.Error) {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, errs.Wrap(errs.Io, err, "epoll_create1")
	}
	return &Reactor{
		epfd:    fd,
		log:     log,
		m:       m,
		regs:    make(map[int]*registration),
		timers:  make(map[int]func()),
		closeCh: make(chan struct{}),
	}, nil
}

// Register arms fd for read (and, if cb.OnWritable != nil, write)
// readiness. Registering an fd already known to this reactor updates its
// callbacks and re-arms the interest set -- a caller never needs to
// Unregister before re-registering the same descriptor under a new
// Callbacks set.
func (r *Reactor) Register(fd int, cb Callbacks) errs.Error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg := &registration{fd: fd, cb: cb, wantWrite: cb.OnWritable != nil}
	_, existed := r.regs[fd]
	r.regs[fd] = reg

	ev := unix.EpollEvent{Fd: int32(fd), Events: r.interestMask(reg)}
	op := unix.EPOLL_CTL_ADD
	if existed {
		op = unix.EPOLL_CTL_MOD
	}
	if err := unix.EpollCtl(r.epfd, op, fd, &ev); err != nil {
		delete(r.regs, fd)
		return errs.Wrap(errs.Io, err, "epoll_ctl fd=%d", fd)
	}
	return nil
}

// SetWritable toggles whether fd is polled for writability, used by the
// write queue to arm EPOLLOUT only while data is actually pending.
func (r *Reactor) SetWritable(fd int, want bool) errs.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[fd]
	if !ok {
		return errs.New(errs.InvalidState, "fd %d not registered", fd)
	}
	reg.wantWrite = want
	ev := unix.EpollEvent{Fd: int32(fd), Events: r.interestMask(reg)}
	if err := unix.EpollCtl(r.epfd, unix.EPOLL_CTL_MOD, fd, &ev); err != nil {
		return errs.Wrap(errs.Io, err, "epoll_ctl mod fd=%d", fd)
	}
	return nil
}

func (r *Reactor) interestMask(reg *registration) uint32 {
	mask := uint32(unix.EPOLLIN)
	if reg.wantWrite {
		mask |= unix.EPOLLOUT
	}
	return mask
}

// Unregister drops fd from the interest set. It does not close fd.
func (r *Reactor) Unregister(fd int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.regs[fd]; !ok {
		return
	}
	_ = unix.EpollCtl(r.epfd, unix.EPOLL_CTL_DEL, fd, nil)
	delete(r.regs, fd)
}

// AddTimer arms a repeating timerfd that calls fn every interval, and
// returns its fd so Close/RemoveTimer can tear it down.
func (r *Reactor) AddTimer(interval time.Duration, fn func()) (int, errs.Error) {
	fd, err := unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
	if err != nil {
		return -1, errs.Wrap(errs.Io, err, "timerfd_create")
	}
	spec := &unix.ItimerSpec{
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
		Value:    unix.NsecToTimespec(interval.Nanoseconds()),
	}
	if err = unix.TimerfdSettime(fd, 0, spec, nil); err != nil {
		_ = unix.Close(fd)
		return -1, errs.Wrap(errs.Io, err, "timerfd_settime")
	}

	r.mu.Lock()
	r.timers[fd] = fn
	r.mu.Unlock()

	if err = r.Register(fd, Callbacks{OnReadable: func() { r.fireTimer(fd) }}); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	return fd, nil
}

func (r *Reactor) fireTimer(fd int) {
	var buf [8]byte
	_, _ = unix.Read(fd, buf[:])
	r.mu.Lock()
	fn := r.timers[fd]
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// RemoveTimer disarms and closes a timer previously created by AddTimer.
func (r *Reactor) RemoveTimer(fd int) {
	r.Unregister(fd)
	r.mu.Lock()
	delete(r.timers, fd)
	r.mu.Unlock()
	_ = unix.Close(fd)
}

// Run blocks, servicing epoll_wait until Close is called. Call it from its
// own goroutine; every registered callback runs on this same goroutine, so
// callbacks must not block.
func (r *Reactor) Run() {
	events := make([]unix.EpollEvent, 64)
	for {
		select {
		case <-r.closeCh:
			return
		default:
		}

		started := time.Now()
		n, err := unix.EpollWait(r.epfd, events, 250)
		if r.m != nil {
			r.m.ReactorPollLatency.Observe(time.Since(started).Seconds())
		}
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if r.log != nil {
				r.log.Warn("epoll_wait: " + err.Error())
			}
			continue
		}

		for i := 0; i < n; i++ {
			ev := events[i]
			r.mu.Lock()
			reg, ok := r.regs[int(ev.Fd)]
			r.mu.Unlock()
			if !ok {
				continue
			}
			if ev.Events&(unix.EPOLLHUP|unix.EPOLLERR) != 0 && reg.cb.OnError != nil {
				reg.cb.OnError(errs.New(errs.Io, "fd %d: hangup or error", reg.fd))
				continue
			}
			if ev.Events&unix.EPOLLIN != 0 && reg.cb.OnReadable != nil {
				reg.cb.OnReadable()
			}
			if ev.Events&unix.EPOLLOUT != 0 && reg.cb.OnWritable != nil {
				reg.cb.OnWritable()
			}
		}
	}
}

// Close stops Run and releases the epoll fd. Registered connection fds are
// the caller's responsibility to close.
func (r *Reactor) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.mu.Unlock()
	close(r.closeCh)
	_ = unix.Close(r.epfd)
}
