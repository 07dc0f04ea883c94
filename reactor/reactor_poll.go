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

//go:build !linux

// Package reactor runs one non-blocking poll(2) loop per bus endpoint on
// platforms without epoll, multiplexing connection callbacks and interval
// timers (driven by a time.Ticker instead of timerfd, since non-Linux
// targets have no timerfd equivalent) onto a single goroutine. The public
// surface matches the epoll-backed implementation exactly so callers never
// branch on platform.
package reactor

import (
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/logging"
	"github.com/nabbar/obus/metrics"
)

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

// Reactor multiplexes registered descriptors with poll(2) and timers with
// a time.Ticker per timer, since this platform has no timerfd.
type Reactor struct {
	log logging.Logger
	m   *metrics.Collectors

	mu      sync.Mutex
	order   []int
	regs    map[int]*registration
	tickers map[int]*time.Ticker
	nextFd  int
	closeCh chan struct{}
	closed  bool
}

func New(log logging.Logger, m *metrics.Collectors) (*Reactor, errs.Error) {
	return &Reactor{
		log:     log,
		m:       m,
		regs:    make(map[int]*registration),
		tickers: make(map[int]*time.Ticker),
		closeCh: make(chan struct{}),
	}, nil
}

func (r *Reactor) Register(fd int, cb Callbacks) errs.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, existed := r.regs[fd]; !existed {
		r.order = append(r.order, fd)
	}
	r.regs[fd] = &registration{fd: fd, cb: cb, wantWrite: cb.OnWritable != nil}
	return nil
}

func (r *Reactor) SetWritable(fd int, want bool) errs.Error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, ok := r.regs[fd]
	if !ok {
		return errs.New(errs.InvalidState, "fd %d not registered", fd)
	}
	reg.wantWrite = want
	return nil
}

func (r *Reactor) Unregister(fd int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.regs, fd)
	for i, f := range r.order {
		if f == fd {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// AddTimer uses a software timer in place of timerfd, since poll(2) has no
// portable way to wait on an interval alongside file descriptors; Run
// services tickers on every loop iteration instead.
func (r *Reactor) AddTimer(interval time.Duration, fn func()) (int, errs.Error) {
	r.mu.Lock()
	r.nextFd--
	id := r.nextFd
	t := time.NewTicker(interval)
	r.tickers[id] = t
	r.mu.Unlock()
	go func() {
		for range t.C {
			fn()
		}
	}()
	return id, nil
}

func (r *Reactor) RemoveTimer(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if t, ok := r.tickers[id]; ok {
		t.Stop()
		delete(r.tickers, id)
	}
}

func (r *Reactor) Run() {
	for {
		select {
		case <-r.closeCh:
			return
		default:
		}

		r.mu.Lock()
		fds := make([]unix.PollFd, 0, len(r.order))
		regByIdx := make([]*registration, 0, len(r.order))
		for _, fd := range r.order {
			reg := r.regs[fd]
			if reg == nil {
				continue
			}
			events := int16(unix.POLLIN)
			if reg.wantWrite {
				events |= unix.POLLOUT
			}
			fds = append(fds, unix.PollFd{Fd: int32(fd), Events: events})
			regByIdx = append(regByIdx, reg)
		}
		r.mu.Unlock()

		started := time.Now()
		n, err := unix.Poll(fds, 250)
		if r.m != nil {
			r.m.ReactorPollLatency.Observe(time.Since(started).Seconds())
		}
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			if r.log != nil {
				r.log.Warn("poll: " + err.Error())
			}
			continue
		}
		if n == 0 {
			continue
		}

		for i, pfd := range fds {
			if pfd.Revents == 0 {
				continue
			}
			reg := regByIdx[i]
			if pfd.Revents&(unix.POLLHUP|unix.POLLERR) != 0 && reg.cb.OnError != nil {
				reg.cb.OnError(errs.New(errs.Io, "fd %d: hangup or error", reg.fd))
				continue
			}
			if pfd.Revents&unix.POLLIN != 0 && reg.cb.OnReadable != nil {
				reg.cb.OnReadable()
			}
			if pfd.Revents&unix.POLLOUT != 0 && reg.cb.OnWritable != nil {
				reg.cb.OnWritable()
			}
		}
	}
}

func (r *Reactor) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	for _, t := range r.tickers {
		t.Stop()
	}
	r.mu.Unlock()
	close(r.closeCh)
}
