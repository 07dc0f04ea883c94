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

package transport

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"

	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/logging"
)

// Listener is one bound, listening, non-blocking server socket.
type Listener struct {
	Fd   int
	Addr Address
}

// Accept takes the next pending connection off the listener's backlog,
// already non-blocking. It returns -1, nil when no connection is
// currently pending (the caller is expected to be driven by a reactor's
// readability callback).
func (l *Listener) Accept() (int, errs.Error) {
	fd, _, err := unix.Accept4(l.Fd, unix.SOCK_NONBLOCK)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return -1, nil
		}
		return -1, errs.Wrap(errs.Io, err, "accept on %s", l.Addr)
	}
	return fd, nil
}

// Close shuts down the listening socket. On a unix-domain, non-abstract
// address this also removes the socket file.
func (l *Listener) Close() {
	_ = unix.Close(l.Fd)
	if l.Addr.Family == FamilyUnix && !l.Addr.Abstract {
		_ = unix.Unlink(l.Addr.Path)
	}
}

// Listen binds and listens on addr, retrying every BindRetryDelay while
// the kernel reports EADDRNOTAVAIL (the address not yet configured) until
// ctx is cancelled.
func Listen(ctx context.Context, addr Address, backlog int, log logging.Logger) (*Listener, errs.Error) {
	for {
		l, err := listenOnce(addr, backlog)
		if err == nil {
			return l, nil
		}
		if log != nil {
			log.Warn("listen " + addr.String() + " failed: " + err.Error())
		}
		if !errors.Is(err, unix.EADDRNOTAVAIL) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, errs.Wrap(errs.InvalidState, ctx.Err(), "listen %s cancelled", addr)
		case <-time.After(BindRetryDelay):
		}
	}
}

func listenOnce(addr Address, backlog int) (*Listener, errs.Error) {
	domain, err := domainFor(addr)
	if err != nil {
		return nil, err
	}
	fd, sysErr := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if sysErr != nil {
		return nil, errs.Wrap(errs.Io, sysErr, "socket")
	}
	if addr.Family != FamilyUnix {
		_ = unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	}
	if err = setNonBlocking(fd); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	sa, err := sockaddrFor(addr)
	if err != nil {
		_ = unix.Close(fd)
		return nil, err
	}
	if sysErr = unix.Bind(fd, sa); sysErr != nil {
		_ = unix.Close(fd)
		return nil, errs.Wrap(errs.Io, sysErr, "bind %s", addr)
	}
	if sysErr = unix.Listen(fd, backlog); sysErr != nil {
		_ = unix.Close(fd)
		return nil, errs.Wrap(errs.Io, sysErr, "listen %s", addr)
	}
	return &Listener{Fd: fd, Addr: addr}, nil
}

// ListenAll binds every address concurrently, via golang.org/x/sync/errgroup,
// and either returns every listener or tears all of them down and returns
// the first error -- a server with several configured addresses comes up
// atomically or not at all.
func ListenAll(ctx context.Context, addrs []Address, backlog int, log logging.Logger) ([]*Listener, errs.Error) {
	listeners := make([]*Listener, len(addrs))
	g, gctx := errgroup.WithContext(ctx)
	for i, a := range addrs {
		i, a := i, a
		g.Go(func() error {
			l, err := Listen(gctx, a, backlog, log)
			if err != nil {
				return err
			}
			listeners[i] = l
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, l := range listeners {
			if l != nil {
				l.Close()
			}
		}
		if e, ok := err.(errs.Error); ok {
			return nil, e
		}
		return nil, errs.Wrap(errs.Io, err, "binding listeners")
	}
	return listeners, nil
}
