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
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/logging"
)

// Dial opens one non-blocking connection to addr, retrying every
// ReconnectDelay until ctx is cancelled or a connection succeeds. This is
// the client engine's indefinite reconnect loop: a server that is not yet
// listening is treated the same as one that is merely slow to bind.
func Dial(ctx context.Context, addr Address, log logging.Logger) (int, errs.Error) {
	for {
		fd, err := dialOnce(addr)
		if err == nil {
			return fd, nil
		}
		if log != nil {
			log.Warn("dial " + addr.String() + " failed: " + err.Error())
		}
		select {
		case <-ctx.Done():
			return -1, errs.Wrap(errs.InvalidState, ctx.Err(), "dial %s cancelled", addr)
		case <-time.After(ReconnectDelay):
		}
	}
}

func dialOnce(addr Address) (int, errs.Error) {
	domain, err := domainFor(addr)
	if err != nil {
		return -1, err
	}
	fd, sysErr := unix.Socket(domain, unix.SOCK_STREAM, 0)
	if sysErr != nil {
		return -1, errs.Wrap(errs.Io, sysErr, "socket")
	}
	if err = setNonBlocking(fd); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	if err = setKeepalive(fd, addr); err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	sa, err := sockaddrFor(addr)
	if err != nil {
		_ = unix.Close(fd)
		return -1, err
	}
	if sysErr = unix.Connect(fd, sa); sysErr != nil && sysErr != unix.EINPROGRESS {
		_ = unix.Close(fd)
		return -1, errs.Wrap(errs.Io, sysErr, "connect %s", addr)
	}
	return fd, nil
}
