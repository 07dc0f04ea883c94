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

// Package iochannel drives one non-blocking connection's byte-level I/O:
// an async write queue that never blocks the reactor goroutine, and a read
// path that feeds straight into a packet decoder.
package iochannel

import (
	"container/list"
	"sync"
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/obus/buffer"
	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/metrics"
	"github.com/nabbar/obus/packet"
)

// WriteTimeout bounds how long one queued buffer may wait for its turn to
// be written before the channel gives up on it and closes the connection --
// a peer that stops draining its socket is indistinguishable from a dead
// one past this point.
const WriteTimeout = 5 * time.Second

type queued struct {
	buf       *buffer.Buffer
	off       int
	deadline  time.Time
}

// WritableSetter arms or disarms write-readiness polling for one fd --
// satisfied by *reactor.Reactor without iochannel importing reactor.
type WritableSetter interface {
	SetWritable(fd int, want bool) errs.Error
}

// Channel owns one connection's fd, read buffer, and outbound write queue.
type Channel struct {
	fd    int
	peer  string
	react WritableSetter
	m     *metrics.Collectors

	readBuf *buffer.Buffer
	decoder *packet.Decoder

	mu     sync.Mutex
	queue  *list.List
	closed bool

	OnClosed func(err errs.Error)
}

// New wraps fd (already non-blocking) with a read buffer feeding dec and a
// write queue armed through react.
func New(fd int, peer string, dec *packet.Decoder, readBuf *buffer.Buffer, react WritableSetter, m *metrics.Collectors) *Channel {
	return &Channel{
		fd:      fd,
		peer:    peer,
		react:   react,
		m:       m,
		readBuf: readBuf,
		decoder: dec,
		queue:   list.New(),
	}
}

// Fd returns the underlying file descriptor, for reactor registration.
func (c *Channel) Fd() int { return c.fd }

// OnReadable is the reactor callback for read-readiness: drains available
// bytes into the read buffer and feeds them to the packet decoder,
// returning every packet fully decoded this round.
func (c *Channel) OnReadable() ([]*packet.Packet, errs.Error) {
	var out []*packet.Packet
	buf := make([]byte, 64*1024)
	for {
		n, err := unix.Read(c.fd, buf)
		if n > 0 {
			c.decoder.Feed(buf[:n])
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			if err == unix.EINTR {
				continue
			}
			return out, errs.Wrap(errs.Io, err, "read fd=%d", c.fd)
		}
		if n == 0 {
			return out, errs.New(errs.Io, "peer %s closed connection", c.peer)
		}
		if n < len(buf) {
			break
		}
	}
	for {
		pkt, derr, ok := c.decoder.Next()
		if derr != nil {
			return out, derr
		}
		if !ok {
			break
		}
		out = append(out, pkt)
	}
	return out, nil
}

// Enqueue takes ownership of one reference on buf and schedules it for
// async write. The write queue drains on the reactor's writable callback;
// Enqueue itself never blocks or writes directly.
func (c *Channel) Enqueue(buf *buffer.Buffer) errs.Error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		buf.Release()
		return errs.New(errs.InvalidState, "channel to %s is closed", c.peer)
	}
	wasEmpty := c.queue.Len() == 0
	c.queue.PushBack(&queued{buf: buf, deadline: time.Now().Add(WriteTimeout)})
	if c.m != nil {
		c.m.WriteQueueDepth.WithLabelValues(c.peer).Set(float64(c.queue.Len()))
	}
	if wasEmpty && c.react != nil {
		_ = c.react.SetWritable(c.fd, true)
	}
	return nil
}

// OnWritable is the reactor callback for write-readiness: drains as much
// of the head-of-queue buffer as the socket accepts without blocking, and
// disarms write-polling once the queue empties.
func (c *Channel) OnWritable() errs.Error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for c.queue.Len() > 0 {
		front := c.queue.Front()
		q := front.Value.(*queued)

		if now.After(q.deadline) {
			if c.m != nil {
				c.m.WriteTimeouts.WithLabelValues(c.peer).Inc()
			}
			q.buf.Release()
			c.queue.Remove(front)
			continue
		}

		data := q.buf.All()[q.off:]
		n, err := unix.Write(c.fd, data)
		if n > 0 {
			q.off += n
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			if err == unix.EINTR {
				continue
			}
			return errs.Wrap(errs.Io, err, "write fd=%d", c.fd)
		}
		if q.off >= len(q.buf.All()) {
			q.buf.Release()
			c.queue.Remove(front)
			continue
		}
		break
	}

	if c.m != nil {
		c.m.WriteQueueDepth.WithLabelValues(c.peer).Set(float64(c.queue.Len()))
	}
	if c.queue.Len() == 0 && c.react != nil {
		_ = c.react.SetWritable(c.fd, false)
	}
	return nil
}

// Close marks the channel closed and releases every queued buffer's
// reference. It does not close the underlying fd -- the owning connection
// does that once it has unregistered from the reactor.
func (c *Channel) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	for e := c.queue.Front(); e != nil; e = e.Next() {
		e.Value.(*queued).buf.Release()
	}
	c.queue.Init()
}
