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

// Package buffer is the growable byte buffer every wire-facing component
// reads and writes through: big-endian read/write cursors over a single
// backing slice, pooled and reference-counted with a plain atomic counter --
// a buffer handed out by a Pool starts at one reference, each Release drops
// it by one, and it returns to the pool only once the count reaches zero,
// so a broadcast can hold one reference per peer still draining an async
// write queue.
package buffer

import (
	"encoding/binary"
	"sync"
	"sync/atomic"

	"github.com/nabbar/obus/errs"
)

// Buffer is a growable, big-endian byte buffer with independent read and
// write cursors, reference-counted for pooled reuse.
type Buffer struct {
	data []byte
	r    int
	refs atomic.Int32
	pool *Pool
}

// Pool hands out reference-counted Buffers and reclaims them once their
// count reaches zero, avoiding a fresh allocation per packet.
type Pool struct {
	sync.Pool
}

// NewPool builds a buffer pool. initialCap sizes each fresh allocation.
func NewPool(initialCap int) *Pool {
	p := &Pool{}
	p.Pool.New = func() any {
		return &Buffer{data: make([]byte, 0, initialCap)}
	}
	return p
}

// Get returns a Buffer with one reference, empty and ready to write into.
func (p *Pool) Get() *Buffer {
	b := p.Pool.Get().(*Buffer)
	b.data = b.data[:0]
	b.r = 0
	b.pool = p
	b.refs.Store(1)
	return b
}

// Retain adds one reference, for a caller (e.g. a server broadcast) that
// needs the buffer to outlive the writer that built it.
func (b *Buffer) Retain() *Buffer {
	b.refs.Add(1)
	return b
}

// Release drops one reference. When the count reaches zero the buffer is
// returned to its pool (or simply discarded if it was not pool-allocated).
func (b *Buffer) Release() {
	if b.refs.Add(-1) == 0 && b.pool != nil {
		b.pool.Pool.Put(b)
	}
}

// New builds a standalone Buffer (not pool-backed) wrapping an existing
// byte slice for decoding.
func New(data []byte) *Buffer {
	b := &Buffer{data: data}
	b.refs.Store(1)
	return b
}

// Bytes returns the unread portion of the buffer.
func (b *Buffer) Bytes() []byte { return b.data[b.r:] }

// All returns the full backing slice, read and unread, for framing code
// that needs to know the total length written so far.
func (b *Buffer) All() []byte { return b.data }

// Len returns the number of unread bytes remaining.
func (b *Buffer) Len() int { return len(b.data) - b.r }

// Drop discards n bytes from the front without returning them -- used by
// the packet decoder to resynchronize past a bad magic or skip an unknown
// struct.
func (b *Buffer) Drop(n int) {
	if n > b.Len() {
		n = b.Len()
	}
	b.r += n
}

// Compact removes already-consumed bytes from the front, keeping the
// unread tail at offset zero. The packet decoder calls this after
// finishing one packet so the backing slice does not grow unbounded.
func (b *Buffer) Compact() {
	if b.r == 0 {
		return
	}
	b.data = append(b.data[:0], b.data[b.r:]...)
	b.r = 0
}

func (b *Buffer) need(n int) errs.Error {
	if b.Len() < n {
		return errs.New(errs.Io, "need %d bytes, have %d", n, b.Len())
	}
	return nil
}

// --- write cursor ---

func (b *Buffer) WriteU8(v uint8) { b.data = append(b.data, v) }

func (b *Buffer) WriteU16(v uint16) {
	var buf [2]byte
	binary.BigEndian.PutUint16(buf[:], v)
	b.data = append(b.data, buf[:]...)
}

func (b *Buffer) WriteU32(v uint32) {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], v)
	b.data = append(b.data, buf[:]...)
}

func (b *Buffer) WriteU64(v uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	b.data = append(b.data, buf[:]...)
}

func (b *Buffer) WriteBytes(p []byte) { b.data = append(b.data, p...) }

// WriteAt overwrites n bytes starting at byte offset off in the backing
// slice -- used to patch a packet's length field once its body is known.
func (b *Buffer) WriteAt(off int, p []byte) { copy(b.data[off:], p) }

// Pos returns the current write position (== len(All())).
func (b *Buffer) Pos() int { return len(b.data) }

// --- read cursor ---

func (b *Buffer) ReadU8() (uint8, errs.Error) {
	if err := b.need(1); err != nil {
		return 0, err
	}
	v := b.data[b.r]
	b.r++
	return v, nil
}

func (b *Buffer) ReadU16() (uint16, errs.Error) {
	if err := b.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(b.data[b.r:])
	b.r += 2
	return v, nil
}

func (b *Buffer) ReadU32() (uint32, errs.Error) {
	if err := b.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(b.data[b.r:])
	b.r += 4
	return v, nil
}

func (b *Buffer) ReadU64() (uint64, errs.Error) {
	if err := b.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(b.data[b.r:])
	b.r += 8
	return v, nil
}

func (b *Buffer) ReadBytes(n int) ([]byte, errs.Error) {
	if err := b.need(n); err != nil {
		return nil, err
	}
	v := b.data[b.r : b.r+n]
	b.r += n
	return v, nil
}

// PeekBytes returns n unread bytes without advancing the read cursor.
func (b *Buffer) PeekBytes(n int) ([]byte, bool) {
	if b.Len() < n {
		return nil, false
	}
	return b.data[b.r : b.r+n], true
}
