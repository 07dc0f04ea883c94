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

// Package registry keeps the per-bus live tables a running endpoint needs:
// object instances by handle, pending calls by handle, and provider
// subscriptions by object UID. Object and call handles share one 16-bit
// space per bus so a stray packet referencing the wrong kind of handle
// resolves to nothing instead of silently aliasing an unrelated call.
package registry

import (
	"crypto/rand"
	"encoding/binary"
	"sync"

	"github.com/nabbar/obus/errs"
)

// maxAllocAttempts bounds the collision-retry loop: with a 16-bit space a
// genuinely exhausted registry is the only way this is ever reached.
const maxAllocAttempts = 4096

// HandleAllocator draws random, non-zero, currently-unused 16-bit handles.
// Zero is reserved as "no handle" across every packet type that carries one.
type HandleAllocator struct {
	mu   sync.Mutex
	used map[uint16]struct{}
}

// NewHandleAllocator builds an empty allocator.
func NewHandleAllocator() *HandleAllocator {
	return &HandleAllocator{used: make(map[uint16]struct{})}
}

// Alloc draws a fresh handle, retrying on a zero value or a collision with
// an already-live handle.
func (a *HandleAllocator) Alloc() (uint16, errs.Error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var buf [2]byte
	for attempt := 0; attempt < maxAllocAttempts; attempt++ {
		if _, err := rand.Read(buf[:]); err != nil {
			return 0, errs.Wrap(errs.Io, err, "reading random handle bytes")
		}
		h := binary.BigEndian.Uint16(buf[:])
		if h == 0 {
			continue
		}
		if _, taken := a.used[h]; taken {
			continue
		}
		a.used[h] = struct{}{}
		return h, nil
	}
	return 0, errs.New(errs.OutOfMemory, "handle space exhausted after %d attempts", maxAllocAttempts)
}

// Release returns h to the pool of handles Alloc may draw again.
func (a *HandleAllocator) Release(h uint16) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.used, h)
}

// Reserve marks h as used without drawing it randomly -- used when a
// client must adopt a handle the server assigned in an Add packet.
func (a *HandleAllocator) Reserve(h uint16) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, taken := a.used[h]; taken {
		return false
	}
	a.used[h] = struct{}{}
	return true
}
