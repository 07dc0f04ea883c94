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

package object

import (
	"github.com/nabbar/obus/descriptor"
	"github.com/nabbar/obus/wire"
)

// Event is a partial info record bound to one object and one of its
// event descriptors: only the fields in the event's update set may ever be
// present.
type Event struct {
	ObjectUID uint16
	Handle    uint16
	Desc      descriptor.EventDescriptor
	Update    *wire.Record
}

// IllegalFields reports the UIDs of any present field the event descriptor
// does not list in its update set, without modifying Update. The sender
// (server) strips these before encoding; the receiver (client) keeps them,
// applies them anyway, and only logs a warning.
func (e *Event) IllegalFields() []uint16 {
	return e.Update.Sanitize(e.Desc.Allows)
}

// Sanitize strips any field the event descriptor does not list in its
// update set and returns their UIDs, so a caller can log or reject a
// producer that tried to smuggle an illegal field through an event. Used by
// the sending side, which must never let an illegal field reach the wire.
func (e *Event) Sanitize() []uint16 {
	stripped := e.IllegalFields()
	e.Update.Strip(stripped)
	return stripped
}
