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

// BusEvent accumulates one atomic mutation set before it is committed: a
// set of objects being added, a set being removed, and a set of field
// updates, built up by a server across one reactor tick and flushed to
// every subscribed peer as a single packet.
type BusEvent struct {
	UID uint16

	Adds    []*Object
	Removes []*Object
	Events  []*Event
}

// NewBusEvent starts an empty mutation set under uid.
func NewBusEvent(uid uint16) *BusEvent {
	return &BusEvent{UID: uid}
}

// AddObject stages o for the Add half of this event.
func (b *BusEvent) AddObject(o *Object) { b.Adds = append(b.Adds, o) }

// RemoveObject stages o for the Remove half of this event.
func (b *BusEvent) RemoveObject(o *Object) { b.Removes = append(b.Removes, o) }

// AddEvent stages one field-update record for this event.
func (b *BusEvent) AddEvent(e *Event) { b.Events = append(b.Events, e) }

// Empty reports whether nothing has been staged, so a reactor tick that
// produced no mutation skips sending an empty packet.
func (b *BusEvent) Empty() bool {
	return len(b.Adds) == 0 && len(b.Removes) == 0 && len(b.Events) == 0
}

// Commit applies every staged Events update to its target object's live
// info record, resolving each target by handle through find -- normally the
// owning registry's Object lookup -- and returns the touched objects in
// order; an event whose target find does not resolve is skipped. Commit
// does not look at b.Adds, so an event can target an object staged in this
// same batch only once that object is visible through find. Server.Broadcast
// arranges that: it registers the batch's adds, queues the packet built from
// b to every connected peer, and only then calls Commit.
func (b *BusEvent) Commit(find func(handle uint16) (*Object, bool)) []*Object {
	touched := make([]*Object, 0, len(b.Events))
	for _, e := range b.Events {
		o, ok := find(e.Handle)
		if !ok {
			continue
		}
		o.Apply(e.Update)
		touched = append(touched, o)
	}
	return touched
}
