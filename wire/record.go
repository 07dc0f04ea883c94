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

package wire

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/nabbar/obus/descriptor"
)

// Record is one info record, method-argument record, or partial event
// record: an ordered slice of Value, one per descriptor field, with a
// presence bit marking which ones carry a meaningful value. A bit unset
// means the corresponding Value is the field's default -- on enum fields
// that default is the descriptor's EnumDriver.Default, never the Go zero
// value, since an enum's zero member is not necessarily its semantic
// default.
type Record struct {
	Desc     *descriptor.RecordDescriptor
	Presence *bitset.BitSet
	Values   []Value
}

// NewRecord builds an empty record (nothing present) shaped by desc,
// pre-filling enum fields with their descriptor default.
func NewRecord(desc *descriptor.RecordDescriptor) *Record {
	r := &Record{
		Desc:     desc,
		Presence: bitset.New(uint(len(desc.Fields))),
		Values:   make([]Value, len(desc.Fields)),
	}
	for i, f := range desc.Fields {
		if f.Type == descriptor.KindEnum && f.Enum != nil {
			r.Values[i] = Enum(f.Enum.Default)
		}
	}
	return r
}

// Set stores v under the field named by uid and marks it present. Returns
// false if uid is not a field of this record's descriptor.
func (r *Record) Set(uid uint16, v Value) bool {
	f, ok := r.Desc.Index(uid)
	if !ok {
		return false
	}
	r.Values[f.Index] = v
	r.Presence.Set(uint(f.Index))
	return true
}

// Get returns the value stored under uid and whether it is present. An
// absent field still returns a usable zero/default Value.
func (r *Record) Get(uid uint16) (Value, bool) {
	f, ok := r.Desc.Index(uid)
	if !ok {
		return Value{}, false
	}
	return r.Values[f.Index], r.Presence.Test(uint(f.Index))
}

// IsSet reports whether the field at descriptor position index is present.
func (r *Record) IsSet(index int) bool { return r.Presence.Test(uint(index)) }

// SetCount returns how many fields are present, the count the wire struct
// body is prefixed with.
func (r *Record) SetCount() int {
	n := 0
	for i := 0; i < len(r.Values); i++ {
		if r.Presence.Test(uint(i)) {
			n++
		}
	}
	return n
}

// Clone copies a record's presence bitset and its Values slice, so setting
// or clearing a field on the copy never observably affects the original
// (used when an Event is built from a live Object.Info snapshot). Array-typed
// Values share their backing slice with the original, which is safe only
// because neither this package nor any caller ever mutates an array Value
// in place -- they replace it wholesale via Set.
func (r *Record) Clone() *Record {
	c := &Record{
		Desc:     r.Desc,
		Presence: r.Presence.Clone(),
		Values:   make([]Value, len(r.Values)),
	}
	copy(c.Values, r.Values)
	return c
}

// Merge copies every present field of src into r, overwriting r's existing
// value. Fields absent in src are left untouched in r: only set fields
// overwrite the destination, and a destination field whose source is unset
// keeps whatever value it already had.
func (r *Record) Merge(src *Record) {
	for i := 0; i < len(src.Values) && i < len(r.Values); i++ {
		if src.Presence.Test(uint(i)) {
			r.Values[i] = src.Values[i]
			r.Presence.Set(uint(i))
		}
	}
}

// Sanitize returns the UIDs of any present field not listed in allowed --
// the event-legality check against an event's update set. It does not
// modify r; Strip removes the reported fields. Callers decide whether such
// a field is a server-side error or a client-side warning.
func (r *Record) Sanitize(allowed func(fieldUID uint16) bool) []uint16 {
	var stripped []uint16
	for i, f := range r.Desc.Fields {
		if r.Presence.Test(uint(i)) && !allowed(f.UID) {
			stripped = append(stripped, f.UID)
		}
	}
	return stripped
}

// Strip clears the presence bit (and resets the value) for each of the
// given field UIDs -- used by the server to drop illegal updates before
// they are ever encoded.
func (r *Record) Strip(uids []uint16) {
	for _, uid := range uids {
		if f, ok := r.Desc.Index(uid); ok {
			r.Presence.Clear(uint(f.Index))
			r.Values[f.Index] = Value{}
			if f.Type == descriptor.KindEnum && f.Enum != nil {
				r.Values[f.Index] = Enum(f.Enum.Default)
			}
		}
	}
}
