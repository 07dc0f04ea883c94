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
	"github.com/nabbar/obus/buffer"
	"github.com/nabbar/obus/descriptor"
)

// EncodeRecord writes a struct body: a u16 count of present fields
// followed by that many field records. Absent fields are never written.
func EncodeRecord(buf *buffer.Buffer, rec *Record) {
	buf.WriteU16(uint16(rec.SetCount()))
	for i, f := range rec.Desc.Fields {
		if !rec.Presence.Test(uint(i)) {
			continue
		}
		buf.WriteU16(f.UID)
		buf.WriteU8(f.TypeByte())
		v := rec.Values[i]
		if f.Array {
			items := v.AsArr()
			buf.WriteU32(uint32(len(items)))
			for _, it := range items {
				encodeScalar(buf, f.Type, it, enumSize(f))
			}
		} else {
			encodeScalar(buf, f.Type, v, enumSize(f))
		}
	}
}

// DecodeRecord reads a struct body shaped by desc. buf must already be
// bounded to exactly the struct's declared length (the packet layer slices
// a sub-buffer for this) so that any bytes left unread when this returns --
// whether from a clean stop or from bailing out of an unknown enum field --
// are simply skipped by the caller advancing past the declared length.
func DecodeRecord(buf *buffer.Buffer, desc *descriptor.RecordDescriptor) (*Record, []uint16, error) {
	rec := NewRecord(desc)
	var unknown []uint16

	count, err := buf.ReadU16()
	if err != nil {
		return rec, unknown, err
	}

	for i := uint16(0); i < count; i++ {
		uid, err := buf.ReadU16()
		if err != nil {
			return rec, unknown, nil
		}
		typeByte, err := buf.ReadU8()
		if err != nil {
			return rec, unknown, nil
		}
		kind := descriptor.Kind(typeByte &^ 0x80)
		array := typeByte&0x80 != 0

		f, known := desc.Index(uid)
		if !known {
			unknown = append(unknown, uid)
			if serr := skipValue(buf, kind, array, 0); serr != nil {
				// cannot determine this unknown field's width (enum of
				// unknown size): stop decoding this struct, the remaining
				// declared bytes are discarded by the caller.
				return rec, unknown, nil
			}
			continue
		}

		esz := enumSize(f)
		if !array {
			v, derr := decodeScalar(buf, kind, esz)
			if derr != nil {
				return rec, unknown, nil
			}
			rec.Values[f.Index] = v
			rec.Presence.Set(uint(f.Index))
			continue
		}

		n, derr := buf.ReadU32()
		if derr != nil {
			return rec, unknown, nil
		}
		items := make([]Value, 0, n)
		ok := true
		for j := uint32(0); j < n; j++ {
			v, ierr := decodeScalar(buf, kind, esz)
			if ierr != nil {
				ok = false
				break
			}
			items = append(items, v)
		}
		if !ok {
			return rec, unknown, nil
		}
		rec.Values[f.Index] = Arr(items...)
		rec.Presence.Set(uint(f.Index))
	}

	return rec, unknown, nil
}
