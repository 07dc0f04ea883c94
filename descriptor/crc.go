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

package descriptor

import (
	"encoding/binary"
	"hash/crc32"
)

// ComputeCRC fingerprints the whole schema graph: fold every UID, name,
// type and update-set member into one running checksum so two peers built
// from different schema versions fail the handshake.
func ComputeCRC(b *BusDescriptor) uint32 {
	h := crc32.NewIEEE()
	write := func(s string) { _, _ = h.Write([]byte(s)) }
	writeU16 := func(v uint16) {
		var buf [2]byte
		binary.BigEndian.PutUint16(buf[:], v)
		_, _ = h.Write(buf[:])
	}

	write(b.Name)
	for _, o := range b.Objects {
		writeU16(o.UID)
		write(o.Name)
		if o.Info != nil {
			for _, f := range o.Info.Fields {
				writeU16(f.UID)
				write(f.Name)
				h.Write([]byte{byte(f.Role), f.TypeByte()})
			}
		}
		for _, e := range o.Events {
			writeU16(e.UID)
			write(e.Name)
			for _, u := range e.Updates {
				writeU16(u)
			}
		}
		for _, m := range o.Methods {
			writeU16(m.UID)
			write(m.Name)
			if m.Args != nil {
				for _, f := range m.Args.Fields {
					writeU16(f.UID)
					write(f.Name)
					h.Write([]byte{byte(f.Role), f.TypeByte()})
				}
			}
		}
	}
	for _, e := range b.BusEvents {
		writeU16(e.UID)
		write(e.Name)
	}
	return h.Sum32()
}
