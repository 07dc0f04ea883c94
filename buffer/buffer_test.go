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

package buffer_test

import (
	. "github.com/nabbar/obus/buffer"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Buffer", func() {
	It("round-trips every fixed-width write/read pair in order", func() {
		b := New(nil)
		b.WriteU8(0x12)
		b.WriteU16(0x3456)
		b.WriteU32(0x789ABCDE)
		b.WriteU64(0x0102030405060708)
		b.WriteBytes([]byte("hi"))

		u8, err := b.ReadU8()
		Expect(err).ToNot(HaveOccurred())
		Expect(u8).To(Equal(uint8(0x12)))

		u16, err := b.ReadU16()
		Expect(err).ToNot(HaveOccurred())
		Expect(u16).To(Equal(uint16(0x3456)))

		u32, err := b.ReadU32()
		Expect(err).ToNot(HaveOccurred())
		Expect(u32).To(Equal(uint32(0x789ABCDE)))

		u64, err := b.ReadU64()
		Expect(err).ToNot(HaveOccurred())
		Expect(u64).To(Equal(uint64(0x0102030405060708)))

		tail, err := b.ReadBytes(2)
		Expect(err).ToNot(HaveOccurred())
		Expect(string(tail)).To(Equal("hi"))
	})

	It("reports an error instead of panicking when too few bytes remain", func() {
		b := New([]byte{0x01})
		_, err := b.ReadU32()
		Expect(err).To(HaveOccurred())
	})

	It("Drop clamps to the remaining length instead of overshooting", func() {
		b := New([]byte{1, 2, 3})
		b.Drop(100)
		Expect(b.Len()).To(Equal(0))
	})

	It("Compact discards consumed bytes and resets the read cursor to zero", func() {
		b := New([]byte{1, 2, 3, 4})
		_, _ = b.ReadU16()
		b.Compact()
		Expect(b.Bytes()).To(Equal([]byte{3, 4}))
		Expect(b.Len()).To(Equal(2))
	})

	It("PeekBytes does not advance the read cursor", func() {
		b := New([]byte{1, 2, 3})
		p, ok := b.PeekBytes(2)
		Expect(ok).To(BeTrue())
		Expect(p).To(Equal([]byte{1, 2}))
		Expect(b.Len()).To(Equal(3))
	})

	It("WriteAt patches bytes already written without moving the write cursor", func() {
		b := New(nil)
		b.WriteU32(0)
		pos := b.Pos()
		patch := make([]byte, 4)
		patch[3] = 0x2A
		b.WriteAt(0, patch)
		Expect(b.Pos()).To(Equal(pos))
		v, _ := b.ReadU32()
		Expect(v).To(Equal(uint32(0x2A)))
	})

	It("Pool.Get returns a fresh, empty, single-referenced buffer each time", func() {
		pool := NewPool(64)
		b1 := pool.Get()
		b1.WriteU8(1)
		b1.Release()

		b2 := pool.Get()
		Expect(b2.Len()).To(Equal(0))
	})

	It("Retain requires an extra Release before the buffer returns to its pool", func() {
		pool := NewPool(64)
		b := pool.Get()
		b.Retain()
		b.Release()
		Expect(b.Len()).To(Equal(0))
		b.Release()
	})
})
