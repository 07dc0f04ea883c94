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

package registry_test

import (
	. "github.com/nabbar/obus/registry"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("HandleAllocator", func() {
	It("never allocates the reserved zero handle", func() {
		a := NewHandleAllocator()
		for i := 0; i < 256; i++ {
			h, err := a.Alloc()
			Expect(err).ToNot(HaveOccurred())
			Expect(h).ToNot(Equal(uint16(0)))
		}
	})

	It("never hands out the same handle twice while it is live", func() {
		a := NewHandleAllocator()
		seen := make(map[uint16]struct{})
		for i := 0; i < 512; i++ {
			h, err := a.Alloc()
			Expect(err).ToNot(HaveOccurred())
			_, dup := seen[h]
			Expect(dup).To(BeFalse())
			seen[h] = struct{}{}
		}
	})

	It("Release lets a handle be drawn again", func() {
		a := NewHandleAllocator()
		h, err := a.Alloc()
		Expect(err).ToNot(HaveOccurred())
		a.Release(h)
		Expect(a.Reserve(h)).To(BeTrue())
	})

	It("Reserve fails against a handle already in use", func() {
		a := NewHandleAllocator()
		h, _ := a.Alloc()
		Expect(a.Reserve(h)).To(BeFalse())
	})

	It("Reserve succeeds for a fresh handle not yet drawn", func() {
		a := NewHandleAllocator()
		Expect(a.Reserve(7)).To(BeTrue())
		Expect(a.Reserve(7)).To(BeFalse())
	})
})
