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

package errs_test

import (
	"errors"

	. "github.com/nabbar/obus/errs"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Error", func() {
	It("New formats the message and reports its code", func() {
		e := New(InvalidArgument, "bad %s", "value")
		Expect(e.Code()).To(Equal(InvalidArgument))
		Expect(e.Error()).To(ContainSubstring("bad value"))
	})

	It("Wrap chains the parent so errors.Is/Unwrap both reach it", func() {
		parent := errors.New("root cause")
		e := Wrap(Io, parent, "reading socket")
		Expect(e.Parent()).To(Equal(parent))
		Expect(errors.Unwrap(e)).To(Equal(parent))
		Expect(errors.Is(e, parent)).To(BeTrue())
	})

	It("Wrap with a nil parent behaves like New", func() {
		e := Wrap(NotFound, nil, "missing %d", 7)
		Expect(e.Parent()).To(BeNil())
		Expect(e.Error()).To(ContainSubstring("missing 7"))
	})

	It("IsCode finds a code anywhere in the unwrap chain", func() {
		inner := New(Io, "disk full")
		outer := Wrap(InvalidState, inner, "flushing buffer")
		Expect(IsCode(outer, Io)).To(BeTrue())
		Expect(IsCode(outer, NotFound)).To(BeFalse())
	})

	It("CallOutcome.String falls back to invalid for an out-of-range value", func() {
		Expect(CallOutcome(200).String()).To(Equal("invalid"))
		Expect(Acked.String()).To(Equal("acked"))
	})
})
