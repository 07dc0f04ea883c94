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

package logging_test

import (
	"bytes"

	. "github.com/nabbar/obus/logging"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Logger", func() {
	It("writes nothing when the category was built disabled", func() {
		var buf bytes.Buffer
		l := New(&buf, false, CategoryIO, false)
		l.Info("should not appear")
		Expect(buf.Len()).To(Equal(0))
		Expect(l.Enabled()).To(BeFalse())
	})

	It("writes through when the category is enabled", func() {
		var buf bytes.Buffer
		l := New(&buf, false, CategoryBus, true)
		l.Warn("heads up")
		Expect(buf.String()).To(ContainSubstring("heads up"))
		Expect(buf.String()).To(ContainSubstring("category=bus"))
	})

	It("WithFields attaches structured attributes without losing the enabled flag", func() {
		var buf bytes.Buffer
		l := New(&buf, false, CategorySocket, true)
		scoped := l.WithFields(Fields{"conn": "abc123"})
		scoped.Error("boom")
		Expect(buf.String()).To(ContainSubstring("conn=abc123"))
		Expect(scoped.Enabled()).To(BeTrue())
	})

	It("Discard never writes and reports disabled", func() {
		d := Discard()
		Expect(d.Enabled()).To(BeFalse())
		d.Info("nope")
	})
})
