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

package transport_test

import (
	"github.com/nabbar/obus/errs"
	. "github.com/nabbar/obus/transport"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Address", func() {
	It("parses an inet address", func() {
		a, err := Parse("inet:127.0.0.1:9000")
		Expect(err).ToNot(HaveOccurred())
		Expect(a.Family).To(Equal(FamilyInet))
		Expect(a.Host).To(Equal("127.0.0.1"))
		Expect(a.Port).To(Equal(9000))
		Expect(a.String()).To(Equal("inet:127.0.0.1:9000"))
	})

	It("parses an inet6 address", func() {
		a, err := Parse("inet6:::1:9001")
		Expect(err).ToNot(HaveOccurred())
		Expect(a.Family).To(Equal(FamilyInet6))
		Expect(a.Port).To(Equal(9001))
	})

	It("parses a filesystem unix path", func() {
		a, err := Parse("unix:/run/obus.sock")
		Expect(err).ToNot(HaveOccurred())
		Expect(a.Family).To(Equal(FamilyUnix))
		Expect(a.Abstract).To(BeFalse())
		Expect(a.String()).To(Equal("unix:/run/obus.sock"))
	})

	It("parses an abstract-namespace unix path", func() {
		a, err := Parse("unix:@obus")
		Expect(err).ToNot(HaveOccurred())
		Expect(a.Abstract).To(BeTrue())
		Expect(a.Path).To(Equal("obus"))
		Expect(a.String()).To(Equal("unix:@obus"))
	})

	It("rejects a missing scheme", func() {
		_, err := Parse("127.0.0.1:9000")
		Expect(err).To(HaveOccurred())
		Expect(errs.IsCode(err, errs.InvalidArgument)).To(BeTrue())
	})

	It("rejects an out-of-range port", func() {
		_, err := Parse("inet:host:70000")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an empty unix path", func() {
		_, err := Parse("unix:")
		Expect(err).To(HaveOccurred())
	})

	It("rejects an unknown scheme", func() {
		_, err := Parse("ftp:host:21")
		Expect(err).To(HaveOccurred())
	})

	It("ParseList splits and trims a comma-separated address list", func() {
		list, err := ParseList("inet:a:1, unix:/tmp/s.sock ,, inet6:b:2")
		Expect(err).ToNot(HaveOccurred())
		Expect(list).To(HaveLen(3))
		Expect(list[1].Family).To(Equal(FamilyUnix))
	})

	It("ParseList propagates the first parse error", func() {
		_, err := ParseList("inet:a:1,garbage")
		Expect(err).To(HaveOccurred())
	})
})
