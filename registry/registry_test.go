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
	"github.com/nabbar/obus/internal/netdesc"
	"github.com/nabbar/obus/object"
	. "github.com/nabbar/obus/registry"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Registry", func() {
	var desc = netdesc.NetInterface()

	It("stores and retrieves an object by its handle", func() {
		r := New()
		o := object.New(&desc, 42)
		r.PutObject(o)

		got, ok := r.Object(42)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(o))
	})

	It("RemoveObject drops the object and releases its handle", func() {
		r := New()
		o := object.New(&desc, 42)
		r.Handles.Reserve(42)
		r.PutObject(o)

		r.RemoveObject(42)
		_, ok := r.Object(42)
		Expect(ok).To(BeFalse())
		Expect(r.Handles.Reserve(42)).To(BeTrue())
	})

	It("Objects returns every registered instance", func() {
		r := New()
		r.PutObject(object.New(&desc, 1))
		r.PutObject(object.New(&desc, 2))
		Expect(r.Objects()).To(HaveLen(2))
	})

	It("TakeCall removes the call so a second Ack finds nothing", func() {
		r := New()
		c := &object.Call{Handle: 9}
		r.PutCall(c)

		got, ok := r.TakeCall(9)
		Expect(ok).To(BeTrue())
		Expect(got).To(BeIdenticalTo(c))

		_, ok = r.TakeCall(9)
		Expect(ok).To(BeFalse())
	})

	It("ClearCalls empties the pending table and returns what it held", func() {
		r := New()
		r.PutCall(&object.Call{Handle: 1})
		r.PutCall(&object.Call{Handle: 2})

		cleared := r.ClearCalls()
		Expect(cleared).To(HaveLen(2))
		Expect(r.PendingCalls()).To(BeEmpty())
	})

	It("SetProvider refuses a second claim on the same object uid", func() {
		r := New()
		Expect(r.SetProvider(1, &Provider{})).To(BeTrue())
		Expect(r.SetProvider(1, &Provider{})).To(BeFalse())

		r.ClearProvider(1)
		Expect(r.SetProvider(1, &Provider{})).To(BeTrue())
	})
})
