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

package object_test

import (
	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/internal/netdesc"
	. "github.com/nabbar/obus/object"
	"github.com/nabbar/obus/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Object", func() {
	var desc = netdesc.NetInterface()

	It("New pre-fills info with the descriptor's enum defaults", func() {
		o := New(&desc, 1)
		info := o.Info()
		v, ok := info.Get(netdesc.FieldState)
		Expect(ok).To(BeFalse())
		Expect(v.AsEnum()).To(Equal(int64(-3)))
	})

	It("Apply merges an update into the live record and returns the merged snapshot", func() {
		o := New(&desc, 1)
		update := wire.NewRecord(desc.Info)
		update.Set(netdesc.FieldName, wire.Str("eth0"))

		merged := o.Apply(update)
		name, ok := merged.Get(netdesc.FieldName)
		Expect(ok).To(BeTrue())
		Expect(name.AsStr()).To(Equal("eth0"))

		again, ok := o.Info().Get(netdesc.FieldName)
		Expect(ok).To(BeTrue())
		Expect(again.AsStr()).To(Equal("eth0"))
	})

	It("Invoke reports MethodNotSupported for a uid absent from the descriptor", func() {
		o := New(&desc, 1)
		status, result := o.Invoke(0xFFFF, nil)
		Expect(status).To(Equal(errs.MethodNotSupported))
		Expect(result).To(BeNil())
	})

	It("Invoke reports MethodDisabled when the descriptor knows the method but nothing is bound", func() {
		o := New(&desc, 1)
		status, _ := o.Invoke(netdesc.MethodUp, nil)
		Expect(status).To(Equal(errs.MethodDisabled))
	})

	It("Invoke dispatches to a bound handler and returns its outcome", func() {
		o := New(&desc, 1)
		o.Bind(netdesc.MethodUp, func(args *wire.Record) (errs.CallOutcome, *wire.Record) {
			return errs.Acked, nil
		})
		status, _ := o.Invoke(netdesc.MethodUp, nil)
		Expect(status).To(Equal(errs.Acked))
	})

	It("Bind with a nil handler unbinds a method back to MethodDisabled", func() {
		o := New(&desc, 1)
		o.Bind(netdesc.MethodUp, func(args *wire.Record) (errs.CallOutcome, *wire.Record) {
			return errs.Acked, nil
		})
		o.Bind(netdesc.MethodUp, nil)
		status, _ := o.Invoke(netdesc.MethodUp, nil)
		Expect(status).To(Equal(errs.MethodDisabled))
	})
})
