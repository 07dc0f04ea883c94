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
	"github.com/nabbar/obus/internal/netdesc"
	. "github.com/nabbar/obus/object"
	"github.com/nabbar/obus/wire"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Event", func() {
	It("Sanitize strips fields outside the event's update set and reports their uids", func() {
		desc := netdesc.NetInterface()
		upd := wire.NewRecord(desc.Info)
		upd.Set(netdesc.FieldState, wire.Enum(1))
		upd.Set(netdesc.FieldIPAddr, wire.Str("10.0.0.1"))

		evDesc, ok := desc.Event(netdesc.EventUp)
		Expect(ok).To(BeTrue())

		ev := &Event{ObjectUID: desc.UID, Handle: 1, Desc: evDesc, Update: upd}
		stripped := ev.Sanitize()
		Expect(stripped).To(ConsistOf(netdesc.FieldIPAddr))

		_, ok = ev.Update.Get(netdesc.FieldIPAddr)
		Expect(ok).To(BeFalse())
		_, ok = ev.Update.Get(netdesc.FieldState)
		Expect(ok).To(BeTrue())
	})

	It("Sanitize on an already-conforming update strips nothing", func() {
		desc := netdesc.NetInterface()
		upd := wire.NewRecord(desc.Info)
		upd.Set(netdesc.FieldState, wire.Enum(1))

		evDesc, _ := desc.Event(netdesc.EventUp)
		ev := &Event{ObjectUID: desc.UID, Handle: 1, Desc: evDesc, Update: upd}
		Expect(ev.Sanitize()).To(BeEmpty())
	})

	It("IllegalFields reports out-of-set fields without stripping them", func() {
		desc := netdesc.NetInterface()
		upd := wire.NewRecord(desc.Info)
		upd.Set(netdesc.FieldState, wire.Enum(1))
		upd.Set(netdesc.FieldIPAddr, wire.Str("10.0.0.1"))

		evDesc, ok := desc.Event(netdesc.EventUp)
		Expect(ok).To(BeTrue())

		ev := &Event{ObjectUID: desc.UID, Handle: 1, Desc: evDesc, Update: upd}
		illegal := ev.IllegalFields()
		Expect(illegal).To(ConsistOf(netdesc.FieldIPAddr))

		_, ok = ev.Update.Get(netdesc.FieldIPAddr)
		Expect(ok).To(BeTrue())
	})
})
