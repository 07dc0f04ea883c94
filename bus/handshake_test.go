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

package bus

import (
	"github.com/nabbar/obus/descriptor"
	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/internal/netdesc"
	"github.com/nabbar/obus/object"
	"github.com/nabbar/obus/packet"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("validateConReq", func() {
	var desc *descriptor.BusDescriptor

	BeforeEach(func() {
		desc = netdesc.Bus()
	})

	It("accepts a request matching version, bus name and schema CRC", func() {
		req := &packet.ConReq{
			Version:    packet.ProtocolVersion,
			BusName:    desc.Name,
			CRC:        desc.CRC,
			ClientName: "probe",
		}
		Expect(validateConReq(req, desc)).To(BeNil())
	})

	It("rejects a protocol version mismatch", func() {
		req := &packet.ConReq{Version: packet.ProtocolVersion + 1, BusName: desc.Name, CRC: desc.CRC, ClientName: "probe"}
		err := validateConReq(req, desc)
		Expect(err).To(HaveOccurred())
		Expect(errs.IsCode(err, errs.ProtocolMismatch)).To(BeTrue())
	})

	It("rejects a bus name mismatch", func() {
		req := &packet.ConReq{Version: packet.ProtocolVersion, BusName: "other", CRC: desc.CRC, ClientName: "probe"}
		err := validateConReq(req, desc)
		Expect(err).To(HaveOccurred())
		Expect(errs.IsCode(err, errs.ProtocolMismatch)).To(BeTrue())
	})

	It("rejects a schema CRC mismatch", func() {
		req := &packet.ConReq{Version: packet.ProtocolVersion, BusName: desc.Name, CRC: desc.CRC + 1, ClientName: "probe"}
		err := validateConReq(req, desc)
		Expect(err).To(HaveOccurred())
		Expect(errs.IsCode(err, errs.ProtocolMismatch)).To(BeTrue())
	})

	It("rejects an empty client name", func() {
		req := &packet.ConReq{Version: packet.ProtocolVersion, BusName: desc.Name, CRC: desc.CRC, ClientName: ""}
		err := validateConReq(req, desc)
		Expect(err).To(HaveOccurred())
		Expect(errs.IsCode(err, errs.InvalidArgument)).To(BeTrue())
	})
})

var _ = Describe("snapshotAdds", func() {
	It("builds one ObjectAdd per registered object, carrying its live info", func() {
		od := netdesc.NetInterface()
		o := object.New(&od, 7)

		adds := snapshotAdds([]*object.Object{o})
		Expect(adds).To(HaveLen(1))
		Expect(adds[0].ObjectUID).To(Equal(od.UID))
		Expect(adds[0].Handle).To(Equal(uint16(7)))
		Expect(adds[0].Info).To(Equal(o.Info()))
	})

	It("returns an empty, non-nil slice for no objects", func() {
		adds := snapshotAdds(nil)
		Expect(adds).ToNot(BeNil())
		Expect(adds).To(BeEmpty())
	})
})
