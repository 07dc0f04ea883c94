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
	"github.com/nabbar/obus/object"
	"github.com/nabbar/obus/packet"
)

// validateConReq checks a peer's connection request against this
// endpoint's descriptor before accepting it. A mismatch results in
// ConResp{Accepted: false} rather than a packet-level error, since it is a
// normal and expected outcome of running two builds side by side.
func validateConReq(req *packet.ConReq, desc *descriptor.BusDescriptor) errs.Error {
	if req.Version != packet.ProtocolVersion {
		return errs.New(errs.ProtocolMismatch, "protocol version %d, want %d", req.Version, packet.ProtocolVersion)
	}
	if req.BusName != desc.Name {
		return errs.New(errs.ProtocolMismatch, "bus name %q, want %q", req.BusName, desc.Name)
	}
	if req.CRC != desc.CRC {
		return errs.New(errs.ProtocolMismatch, "schema crc %08x, want %08x", req.CRC, desc.CRC)
	}
	if req.ClientName == "" {
		return errs.New(errs.InvalidArgument, "empty client name")
	}
	return nil
}

// snapshotAdds builds the ConResp payload for a just-accepted client: one
// ObjectAdd per currently-registered object, each carrying its live info
// record.
func snapshotAdds(objects []*object.Object) []packet.ObjectAdd {
	adds := make([]packet.ObjectAdd, 0, len(objects))
	for _, o := range objects {
		adds = append(adds, packet.ObjectAdd{
			ObjectUID: o.Desc.UID,
			Handle:    o.Handle,
			Info:      o.Info(),
		})
	}
	return adds
}
