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

package packet

import (
	"github.com/nabbar/obus/buffer"
	"github.com/nabbar/obus/descriptor"
	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/logging"
	"github.com/nabbar/obus/wire"
)

// maxFrameLen bounds one packet's total size, guarding against a corrupt
// length field pinning the decoder on an unbounded read.
const maxFrameLen = 16 << 20

// Decoder accumulates bytes from a stream socket and yields complete
// Packets, resynchronizing on the magic marker whenever a header or a
// resolver lookup turns out bad.
type Decoder struct {
	buf *buffer.Buffer
	res Resolver
	log logging.Logger
}

// NewDecoder builds a streaming decoder. buf is typically a connection's
// read buffer, reused across Feed calls.
func NewDecoder(buf *buffer.Buffer, res Resolver, log logging.Logger) *Decoder {
	return &Decoder{buf: buf, res: res, log: log}
}

// Feed appends freshly-read bytes to the decoder's buffer.
func (d *Decoder) Feed(p []byte) { d.buf.WriteBytes(p) }

// Next attempts to decode one complete packet from the accumulated bytes.
// It returns (nil, nil, false) when more bytes are needed. A bad magic or
// malformed header causes the decoder to drop one byte and retry from the
// next position; a frame whose body fails to decode is logged and skipped
// whole, by its declared length. Either way a single corrupted frame never
// wedges the connection.
func (d *Decoder) Next() (*Packet, errs.Error, bool) {
	for {
		magic, ok := d.buf.PeekBytes(4)
		if !ok {
			return nil, nil, false
		}
		got := uint32(magic[0])<<24 | uint32(magic[1])<<16 | uint32(magic[2])<<8 | uint32(magic[3])
		if got != Magic {
			d.resync()
			if d.buf.Len() < 4 {
				return nil, nil, false
			}
			continue
		}

		header, ok := d.buf.PeekBytes(HeaderLen)
		if !ok {
			return nil, nil, false
		}
		total := int(uint32(header[4])<<24 | uint32(header[5])<<16 | uint32(header[6])<<8 | uint32(header[7]))
		typ := Type(header[8])

		if total < HeaderLen || total > maxFrameLen || !typ.valid() {
			d.resync()
			continue
		}
		if d.buf.Len() < total {
			return nil, nil, false
		}

		frame, _ := d.buf.ReadBytes(total)
		body := buffer.New(frame[HeaderLen:])
		pkt, err := decodeBody(body, typ, d.res)
		if err != nil {
			if d.log != nil {
				d.log.WithFields(logging.Fields{"type": typ, "error": err.Error()}).Warn("dropping malformed packet")
			}
			continue
		}
		d.buf.Compact()
		return pkt, nil, true
	}
}

// resync discards one byte and scans forward to the next plausible magic
// start, so a stream desynchronized by a single dropped/duplicated byte
// recovers without tearing down the connection.
func (d *Decoder) resync() {
	d.buf.Drop(1)
	for d.buf.Len() >= 4 {
		b, ok := d.buf.PeekBytes(4)
		if !ok {
			return
		}
		if uint32(b[0])<<24|uint32(b[1])<<16|uint32(b[2])<<8|uint32(b[3]) == Magic {
			return
		}
		d.buf.Drop(1)
	}
}

func decodeBody(buf *buffer.Buffer, typ Type, res Resolver) (*Packet, errs.Error) {
	switch typ {
	case TypeConReq:
		req, err := decodeConReq(buf)
		if err != nil {
			return nil, err
		}
		return &Packet{Type: typ, ConReq: req}, nil
	case TypeConResp:
		resp, err := decodeConResp(buf, res)
		if err != nil {
			return nil, err
		}
		return &Packet{Type: typ, ConResp: resp}, nil
	case TypeAdd:
		a, err := decodeObjectAdd(buf, res)
		if err != nil {
			return nil, err
		}
		return &Packet{Type: typ, Add: a}, nil
	case TypeRemove:
		r, err := decodeObjectRemove(buf)
		if err != nil {
			return nil, err
		}
		return &Packet{Type: typ, Remove: r}, nil
	case TypeBusEvent:
		be, err := decodeBusEvent(buf, res)
		if err != nil {
			return nil, err
		}
		return &Packet{Type: typ, BusEvent: be}, nil
	case TypeEvent:
		e, err := decodeEventRecord(buf, res)
		if err != nil {
			return nil, err
		}
		return &Packet{Type: typ, Event: e}, nil
	case TypeCall:
		c, err := decodeCall(buf, res)
		if err != nil {
			return nil, err
		}
		return &Packet{Type: typ, Call: c}, nil
	case TypeAck:
		a, err := decodeAck(buf)
		if err != nil {
			return nil, err
		}
		return &Packet{Type: typ, Ack: a}, nil
	default:
		return nil, errs.New(errs.ProtocolMismatch, "unsupported packet type %d", typ)
	}
}

func decodeConReq(buf *buffer.Buffer) (*ConReq, errs.Error) {
	version, err := buf.ReadU8()
	if err != nil {
		return nil, err
	}
	busName, err := decodeWireString(buf)
	if err != nil {
		return nil, err
	}
	crc, err := buf.ReadU32()
	if err != nil {
		return nil, err
	}
	clientName, err := decodeWireString(buf)
	if err != nil {
		return nil, err
	}
	return &ConReq{Version: version, BusName: busName, CRC: crc, ClientName: clientName}, nil
}

func decodeConResp(buf *buffer.Buffer, res Resolver) (*ConResp, errs.Error) {
	flag, err := buf.ReadU8()
	if err != nil {
		return nil, err
	}
	if flag != 0 {
		return &ConResp{Accepted: false}, nil
	}
	n, err := buf.ReadU32()
	if err != nil {
		return nil, err
	}
	adds := make([]ObjectAdd, 0, n)
	for i := uint32(0); i < n; i++ {
		a, derr := decodeObjectAdd(buf, res)
		if derr != nil {
			return nil, derr
		}
		adds = append(adds, *a)
	}
	return &ConResp{Accepted: true, Adds: adds}, nil
}

func decodeObjectAdd(buf *buffer.Buffer, res Resolver) (*ObjectAdd, errs.Error) {
	uid, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	handle, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	rec, err := decodeBoundRecord(buf, func() (*descriptor.RecordDescriptor, bool) { return res.ObjectInfo(uid) })
	if err != nil {
		return nil, err
	}
	return &ObjectAdd{ObjectUID: uid, Handle: handle, Info: rec}, nil
}

func decodeObjectRemove(buf *buffer.Buffer) (*ObjectRemove, errs.Error) {
	uid, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	handle, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	return &ObjectRemove{ObjectUID: uid, Handle: handle}, nil
}

func decodeEventRecord(buf *buffer.Buffer, res Resolver) (*EventRecord, errs.Error) {
	objUID, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	handle, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	evUID, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	rec, err := decodeBoundRecord(buf, func() (*descriptor.RecordDescriptor, bool) {
		desc, _, ok := res.Event(objUID, evUID)
		return desc, ok
	})
	if err != nil {
		return nil, err
	}
	return &EventRecord{ObjectUID: objUID, Handle: handle, EventUID: evUID, Info: rec}, nil
}

func decodeBusEvent(buf *buffer.Buffer, res Resolver) (*BusEvent, errs.Error) {
	uid, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	switch uid {
	case descriptor.BusEventConnected, descriptor.BusEventDisconnected, descriptor.BusEventConnectionRefused:
		return nil, errs.New(errs.ProtocolMismatch, "bus event uid %d is reserved for local synthesis, never valid on the wire", uid)
	}
	nAdd, err := buf.ReadU32()
	if err != nil {
		return nil, err
	}
	nRem, err := buf.ReadU32()
	if err != nil {
		return nil, err
	}
	nEvt, err := buf.ReadU32()
	if err != nil {
		return nil, err
	}

	adds := make([]ObjectAdd, 0, nAdd)
	for i := uint32(0); i < nAdd; i++ {
		a, derr := decodeObjectAdd(buf, res)
		if derr != nil {
			return nil, derr
		}
		adds = append(adds, *a)
	}
	removes := make([]ObjectRemove, 0, nRem)
	for i := uint32(0); i < nRem; i++ {
		r, derr := decodeObjectRemove(buf)
		if derr != nil {
			return nil, derr
		}
		removes = append(removes, *r)
	}
	events := make([]EventRecord, 0, nEvt)
	for i := uint32(0); i < nEvt; i++ {
		e, derr := decodeEventRecord(buf, res)
		if derr != nil {
			return nil, derr
		}
		events = append(events, *e)
	}
	return &BusEvent{BusEventUID: uid, Adds: adds, Removes: removes, Events: events}, nil
}

func decodeCall(buf *buffer.Buffer, res Resolver) (*Call, errs.Error) {
	objUID, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	handle, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	methUID, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	callHandle, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	rec, err := decodeBoundRecord(buf, func() (*descriptor.RecordDescriptor, bool) { return res.MethodArgs(objUID, methUID) })
	if err != nil {
		return nil, err
	}
	return &Call{ObjectUID: objUID, Handle: handle, MethodUID: methUID, CallHandle: callHandle, Args: rec}, nil
}

func decodeAck(buf *buffer.Buffer) (*Ack, errs.Error) {
	handle, err := buf.ReadU16()
	if err != nil {
		return nil, err
	}
	status, err := buf.ReadU8()
	if err != nil {
		return nil, err
	}
	return &Ack{CallHandle: handle, Status: errs.CallOutcome(status)}, nil
}

// decodeBoundRecord reads a u32 struct-length followed by that many bytes,
// and -- only if lookup succeeds -- decodes them against the resolved
// descriptor. An unresolved UID still consumes exactly the declared length
// so the surrounding frame stays aligned; the returned record is nil.
func decodeBoundRecord(buf *buffer.Buffer, lookup func() (*descriptor.RecordDescriptor, bool)) (*wire.Record, errs.Error) {
	n, err := buf.ReadU32()
	if err != nil {
		return nil, err
	}
	body, err := buf.ReadBytes(int(n))
	if err != nil {
		return nil, err
	}
	desc, ok := lookup()
	if !ok {
		return nil, nil
	}
	sub := buffer.New(body)
	rec, _, _ := wire.DecodeRecord(sub, desc)
	return rec, nil
}

func decodeWireString(buf *buffer.Buffer) (string, errs.Error) {
	n, err := buf.ReadU32()
	if err != nil {
		return "", err
	}
	if n == 0 {
		return "", nil
	}
	raw, err := buf.ReadBytes(int(n))
	if err != nil {
		return "", err
	}
	if len(raw) > 0 && raw[len(raw)-1] == 0 {
		raw = raw[:len(raw)-1]
	}
	return string(raw), nil
}
