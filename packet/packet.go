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

// Package packet implements the wire frame and packet taxonomy: a 9-byte
// header (4-byte magic, 4-byte total length, 1-byte type), big-endian
// throughout, followed by a type-specific payload built from the wire
// package's record codec.
package packet

import (
	"github.com/nabbar/obus/buffer"
	"github.com/nabbar/obus/descriptor"
	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/wire"
)

// Magic is the 4-byte frame marker 'o','b','u','s'.
const Magic uint32 = 0x6F627573

// HeaderLen is the fixed header size: magic(4) + length(4) + type(1).
const HeaderLen = 9

// ProtocolVersion is the fixed protocol version carried in ConReq.
const ProtocolVersion uint8 = 0x02

// Type enumerates the packet taxonomy.
type Type uint8

const (
	TypeConReq Type = iota
	TypeConResp
	TypeAdd
	TypeRemove
	TypeBusEvent
	TypeEvent
	TypeCall
	TypeAck

	typeCount
)

func (t Type) valid() bool { return t < typeCount }

// ObjectAdd is one object-add record: uid, handle, and the object's full
// info record.
type ObjectAdd struct {
	ObjectUID uint16
	Handle    uint16
	Info      *wire.Record // nil if the decoder could not resolve ObjectUID
}

// ObjectRemove is the Remove packet's payload.
type ObjectRemove struct {
	ObjectUID uint16
	Handle    uint16
}

// EventRecord is one event record: the partial info record an Event or
// BusEvent packet carries for one object.
type EventRecord struct {
	ObjectUID uint16
	Handle    uint16
	EventUID  uint16
	Info      *wire.Record
}

// ConReq is the client's connection request.
type ConReq struct {
	Version    uint8
	BusName    string
	CRC        uint32
	ClientName string
}

// ConResp is the server's handshake response.
type ConResp struct {
	Accepted bool
	Adds     []ObjectAdd
}

// BusEvent is one atomic mutation set.
type BusEvent struct {
	BusEventUID uint16
	Adds        []ObjectAdd
	Removes     []ObjectRemove
	Events      []EventRecord
}

// Call is a client-issued method invocation.
type Call struct {
	ObjectUID  uint16
	Handle     uint16
	MethodUID  uint16
	CallHandle uint16
	Args       *wire.Record
}

// Ack is the server's reply to a Call.
type Ack struct {
	CallHandle uint16
	Status     errs.CallOutcome
}

// Packet is a decoded frame: exactly one of the typed fields matching Type
// is non-nil.
type Packet struct {
	Type     Type
	ConReq   *ConReq
	ConResp  *ConResp
	Add      *ObjectAdd
	Remove   *ObjectRemove
	BusEvent *BusEvent
	Event    *EventRecord
	Call     *Call
	Ack      *Ack
}

// Resolver maps object/event/method UIDs to the record shapes needed to
// decode their payloads, without the packet package depending on a live
// bus/registry. BusResolver below is the descriptor-backed implementation.
type Resolver interface {
	ObjectInfo(objectUID uint16) (*descriptor.RecordDescriptor, bool)
	Event(objectUID, eventUID uint16) (*descriptor.RecordDescriptor, descriptor.EventDescriptor, bool)
	MethodArgs(objectUID, methodUID uint16) (*descriptor.RecordDescriptor, bool)
}

// BusResolver resolves against one static BusDescriptor.
type BusResolver struct {
	Bus *descriptor.BusDescriptor
}

func (r BusResolver) ObjectInfo(uid uint16) (*descriptor.RecordDescriptor, bool) {
	o, ok := r.Bus.Object(uid)
	if !ok {
		return nil, false
	}
	return o.Info, true
}

func (r BusResolver) Event(objUID, evUID uint16) (*descriptor.RecordDescriptor, descriptor.EventDescriptor, bool) {
	o, ok := r.Bus.Object(objUID)
	if !ok {
		return nil, descriptor.EventDescriptor{}, false
	}
	e, ok2 := o.Event(evUID)
	if !ok2 {
		return nil, descriptor.EventDescriptor{}, false
	}
	return o.Info, e, true
}

func (r BusResolver) MethodArgs(objUID, methUID uint16) (*descriptor.RecordDescriptor, bool) {
	o, ok := r.Bus.Object(objUID)
	if !ok {
		return nil, false
	}
	m, ok2 := o.Method(methUID)
	if !ok2 {
		return nil, false
	}
	return m.Args, true
}

// --- header framing ---

// writeHeader reserves and later patches the 9-byte header of one packet
// written starting at buf's current write position. It returns a function
// to call once the payload has been written, patching in the final length.
func writeHeader(buf *buffer.Buffer, t Type) func() {
	start := buf.Pos()
	buf.WriteU32(Magic)
	buf.WriteU32(0) // patched below
	buf.WriteU8(uint8(t))
	return func() {
		var lenBytes [4]byte
		total := buf.Pos() - start
		lenBytes[0] = byte(total >> 24)
		lenBytes[1] = byte(total >> 16)
		lenBytes[2] = byte(total >> 8)
		lenBytes[3] = byte(total)
		buf.WriteAt(start+4, lenBytes[:])
	}
}

// encodeObjectAdd writes one object-add record: uid, handle, struct-length,
// struct body.
func encodeObjectAdd(buf *buffer.Buffer, a ObjectAdd) {
	buf.WriteU16(a.ObjectUID)
	buf.WriteU16(a.Handle)
	lenPos := buf.Pos()
	buf.WriteU32(0)
	bodyStart := buf.Pos()
	wire.EncodeRecord(buf, a.Info)
	patchU32(buf, lenPos, buf.Pos()-bodyStart)
}

func encodeObjectRemove(buf *buffer.Buffer, r ObjectRemove) {
	buf.WriteU16(r.ObjectUID)
	buf.WriteU16(r.Handle)
}

func encodeEventRecord(buf *buffer.Buffer, e EventRecord) {
	buf.WriteU16(e.ObjectUID)
	buf.WriteU16(e.Handle)
	buf.WriteU16(e.EventUID)
	lenPos := buf.Pos()
	buf.WriteU32(0)
	bodyStart := buf.Pos()
	wire.EncodeRecord(buf, e.Info)
	patchU32(buf, lenPos, buf.Pos()-bodyStart)
}

func patchU32(buf *buffer.Buffer, at int, v int) {
	var b [4]byte
	b[0] = byte(v >> 24)
	b[1] = byte(v >> 16)
	b[2] = byte(v >> 8)
	b[3] = byte(v)
	buf.WriteAt(at, b[:])
}

// --- encoders, one per packet type ---

func EncodeConReq(buf *buffer.Buffer, req ConReq) {
	done := writeHeader(buf, TypeConReq)
	buf.WriteU8(req.Version)
	encodeWireString(buf, req.BusName)
	buf.WriteU32(req.CRC)
	encodeWireString(buf, req.ClientName)
	done()
}

func EncodeConResp(buf *buffer.Buffer, resp ConResp) {
	done := writeHeader(buf, TypeConResp)
	if resp.Accepted {
		buf.WriteU8(0)
		buf.WriteU32(uint32(len(resp.Adds)))
		for _, a := range resp.Adds {
			encodeObjectAdd(buf, a)
		}
	} else {
		buf.WriteU8(1)
	}
	done()
}

func EncodeAdd(buf *buffer.Buffer, a ObjectAdd) {
	done := writeHeader(buf, TypeAdd)
	encodeObjectAdd(buf, a)
	done()
}

func EncodeRemove(buf *buffer.Buffer, r ObjectRemove) {
	done := writeHeader(buf, TypeRemove)
	encodeObjectRemove(buf, r)
	done()
}

func EncodeBusEvent(buf *buffer.Buffer, be BusEvent) {
	done := writeHeader(buf, TypeBusEvent)
	buf.WriteU16(be.BusEventUID)
	buf.WriteU32(uint32(len(be.Adds)))
	buf.WriteU32(uint32(len(be.Removes)))
	buf.WriteU32(uint32(len(be.Events)))
	for _, a := range be.Adds {
		encodeObjectAdd(buf, a)
	}
	for _, r := range be.Removes {
		encodeObjectRemove(buf, r)
	}
	for _, e := range be.Events {
		encodeEventRecord(buf, e)
	}
	done()
}

func EncodeEvent(buf *buffer.Buffer, e EventRecord) {
	done := writeHeader(buf, TypeEvent)
	encodeEventRecord(buf, e)
	done()
}

func EncodeCall(buf *buffer.Buffer, c Call) {
	done := writeHeader(buf, TypeCall)
	buf.WriteU16(c.ObjectUID)
	buf.WriteU16(c.Handle)
	buf.WriteU16(c.MethodUID)
	buf.WriteU16(c.CallHandle)
	lenPos := buf.Pos()
	buf.WriteU32(0)
	bodyStart := buf.Pos()
	wire.EncodeRecord(buf, c.Args)
	patchU32(buf, lenPos, buf.Pos()-bodyStart)
	done()
}

func EncodeAck(buf *buffer.Buffer, a Ack) {
	done := writeHeader(buf, TypeAck)
	buf.WriteU16(a.CallHandle)
	buf.WriteU8(uint8(a.Status))
	done()
}

func encodeWireString(buf *buffer.Buffer, s string) {
	if s == "" {
		buf.WriteU32(0)
		return
	}
	raw := append([]byte(s), 0)
	buf.WriteU32(uint32(len(raw)))
	buf.WriteBytes(raw)
}
