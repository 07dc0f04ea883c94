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

// Package descriptor holds the static, compile-time schema graph a bus is
// built from. A descriptor generator would normally produce these tables;
// this package only defines the shapes they fill in and assumes callers
// construct them once, at process start, and never mutate them afterward --
// the entire graph is read-only and shared across every bus endpoint built
// from it.
package descriptor

// Role classifies a field within its enclosing record.
type Role uint8

const (
	RoleProperty Role = iota
	RoleMethod
	RoleArgument
)

// Kind is the wire primitive type of one field, excluding the array flag:
// the wire type byte packs this into its low 7 bits, with the high bit
// marking the field as an array of Kind.
type Kind uint8

const (
	KindU8 Kind = iota
	KindI8
	KindU16
	KindI16
	KindU32
	KindI32
	KindU64
	KindI64
	KindF32
	KindF64
	KindBool
	KindString
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindI8:
		return "i8"
	case KindU16:
		return "u16"
	case KindI16:
		return "i16"
	case KindU32:
		return "u32"
	case KindI32:
		return "i32"
	case KindU64:
		return "u64"
	case KindI64:
		return "i64"
	case KindF32:
		return "f32"
	case KindF64:
		return "f64"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindEnum:
		return "enum"
	default:
		return "unknown"
	}
}

// EnumDriver describes one enum type: its wire size, its decoded default
// (which need not be zero -- a driver like net_interface_state can default
// to a negative member such as DOWN = -3), a validator and a formatter.
type EnumDriver struct {
	Name     string
	Size     uint8 // 1, 2, 4 or 8 bytes on the wire
	Default  int64
	Validate func(v int64) bool
	Format   func(v int64) string
}

// FieldDescriptor describes one field of a record (info struct or method
// argument struct). Fields are addressed by descriptor order rather than by
// a byte offset into a packed struct, so Index is this field's position
// within its RecordDescriptor and doubles as the bit position in that
// record's presence bitset.
type FieldDescriptor struct {
	UID     uint16
	Name    string
	Index   int
	Role    Role
	Type    Kind
	Array   bool
	Enum    *EnumDriver // non-nil iff Type == KindEnum
}

// typeByte encodes Type/Array as the wire's single type byte.
func (f FieldDescriptor) typeByte() byte {
	b := byte(f.Type)
	if f.Array {
		b |= 0x80
	}
	return b
}

// TypeByte is the public accessor for the wire type byte.
func (f FieldDescriptor) TypeByte() byte { return f.typeByte() }

// RecordDescriptor is the shape of one info struct or method argument
// struct: an ordered list of fields plus a cached UID -> index map.
type RecordDescriptor struct {
	Fields []FieldDescriptor

	byUID map[uint16]int
}

// Index builds (once) and returns the field whose UID is uid, or false.
func (r *RecordDescriptor) Index(uid uint16) (FieldDescriptor, bool) {
	if r.byUID == nil {
		r.byUID = make(map[uint16]int, len(r.Fields))
		for i, f := range r.Fields {
			r.byUID[f.UID] = i
		}
	}
	idx, ok := r.byUID[uid]
	if !ok {
		return FieldDescriptor{}, false
	}
	return r.Fields[idx], true
}

// EventDescriptor names the fields (by UID) one event is permitted to
// mutate -- its update set.
type EventDescriptor struct {
	UID     uint16
	Name    string
	Updates []uint16
}

// Allows reports whether fieldUID is in this event's update set.
func (e EventDescriptor) Allows(fieldUID uint16) bool {
	for _, u := range e.Updates {
		if u == fieldUID {
			return true
		}
	}
	return false
}

// MethodDescriptor describes one server-side method an object exposes.
type MethodDescriptor struct {
	UID  uint16
	Name string
	Args *RecordDescriptor
}

// ObjectDescriptor describes one kind of object a bus exposes.
type ObjectDescriptor struct {
	UID     uint16
	Name    string
	Info    *RecordDescriptor
	Events  []EventDescriptor
	Methods []MethodDescriptor
}

// Event looks up one of this object's event descriptors by UID.
func (o *ObjectDescriptor) Event(uid uint16) (EventDescriptor, bool) {
	for _, e := range o.Events {
		if e.UID == uid {
			return e, true
		}
	}
	return EventDescriptor{}, false
}

// Method looks up one of this object's method descriptors by UID.
func (o *ObjectDescriptor) Method(uid uint16) (MethodDescriptor, bool) {
	for _, m := range o.Methods {
		if m.UID == uid {
			return m, true
		}
	}
	return MethodDescriptor{}, false
}

// Reserved bus-event UIDs. The packet decoder rejects them on the wire.
// bus.Client does not emit them: it reports each object of a ConResp
// snapshot through OnBusEvent with uid 0, and reports disconnection and
// refusal through its OnDisconnected and OnRefused hooks.
const (
	BusEventConnected         uint16 = 1
	BusEventDisconnected      uint16 = 2
	BusEventConnectionRefused uint16 = 3
)

// BusEventDescriptor names one kind of atomic mutation set a server can
// send.
type BusEventDescriptor struct {
	UID  uint16
	Name string
}

// BusDescriptor is the whole static schema graph for one bus.
type BusDescriptor struct {
	Name      string
	CRC       uint32
	Objects   []ObjectDescriptor
	BusEvents []BusEventDescriptor
}

// Object looks up an object descriptor by UID.
func (b *BusDescriptor) Object(uid uint16) (*ObjectDescriptor, bool) {
	for i := range b.Objects {
		if b.Objects[i].UID == uid {
			return &b.Objects[i], true
		}
	}
	return nil, false
}

// BusEvent looks up a bus-event descriptor by UID, including the three
// reserved synthetic ones.
func (b *BusDescriptor) BusEvent(uid uint16) (BusEventDescriptor, bool) {
	switch uid {
	case BusEventConnected:
		return BusEventDescriptor{UID: uid, Name: "connected"}, true
	case BusEventDisconnected:
		return BusEventDescriptor{UID: uid, Name: "disconnected"}, true
	case BusEventConnectionRefused:
		return BusEventDescriptor{UID: uid, Name: "connection_refused"}, true
	}
	for _, e := range b.BusEvents {
		if e.UID == uid {
			return e, true
		}
	}
	return BusEventDescriptor{}, false
}
