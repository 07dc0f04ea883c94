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

package wire

import (
	"github.com/nabbar/obus/buffer"
	"github.com/nabbar/obus/descriptor"
	"github.com/nabbar/obus/errs"
)

// errUnknownEnumSize signals that a field record carries an enum value
// whose byte width cannot be determined because its UID is not in the
// enclosing descriptor. The struct codec treats this as "abandon the rest
// of this struct and realign on the declared struct length."
var errUnknownEnumSize = errs.New(errs.ProtocolMismatch, "unknown enum field: cannot determine wire width")

func enumSize(f descriptor.FieldDescriptor) uint8 {
	if f.Enum != nil {
		return f.Enum.Size
	}
	return 4
}

// encodeScalar writes one non-array value of kind k (enumSz only matters
// for KindEnum).
func encodeScalar(buf *buffer.Buffer, k descriptor.Kind, v Value, enumSz uint8) {
	switch k {
	case descriptor.KindU8:
		buf.WriteU8(v.AsU8())
	case descriptor.KindI8:
		buf.WriteU8(uint8(v.AsI8()))
	case descriptor.KindU16:
		buf.WriteU16(v.AsU16())
	case descriptor.KindI16:
		buf.WriteU16(uint16(v.AsI16()))
	case descriptor.KindU32:
		buf.WriteU32(v.AsU32())
	case descriptor.KindI32:
		buf.WriteU32(uint32(v.AsI32()))
	case descriptor.KindU64:
		buf.WriteU64(v.AsU64())
	case descriptor.KindI64:
		buf.WriteU64(uint64(v.AsI64()))
	case descriptor.KindF32:
		// F32() stores the IEEE-754 bit pattern directly in bits.
		buf.WriteU32(v.AsU32())
	case descriptor.KindF64:
		buf.WriteU64(v.AsU64())
	case descriptor.KindBool:
		if v.AsBool() {
			buf.WriteU8(1)
		} else {
			buf.WriteU8(0)
		}
	case descriptor.KindString:
		encodeString(buf, v.AsStr())
	case descriptor.KindEnum:
		encodeEnum(buf, v.AsEnum(), enumSz)
	}
}

func decodeScalar(buf *buffer.Buffer, k descriptor.Kind, enumSz uint8) (Value, errs.Error) {
	switch k {
	case descriptor.KindU8:
		v, err := buf.ReadU8()
		return U8(v), err
	case descriptor.KindI8:
		v, err := buf.ReadU8()
		return I8(int8(v)), err
	case descriptor.KindU16:
		v, err := buf.ReadU16()
		return U16(v), err
	case descriptor.KindI16:
		v, err := buf.ReadU16()
		return I16(int16(v)), err
	case descriptor.KindU32:
		v, err := buf.ReadU32()
		return U32(v), err
	case descriptor.KindI32:
		v, err := buf.ReadU32()
		return I32(int32(v)), err
	case descriptor.KindU64:
		v, err := buf.ReadU64()
		return U64(v), err
	case descriptor.KindI64:
		v, err := buf.ReadU64()
		return I64(int64(v)), err
	case descriptor.KindF32:
		v, err := buf.ReadU32()
		return Value{bits: uint64(v)}, err
	case descriptor.KindF64:
		v, err := buf.ReadU64()
		return Value{bits: v}, err
	case descriptor.KindBool:
		v, err := buf.ReadU8()
		return Bool(v != 0), err
	case descriptor.KindString:
		s, err := decodeString(buf)
		return Str(s), err
	case descriptor.KindEnum:
		v, err := decodeEnum(buf, enumSz)
		return Enum(v), err
	default:
		return Value{}, errs.New(errs.ProtocolMismatch, "unknown field kind %d", k)
	}
}

func encodeString(buf *buffer.Buffer, s string) {
	if s == "" {
		buf.WriteU32(0)
		return
	}
	raw := append([]byte(s), 0)
	buf.WriteU32(uint32(len(raw)))
	buf.WriteBytes(raw)
}

func decodeString(buf *buffer.Buffer) (string, errs.Error) {
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

func encodeEnum(buf *buffer.Buffer, v int64, size uint8) {
	switch size {
	case 1:
		buf.WriteU8(uint8(v))
	case 2:
		buf.WriteU16(uint16(v))
	case 4:
		buf.WriteU32(uint32(v))
	default:
		buf.WriteU64(uint64(v))
	}
}

func decodeEnum(buf *buffer.Buffer, size uint8) (int64, errs.Error) {
	switch size {
	case 1:
		v, err := buf.ReadU8()
		return int64(int8(v)), err
	case 2:
		v, err := buf.ReadU16()
		return int64(int16(v)), err
	case 4:
		v, err := buf.ReadU32()
		return int64(int32(v)), err
	default:
		v, err := buf.ReadU64()
		return int64(v), err
	}
}

// scalarWireSize returns the byte width of one non-array scalar of kind k,
// or 0 for String (which is self-delimited by its own length prefix) and
// -1 when k is Enum and enumSz is unknown (size 0).
func scalarWireSize(k descriptor.Kind, enumSz uint8) int {
	switch k {
	case descriptor.KindU8, descriptor.KindI8, descriptor.KindBool:
		return 1
	case descriptor.KindU16, descriptor.KindI16:
		return 2
	case descriptor.KindU32, descriptor.KindI32, descriptor.KindF32:
		return 4
	case descriptor.KindU64, descriptor.KindI64, descriptor.KindF64:
		return 8
	case descriptor.KindString:
		return 0
	case descriptor.KindEnum:
		if enumSz == 0 {
			return -1
		}
		return int(enumSz)
	default:
		return -1
	}
}

// skipValue consumes and discards a value of kind k (array or not) without
// decoding it: an unrecognised field UID is still consumed by type so the
// cursor stays aligned for the fields that follow it.
func skipValue(buf *buffer.Buffer, k descriptor.Kind, array bool, enumSz uint8) errs.Error {
	if !array {
		return skipScalar(buf, k, enumSz)
	}
	n, err := buf.ReadU32()
	if err != nil {
		return err
	}
	for i := uint32(0); i < n; i++ {
		if err = skipScalar(buf, k, enumSz); err != nil {
			return err
		}
	}
	return nil
}

func skipScalar(buf *buffer.Buffer, k descriptor.Kind, enumSz uint8) errs.Error {
	if k == descriptor.KindString {
		_, err := decodeString(buf)
		return err
	}
	size := scalarWireSize(k, enumSz)
	if size < 0 {
		return errUnknownEnumSize
	}
	_, err := buf.ReadBytes(size)
	return err
}
