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

// Package wire is the typed field and record codec: the symmetric
// encode/decode of heterogeneous fields (scalars, enums, strings, floats,
// arrays), plus a presence-bitset record representation -- an info record
// is modeled here as a pair of parallel arrays indexed by descriptor order
// (a *bitset.BitSet of "is this field present" plus a []Value of payloads)
// rather than as a generated struct with one Option[T] field, since Go has
// no sum-type-friendly Option type to generate against.
package wire

import "math"

// Value is a tagged scalar/array payload. Which accessor is meaningful
// depends on the FieldDescriptor.Type of the field the Value is stored
// under -- Value itself carries no type tag beyond "scalar bits", "string"
// or "array", the same way the wire format does.
type Value struct {
	bits uint64
	str  string
	arr  []Value
}

func U8(v uint8) Value   { return Value{bits: uint64(v)} }
func I8(v int8) Value    { return Value{bits: uint64(uint8(v))} }
func U16(v uint16) Value { return Value{bits: uint64(v)} }
func I16(v int16) Value  { return Value{bits: uint64(uint16(v))} }
func U32(v uint32) Value { return Value{bits: uint64(v)} }
func I32(v int32) Value  { return Value{bits: uint64(uint32(v))} }
func U64(v uint64) Value { return Value{bits: v} }
func I64(v int64) Value  { return Value{bits: uint64(v)} }
func F32(v float32) Value { return Value{bits: uint64(math.Float32bits(v))} }
func F64(v float64) Value { return Value{bits: math.Float64bits(v)} }
func Bool(v bool) Value {
	if v {
		return Value{bits: 1}
	}
	return Value{bits: 0}
}
func Str(v string) Value   { return Value{str: v} }
func Enum(v int64) Value   { return Value{bits: uint64(v)} }
func Arr(items ...Value) Value { return Value{arr: items} }

func (v Value) AsU8() uint8     { return uint8(v.bits) }
func (v Value) AsI8() int8      { return int8(v.bits) }
func (v Value) AsU16() uint16   { return uint16(v.bits) }
func (v Value) AsI16() int16    { return int16(v.bits) }
func (v Value) AsU32() uint32   { return uint32(v.bits) }
func (v Value) AsI32() int32    { return int32(v.bits) }
func (v Value) AsU64() uint64   { return v.bits }
func (v Value) AsI64() int64    { return int64(v.bits) }
func (v Value) AsF32() float32  { return math.Float32frombits(uint32(v.bits)) }
func (v Value) AsF64() float64  { return math.Float64frombits(v.bits) }
func (v Value) AsBool() bool    { return v.bits != 0 }
func (v Value) AsStr() string   { return v.str }
func (v Value) AsEnum() int64   { return int64(v.bits) }
func (v Value) AsArr() []Value  { return v.arr }

// Equal reports deep value equality, used by round-trip tests.
func (v Value) Equal(o Value) bool {
	if v.str != o.str || v.bits != o.bits {
		return false
	}
	if len(v.arr) != len(o.arr) {
		return false
	}
	for i := range v.arr {
		if !v.arr[i].Equal(o.arr[i]) {
			return false
		}
	}
	return true
}
