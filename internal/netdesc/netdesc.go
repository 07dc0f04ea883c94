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

// Package netdesc is a hand-built descriptor graph for a small network
// interface bus, used as a fixture across this module's tests: one
// net_interface object with a state enum, a handful of properties, a
// traffic counter array, and two methods (up/down).
package netdesc

import "github.com/nabbar/obus/descriptor"

// Field UIDs for the net_interface object's info record.
const (
	FieldName      uint16 = 1
	FieldState     uint16 = 2
	FieldHWAddr    uint16 = 3
	FieldIPAddr    uint16 = 4
	FieldBroadcast uint16 = 5
	FieldNetmask   uint16 = 6
	FieldBytes     uint16 = 7
	FieldMethodUp  uint16 = 8
	FieldMethodDown uint16 = 9
)

// Event UIDs.
const (
	EventUp          uint16 = 1
	EventDown        uint16 = 2
	EventConfigured  uint16 = 3
	EventTraffic     uint16 = 4
	EventUpFailed    uint16 = 5
	EventDownFailed  uint16 = 6
)

// Method UIDs.
const (
	MethodUp   uint16 = 1
	MethodDown uint16 = 2
)

// ObjectUID is net_interface's object descriptor UID.
const ObjectUID uint16 = 1

// StateDriver models enum net_interface_state: UP=1, DOWN=-3. The negative
// default exercises the case an EnumDriver.Default need not be zero.
var StateDriver = &descriptor.EnumDriver{
	Name:    "net_interface_state",
	Size:    4,
	Default: -3,
	Validate: func(v int64) bool { return v == 1 || v == -3 },
	Format: func(v int64) string {
		if v == 1 {
			return "up"
		}
		return "down"
	},
}

// MethodStateDriver models obus_method_state (disabled/enabled/running).
var MethodStateDriver = &descriptor.EnumDriver{
	Name:    "method_state",
	Size:    1,
	Default: 0,
	Validate: func(v int64) bool { return v >= 0 && v <= 2 },
	Format: func(v int64) string {
		switch v {
		case 0:
			return "disabled"
		case 1:
			return "enabled"
		default:
			return "running"
		}
	},
}

func infoDescriptor() *descriptor.RecordDescriptor {
	return &descriptor.RecordDescriptor{
		Fields: []descriptor.FieldDescriptor{
			{UID: FieldName, Name: "name", Index: 0, Role: descriptor.RoleProperty, Type: descriptor.KindString},
			{UID: FieldState, Name: "state", Index: 1, Role: descriptor.RoleProperty, Type: descriptor.KindEnum, Enum: StateDriver},
			{UID: FieldHWAddr, Name: "hw_addr", Index: 2, Role: descriptor.RoleProperty, Type: descriptor.KindString},
			{UID: FieldIPAddr, Name: "ip_addr", Index: 3, Role: descriptor.RoleProperty, Type: descriptor.KindString},
			{UID: FieldBroadcast, Name: "broadcast", Index: 4, Role: descriptor.RoleProperty, Type: descriptor.KindString},
			{UID: FieldNetmask, Name: "netmask", Index: 5, Role: descriptor.RoleProperty, Type: descriptor.KindString},
			{UID: FieldBytes, Name: "bytes", Index: 6, Role: descriptor.RoleProperty, Type: descriptor.KindU64, Array: true},
			{UID: FieldMethodUp, Name: "method_up", Index: 7, Role: descriptor.RoleMethod, Type: descriptor.KindEnum, Enum: MethodStateDriver},
			{UID: FieldMethodDown, Name: "method_down", Index: 8, Role: descriptor.RoleMethod, Type: descriptor.KindEnum, Enum: MethodStateDriver},
		},
	}
}

func upArgsDescriptor() *descriptor.RecordDescriptor {
	return &descriptor.RecordDescriptor{
		Fields: []descriptor.FieldDescriptor{
			{UID: 1, Name: "ip_addr", Index: 0, Role: descriptor.RoleArgument, Type: descriptor.KindString},
			{UID: 2, Name: "netmask", Index: 1, Role: descriptor.RoleArgument, Type: descriptor.KindString},
		},
	}
}

// NetInterface builds the net_interface ObjectDescriptor.
func NetInterface() descriptor.ObjectDescriptor {
	return descriptor.ObjectDescriptor{
		UID:  ObjectUID,
		Name: "net_interface",
		Info: infoDescriptor(),
		Events: []descriptor.EventDescriptor{
			{UID: EventUp, Name: "up", Updates: []uint16{FieldState}},
			{UID: EventDown, Name: "down", Updates: []uint16{FieldState}},
			{UID: EventConfigured, Name: "configured", Updates: []uint16{FieldIPAddr, FieldBroadcast, FieldNetmask}},
			{UID: EventTraffic, Name: "traffic", Updates: []uint16{FieldBytes}},
			{UID: EventUpFailed, Name: "up_failed", Updates: []uint16{FieldMethodUp}},
			{UID: EventDownFailed, Name: "down_failed", Updates: []uint16{FieldMethodDown}},
		},
		Methods: []descriptor.MethodDescriptor{
			{UID: MethodUp, Name: "up", Args: upArgsDescriptor()},
			{UID: MethodDown, Name: "down", Args: &descriptor.RecordDescriptor{}},
		},
	}
}

// Bus builds the whole net bus descriptor, with its CRC computed over the
// object graph so handshakes against it are reproducible.
func Bus() *descriptor.BusDescriptor {
	b := &descriptor.BusDescriptor{
		Name:    "net",
		Objects: []descriptor.ObjectDescriptor{NetInterface()},
	}
	b.CRC = descriptor.ComputeCRC(b)
	return b
}
