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

package object

import (
	"github.com/nabbar/obus/descriptor"
	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/wire"
)

// CallCallback receives the terminal outcome of a method call the client
// issued, plus a result record. An Ack carries only a status, so bus.Client
// always passes nil as the result.
type CallCallback func(status errs.CallOutcome, result *wire.Record)

// Call is one client-side pending method invocation: enough to re-encode
// the request if the connection is still up, and to resolve exactly one
// callback once an Ack for its handle arrives.
type Call struct {
	Handle     uint16
	ObjectUID  uint16
	TargetUID  uint16 // the object instance's handle, not its descriptor UID
	MethodDesc descriptor.MethodDescriptor
	Args       *wire.Record
	Callback   CallCallback
}

// Resolve invokes the call's callback exactly once. Callers must ensure a
// given Call's Resolve is never called twice -- the registry enforces this
// by removing the call's handle before invoking Resolve.
func (c *Call) Resolve(status errs.CallOutcome, result *wire.Record) {
	if c.Callback != nil {
		c.Callback(status, result)
	}
}

// PendingServerCall is the server-side transient state for one call still
// being dispatched to a method handler: the minimum needed to write the Ack
// after Object.Invoke returns.
type PendingServerCall struct {
	CallHandle uint16
	ObjectUID  uint16
	Handle     uint16
	MethodUID  uint16
	Args       *wire.Record
}
