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

// Package object holds the live, mutable counterparts of a descriptor
// graph: one Object per registered instance, its current info snapshot,
// and the method handlers a server binds to it.
package object

import (
	"sync"

	"github.com/nabbar/obus/descriptor"
	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/wire"
)

// MethodHandler executes one server-side method call and returns its
// outcome plus an optional result record (nil when the method has no
// output fields).
type MethodHandler func(args *wire.Record) (errs.CallOutcome, *wire.Record)

// Object is one live instance of an ObjectDescriptor: a handle, its current
// info snapshot, and, on the server side, the handlers bound to its
// methods.
type Object struct {
	mu sync.RWMutex

	Desc   *descriptor.ObjectDescriptor
	Handle uint16

	info     *wire.Record
	handlers map[uint16]MethodHandler
}

// New builds an Object with an empty info record (every enum field at its
// descriptor default, every other field absent).
func New(desc *descriptor.ObjectDescriptor, handle uint16) *Object {
	return &Object{
		Desc:     desc,
		Handle:   handle,
		info:     wire.NewRecord(desc.Info),
		handlers: make(map[uint16]MethodHandler),
	}
}

// Info returns a snapshot clone of the object's current info record, safe
// for the caller to read or mutate without affecting the live object.
func (o *Object) Info() *wire.Record {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.info.Clone()
}

// Apply merges an update record into the live info record, field by field,
// and returns the merged snapshot -- used both when a server commits a
// local mutation and when a client applies an incoming Add/Event record.
func (o *Object) Apply(update *wire.Record) *wire.Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.info.Merge(update)
	return o.info.Clone()
}

// Bind registers the handler invoked for methodUID. A zero-value handler
// (nil) makes the method MethodDisabled for subsequent calls.
func (o *Object) Bind(methodUID uint16, h MethodHandler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if h == nil {
		delete(o.handlers, methodUID)
		return
	}
	o.handlers[methodUID] = h
}

// Invoke dispatches a method call against this object's bound handlers.
// It reports MethodNotSupported when methodUID is not in the descriptor,
// MethodDisabled when the descriptor knows it but no handler is bound.
func (o *Object) Invoke(methodUID uint16, args *wire.Record) (errs.CallOutcome, *wire.Record) {
	if _, ok := o.Desc.Method(methodUID); !ok {
		return errs.MethodNotSupported, nil
	}
	o.mu.RLock()
	h, ok := o.handlers[methodUID]
	o.mu.RUnlock()
	if !ok {
		return errs.MethodDisabled, nil
	}
	return h(args)
}
