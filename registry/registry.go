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

package registry

import (
	"sync"

	"github.com/nabbar/obus/object"
)

// Provider holds the callbacks a client registers (through
// bus.Client.SetProvider) for one object UID. At most one provider may claim a given UID at a time.
type Provider struct {
	OnAdd    func(o *object.Object)
	OnRemove func(o *object.Object)
	OnEvent  func(e *object.Event)
}

// Registry is the live table set for one bus endpoint (client or server):
// objects by handle, pending calls by handle, and providers by object UID.
type Registry struct {
	Handles *HandleAllocator

	mu        sync.RWMutex
	objects   map[uint16]*object.Object
	calls     map[uint16]*object.Call
	providers map[uint16]*Provider
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{
		Handles:   NewHandleAllocator(),
		objects:   make(map[uint16]*object.Object),
		calls:     make(map[uint16]*object.Call),
		providers: make(map[uint16]*Provider),
	}
}

// PutObject stores o under its handle.
func (r *Registry) PutObject(o *object.Object) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.objects[o.Handle] = o
}

// Object returns the live object registered under handle.
func (r *Registry) Object(handle uint16) (*object.Object, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.objects[handle]
	return o, ok
}

// RemoveObject drops handle from the table and releases it for reuse.
func (r *Registry) RemoveObject(handle uint16) {
	r.mu.Lock()
	delete(r.objects, handle)
	r.mu.Unlock()
	r.Handles.Release(handle)
}

// Objects returns a snapshot slice of every currently-registered object.
func (r *Registry) Objects() []*object.Object {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*object.Object, 0, len(r.objects))
	for _, o := range r.objects {
		out = append(out, o)
	}
	return out
}

// PutCall stores a pending call under its handle.
func (r *Registry) PutCall(c *object.Call) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls[c.Handle] = c
}

// TakeCall removes and returns the pending call registered under handle --
// "take" rather than "get" because a call handle resolves at most once: an
// Ack either completes it here or the handle stays orphaned forever.
func (r *Registry) TakeCall(handle uint16) (*object.Call, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.calls[handle]
	if ok {
		delete(r.calls, handle)
	}
	return c, ok
}

// PendingCalls returns every call still awaiting an Ack, used to abort them
// all when the connection drops mid-flight.
func (r *Registry) PendingCalls() []*object.Call {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*object.Call, 0, len(r.calls))
	for _, c := range r.calls {
		out = append(out, c)
	}
	return out
}

// ClearCalls empties the pending-call table, returning what it held.
func (r *Registry) ClearCalls() []*object.Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*object.Call, 0, len(r.calls))
	for h, c := range r.calls {
		out = append(out, c)
		delete(r.calls, h)
	}
	return out
}

// TakeCallsForTarget removes and returns every pending call whose TargetUID
// is handle, used to abort in-flight calls on an object the instant it is
// removed, before any remove callback fires.
func (r *Registry) TakeCallsForTarget(handle uint16) []*object.Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*object.Call
	for h, c := range r.calls {
		if c.TargetUID == handle {
			out = append(out, c)
			delete(r.calls, h)
		}
	}
	return out
}

// SetProvider claims objectUID for one provider. It returns false if a
// provider already holds that UID.
func (r *Registry) SetProvider(objectUID uint16, p *Provider) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.providers[objectUID]; taken {
		return false
	}
	r.providers[objectUID] = p
	return true
}

// Provider returns the provider claiming objectUID, if any.
func (r *Registry) Provider(objectUID uint16) (*Provider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[objectUID]
	return p, ok
}

// ClearProvider releases objectUID so a future provider may claim it.
func (r *Registry) ClearProvider(objectUID uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, objectUID)
}
