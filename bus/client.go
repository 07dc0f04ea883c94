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
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"github.com/nabbar/obus/buffer"
	"github.com/nabbar/obus/descriptor"
	"github.com/nabbar/obus/errs"
	"github.com/nabbar/obus/iochannel"
	"github.com/nabbar/obus/logging"
	"github.com/nabbar/obus/metrics"
	"github.com/nabbar/obus/object"
	"github.com/nabbar/obus/packet"
	"github.com/nabbar/obus/reactor"
	"github.com/nabbar/obus/registry"
	"github.com/nabbar/obus/transport"
	"github.com/nabbar/obus/wire"
)

// ClientHooks are the callbacks a program wires to observe bus activity.
// Every field is optional.
type ClientHooks struct {
	OnBusEvent func(uid uint16, adds, removes []*object.Object, events []*object.Event)
	OnRefused  func()
	OnDisconnected func(err errs.Error)
}

// Client is one connection to a bus, with its own registry of objects and
// pending calls.
type Client struct {
	Name string
	Desc *descriptor.BusDescriptor
	Reg  *registry.Registry

	log logging.Logger
	m   *metrics.Collectors
	rx  *reactor.Reactor
	hk  ClientHooks

	state  stateBox
	mu     sync.Mutex
	ch     *iochannel.Channel
	pool   *buffer.Pool
	cancel context.CancelFunc
}

// NewClient builds a disconnected Client bound to desc.
func NewClient(name string, desc *descriptor.BusDescriptor, log logging.Logger, m *metrics.Collectors, rx *reactor.Reactor, hk ClientHooks) *Client {
	c := &Client{
		Name: name,
		Desc: desc,
		Reg:  registry.New(),
		log:  log,
		m:    m,
		rx:   rx,
		hk:   hk,
		pool: buffer.NewPool(1024),
	}
	c.state.store(int32(ClientIdle))
	return c
}

// State returns the client connection engine's current state.
func (c *Client) State() ClientState { return ClientState(c.state.load()) }

// Connect dials addr, retrying indefinitely until ctx is cancelled or the
// connection completes, then queues the ConReq handshake packet and
// returns. The state moves to Connected or Refused later, when the
// server's ConResp arrives.
func (c *Client) Connect(ctx context.Context, addr transport.Address) errs.Error {
	c.state.store(int32(ClientConnecting))
	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancel = cancel
	c.mu.Unlock()

	fd, err := transport.Dial(ctx, addr, c.log)
	if err != nil {
		c.state.store(int32(ClientDisconnected))
		return err
	}

	connID := uuid.NewString()
	connLog := c.log
	if connLog != nil {
		connLog = connLog.WithFields(logging.Fields{"conn": connID, "addr": addr.String()})
	}

	res := packet.BusResolver{Bus: c.Desc}
	readBuf := buffer.New(nil)
	dec := packet.NewDecoder(readBuf, res, connLog)
	ch := iochannel.New(fd, addr.String(), dec, readBuf, c.rx, c.m)
	c.mu.Lock()
	c.ch = ch
	c.mu.Unlock()

	if err = c.rx.Register(fd, reactor.Callbacks{
		OnReadable: func() { c.onReadable() },
		OnWritable: func() { _ = ch.OnWritable() },
		OnError:    func(e errs.Error) { c.onDisconnected(e) },
	}); err != nil {
		_ = unix.Close(fd)
		c.state.store(int32(ClientDisconnected))
		return err
	}

	req := packet.ConReq{
		Version:    packet.ProtocolVersion,
		BusName:    c.Desc.Name,
		CRC:        c.Desc.CRC,
		ClientName: c.Name,
	}
	b := c.pool.Get()
	packet.EncodeConReq(b, req)
	return ch.Enqueue(b)
}

// Disconnect tears down the connection and stops any in-flight reconnect
// attempt.
func (c *Client) Disconnect() {
	c.state.store(int32(ClientDisconnecting))
	c.mu.Lock()
	cancel := c.cancel
	ch := c.ch
	c.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	if ch != nil {
		c.rx.Unregister(ch.Fd())
		ch.Close()
		_ = unix.Close(ch.Fd())
	}
	for _, call := range c.Reg.ClearCalls() {
		call.Resolve(errs.Aborted, nil)
	}
	c.state.store(int32(ClientDisconnected))
}

// Call issues a method invocation against a server-registered object and
// resolves cb exactly once, either on the matching Ack or immediately with
// Aborted if the connection is not currently up.
func (c *Client) Call(target *object.Object, method descriptor.MethodDescriptor, args *wire.Record, cb object.CallCallback) errs.Error {
	if c.State() != ClientConnected {
		if cb != nil {
			cb(errs.Aborted, nil)
		}
		return errs.New(errs.InvalidState, "client %q is not connected", c.Name)
	}
	handle, err := c.Reg.Handles.Alloc()
	if err != nil {
		return err
	}
	call := &object.Call{
		Handle:     handle,
		ObjectUID:  target.Desc.UID,
		TargetUID:  target.Handle,
		MethodDesc: method,
		Args:       args,
		Callback:   cb,
	}
	c.Reg.PutCall(call)

	b := c.pool.Get()
	packet.EncodeCall(b, packet.Call{
		ObjectUID:  target.Desc.UID,
		Handle:     target.Handle,
		MethodUID:  method.UID,
		CallHandle: handle,
		Args:       args,
	})
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	if ch == nil {
		return errs.New(errs.InvalidState, "client %q has no active channel", c.Name)
	}
	return ch.Enqueue(b)
}

func (c *Client) onReadable() {
	c.mu.Lock()
	ch := c.ch
	c.mu.Unlock()
	if ch == nil {
		return
	}
	pkts, err := ch.OnReadable()
	if err != nil {
		c.onDisconnected(err)
		return
	}
	for _, p := range pkts {
		c.handle(p)
	}
}

func (c *Client) handle(p *packet.Packet) {
	switch p.Type {
	case packet.TypeConResp:
		if !p.ConResp.Accepted {
			c.state.store(int32(ClientRefused))
			if c.hk.OnRefused != nil {
				c.hk.OnRefused()
			}
			return
		}
		for _, a := range p.ConResp.Adds {
			c.adoptAdd(a)
		}
		c.state.store(int32(ClientConnected))
	case packet.TypeAdd:
		c.adoptAdd(*p.Add)
	case packet.TypeRemove:
		if o, ok := c.Reg.Object(p.Remove.Handle); ok {
			c.abortCallsOn(p.Remove.Handle)
			c.Reg.RemoveObject(p.Remove.Handle)
			c.notifyRemove(o)
			if c.hk.OnBusEvent != nil {
				c.hk.OnBusEvent(0, nil, []*object.Object{o}, nil)
			}
		}
	case packet.TypeEvent:
		c.applyEvent(*p.Event)
	case packet.TypeBusEvent:
		c.applyBusEvent(p.BusEvent)
	case packet.TypeAck:
		if call, ok := c.Reg.TakeCall(p.Ack.CallHandle); ok {
			if c.m != nil {
				c.m.ObserveAck(p.Ack.Status)
			}
			call.Resolve(p.Ack.Status, nil)
		}
	}
}

func (c *Client) adoptAdd(a packet.ObjectAdd) {
	od, ok := c.Desc.Object(a.ObjectUID)
	if !ok {
		return
	}
	o := object.New(od, a.Handle)
	if a.Info != nil {
		o.Apply(a.Info)
	}
	c.Reg.Handles.Reserve(a.Handle)
	c.Reg.PutObject(o)
	c.notifyAdd(o)
	if c.hk.OnBusEvent != nil {
		c.hk.OnBusEvent(0, []*object.Object{o}, nil, nil)
	}
}

func (c *Client) applyEvent(e packet.EventRecord) {
	o, ok := c.Reg.Object(e.Handle)
	if !ok || e.Info == nil {
		return
	}
	_, evDesc, ok := packet.BusResolver{Bus: c.Desc}.Event(e.ObjectUID, e.EventUID)
	if !ok {
		return
	}
	ev := &object.Event{ObjectUID: e.ObjectUID, Handle: e.Handle, Desc: evDesc, Update: e.Info}
	c.warnIllegalFields(ev, ev.IllegalFields())
	o.Apply(ev.Update)
	c.notifyEvent(ev)
	if c.hk.OnBusEvent != nil {
		c.hk.OnBusEvent(0, nil, nil, []*object.Event{ev})
	}
}

func (c *Client) applyBusEvent(be *packet.BusEvent) {
	var adds, removes []*object.Object
	var events []*object.Event

	for _, a := range be.Adds {
		od, ok := c.Desc.Object(a.ObjectUID)
		if !ok {
			continue
		}
		o := object.New(od, a.Handle)
		if a.Info != nil {
			o.Apply(a.Info)
		}
		c.Reg.Handles.Reserve(a.Handle)
		c.Reg.PutObject(o)
		c.notifyAdd(o)
		adds = append(adds, o)
	}
	for _, e := range be.Events {
		o, ok := c.Reg.Object(e.Handle)
		if !ok || e.Info == nil {
			continue
		}
		_, evDesc, ok := packet.BusResolver{Bus: c.Desc}.Event(e.ObjectUID, e.EventUID)
		if !ok {
			continue
		}
		ev := &object.Event{ObjectUID: e.ObjectUID, Handle: e.Handle, Desc: evDesc, Update: e.Info}
		c.warnIllegalFields(ev, ev.IllegalFields())
		o.Apply(ev.Update)
		c.notifyEvent(ev)
		events = append(events, ev)
	}
	for _, r := range be.Removes {
		if o, ok := c.Reg.Object(r.Handle); ok {
			c.abortCallsOn(r.Handle)
			c.Reg.RemoveObject(r.Handle)
			c.notifyRemove(o)
			removes = append(removes, o)
		}
	}
	if c.hk.OnBusEvent != nil {
		c.hk.OnBusEvent(be.BusEventUID, adds, removes, events)
	}
}

// SetProvider claims objectUID for a producer that wants per-UID add/remove/
// event callbacks instead of (or alongside) the catch-all OnBusEvent hook.
// It returns InvalidState if another provider already holds objectUID.
func (c *Client) SetProvider(objectUID uint16, p *registry.Provider) errs.Error {
	if !c.Reg.SetProvider(objectUID, p) {
		return errs.New(errs.InvalidState, "object uid %d already has a provider", objectUID)
	}
	return nil
}

// ClearProvider releases objectUID so a future call to SetProvider may
// claim it.
func (c *Client) ClearProvider(objectUID uint16) { c.Reg.ClearProvider(objectUID) }

func (c *Client) notifyAdd(o *object.Object) {
	if p, ok := c.Reg.Provider(o.Desc.UID); ok && p.OnAdd != nil {
		p.OnAdd(o)
	}
}

func (c *Client) notifyRemove(o *object.Object) {
	if p, ok := c.Reg.Provider(o.Desc.UID); ok && p.OnRemove != nil {
		p.OnRemove(o)
	}
}

func (c *Client) notifyEvent(ev *object.Event) {
	if p, ok := c.Reg.Provider(ev.ObjectUID); ok && p.OnEvent != nil {
		p.OnEvent(ev)
	}
}

// warnIllegalFields logs (never strips) any field a received event carries
// outside its descriptor's update set -- the client keeps and applies these
// fields, it only surfaces a warning.
func (c *Client) warnIllegalFields(ev *object.Event, illegal []uint16) {
	if len(illegal) == 0 || c.log == nil {
		return
	}
	c.log.WithFields(logging.Fields{
		"object": ev.ObjectUID,
		"handle": ev.Handle,
		"fields": illegal,
	}).Warn("event carries fields outside its descriptor's update set, applying anyway")
}

// abortCallsOn resolves every pending call targeting handle with Aborted,
// run before the remove callback fires so a producer never observes a
// remove while a call against that same object is still outstanding.
func (c *Client) abortCallsOn(handle uint16) {
	for _, call := range c.Reg.TakeCallsForTarget(handle) {
		call.Resolve(errs.Aborted, nil)
	}
}

func (c *Client) onDisconnected(err errs.Error) {
	c.state.store(int32(ClientDisconnected))
	for _, call := range c.Reg.ClearCalls() {
		call.Resolve(errs.Aborted, nil)
	}
	if c.hk.OnDisconnected != nil {
		c.hk.OnDisconnected(err)
	}
}
