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
)

// peer is one accepted, handshaken connection the server broadcasts to.
type peer struct {
	fd     int
	connID string
	name   string
	state  stateBox
	ch     *iochannel.Channel
}

// pendingCall is the server-side bookkeeping for one dispatched call still
// awaiting its ack: which peer to write the Ack to, and whether send_ack
// has already fired for it.
type pendingCall struct {
	peer  *peer
	acked bool
}

// Server accepts connections for one bus descriptor, holding the single
// shared registry of live objects every peer is kept in sync with.
type Server struct {
	Desc *descriptor.BusDescriptor
	Reg  *registry.Registry

	log logging.Logger
	m   *metrics.Collectors
	rx  *reactor.Reactor
	pool *buffer.Pool

	mu          sync.Mutex
	listeners   []*transport.Listener
	peers       map[int]*peer
	calls       map[uint16]*pendingCall
	currentCall *object.PendingServerCall
	nextBusEvt  uint16
}

// NewServer builds a Server with an empty object registry.
func NewServer(desc *descriptor.BusDescriptor, log logging.Logger, m *metrics.Collectors, rx *reactor.Reactor) *Server {
	return &Server{
		Desc:  desc,
		Reg:   registry.New(),
		log:   log,
		m:     m,
		rx:    rx,
		pool:  buffer.NewPool(1024),
		peers: make(map[int]*peer),
		calls: make(map[uint16]*pendingCall),
	}
}

// Start binds every address and begins accepting connections. Accepted
// sockets are registered with the reactor; accept itself runs on the
// reactor's goroutine via the listening fd's readable callback.
func (s *Server) Start(ctx context.Context, addrs []transport.Address, backlog int) errs.Error {
	listeners, err := transport.ListenAll(ctx, addrs, backlog, s.log)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listeners = listeners
	s.mu.Unlock()

	for _, l := range listeners {
		l := l
		if rerr := s.rx.Register(l.Fd, reactor.Callbacks{
			OnReadable: func() { s.acceptLoop(l) },
		}); rerr != nil {
			return rerr
		}
	}
	return nil
}

func (s *Server) acceptLoop(l *transport.Listener) {
	for {
		fd, err := l.Accept()
		if err != nil {
			if s.log != nil {
				s.log.Warn("accept on " + l.Addr.String() + ": " + err.Error())
			}
			return
		}
		if fd < 0 {
			return
		}
		s.adopt(fd)
	}
}

func (s *Server) adopt(fd int) {
	connID := uuid.NewString()
	connLog := s.log
	if connLog != nil {
		connLog = connLog.WithFields(logging.Fields{"conn": connID})
	}

	res := packet.BusResolver{Bus: s.Desc}
	readBuf := buffer.New(nil)
	dec := packet.NewDecoder(readBuf, res, connLog)
	ch := iochannel.New(fd, connID, dec, readBuf, s.rx, s.m)

	p := &peer{fd: fd, connID: connID, ch: ch}
	p.state.store(int32(PeerIdle))
	s.mu.Lock()
	s.peers[fd] = p
	s.mu.Unlock()

	_ = s.rx.Register(fd, reactor.Callbacks{
		OnReadable: func() { s.onReadable(p) },
		OnWritable: func() { _ = ch.OnWritable() },
		OnError:    func(e errs.Error) { s.dropPeer(p) },
	})
}

func (s *Server) onReadable(p *peer) {
	pkts, err := p.ch.OnReadable()
	if err != nil {
		s.dropPeer(p)
		return
	}
	for _, pkt := range pkts {
		s.handle(p, pkt)
	}
}

func (s *Server) handle(p *peer, pkt *packet.Packet) {
	switch pkt.Type {
	case packet.TypeConReq:
		if err := validateConReq(pkt.ConReq, s.Desc); err != nil {
			if s.log != nil {
				s.log.Warn("rejecting " + pkt.ConReq.ClientName + ": " + err.Error())
			}
			p.state.store(int32(PeerRefused))
			b := s.pool.Get()
			packet.EncodeConResp(b, packet.ConResp{Accepted: false})
			_ = p.ch.Enqueue(b)
			return
		}
		p.name = pkt.ConReq.ClientName
		p.state.store(int32(PeerConnected))
		b := s.pool.Get()
		packet.EncodeConResp(b, packet.ConResp{Accepted: true, Adds: snapshotAdds(s.Reg.Objects())})
		_ = p.ch.Enqueue(b)
	case packet.TypeCall:
		s.dispatchCall(p, pkt.Call)
	}
}

// dispatchCall invokes the bound method handler for c, tracking it as the
// "current call" for the handler's duration so a handler can look itself up
// via CurrentCall/GetCallPeer and ack out of band through SendAck. A handler
// must call SendAck exactly once; if none of them (the handler, nor this
// function) has acked by the time Invoke returns, the call is auto-acked
// Refused.
func (s *Server) dispatchCall(p *peer, c *packet.Call) {
	pc := &object.PendingServerCall{
		CallHandle: c.CallHandle,
		ObjectUID:  c.ObjectUID,
		Handle:     c.Handle,
		MethodUID:  c.MethodUID,
		Args:       c.Args,
	}
	s.mu.Lock()
	s.calls[c.CallHandle] = &pendingCall{peer: p}
	s.currentCall = pc
	s.mu.Unlock()

	o, ok := s.Reg.Object(c.Handle)
	status := errs.Refused
	if !ok {
		status = errs.Aborted
	} else if st, _ := o.Invoke(c.MethodUID, c.Args); st != errs.Invalid {
		status = st
	}

	s.mu.Lock()
	if s.currentCall == pc {
		s.currentCall = nil
	}
	s.mu.Unlock()

	s.SendAck(c.CallHandle, status)
}

// SendAck completes callHandle with status, writing the Ack to whichever
// peer issued it. The first caller wins -- a handler that already acked
// through this same method makes dispatchCall's own closing call a no-op,
// and a handler that never acks gets this auto-ack on its behalf.
func (s *Server) SendAck(callHandle uint16, status errs.CallOutcome) {
	s.mu.Lock()
	pc, ok := s.calls[callHandle]
	if !ok || pc.acked {
		s.mu.Unlock()
		return
	}
	pc.acked = true
	pr := pc.peer
	delete(s.calls, callHandle)
	if s.currentCall != nil && s.currentCall.CallHandle == callHandle {
		s.currentCall = nil
	}
	s.mu.Unlock()

	if s.m != nil {
		s.m.ObserveAck(status)
	}
	b := s.pool.Get()
	packet.EncodeAck(b, packet.Ack{CallHandle: callHandle, Status: status})
	_ = pr.ch.Enqueue(b)
}

// GetCallPeer returns the connection name of the peer that issued
// callHandle, for a handler that wants to attribute a call before acking
// it. It returns false once the call has already been acked.
func (s *Server) GetCallPeer(callHandle uint16) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pc, ok := s.calls[callHandle]
	if !ok {
		return "", false
	}
	return pc.peer.name, true
}

// CurrentCall returns the call a bound method handler is presently
// executing inside of, so a handler can recover its own CallHandle without
// MethodHandler's signature having to carry one.
func (s *Server) CurrentCall() (object.PendingServerCall, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentCall == nil {
		return object.PendingServerCall{}, false
	}
	return *s.currentCall, true
}

// NextBusEventUID returns a monotonically increasing identifier for a new
// outgoing mutation batch, so callers building one via object.NewBusEvent
// never need their own counter.
func (s *Server) NextBusEventUID() uint16 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextBusEvt++
	return s.nextBusEvt
}

// Broadcast validates, sends, and then locally commits be as one atomic
// mutation: every add's handle must not already be registered and every
// remove's handle must be, the adds are registered first so an event in
// this same batch can target a just-added object, the packet is sanitized
// and sent to every currently-connected peer, and only then are the
// object-side Events applied and the Removes unregistered. Delivery is
// best-effort per peer: a slow or disconnecting peer never blocks the
// others, since each has its own independent write queue.
func (s *Server) Broadcast(be *object.BusEvent) errs.Error {
	if be.Empty() {
		return nil
	}
	for _, o := range be.Adds {
		if _, ok := s.Reg.Object(o.Handle); ok {
			return errs.New(errs.InvalidState, "bus event %d: handle %d is already registered, cannot re-add", be.UID, o.Handle)
		}
	}
	for _, o := range be.Removes {
		if _, ok := s.Reg.Object(o.Handle); !ok {
			return errs.New(errs.InvalidState, "bus event %d: handle %d is not registered, cannot remove", be.UID, o.Handle)
		}
	}

	for _, o := range be.Adds {
		s.Reg.PutObject(o)
	}

	p, err := s.buildBusEventPacket(be)
	if err != nil {
		for _, o := range be.Adds {
			s.Reg.RemoveObject(o.Handle)
		}
		return err
	}

	s.mu.Lock()
	peers := make([]*peer, 0, len(s.peers))
	for _, pr := range s.peers {
		if PeerState(pr.state.load()) == PeerConnected {
			peers = append(peers, pr)
		}
	}
	s.mu.Unlock()

	for _, pr := range peers {
		b := s.pool.Get()
		packet.EncodeBusEvent(b, p)
		_ = pr.ch.Enqueue(b)
	}

	be.Commit(s.Reg.Object)
	for _, o := range be.Removes {
		s.Reg.RemoveObject(o.Handle)
	}
	return nil
}

// buildBusEventPacket sanitizes be's events -- stripping, with an
// error-level log, any field outside its event descriptor's update set --
// and assembles the wire packet. It reports an error instead of a
// partially-built packet if encoding cannot proceed, so Broadcast can roll
// back the add registrations already applied for this batch.
func (s *Server) buildBusEventPacket(be *object.BusEvent) (packet.BusEvent, errs.Error) {
	p := packet.BusEvent{BusEventUID: be.UID}
	for _, o := range be.Adds {
		p.Adds = append(p.Adds, packet.ObjectAdd{ObjectUID: o.Desc.UID, Handle: o.Handle, Info: o.Info()})
	}
	for _, o := range be.Removes {
		p.Removes = append(p.Removes, packet.ObjectRemove{ObjectUID: o.Desc.UID, Handle: o.Handle})
	}
	for _, e := range be.Events {
		if illegal := e.Sanitize(); len(illegal) > 0 && s.log != nil {
			s.log.WithFields(logging.Fields{
				"object": e.ObjectUID,
				"handle": e.Handle,
				"fields": illegal,
			}).Error("stripping event fields outside descriptor's update set before send")
		}
		p.Events = append(p.Events, packet.EventRecord{ObjectUID: e.ObjectUID, Handle: e.Handle, EventUID: e.Desc.UID, Info: e.Update})
	}
	return p, nil
}

func (s *Server) dropPeer(p *peer) {
	s.mu.Lock()
	delete(s.peers, p.fd)
	s.mu.Unlock()
	p.state.store(int32(PeerDisconnected))
	s.rx.Unregister(p.fd)
	p.ch.Close()
	_ = unix.Close(p.fd)
}

// Close tears down every listener and connected peer.
func (s *Server) Close() {
	s.mu.Lock()
	listeners := s.listeners
	peers := make([]*peer, 0, len(s.peers))
	for _, p := range s.peers {
		peers = append(peers, p)
	}
	s.mu.Unlock()
	for _, p := range peers {
		s.dropPeer(p)
	}
	for _, l := range listeners {
		s.rx.Unregister(l.Fd)
		l.Close()
	}
}
