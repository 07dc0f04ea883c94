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

// Package bus wires descriptor, registry, packet, iochannel, reactor and
// transport together into the two runnable endpoints a program builds: a
// Client that connects to one bus and a Server that accepts many.
package bus

import "sync/atomic"

// ClientState is the client connection engine's state machine.
type ClientState int32

const (
	ClientIdle ClientState = iota
	ClientConnecting
	ClientConnected
	ClientDisconnecting
	ClientDisconnected
	ClientRefused
)

func (s ClientState) String() string {
	switch s {
	case ClientIdle:
		return "idle"
	case ClientConnecting:
		return "connecting"
	case ClientConnected:
		return "connected"
	case ClientDisconnecting:
		return "disconnecting"
	case ClientDisconnected:
		return "disconnected"
	case ClientRefused:
		return "refused"
	default:
		return "unknown"
	}
}

// PeerState is one server-side connection's state machine, tracked per
// accepted socket.
type PeerState int32

const (
	PeerIdle PeerState = iota
	PeerConnecting
	PeerConnected
	PeerRefused
	PeerDisconnected
)

func (s PeerState) String() string {
	switch s {
	case PeerIdle:
		return "idle"
	case PeerConnecting:
		return "connecting"
	case PeerConnected:
		return "connected"
	case PeerRefused:
		return "refused"
	case PeerDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// stateBox is a tiny atomic state cell shared by Client and per-peer
// server connections.
type stateBox struct {
	v atomic.Int32
}

func (b *stateBox) load() int32    { return b.v.Load() }
func (b *stateBox) store(s int32)  { b.v.Store(s) }
