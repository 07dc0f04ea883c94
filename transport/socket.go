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

package transport

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/nabbar/obus/errs"
)

// Keepalive tuning applied to every inet/inet6 socket this package opens:
// short idle/interval/probe counts so a half-open peer (laptop suspend,
// pulled cable) is noticed in a few seconds rather than the OS default of
// two hours.
const (
	KeepaliveIdle     = 5 * time.Second
	KeepaliveInterval = 1 * time.Second
	KeepaliveProbes   = 2
)

// ReconnectDelay is how long a client socket waits between failed connect
// attempts.
const ReconnectDelay = 500 * time.Millisecond

// BindRetryDelay is how long a server socket waits before retrying bind
// after EADDRNOTAVAIL (the address not yet configured on the interface,
// common during early boot).
const BindRetryDelay = 500 * time.Millisecond

func domainFor(a Address) (int, errs.Error) {
	switch a.Family {
	case FamilyInet:
		return unix.AF_INET, nil
	case FamilyInet6:
		return unix.AF_INET6, nil
	case FamilyUnix:
		return unix.AF_UNIX, nil
	default:
		return 0, errs.New(errs.InvalidArgument, "unknown address family %d", a.Family)
	}
}

func sockaddrFor(a Address) (unix.Sockaddr, errs.Error) {
	switch a.Family {
	case FamilyInet:
		var sa unix.SockaddrInet4
		sa.Port = a.Port
		ip, err := resolveIPv4(a.Host)
		if err != nil {
			return nil, err
		}
		sa.Addr = ip
		return &sa, nil
	case FamilyInet6:
		var sa unix.SockaddrInet6
		sa.Port = a.Port
		ip, err := resolveIPv6(a.Host)
		if err != nil {
			return nil, err
		}
		sa.Addr = ip
		return &sa, nil
	case FamilyUnix:
		name := a.Path
		if a.Abstract {
			// Linux abstract-namespace sockets are addressed by a name with
			// a leading NUL, never a path on disk.
			name = "\x00" + a.Path
		}
		return &unix.SockaddrUnix{Name: name}, nil
	default:
		return nil, errs.New(errs.InvalidArgument, "unknown address family %d", a.Family)
	}
}

// setKeepalive tunes TCP keepalive on an inet/inet6 socket. It is a no-op
// (not an error) on unix-domain sockets, which have no keepalive concept.
func setKeepalive(fd int, a Address) errs.Error {
	if a.Family == FamilyUnix {
		return nil
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1); err != nil {
		return errs.Wrap(errs.Io, err, "SO_KEEPALIVE")
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, int(KeepaliveIdle.Seconds())); err != nil {
		return errs.Wrap(errs.Io, err, "TCP_KEEPIDLE")
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, int(KeepaliveInterval.Seconds())); err != nil {
		return errs.Wrap(errs.Io, err, "TCP_KEEPINTVL")
	}
	if err := unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_KEEPCNT, KeepaliveProbes); err != nil {
		return errs.Wrap(errs.Io, err, "TCP_KEEPCNT")
	}
	return nil
}

// PeerCredentials is the identity of the process on the other end of a
// unix-domain connection, retrieved through SO_PEERCRED.
type PeerCredentials struct {
	PID int32
	UID uint32
	GID uint32
}

// PeerCreds reads SO_PEERCRED off fd. It only succeeds for unix-domain
// sockets; inet/inet6 connections have no equivalent and return NotFound.
func PeerCreds(fd int) (PeerCredentials, errs.Error) {
	cred, err := unix.GetsockoptUcred(fd, unix.SOL_SOCKET, unix.SO_PEERCRED)
	if err != nil {
		return PeerCredentials{}, errs.Wrap(errs.NotFound, err, "SO_PEERCRED")
	}
	return PeerCredentials{PID: cred.Pid, UID: cred.Uid, GID: cred.Gid}, nil
}

func setNonBlocking(fd int) errs.Error {
	if err := unix.SetNonblock(fd, true); err != nil {
		return errs.Wrap(errs.Io, err, "set non-blocking")
	}
	return nil
}
