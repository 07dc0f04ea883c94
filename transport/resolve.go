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
	"net"

	"github.com/nabbar/obus/errs"
)

func resolveIPv4(host string) ([4]byte, errs.Error) {
	var out [4]byte
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return out, errs.Wrap(errs.Io, err, "resolve %q", host)
		}
		ip = ips[0]
	}
	v4 := ip.To4()
	if v4 == nil {
		return out, errs.New(errs.InvalidArgument, "%q is not an IPv4 address", host)
	}
	copy(out[:], v4)
	return out, nil
}

func resolveIPv6(host string) ([16]byte, errs.Error) {
	var out [16]byte
	ip := net.ParseIP(host)
	if ip == nil {
		ips, err := net.LookupIP(host)
		if err != nil || len(ips) == 0 {
			return out, errs.Wrap(errs.Io, err, "resolve %q", host)
		}
		ip = ips[0]
	}
	v6 := ip.To16()
	if v6 == nil {
		return out, errs.New(errs.InvalidArgument, "%q is not an IPv6 address", host)
	}
	copy(out[:], v6)
	return out, nil
}
