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

// Package transport binds and dials the stream sockets a bus runs over:
// inet, inet6 and unix (including Linux's abstract namespace), with the
// reconnect/rebind retry policy a long-lived bus endpoint needs.
package transport

import (
	"strconv"
	"strings"

	"github.com/nabbar/obus/errs"
)

// Family is the address grammar's scheme.
type Family uint8

const (
	FamilyInet Family = iota
	FamilyInet6
	FamilyUnix
)

// Address is one parsed endpoint: "inet:host:port", "inet6:host:port" or
// "unix:/path/to/socket" (an "@" prefix on the unix path selects Linux's
// abstract namespace instead of the filesystem).
type Address struct {
	Family   Family
	Host     string
	Port     int
	Path     string
	Abstract bool
}

// Parse decodes one address string. It returns InvalidArgument on any
// grammar violation.
func Parse(s string) (Address, errs.Error) {
	scheme, rest, ok := strings.Cut(s, ":")
	if !ok {
		return Address{}, errs.New(errs.InvalidArgument, "address %q: missing scheme", s)
	}
	switch scheme {
	case "inet", "inet6":
		host, portStr, ok := strings.Cut(rest, ":")
		if !ok {
			return Address{}, errs.New(errs.InvalidArgument, "address %q: expected host:port", s)
		}
		port, err := strconv.Atoi(portStr)
		if err != nil || port <= 0 || port > 65535 {
			return Address{}, errs.New(errs.InvalidArgument, "address %q: invalid port", s)
		}
		fam := FamilyInet
		if scheme == "inet6" {
			fam = FamilyInet6
		}
		return Address{Family: fam, Host: host, Port: port}, nil
	case "unix":
		if rest == "" {
			return Address{}, errs.New(errs.InvalidArgument, "address %q: empty unix path", s)
		}
		if strings.HasPrefix(rest, "@") {
			return Address{Family: FamilyUnix, Path: rest[1:], Abstract: true}, nil
		}
		return Address{Family: FamilyUnix, Path: rest}, nil
	default:
		return Address{}, errs.New(errs.InvalidArgument, "address %q: unknown scheme %q", s, scheme)
	}
}

// ParseList splits a comma-separated address list and parses each entry.
func ParseList(csv string) ([]Address, errs.Error) {
	var out []Address
	for _, part := range strings.Split(csv, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		a, err := Parse(part)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}

// String renders the address back to its wire/config grammar.
func (a Address) String() string {
	switch a.Family {
	case FamilyInet:
		return "inet:" + a.Host + ":" + strconv.Itoa(a.Port)
	case FamilyInet6:
		return "inet6:" + a.Host + ":" + strconv.Itoa(a.Port)
	case FamilyUnix:
		if a.Abstract {
			return "unix:@" + a.Path
		}
		return "unix:" + a.Path
	default:
		return ""
	}
}
