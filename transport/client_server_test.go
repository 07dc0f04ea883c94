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

package transport_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	. "github.com/nabbar/obus/transport"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Listen/Dial", func() {
	var sockPath string
	var addr Address

	BeforeEach(func() {
		sockPath = filepath.Join(os.TempDir(), fmt.Sprintf("obus-transport-test-%d.sock", time.Now().UnixNano()))
		var err error
		addr, err = Parse("unix:" + sockPath)
		Expect(err).To(BeNil())
	})

	AfterEach(func() {
		_ = os.Remove(sockPath)
	})

	It("binds a listener, accepts a dialed connection and exchanges bytes", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		l, lerr := Listen(ctx, addr, 4, nil)
		Expect(lerr).To(BeNil())
		defer l.Close()

		fd, derr := Dial(ctx, addr, nil)
		Expect(derr).To(BeNil())
		defer unix.Close(fd)

		var peerFd int
		Eventually(func() error {
			pfd, aerr := l.Accept()
			if aerr != nil {
				return aerr
			}
			if pfd < 0 {
				return fmt.Errorf("no pending connection yet")
			}
			peerFd = pfd
			return nil
		}, time.Second).Should(Succeed())
		defer unix.Close(peerFd)

		_, werr := unix.Write(fd, []byte("ping"))
		Expect(werr).ToNot(HaveOccurred())

		buf := make([]byte, 4)
		Eventually(func() (int, error) {
			return unix.Read(peerFd, buf)
		}, time.Second).Should(Equal(4))
		Expect(string(buf)).To(Equal("ping"))
	})

	It("Listener.Close removes the non-abstract unix socket file", func() {
		ctx := context.Background()
		l, lerr := Listen(ctx, addr, 4, nil)
		Expect(lerr).To(BeNil())
		_, statErr := os.Stat(sockPath)
		Expect(statErr).ToNot(HaveOccurred())

		l.Close()
		_, statErr = os.Stat(sockPath)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})

	It("Accept returns -1, nil when no connection is pending", func() {
		ctx := context.Background()
		l, lerr := Listen(ctx, addr, 4, nil)
		Expect(lerr).To(BeNil())
		defer l.Close()

		fd, aerr := l.Accept()
		Expect(aerr).To(BeNil())
		Expect(fd).To(Equal(-1))
	})

	It("Dial is cancelled by a done context rather than retrying forever", func() {
		unreachable, err := Parse("unix:" + sockPath)
		Expect(err).To(BeNil())

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, derr := Dial(ctx, unreachable, nil)
		Expect(derr).To(HaveOccurred())
	})
})

var _ = Describe("ListenAll", func() {
	It("binds every address and returns one listener per address", func() {
		ctx := context.Background()
		p1 := filepath.Join(os.TempDir(), fmt.Sprintf("obus-transport-all-a-%d.sock", time.Now().UnixNano()))
		p2 := filepath.Join(os.TempDir(), fmt.Sprintf("obus-transport-all-b-%d.sock", time.Now().UnixNano()))
		defer os.Remove(p1)
		defer os.Remove(p2)

		a1, err := Parse("unix:" + p1)
		Expect(err).To(BeNil())
		a2, err := Parse("unix:" + p2)
		Expect(err).To(BeNil())

		listeners, lerr := ListenAll(ctx, []Address{a1, a2}, 4, nil)
		Expect(lerr).To(BeNil())
		Expect(listeners).To(HaveLen(2))
		for _, l := range listeners {
			l.Close()
		}
	})

	It("tears down every listener already bound when one address fails", func() {
		ctx := context.Background()
		p1 := filepath.Join(os.TempDir(), fmt.Sprintf("obus-transport-fail-a-%d.sock", time.Now().UnixNano()))
		defer os.Remove(p1)

		a1, err := Parse("unix:" + p1)
		Expect(err).To(BeNil())
		// A unix path under a directory that doesn't exist fails bind with
		// ENOENT, forcing ListenAll's teardown path without any network I/O.
		bad, err := Parse("unix:/nonexistent-obus-test-dir/test.sock")
		Expect(err).To(BeNil())

		ctx, cancel := context.WithTimeout(ctx, 200*time.Millisecond)
		defer cancel()

		_, lerr := ListenAll(ctx, []Address{a1, bad}, 4, nil)
		Expect(lerr).To(HaveOccurred())
		_, statErr := os.Stat(p1)
		Expect(os.IsNotExist(statErr)).To(BeTrue())
	})
})
