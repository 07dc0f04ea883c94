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

package busconfig_test

import (
	"os"

	"github.com/spf13/viper"

	. "github.com/nabbar/obus/busconfig"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Load", func() {
	AfterEach(func() {
		for _, k := range []string{"OBUS_BUS_NAME", "OBUS_ADDRESSES", "OBUS_LOG_ALL", "OBUS_LOG_BUS", "OBUS_LOG_COLOR"} {
			Expect(os.Unsetenv(k)).ToNot(HaveOccurred())
		}
	})

	It("decodes bus name and address list from OBUS_* env vars", func() {
		Expect(os.Setenv("OBUS_BUS_NAME", "net")).ToNot(HaveOccurred())
		Expect(os.Setenv("OBUS_ADDRESSES", "inet:127.0.0.1:9000,unix:/run/obus.sock")).ToNot(HaveOccurred())

		cfg, err := Load(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.BusName).To(Equal("net"))
		Expect(cfg.Addresses).To(ConsistOf("inet:127.0.0.1:9000", "unix:/run/obus.sock"))
	})

	It("skips validation entirely when no bus name is configured", func() {
		cfg, err := Load(viper.New())
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.BusName).To(Equal(""))
	})

	It("parses the log-filter env vars into their category sets", func() {
		Expect(os.Setenv("OBUS_BUS_NAME", "net")).ToNot(HaveOccurred())
		Expect(os.Setenv("OBUS_LOG_ALL", "net, other")).ToNot(HaveOccurred())
		Expect(os.Setenv("OBUS_LOG_COLOR", "1")).ToNot(HaveOccurred())

		cfg, err := Load(nil)
		Expect(err).ToNot(HaveOccurred())
		Expect(cfg.Log.All).To(ConsistOf("net", "other"))
		Expect(cfg.Log.Color).To(BeTrue())
	})
})

var _ = Describe("LogFilter.Matches", func() {
	It("matches a category-specific name case-insensitively", func() {
		f := LogFilter{Bus: []string{"Net"}}
		Expect(f.Matches(f.Bus, "net")).To(BeTrue())
		Expect(f.Matches(f.Bus, "other")).To(BeFalse())
	})

	It("an \"all\"/\"1\" entry in the category set matches any bus name", func() {
		f := LogFilter{IO: []string{"all"}}
		Expect(f.Matches(f.IO, "anything")).To(BeTrue())
		f = LogFilter{IO: []string{"1"}}
		Expect(f.Matches(f.IO, "anything")).To(BeTrue())
	})

	It("the All umbrella matches even when the category's own set is empty", func() {
		f := LogFilter{All: []string{"net"}}
		Expect(f.Matches(nil, "net")).To(BeTrue())
		Expect(f.Matches(nil, "other")).To(BeFalse())
	})
})
