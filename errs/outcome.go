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

package errs

// CallOutcome is the terminal status of a method call, carried on the
// wire in an Ack packet. Unlike CodeError this is not a Go error kind by
// itself -- it is the value a Call's completion callback receives, and a
// caller is free to treat any outcome other than Acked as a failure.
type CallOutcome uint8

const (
	Invalid CallOutcome = iota
	Acked
	Aborted
	MethodDisabled
	MethodNotSupported
	InvalidArguments
	Refused
)

var outcomeText = map[CallOutcome]string{
	Invalid:             "invalid",
	Acked:                "acked",
	Aborted:              "aborted",
	MethodDisabled:       "method disabled",
	MethodNotSupported:   "method not supported",
	InvalidArguments:     "invalid arguments",
	Refused:              "refused",
}

func (o CallOutcome) String() string {
	if s, ok := outcomeText[o]; ok {
		return s
	}
	return "invalid"
}
