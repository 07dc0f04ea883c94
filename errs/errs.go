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

// Package errs provides the error kinds used across the bus: a small
// numeric CodeError classification (InvalidArgument / InvalidState /
// NotFound / Io / OutOfMemory / ProtocolMismatch) plus the wire-carried
// CallOutcome codes an Ack can report. Errors keep an optional parent so a
// low-level I/O failure can surface wrapped by the higher-level operation
// that observed it, and they satisfy errors.Is / errors.As through Unwrap.
package errs

import (
	"fmt"
	"runtime"
)

// CodeError classifies an error by the condition that raised it.
type CodeError uint16

const (
	UnknownError CodeError = iota
	InvalidArgument
	InvalidState
	NotFound
	Io
	OutOfMemory
	ProtocolMismatch
)

var codeText = map[CodeError]string{
	UnknownError:      "unknown error",
	InvalidArgument:   "invalid argument",
	InvalidState:      "invalid state",
	NotFound:          "not found",
	Io:                "i/o error",
	OutOfMemory:       "out of memory",
	ProtocolMismatch:  "protocol mismatch",
}

func (c CodeError) String() string {
	if s, ok := codeText[c]; ok {
		return s
	}
	return "unknown error"
}

// Error is the error type produced by this module's public operations.
type Error interface {
	error
	Code() CodeError
	Parent() error
	Unwrap() error
}

type ers struct {
	code   CodeError
	msg    string
	parent error
	frame  runtime.Frame
}

// New builds an Error of the given kind with a formatted message. The
// caller's frame is captured immediately so logs can report file:line
// without the caller doing its own runtime.Caller dance.
func New(code CodeError, format string, args ...any) Error {
	return &ers{
		code:  code,
		msg:   fmt.Sprintf(format, args...),
		frame: caller(),
	}
}

// Wrap attaches parent as the cause of a new Error of the given kind.
// If parent is already an Error of the same code, it is returned as-is
// to avoid multiplying frames for a failure that is simply propagating.
func Wrap(code CodeError, parent error, format string, args ...any) Error {
	if parent == nil {
		return New(code, format, args...)
	}
	if e, ok := parent.(Error); ok && e.Code() == code {
		return e
	}
	return &ers{
		code:   code,
		msg:    fmt.Sprintf(format, args...),
		parent: parent,
		frame:  caller(),
	}
}

func caller() runtime.Frame {
	pc := make([]uintptr, 1)
	n := runtime.Callers(3, pc)
	if n == 0 {
		return runtime.Frame{}
	}
	frames := runtime.CallersFrames(pc[:n])
	f, _ := frames.Next()
	return f
}

func (e *ers) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %s", e.code, e.msg, e.parent.Error())
	}
	return fmt.Sprintf("%s: %s", e.code, e.msg)
}

func (e *ers) Code() CodeError { return e.code }
func (e *ers) Parent() error   { return e.parent }
func (e *ers) Unwrap() error   { return e.parent }

// File and Line report the call site that raised the error, useful for
// log entries emitted through the logging package.
func (e *ers) File() string { return e.frame.File }
func (e *ers) Line() int    { return e.frame.Line }

// IsCode reports whether err (or any error in its Unwrap chain) carries code.
func IsCode(err error, code CodeError) bool {
	for err != nil {
		if e, ok := err.(Error); ok {
			if e.Code() == code {
				return true
			}
			err = e.Unwrap()
			continue
		}
		break
	}
	return false
}
