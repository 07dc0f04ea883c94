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

// Package logging is the structured logging sink used across the bus.
// It wraps github.com/sirupsen/logrus rather than exposing it directly, so
// every component receives a Logger at construction time (never a process
// global) and the wire format of a log record stays independent of the
// underlying library. The default sink writes to stderr through
// github.com/mattn/go-colorable, colorized with github.com/fatih/color when
// OBUS_LOG_COLOR is enabled.
package logging

import (
	"io"

	"github.com/fatih/color"
	"github.com/mattn/go-colorable"
	"github.com/sirupsen/logrus"
)

// Category names one of the OBUS_LOG_* scopes.
type Category string

const (
	CategoryIO         Category = "io"
	CategoryBus        Category = "bus"
	CategorySocket     Category = "socket"
	CategoryConnection Category = "connection"
)

// Fields is a structured attribute set attached to one log call.
type Fields map[string]any

// Logger is the logging surface every bus component is constructed with.
type Logger interface {
	WithFields(f Fields) Logger
	Debug(msg string)
	Info(msg string)
	Warn(msg string)
	Error(msg string)
	// Enabled reports whether this logger's category currently passes the
	// OBUS_LOG_* filter it was built from (see busconfig.LogFilter).
	Enabled() bool
}

type logger struct {
	entry   *logrus.Entry
	enabled bool
}

// New builds a Logger for category, writing through out (colorized when
// color is true). enabled gates every call: a disabled logger still
// satisfies the interface but every method is a no-op, so call sites never
// need their own "if OBUS_LOG_X" branch.
func New(out io.Writer, color_ bool, category Category, enabled bool) Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: !color_,
		FullTimestamp: true,
	})
	return &logger{
		entry:   l.WithField("category", string(category)),
		enabled: enabled,
	}
}

// NewStderr builds the default sink: colorable stderr, colorized per the
// color flag, for the given category.
func NewStderr(category Category, color_ bool, enabled bool) Logger {
	return New(colorable.NewColorableStderr(), color_ && color.NoColor == false, category, enabled)
}

func (l *logger) WithFields(f Fields) Logger {
	return &logger{entry: l.entry.WithFields(logrus.Fields(f)), enabled: l.enabled}
}

func (l *logger) Debug(msg string) {
	if l.enabled {
		l.entry.Debug(msg)
	}
}

func (l *logger) Info(msg string) {
	if l.enabled {
		l.entry.Info(msg)
	}
}

func (l *logger) Warn(msg string) {
	if l.enabled {
		l.entry.Warn(msg)
	}
}

func (l *logger) Error(msg string) {
	if l.enabled {
		l.entry.Error(msg)
	}
}

func (l *logger) Enabled() bool { return l.enabled }

// Discard is a Logger that never writes -- used where a category's filter
// does not match, still satisfying every call site via Enabled()==false.
func Discard() Logger {
	return &logger{entry: logrus.NewEntry(logrus.New()), enabled: false}
}
