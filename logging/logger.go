//
// (C) Copyright 2019-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package logging

import (
	"bytes"
	"io"
	"sync"
)

type (
	// Logger defines a standard logging interface
	Logger interface {
		EnabledFor(level LogLevel) bool
		TraceLogger
		Trace(msg string)
		DebugLogger
		Debug(msg string)
		InfoLogger
		Info(msg string)
		ErrorLogger
		Error(msg string)
	}

	// TraceLogger defines an interface to be implemented
	// by Trace loggers.
	TraceLogger interface {
		Tracef(format string, args ...interface{})
	}

	// DebugLogger defines an interface to be implemented
	// by Debug loggers.
	DebugLogger interface {
		Debugf(format string, args ...interface{})
	}

	// InfoLogger defines an interface to be implemented
	// by Info loggers.
	InfoLogger interface {
		Infof(format string, args ...interface{})
	}

	// ErrorLogger defines an interface to be implemented
	// by Error loggers.
	ErrorLogger interface {
		Errorf(format string, args ...interface{})
	}

	// LeveledLogger filters messages by level and fans them out
	// to every attached sink.
	LeveledLogger struct {
		sync.RWMutex

		level LogLevel
		sinks []sink
	}
)

// sink holds one destination's per-level formatters.
type sink struct {
	trace TraceLogger
	debug DebugLogger
	info  InfoLogger
	err   ErrorLogger
}

// SetLevel sets the most verbose level that will be emitted.
func (ll *LeveledLogger) SetLevel(newLevel LogLevel) {
	ll.level.Set(newLevel)
}

// Level returns the logger's current LogLevel.
func (ll *LeveledLogger) Level() LogLevel {
	return ll.level.Get()
}

// EnabledFor indicates whether messages at level would be emitted.
func (ll *LeveledLogger) EnabledFor(level LogLevel) bool {
	return ll.level.Get() >= level
}

// WithLogLevel sets the level as part of a chained method call.
func (ll *LeveledLogger) WithLogLevel(level LogLevel) *LeveledLogger {
	ll.SetLevel(level)
	return ll
}

func (ll *LeveledLogger) addSink(s sink) *LeveledLogger {
	ll.Lock()
	defer ll.Unlock()

	ll.sinks = append(ll.sinks, s)
	return ll
}

// WithOutput attaches a destination receiving every level, with the
// prefix applied to info and error lines.
func (ll *LeveledLogger) WithOutput(prefix string, dest io.Writer) *LeveledLogger {
	return ll.addSink(sink{
		trace: NewTraceLogger(dest),
		debug: NewDebugLogger(dest),
		info:  NewInfoLogger(prefix, dest),
		err:   NewErrorLogger(prefix, dest),
	})
}

// active returns the sinks to write to at level, or nil if the level
// is filtered.
func (ll *LeveledLogger) active(level LogLevel) []sink {
	if !ll.EnabledFor(level) {
		return nil
	}

	ll.RLock()
	defer ll.RUnlock()
	return ll.sinks
}

// Trace emits an unformatted message at Trace level.
func (ll *LeveledLogger) Trace(msg string) {
	ll.Tracef("%s", msg)
}

// Tracef emits a formatted message at Trace level. Raw command dwords
// are logged here.
func (ll *LeveledLogger) Tracef(format string, args ...interface{}) {
	for _, s := range ll.active(LogLevelTrace) {
		s.trace.Tracef(format, args...)
	}
}

// Debug emits an unformatted message at Debug level.
func (ll *LeveledLogger) Debug(msg string) {
	ll.Debugf("%s", msg)
}

// Debugf emits a formatted message at Debug level.
func (ll *LeveledLogger) Debugf(format string, args ...interface{}) {
	for _, s := range ll.active(LogLevelDebug) {
		s.debug.Debugf(format, args...)
	}
}

// Info emits an unformatted message at Info level.
func (ll *LeveledLogger) Info(msg string) {
	ll.Infof("%s", msg)
}

// Infof emits a formatted message at Info level.
func (ll *LeveledLogger) Infof(format string, args ...interface{}) {
	for _, s := range ll.active(LogLevelInfo) {
		s.info.Infof(format, args...)
	}
}

// Error emits an unformatted message at Error level.
func (ll *LeveledLogger) Error(msg string) {
	ll.Errorf("%s", msg)
}

// Errorf emits a formatted message at Error level.
func (ll *LeveledLogger) Errorf(format string, args ...interface{}) {
	for _, s := range ll.active(LogLevelError) {
		s.err.Errorf(format, args...)
	}
}

// LogBuffer provides a thread-safe wrapper for bytes.Buffer.
// Reset() is wrapped in order to make it useful for testing.
type LogBuffer struct {
	sync.Mutex
	buf bytes.Buffer
}

func (lb *LogBuffer) Write(p []byte) (int, error) {
	lb.Lock()
	defer lb.Unlock()
	return lb.buf.Write(p)
}

func (lb *LogBuffer) String() string {
	lb.Lock()
	defer lb.Unlock()
	return lb.buf.String()
}

func (lb *LogBuffer) Reset() {
	lb.Lock()
	defer lb.Unlock()
	lb.buf.Reset()
}
