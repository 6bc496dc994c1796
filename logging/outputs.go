//
// (C) Copyright 2019-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
)

// knownWrappers provides a lookup table of known function wrapper
// names to be ignored when determining the real caller location.
var knownWrappers = map[string]struct{}{
	"Trace":  {},
	"Tracef": {},
	"Debug":  {},
	"Debugf": {},
	"Info":   {},
	"Infof":  {},
	"Error":  {},
	"Errorf": {},
}

const (
	debugLogFlags = log.Lmicroseconds | log.Lshortfile
	infoLogFlags  = log.LstdFlags
	errorLogFlags = log.LstdFlags
)

type baseLogger struct {
	log *log.Logger
}

func (bl *baseLogger) output(depth int, name, format string, args ...interface{}) {
	if err := bl.log.Output(depth, fmt.Sprintf(format, args...)); err != nil {
		fmt.Fprintf(os.Stderr, "logger %s() failed: %s\n", name, err)
	}
}

// callerDepth adjusts the output depth to account for any convenience
// wrappers so that the correct caller info is printed.
func callerDepth() int {
	depth := logOutputDepth + 1

	pc := make([]uintptr, depth+5)
	n := runtime.Callers(depth, pc)
	if n == 0 {
		return depth
	}
	frames := runtime.CallersFrames(pc[:n])
	for {
		frame, more := frames.Next()
		fnName := frame.Function[strings.LastIndex(frame.Function, ".")+1:]
		if _, found := knownWrappers[fnName]; found {
			depth++
		}
		if !more {
			break
		}
	}
	return depth
}

// DefaultTraceLogger implements the TraceLogger interface.
type DefaultTraceLogger struct {
	baseLogger
}

// NewTraceLogger returns a TraceLogger configured for outputting
// raw command and completion dumps.
func NewTraceLogger(dest io.Writer) *DefaultTraceLogger {
	return &DefaultTraceLogger{
		baseLogger{log: log.New(dest, "TRACE ", debugLogFlags)},
	}
}

// Tracef emits a formatted trace message.
func (l *DefaultTraceLogger) Tracef(format string, args ...interface{}) {
	l.output(callerDepth(), "Tracef", format, args...)
}

// DefaultDebugLogger implements the DebugLogger interface.
type DefaultDebugLogger struct {
	baseLogger
}

// NewDebugLogger returns a DebugLogger configured for outputting
// debugging messages.
func NewDebugLogger(dest io.Writer) *DefaultDebugLogger {
	return &DefaultDebugLogger{
		baseLogger{log: log.New(dest, "DEBUG ", debugLogFlags)},
	}
}

// Debugf emits a formatted debug message.
func (l *DefaultDebugLogger) Debugf(format string, args ...interface{}) {
	l.output(callerDepth(), "Debugf", format, args...)
}

func levelPrefix(prefix, level string) string {
	if prefix == "" {
		return level + " "
	}
	return prefix + " " + level + " "
}

// DefaultInfoLogger implements the InfoLogger interface.
type DefaultInfoLogger struct {
	baseLogger
}

// NewInfoLogger returns an InfoLogger configured for outputting
// informational messages with standard formatting.
func NewInfoLogger(prefix string, dest io.Writer) *DefaultInfoLogger {
	return &DefaultInfoLogger{
		baseLogger{log: log.New(dest, levelPrefix(prefix, strInfo), infoLogFlags)},
	}
}

// NewCommandLineInfoLogger returns an InfoLogger which emits bare
// messages, suitable for command output.
func NewCommandLineInfoLogger(dest io.Writer) *DefaultInfoLogger {
	return &DefaultInfoLogger{
		baseLogger{log: log.New(dest, "", 0)},
	}
}

// Infof emits a formatted informational message.
func (l *DefaultInfoLogger) Infof(format string, args ...interface{}) {
	l.output(logOutputDepth+1, "Infof", format, args...)
}

// DefaultErrorLogger implements the ErrorLogger interface.
type DefaultErrorLogger struct {
	baseLogger
}

// NewErrorLogger returns an ErrorLogger configured for outputting
// error messages with standard formatting.
func NewErrorLogger(prefix string, dest io.Writer) *DefaultErrorLogger {
	return &DefaultErrorLogger{
		baseLogger{log: log.New(dest, levelPrefix(prefix, strError), errorLogFlags)},
	}
}

// NewCommandLineErrorLogger returns an ErrorLogger which emits
// messages with a minimal prefix.
func NewCommandLineErrorLogger(dest io.Writer) *DefaultErrorLogger {
	return &DefaultErrorLogger{
		baseLogger{log: log.New(dest, "ERROR: ", 0)},
	}
}

// Errorf emits a formatted error message.
func (l *DefaultErrorLogger) Errorf(format string, args ...interface{}) {
	l.output(logOutputDepth+1, "Errorf", format, args...)
}
