//
// (C) Copyright 2019-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package logging

import (
	"io"
	"os"
)

const (
	DefaultLogLevel = LogLevelInfo
	logOutputDepth  = 3
)

// NewCommandLineLogger returns a logger for command line tools: info
// output goes to stdout without timestamps so that command results can be
// piped, and errors go to stderr.
func NewCommandLineLogger() *LeveledLogger {
	ll := &LeveledLogger{level: DefaultLogLevel}
	return ll.addSink(sink{
		trace: NewTraceLogger(os.Stdout),
		debug: NewDebugLogger(os.Stdout),
		info:  NewCommandLineInfoLogger(os.Stdout),
		err:   NewCommandLineErrorLogger(os.Stderr),
	})
}

// NewCombinedLogger returns a logger writing every level to output.
func NewCombinedLogger(prefix string, output io.Writer) *LeveledLogger {
	ll := &LeveledLogger{level: DefaultLogLevel}
	return ll.WithOutput(prefix, output)
}

// NewTestLogger returns a TRACE level logger capturing all output in the
// returned buffer.
func NewTestLogger(prefix string) (*LeveledLogger, *LogBuffer) {
	var buf LogBuffer
	return NewCombinedLogger(prefix, &buf).
		WithLogLevel(LogLevelTrace), &buf
}
