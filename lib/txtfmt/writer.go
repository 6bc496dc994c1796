//
// (C) Copyright 2020-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package txtfmt

import (
	"bytes"
	"io"
)

// ErrWriter eliminates repetitive error handling by
// capturing an error and ignoring subsequent writes.
// The original error is available to be used by the caller,
// along with the number of bytes written before it occurred.
//
// https://dave.cheney.net/2019/01/27/eliminate-error-handling-by-eliminating-errors
type ErrWriter struct {
	writer io.Writer
	N      int64
	Err    error
}

// NewErrWriter returns an initialized ErrWriter.
func NewErrWriter(w io.Writer) *ErrWriter {
	return &ErrWriter{writer: w}
}

func (w *ErrWriter) Write(data []byte) (int, error) {
	if w.Err != nil {
		return 0, w.Err
	}

	var n int
	n, w.Err = w.writer.Write(data)
	w.N += int64(n)
	return n, w.Err
}

const defaultPadCount = 2

type (
	// IndentWriter indents every non-empty line written to it.
	IndentWriter struct {
		writer    io.Writer
		padding   []byte
		inNewLine bool
	}

	// IndentWriterOption configures the IndentWriter.
	IndentWriterOption func(*IndentWriter)
)

// WithPadCount sets the indent width.
func WithPadCount(count int) IndentWriterOption {
	return func(w *IndentWriter) {
		w.padding = bytes.Repeat([]byte{' '}, count)
	}
}

// NewIndentWriter returns an initialized IndentWriter.
func NewIndentWriter(w io.Writer, opts ...IndentWriterOption) *IndentWriter {
	iw := &IndentWriter{
		writer:    w,
		padding:   bytes.Repeat([]byte{' '}, defaultPadCount),
		inNewLine: true,
	}

	for _, opt := range opts {
		opt(iw)
	}
	return iw
}

// Write returns the number of bytes of data consumed, not counting
// any padding inserted.
func (w *IndentWriter) Write(data []byte) (int, error) {
	var written int
	for len(data) > 0 {
		if w.inNewLine && data[0] != '\n' {
			if _, err := w.writer.Write(w.padding); err != nil {
				return written, err
			}
			w.inNewLine = false
		}

		line := data
		if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
			line = data[:idx+1]
			w.inNewLine = true
		}

		n, err := w.writer.Write(line)
		written += n
		if err != nil {
			return written, err
		}
		data = data[len(line):]
	}

	return written, nil
}
