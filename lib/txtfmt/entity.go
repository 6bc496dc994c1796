//
// (C) Copyright 2020-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package txtfmt

import (
	"fmt"
	"io"
	"strings"
)

const defEntityRowIndent = 2

type attribute struct {
	key   string
	value string
}

// Entity can be used for neatly displaying the ordered attributes
// of a single entity, e.g. a controller or a log page.
type Entity struct {
	title string
	attrs []attribute

	Separator string
}

// NewEntity returns an Entity with the supplied title. An empty title
// suppresses the header.
func NewEntity(title string) *Entity {
	return &Entity{
		title:     title,
		Separator: ": ",
	}
}

// Add appends a formatted attribute.
func (e *Entity) Add(key, format string, args ...interface{}) *Entity {
	e.attrs = append(e.attrs, attribute{key: key, value: fmt.Sprintf(format, args...)})
	return e
}

// AddValue appends an attribute rendered with fmt.Sprint.
func (e *Entity) AddValue(key string, val interface{}) *Entity {
	return e.Add(key, "%v", val)
}

// Len returns the number of attributes.
func (e *Entity) Len() int {
	return len(e.attrs)
}

func (e *Entity) padding() (width int) {
	for _, attr := range e.attrs {
		if len(attr.key) > width {
			width = len(attr.key)
		}
	}
	return
}

// WriteTo writes the title and every attribute, one per line, with
// keys padded to a common width.
func (e *Entity) WriteTo(w io.Writer) (int64, error) {
	ew := NewErrWriter(w)

	if e.title != "" {
		fmt.Fprintf(ew, "%s\n%s\n", e.title, strings.Repeat("-", len(e.title)))
	}

	width := e.padding()
	iw := NewIndentWriter(ew, WithPadCount(defEntityRowIndent))
	for _, attr := range e.attrs {
		fmt.Fprintf(iw, "%-*s %s%s\n", width, attr.key, e.Separator, attr.value)
	}

	return ew.N, ew.Err
}

func (e *Entity) String() string {
	var sb strings.Builder
	_, _ = e.WriteTo(&sb)
	return sb.String()
}
