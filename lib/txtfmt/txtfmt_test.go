//
// (C) Copyright 2019-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package txtfmt

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTxtfmt_Table(t *testing.T) {
	for name, tc := range map[string]struct {
		titles []string
		rows   [][]interface{}
		expOut string
	}{
		"no titles": {
			rows: [][]interface{}{{"a"}},
		},
		"header only": {
			titles: []string{"ID", "Name"},
			expOut: `
ID Name 
-- ---- 
`,
		},
		"lba formats": {
			titles: []string{"LBAF", "Data Size", "Metadata"},
			rows: [][]interface{}{
				{0, "512 B", 0},
				{1, "4.1 kB", 8},
			},
			expOut: `
LBAF Data Size Metadata 
---- --------- -------- 
0    512 B     0        
1    4.1 kB    8        
`,
		},
		"missing and surplus cells": {
			titles: []string{"A", "B"},
			rows: [][]interface{}{
				{"x"},
				{"y", "z", "dropped"},
			},
			expOut: `
A B 
- - 
x - 
y z 
`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			tbl := NewTable(tc.titles...)
			for _, row := range tc.rows {
				tbl.AddRow(row...)
			}

			if diff := cmp.Diff(strings.TrimLeft(tc.expOut, "\n"), tbl.String()); diff != "" {
				t.Fatalf("unexpected output (-want, +got):\n%s\n", diff)
			}
		})
	}
}

func TestTxtfmt_Entity(t *testing.T) {
	for name, tc := range map[string]struct {
		title  string
		attrs  [][2]string
		expOut string
	}{
		"normal": {
			title: "Controller",
			attrs: [][2]string{
				{"VID", "0x8086"},
				{"Serial", "SN1"},
			},
			expOut: `
Controller
----------
  VID    : 0x8086
  Serial : SN1
`,
		},
		"empty title": {
			attrs:  [][2]string{{"a", "b"}},
			expOut: "  a : b\n",
		},
		"empty attrs": {
			title: "empty",
			expOut: `
empty
-----
`,
		},
		"nothing": {},
	} {
		t.Run(name, func(t *testing.T) {
			e := NewEntity(tc.title)
			for _, attr := range tc.attrs {
				e.AddValue(attr[0], attr[1])
			}

			if diff := cmp.Diff(strings.TrimLeft(tc.expOut, "\n"), e.String()); diff != "" {
				t.Fatalf("unexpected output (-want, +got):\n%s\n", diff)
			}
		})
	}
}

func TestTxtfmt_IndentWriter(t *testing.T) {
	for name, tc := range map[string]struct {
		padCount int
		writes   []string
		expOut   string
	}{
		"single write": {
			padCount: 2,
			writes:   []string{"a\nb\n\nc"},
			expOut:   "  a\n  b\n\n  c",
		},
		"split writes": {
			padCount: 4,
			writes:   []string{"ab", "c\n", "d\n"},
			expOut:   "    abc\n    d\n",
		},
	} {
		t.Run(name, func(t *testing.T) {
			var buf bytes.Buffer
			iw := NewIndentWriter(&buf, WithPadCount(tc.padCount))

			for _, w := range tc.writes {
				n, err := iw.Write([]byte(w))
				if err != nil {
					t.Fatal(err)
				}
				if n != len(w) {
					t.Fatalf("expected %d bytes consumed, got %d", len(w), n)
				}
			}

			if diff := cmp.Diff(tc.expOut, buf.String()); diff != "" {
				t.Fatalf("unexpected output (-want, +got):\n%s\n", diff)
			}
		})
	}
}

type failWriter struct {
	after int
	calls int
}

func (fw *failWriter) Write(data []byte) (int, error) {
	fw.calls++
	if fw.calls > fw.after {
		return 0, errors.New("write failed")
	}
	return len(data), nil
}

func TestTxtfmt_ErrWriter(t *testing.T) {
	fw := &failWriter{after: 1}
	ew := NewErrWriter(fw)

	ew.Write([]byte("abc"))
	ew.Write([]byte("def"))
	ew.Write([]byte("ghi"))

	if ew.Err == nil {
		t.Fatal("expected error")
	}
	if ew.N != 3 {
		t.Fatalf("expected 3 bytes written, got %d", ew.N)
	}
	if fw.calls != 2 {
		t.Fatalf("expected writes to stop after failure, got %d calls", fw.calls)
	}
}
