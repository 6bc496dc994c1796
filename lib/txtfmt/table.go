//
// (C) Copyright 2019-2025 Intel Corporation.
//
// SPDX-License-Identifier: BSD-2-Clause-Patent
//

package txtfmt

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

const emptyCell = "-"

// Table accumulates rows of cells to be displayed underneath
// a row of labeled columns.
type Table struct {
	titles []string
	rows   [][]string
}

// NewTable creates a Table with the supplied column titles.
func NewTable(titles ...string) *Table {
	return &Table{titles: titles}
}

// AddRow appends a row to the table. Each cell is rendered with
// fmt.Sprint; missing cells are displayed as "-" and surplus cells
// are dropped.
func (t *Table) AddRow(cells ...interface{}) *Table {
	row := make([]string, len(t.titles))
	for i := range row {
		row[i] = emptyCell
		if i < len(cells) {
			if s := fmt.Sprint(cells[i]); s != "" {
				row[i] = s
			}
		}
	}
	t.rows = append(t.rows, row)
	return t
}

// Len returns the number of rows in the table.
func (t *Table) Len() int {
	return len(t.rows)
}

// WriteTo writes the formatted table to w.
func (t *Table) WriteTo(w io.Writer) (int64, error) {
	if len(t.titles) == 0 {
		return 0, nil
	}

	ew := NewErrWriter(w)
	tw := tabwriter.NewWriter(ew, 0, 0, 1, ' ', 0)

	for _, title := range t.titles {
		fmt.Fprintf(tw, "%s\t", title)
	}
	fmt.Fprint(tw, "\n")
	for _, title := range t.titles {
		fmt.Fprintf(tw, "%s\t", strings.Repeat("-", len(title)))
	}
	fmt.Fprint(tw, "\n")

	for _, row := range t.rows {
		for _, cell := range row {
			fmt.Fprintf(tw, "%s\t", cell)
		}
		fmt.Fprint(tw, "\n")
	}

	if err := tw.Flush(); err != nil && ew.Err == nil {
		return ew.N, err
	}
	return ew.N, ew.Err
}

func (t *Table) String() string {
	var sb strings.Builder
	_, _ = t.WriteTo(&sb)
	return sb.String()
}
