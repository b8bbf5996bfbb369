// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/strato-cloud/strato/lib/projection"
)

// tableRenderer prints aligned columns. Widths are computed from the
// header and the rows buffered before the first Flush, then frozen so
// streamed appends line up with what is already on screen.
type tableRenderer struct {
	opts Options
	proj *projection.Projection

	pending [][]string
	widths  []int
	frozen  bool
}

func (t *tableRenderer) Add(record any) error {
	values := t.proj.Evaluate(record)
	row := make([]string, len(values))
	empty := true
	for i, v := range values {
		row[i] = t.opts.cell(v)
		if row[i] != "" {
			empty = false
		}
	}
	if empty {
		return nil
	}
	t.pending = append(t.pending, row)
	return nil
}

func (t *tableRenderer) Flush() error {
	out := t.opts.sink(t.proj)
	if !t.frozen {
		labels := t.proj.Labels()
		t.widths = make([]int, len(labels))
		for i, l := range labels {
			t.widths[i] = len(l)
		}
		for _, row := range t.pending {
			for i, cell := range row {
				if w := ansi.StringWidth(cell); w > t.widths[i] {
					t.widths[i] = w
				}
			}
		}
		t.frozen = true
		if err := t.writeRow(out, labels); err != nil {
			return err
		}
	}
	for _, row := range t.pending {
		if err := t.writeRow(out, row); err != nil {
			return err
		}
	}
	t.pending = nil
	return nil
}

func (t *tableRenderer) Finish() error { return t.Flush() }

func (t *tableRenderer) writeRow(out io.Writer, row []string) error {
	sep := " "
	if t.proj.Attrs.Separator != "" {
		sep = t.proj.Attrs.Separator
	}
	if t.proj.Attrs.NoPad {
		_, err := fmt.Fprintln(out, strings.Join(row, sep))
		return err
	}
	cells := make([]string, len(row))
	for i, cell := range row {
		cells[i] = pad(cell, t.widths[i], t.align(i))
	}
	line := strings.TrimRight(strings.Join(cells, sep), " ")
	_, err := fmt.Fprintln(out, line)
	return err
}

func (t *tableRenderer) align(col int) projection.Alignment {
	if col < len(t.proj.Nodes) {
		return t.proj.Nodes[col].Align
	}
	return projection.AlignLeft
}

// pad positions s within width. Display width is measured with escape
// sequences excluded so styled cells align with plain ones.
func pad(s string, width int, align projection.Alignment) string {
	gap := width - ansi.StringWidth(s)
	if gap <= 0 {
		return s
	}
	switch align {
	case projection.AlignRight:
		return strings.Repeat(" ", gap) + s
	case projection.AlignCenter:
		left := gap / 2
		return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap-left)
	default:
		return s + strings.Repeat(" ", gap)
	}
}
