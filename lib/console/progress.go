// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package console

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/x/ansi"
)

var spinnerFrames = []byte{'|', '/', '-', '\\'}

// Tracker renders a block of progress lines. On an interactive
// console the block redraws in place with cursor movement; otherwise
// it degrades to append-only lines. Updates from any goroutine are
// serialized through one writer.
type Tracker struct {
	attr *Attr

	mu       sync.Mutex
	tasks    []*Task
	rendered int
	frame    int
}

// Task is one tracked line. The prefix is fixed at Start; the suffix
// mutates as the task progresses.
type Task struct {
	tracker *Tracker
	prefix  string
	suffix  string
	done    bool
}

func NewTracker(attr *Attr) *Tracker {
	return &Tracker{attr: attr}
}

// Start adds a line in the WORKING state.
func (t *Tracker) Start(prefix string) *Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	task := &Task{tracker: t, prefix: prefix, suffix: "WORKING"}
	t.tasks = append(t.tasks, task)
	if t.attr.Interactive {
		t.redrawLocked()
	} else {
		fmt.Fprintln(t.attr.Out, task.line(' '))
	}
	return task
}

// Update replaces the task's suffix, such as an operation status.
func (task *Task) Update(suffix string) {
	t := task.tracker
	t.mu.Lock()
	defer t.mu.Unlock()
	if task.done || suffix == task.suffix {
		return
	}
	task.suffix = suffix
	if t.attr.Interactive {
		t.redrawLocked()
	} else {
		fmt.Fprintln(t.attr.Out, task.line(' '))
	}
}

// Done finishes the line with a terminal suffix, "DONE" or "FAILED".
func (task *Task) Done(suffix string) {
	t := task.tracker
	t.mu.Lock()
	defer t.mu.Unlock()
	if task.done {
		return
	}
	task.done = true
	task.suffix = suffix
	if t.attr.Interactive {
		t.redrawLocked()
	} else {
		fmt.Fprintln(t.attr.Out, task.line(' '))
	}
}

// Tick advances the spinner. A no-op on non-interactive consoles.
func (t *Tracker) Tick() {
	if !t.attr.Interactive {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.frame = (t.frame + 1) % len(spinnerFrames)
	t.redrawLocked()
}

func (task *Task) line(spinner byte) string {
	s := fmt.Sprintf("%s...%s", task.prefix, task.suffix)
	if !task.done && spinner != ' ' {
		s += " " + string(spinner)
	}
	return s
}

// redrawLocked rewrites the whole block: the cursor moves back to the
// first line, then every line is erased and reprinted. A full redraw
// keeps the block consistent when a line's width changes.
func (t *Tracker) redrawLocked() {
	var b strings.Builder
	if t.rendered > 0 {
		b.WriteString(ansi.CursorUp(t.rendered))
	}
	for _, task := range t.tasks {
		b.WriteString(ansi.EraseEntireLine)
		b.WriteString("\r")
		b.WriteString(task.line(spinnerFrames[t.frame]))
		b.WriteString("\n")
	}
	fmt.Fprint(t.attr.Out, b.String())
	t.rendered = len(t.tasks)
}
