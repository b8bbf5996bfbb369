// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package projection implements the output projection language: a
// parenthesized list of key paths, each with an optional chain of
// transforms and display attributes, evaluated against JSON-like
// record trees.
//
// A projection string looks like
//
//	[no-pad](name, machineType.basename():label=TYPE, disks.len())
//
// The leading bracket group sets projection-wide attributes. Each node
// selects a value by path, pipes it through its transforms, and is
// rendered under its label. Evaluation never mutates the record and
// never fails at runtime; a path that resolves nowhere yields nil and
// a transform that cannot interpret its input yields its undefined
// placeholder.
package projection

import (
	"strings"
)

// Alignment positions a column's values within its width.
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

// Attributes apply to the projection as a whole.
type Attributes struct {
	// NoPad suppresses column padding in tabular output.
	NoPad bool

	// Separator overrides the renderer's column separator.
	Separator string

	// NoUndefined drops fields that resolve to nil instead of
	// printing a placeholder.
	NoUndefined bool

	// Null is printed for nil values. Empty means the renderer's
	// default.
	Null string

	// Private marks the output as sensitive. Private output goes to
	// the console only and is never copied to the log sink.
	Private bool

	// Version selects YAML quoting semantics ("1.1" or "1.2").
	Version string
}

// Segment is one step of a key path.
type Segment struct {
	// Key indexes a map. Empty for index segments.
	Key string

	// Index indexes a list when HasIndex is set.
	Index    int
	HasIndex bool

	// Wildcard iterates every element of a list.
	Wildcard bool
}

// TransformCall is one applied transform with its raw arguments.
// Arguments keep their name=value form; each transform interprets its
// own argument list.
type TransformCall struct {
	Name string
	Args []string
}

// Node is one column of a projection.
type Node struct {
	Path       []Segment
	Transforms []TransformCall
	Label      string
	Align      Alignment
	Wrap       bool

	// Always forces the transform chain to run even when the renderer
	// would otherwise show the raw value.
	Always bool
}

// Projection is a parsed projection expression.
type Projection struct {
	Nodes []*Node
	Attrs Attributes
}

// Labels returns the column headers in node order.
func (p *Projection) Labels() []string {
	labels := make([]string, len(p.Nodes))
	for i, n := range p.Nodes {
		labels[i] = n.Label
	}
	return labels
}

// defaultLabel derives a header from the last keyed path segment,
// converting camelCase to UPPER_SNAKE: natIP becomes NAT_IP.
func defaultLabel(path []Segment) string {
	key := ""
	for _, seg := range path {
		if seg.Key != "" {
			key = seg.Key
		}
	}
	if key == "" {
		return ""
	}
	var b strings.Builder
	for i, r := range key {
		if i > 0 && r >= 'A' && r <= 'Z' {
			prev := key[i-1]
			if prev >= 'a' && prev <= 'z' || prev >= '0' && prev <= '9' {
				b.WriteByte('_')
			}
		}
		b.WriteRune(r)
	}
	return strings.ToUpper(b.String())
}
