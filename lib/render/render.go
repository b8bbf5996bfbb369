// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package render turns streams of projected records into user-visible
// output. Four styles are supported: table, flattened, yaml, and json.
// A format string names the style and optionally carries a projection
// expression, as in "table(name, zone.basename())".
//
// Every renderer writes through a single sink. When the projection is
// marked private the output bypasses the structured log copy and goes
// to the console only.
package render

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"

	"github.com/strato-cloud/strato/lib/projection"
)

// Renderer consumes a stream of records. Add may buffer; Flush writes
// everything buffered so far; Finish flushes and completes the output.
type Renderer interface {
	Add(record any) error
	Flush() error
	Finish() error
}

// Options configure output destination and terminal capability.
type Options struct {
	// Out receives the rendered output. Defaults to stdout.
	Out io.Writer

	// LogSink, when set, receives a copy of all non-private output.
	LogSink io.Writer

	// TTY reports whether Out is a terminal. Styling is applied only
	// when TTY is set and Profile supports color.
	TTY     bool
	Profile termenv.Profile

	// Single renders a lone JSON record bare instead of array-wrapped.
	Single bool
}

// New builds a renderer from a format string: a style name optionally
// followed by a projection expression.
func New(format string, opts Options) (Renderer, error) {
	style := strings.TrimSpace(format)
	expr := ""
	if i := strings.IndexAny(style, "(["); i >= 0 {
		style, expr = strings.TrimSpace(style[:i]), style[i:]
	}

	proj := &projection.Projection{}
	if expr != "" {
		var err error
		if proj, err = projection.Parse(expr); err != nil {
			return nil, err
		}
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	switch style {
	case "table":
		if len(proj.Nodes) == 0 {
			return nil, fmt.Errorf("format %q: table needs at least one column", format)
		}
		return &tableRenderer{opts: opts, proj: proj}, nil
	case "flattened":
		return &flattenedRenderer{opts: opts, proj: proj}, nil
	case "yaml", "default", "":
		return &yamlRenderer{opts: opts, proj: proj}, nil
	case "json":
		return &jsonRenderer{opts: opts, proj: proj, records: []any{}}, nil
	default:
		return nil, fmt.Errorf("unknown format %q", style)
	}
}

// sink tees output to the log copy unless the projection is private.
func (o *Options) sink(proj *projection.Projection) io.Writer {
	if o.LogSink != nil && !proj.Attrs.Private {
		return io.MultiWriter(o.Out, o.LogSink)
	}
	return o.Out
}

func (o *Options) colorEnabled() bool {
	return o.TTY && o.Profile != termenv.Ascii
}

var colorCodes = map[string]string{
	"red":    "1",
	"green":  "2",
	"yellow": "3",
	"blue":   "4",
}

// cell renders a projected value as display text, resolving styling
// markers against the terminal's capability.
func (o *Options) cell(v any) string {
	styled, ok := v.(projection.Styled)
	if !ok {
		return projection.String(v)
	}
	text := projection.String(styled.Value)
	code, known := colorCodes[styled.Color]
	if !known || !o.colorEnabled() {
		return text
	}
	return o.Profile.String(text).Foreground(o.Profile.Color(code)).String()
}

// pathString rebuilds a node's key path for use as a field name.
func pathString(path []projection.Segment) string {
	var b strings.Builder
	for _, seg := range path {
		switch {
		case seg.Wildcard:
			b.WriteString("[]")
		case seg.HasIndex:
			fmt.Fprintf(&b, "[%d]", seg.Index)
		default:
			if b.Len() > 0 {
				b.WriteByte('.')
			}
			b.WriteString(seg.Key)
		}
	}
	return b.String()
}

// projected applies the projection to a record for the structured
// styles. Without nodes the record passes through whole; with nodes
// the output is a map of path to transformed value.
func projected(proj *projection.Projection, record any) any {
	if len(proj.Nodes) == 0 {
		return record
	}
	out := make(map[string]any, len(proj.Nodes))
	for _, n := range proj.Nodes {
		out[pathString(n.Path)] = n.Evaluate(record)
	}
	return out
}

// sanitize prepares a projected tree for structured output: styling
// markers collapse to text, nil leaves become the null placeholder,
// and undefined fields drop when the projection says so.
func sanitize(v any, attrs projection.Attributes) any {
	switch t := v.(type) {
	case projection.Styled:
		return projection.String(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if val == nil && attrs.NoUndefined {
				continue
			}
			out[k] = sanitize(val, attrs)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = sanitize(val, attrs)
		}
		return out
	case nil:
		if attrs.Null != "" {
			return attrs.Null
		}
		return nil
	default:
		return v
	}
}
