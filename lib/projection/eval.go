// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package projection

import "strconv"

// Evaluate resolves every node against record and returns one value
// per column, in node order. Records are JSON-like trees of
// map[string]any, []any, and leaf scalars.
func (p *Projection) Evaluate(record any) []any {
	out := make([]any, len(p.Nodes))
	for i, n := range p.Nodes {
		out[i] = n.Evaluate(record)
	}
	return out
}

// Row is Evaluate with every value flattened to its display string.
func (p *Projection) Row(record any) []string {
	values := p.Evaluate(record)
	row := make([]string, len(values))
	for i, v := range values {
		row[i] = String(v)
	}
	return row
}

// Evaluate walks the node's path and applies its transform chain.
func (n *Node) Evaluate(record any) any {
	return applyTransforms(walk(record, n.Path), n.Transforms)
}

func walk(v any, path []Segment) any {
	if len(path) == 0 {
		return v
	}
	seg := path[0]
	switch {
	case seg.Wildcard:
		items, ok := v.([]any)
		if !ok {
			return nil
		}
		out := make([]any, 0, len(items))
		for _, it := range items {
			out = append(out, walk(it, path[1:]))
		}
		return out
	case seg.HasIndex:
		items, ok := v.([]any)
		if !ok || seg.Index < 0 || seg.Index >= len(items) {
			return nil
		}
		return walk(items[seg.Index], path[1:])
	default:
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		return walk(m[seg.Key], path[1:])
	}
}

func applyTransforms(v any, calls []TransformCall) any {
	for i, c := range calls {
		if c.Name == "map" {
			depth := 1
			if d, ok := argValue(c.Args, 0, "depth"); ok {
				if parsed, err := strconv.Atoi(d); err == nil {
					depth = parsed
				}
			}
			return mapAtDepth(v, depth, calls[i+1:])
		}
		v = registry[c.Name](v, c.Args)
	}
	return v
}

// mapAtDepth applies the remaining chain per element, descending the
// given number of list levels first.
func mapAtDepth(v any, depth int, calls []TransformCall) any {
	if depth <= 0 {
		return applyTransforms(v, calls)
	}
	items, ok := v.([]any)
	if !ok {
		return applyTransforms(v, calls)
	}
	out := make([]any, len(items))
	for i, it := range items {
		out[i] = mapAtDepth(it, depth-1, calls)
	}
	return out
}
