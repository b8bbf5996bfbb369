// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/strato-cloud/strato/lib/projection"
)

// flattenedRenderer prints one "key: value" line per leaf. Records are
// separated by a "---" line; keys within a record pad to the widest
// key unless no-pad is set.
type flattenedRenderer struct {
	opts  Options
	proj  *projection.Projection
	wrote bool
}

type flatPair struct {
	key   string
	value string
}

func (f *flattenedRenderer) Add(record any) error {
	var pairs []flatPair
	if len(f.proj.Nodes) == 0 {
		f.flatten("", sanitize(record, f.proj.Attrs), &pairs)
	} else {
		for _, n := range f.proj.Nodes {
			v := sanitize(n.Evaluate(record), f.proj.Attrs)
			if v == nil && f.proj.Attrs.NoUndefined {
				continue
			}
			f.flatten(pathString(n.Path), v, &pairs)
		}
	}

	out := f.opts.sink(f.proj)
	if f.wrote {
		if _, err := fmt.Fprintln(out, "---"); err != nil {
			return err
		}
	}
	f.wrote = true

	width := 0
	for _, p := range pairs {
		if len(p.key) > width {
			width = len(p.key)
		}
	}
	for _, p := range pairs {
		key := p.key + ":"
		if !f.proj.Attrs.NoPad {
			key = pad(key, width+1, projection.AlignLeft)
		}
		if _, err := fmt.Fprintf(out, "%s %s\n", key, p.value); err != nil {
			return err
		}
	}
	return nil
}

func (f *flattenedRenderer) flatten(prefix string, v any, pairs *[]flatPair) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 {
			*pairs = append(*pairs, flatPair{prefix, "{}"})
			return
		}
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			f.flatten(key, t[k], pairs)
		}
	case []any:
		if len(t) == 0 {
			*pairs = append(*pairs, flatPair{prefix, "[]"})
			return
		}
		for i, e := range t {
			f.flatten(fmt.Sprintf("%s[%d]", prefix, i), e, pairs)
		}
	default:
		*pairs = append(*pairs, flatPair{prefix, strings.TrimRight(f.opts.cell(v), "\n")})
	}
}

func (f *flattenedRenderer) Flush() error  { return nil }
func (f *flattenedRenderer) Finish() error { return nil }
