// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package projection

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Func is a value transform. Transforms never fail: a value the
// transform cannot interpret produces its undefined placeholder, so a
// bad record cannot abort rendering of the rest.
type Func func(v any, args []string) any

var registry = map[string]Func{
	"basename":   transformBasename,
	"list":       transformList,
	"size":       transformSize,
	"resolution": transformResolution,
	"iso":        transformISO,
	"yesno":      transformYesNo,
	"format":     transformFormat,
	"color":      transformColor,
	"len":        transformLen,
}

// Register adds a transform under name. Registering a name twice
// panics; registration happens at init time.
func Register(name string, fn Func) {
	if _, dup := registry[name]; dup {
		panic(fmt.Sprintf("projection: duplicate transform %q", name))
	}
	registry[name] = fn
}

func lookupTransform(name string) Func { return registry[name] }

// Styled wraps a value with a display color. Evaluation stays pure;
// the renderer decides whether the terminal gets SGR sequences.
type Styled struct {
	Value any
	Color string
}

// String renders a leaf value the way transforms and renderers print
// it. Floats drop a trailing ".0" so JSON-decoded integers read as
// integers.
func String(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case Styled:
		return String(t.Value)
	case []any:
		parts := make([]string, len(t))
		for i, e := range t {
			parts[i] = String(e)
		}
		return strings.Join(parts, ",")
	default:
		return fmt.Sprint(t)
	}
}

func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case float64:
		return t != 0
	case int:
		return t != 0
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// argValue finds an argument either positionally or as name=value.
func argValue(args []string, pos int, name string) (string, bool) {
	prefix := name + "="
	for _, a := range args {
		if strings.HasPrefix(a, prefix) {
			return a[len(prefix):], true
		}
	}
	if pos < len(args) && !strings.Contains(args[pos], "=") {
		return args[pos], true
	}
	return "", false
}

func toUint64(v any) (uint64, bool) {
	switch t := v.(type) {
	case float64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case int:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case int64:
		if t < 0 {
			return 0, false
		}
		return uint64(t), true
	case uint64:
		return t, true
	case string:
		n, err := strconv.ParseUint(t, 10, 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// transformBasename keeps the last slash-separated segment.
func transformBasename(v any, args []string) any {
	s := strings.TrimSuffix(String(v), "/")
	if i := strings.LastIndexByte(s, '/'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// transformList joins list elements with a separator, "," by default.
func transformList(v any, args []string) any {
	sep := ","
	if s, ok := argValue(args, 0, "separator"); ok && s != "" {
		sep = s
	}
	items, ok := v.([]any)
	if !ok {
		return String(v)
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = String(it)
	}
	return strings.Join(parts, sep)
}

// transformSize renders a byte count with IEC units. A "-" argument
// substitutes "-" for zero and undefined values.
func transformSize(v any, args []string) any {
	zero := ""
	if u, ok := argValue(args, 0, "units"); ok && u == "-" {
		zero = "-"
	}
	b, ok := toUint64(v)
	if !ok || b == 0 {
		if zero != "" {
			return zero
		}
		if !ok {
			return ""
		}
	}
	return humanize.IBytes(b)
}

var resolutionKeys = [][2]string{
	{"width", "height"},
	{"screenx", "screeny"},
	{"col", "row"},
	{"x", "y"},
}

// transformResolution renders paired dimensions as "W x H".
func transformResolution(v any, args []string) any {
	undefined := "unknown"
	if u, ok := argValue(args, 0, "undefined"); ok {
		undefined = u
	}
	transpose := false
	if t, ok := argValue(args, 1, "transpose"); ok {
		transpose = t == "1" || t == "true"
	}
	m, ok := v.(map[string]any)
	if !ok {
		return undefined
	}
	for _, keys := range resolutionKeys {
		w, okW := m[keys[0]]
		h, okH := m[keys[1]]
		if !okW || !okH {
			continue
		}
		if transpose {
			w, h = h, w
		}
		return fmt.Sprintf("%s x %s", String(w), String(h))
	}
	return undefined
}

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// transformISO normalizes a timestamp to RFC 3339.
func transformISO(v any, args []string) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339)
	case string:
		for _, layout := range isoLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.Format(time.RFC3339)
			}
		}
		return t
	default:
		return v
	}
}

// transformYesNo substitutes literals for truthy and falsy values.
// Without a yes argument a truthy value passes through; without a no
// argument a falsy value becomes empty.
func transformYesNo(v any, args []string) any {
	yes, hasYes := argValue(args, 0, "yes")
	no, hasNo := argValue(args, 1, "no")
	if truthy(v) {
		if hasYes {
			return yes
		}
		return v
	}
	if hasNo {
		return no
	}
	return ""
}

// transformFormat substitutes {i} placeholders. With only a format
// string, {0} is the value itself; further arguments select into the
// value by [index] or key.
func transformFormat(v any, args []string) any {
	if len(args) == 0 {
		return v
	}
	format := args[0]
	var vals []any
	if len(args) == 1 {
		vals = []any{v}
	} else {
		for _, sel := range args[1:] {
			vals = append(vals, selectInto(v, sel))
		}
	}
	out := format
	for i, val := range vals {
		out = strings.ReplaceAll(out, fmt.Sprintf("{%d}", i), String(val))
	}
	return out
}

func selectInto(v any, sel string) any {
	if strings.HasPrefix(sel, "[") && strings.HasSuffix(sel, "]") {
		idx, err := strconv.Atoi(sel[1 : len(sel)-1])
		if err != nil {
			return nil
		}
		items, ok := v.([]any)
		if !ok || idx < 0 || idx >= len(items) {
			return nil
		}
		return items[idx]
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return m[sel]
}

// transformColor wraps the value in a Styled marker when any
// color=substring argument matches. First match wins.
func transformColor(v any, args []string) any {
	s := String(v)
	for _, a := range args {
		name, pattern, ok := strings.Cut(a, "=")
		if !ok || pattern == "" {
			continue
		}
		if strings.Contains(s, pattern) {
			return Styled{Value: v, Color: name}
		}
	}
	return v
}

// transformLen measures a string or container.
func transformLen(v any, args []string) any {
	switch t := v.(type) {
	case nil:
		return 0
	case string:
		return len(t)
	case []any:
		return len(t)
	case map[string]any:
		return len(t)
	default:
		return len(String(t))
	}
}
