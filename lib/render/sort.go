// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package render

import (
	"fmt"
	"sort"
	"strings"

	"github.com/strato-cloud/strato/lib/projection"
)

// SortBy orders records by the given dotted key paths. A "~" prefix
// reverses that key. Records missing a key sort before records that
// have it.
func SortBy(records []map[string]any, keys []string) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		for _, key := range keys {
			descending := strings.HasPrefix(key, "~")
			path := strings.TrimPrefix(key, "~")
			c := compareValues(lookupPath(records[i], path), lookupPath(records[j], path))
			if descending {
				c = -c
			}
			if c != 0 {
				return c < 0
			}
		}
		return false
	})
}

// Filter keeps records matching every key=value conjunct. Values
// compare by display string.
func Filter(records []map[string]any, expr string) ([]map[string]any, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return records, nil
	}
	type clause struct{ path, want string }
	var clauses []clause
	for _, part := range strings.Split(expr, ",") {
		key, val, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("bad filter clause %q: want key=value", part)
		}
		clauses = append(clauses, clause{strings.TrimSpace(key), strings.TrimSpace(val)})
	}
	var out []map[string]any
	for _, record := range records {
		match := true
		for _, c := range clauses {
			if projection.String(lookupPath(record, c.path)) != c.want {
				match = false
				break
			}
		}
		if match {
			out = append(out, record)
		}
	}
	return out, nil
}

func lookupPath(record map[string]any, path string) any {
	var v any = record
	for _, key := range strings.Split(path, ".") {
		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		v = m[key]
	}
	return v
}

func compareValues(a, b any) int {
	an, aNum := toFloat(a)
	bn, bNum := toFloat(b)
	if aNum && bNum {
		switch {
		case an < bn:
			return -1
		case an > bn:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(projection.String(a), projection.String(b))
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}

