// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package flagtypes

import (
	"fmt"
	"sort"
	"strings"
)

// KeyValue is a pflag.Value accepting "key=value" pairs, comma
// separated and/or repeated: --labels env=prod,team=infra
// --labels tier=db. Later assignments to the same key win.
type KeyValue struct {
	values map[string]string
	set    bool
}

// Set parses one flag occurrence and merges its pairs.
func (kv *KeyValue) Set(raw string) error {
	if kv.values == nil {
		kv.values = map[string]string{}
	}
	for _, pair := range strings.Split(raw, ",") {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return fmt.Errorf("invalid key=value pair %q", pair)
		}
		kv.values[key] = value
	}
	kv.set = true
	return nil
}

// String renders the pairs sorted by key.
func (kv *KeyValue) String() string {
	if len(kv.values) == 0 {
		return ""
	}
	keys := make([]string, 0, len(kv.values))
	for k := range kv.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+kv.values[k])
	}
	return strings.Join(parts, ",")
}

// Type names the value for help output.
func (kv *KeyValue) Type() string { return "key=value" }

// Map returns a copy of the accumulated pairs.
func (kv *KeyValue) Map() map[string]string {
	out := make(map[string]string, len(kv.values))
	for k, v := range kv.values {
		out[k] = v
	}
	return out
}

// IsSet reports whether the flag was supplied.
func (kv *KeyValue) IsSet() bool { return kv.set }

// StringList is a pflag.Value accepting comma-separated values,
// accumulating across repeats: --zones a,b --zones c.
type StringList struct {
	values []string
	set    bool
}

// Set parses one flag occurrence and appends its items.
func (l *StringList) Set(raw string) error {
	for _, item := range strings.Split(raw, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			return fmt.Errorf("empty list item in %q", raw)
		}
		l.values = append(l.values, item)
	}
	l.set = true
	return nil
}

// String joins the accumulated items with commas.
func (l *StringList) String() string { return strings.Join(l.values, ",") }

// Type names the value for help output.
func (l *StringList) Type() string { return "list" }

// Values returns a copy of the accumulated items.
func (l *StringList) Values() []string {
	out := make([]string, len(l.values))
	copy(out, l.values)
	return out
}

// IsSet reports whether the flag was supplied.
func (l *StringList) IsSet() bool { return l.set }
