// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package flagtypes

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration is a pflag.Value accepting the standard Go duration syntax
// plus a leading day component: "15d", "1d12h", "1h2m", "90s".
type Duration struct {
	value time.Duration
	set   bool
}

// ParseDuration parses the extended duration syntax.
func ParseDuration(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty duration")
	}
	rest := raw
	var days int64
	if i := strings.IndexByte(rest, 'd'); i > 0 && allDigits(rest[:i]) {
		n, err := strconv.ParseInt(rest[:i], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
		days = n
		rest = rest[i+1:]
	}
	var tail time.Duration
	if rest != "" {
		var err error
		tail, err = time.ParseDuration(rest)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q: %w", raw, err)
		}
	}
	return time.Duration(days)*24*time.Hour + tail, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// Set parses and stores the value.
func (d *Duration) Set(raw string) error {
	v, err := ParseDuration(raw)
	if err != nil {
		return err
	}
	d.value = v
	d.set = true
	return nil
}

// String renders the stored duration in Go syntax.
func (d *Duration) String() string {
	if !d.set {
		return ""
	}
	return d.value.String()
}

// Type names the value for help output.
func (d *Duration) Type() string { return "duration" }

// Value returns the parsed duration.
func (d *Duration) Value() time.Duration { return d.value }

// IsSet reports whether the flag was supplied.
func (d *Duration) IsSet() bool { return d.set }
