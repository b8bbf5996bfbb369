// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package flagtypes

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// ByteSize is a pflag.Value accepting human byte sizes: "100GB",
// "1.5GiB", "512MB", or a bare byte count. SI suffixes are decimal,
// IEC suffixes binary, matching humanize semantics.
type ByteSize struct {
	bytes uint64
	set   bool
}

// Set parses and stores the value.
func (b *ByteSize) Set(raw string) error {
	n, err := humanize.ParseBytes(raw)
	if err != nil {
		return fmt.Errorf("invalid size %q: %w", raw, err)
	}
	b.bytes = n
	b.set = true
	return nil
}

// String renders the stored size in IEC units.
func (b *ByteSize) String() string {
	if !b.set {
		return ""
	}
	return humanize.IBytes(b.bytes)
}

// Type names the value for help output.
func (b *ByteSize) Type() string { return "size" }

// Bytes returns the parsed byte count.
func (b *ByteSize) Bytes() uint64 { return b.bytes }

// IsSet reports whether the flag was supplied.
func (b *ByteSize) IsSet() bool { return b.set }
