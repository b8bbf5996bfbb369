// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"
	"os"

	"github.com/strato-cloud/strato/lib/properties"
)

// Source identifies the kind of a fallthrough.
type Source int

const (
	// SourceArg reads a named flag from the parsed args namespace.
	SourceArg Source = iota
	// SourceProperty reads from the configuration store.
	SourceProperty
	// SourceEnv reads an environment variable.
	SourceEnv
	// SourceMetadata queries the platform metadata service. Only
	// consulted when metadata defaults are enabled.
	SourceMetadata
	// SourceDerived extracts the value from another, already
	// resolved reference (e.g. the project of an anchor URI).
	SourceDerived
)

// Fallthrough is one ordered source that may supply a missing
// reference attribute. Exactly the fields for its Source are set.
type Fallthrough struct {
	Source Source

	// Flag is the args-namespace flag name for SourceArg.
	Flag string

	// Property is the store key for SourceProperty.
	Property properties.Key

	// EnvVar is the variable name for SourceEnv.
	EnvVar string

	// MetadataAttr is the metadata attribute for SourceMetadata.
	MetadataAttr string

	// Derive produces the value for SourceDerived. The bool reports
	// whether a value was available.
	Derive func() (string, bool)

	// DeriveActive marks a derived value as actively asserted, used
	// when the anchor it derives from was itself given explicitly.
	DeriveActive bool

	// Hint is one line of user guidance shown when resolution fails,
	// e.g. "provide the flag --zone on the command line".
	Hint string
}

// ArgLookup reads flag values from a parsed args namespace. Explicit
// reports whether the user set the flag on the command line, which is
// what makes an arg fallthrough active rather than a latent default.
type ArgLookup interface {
	Value(flag string) (string, bool)
	Explicit(flag string) bool
}

// MetadataLookup queries the platform metadata service. Implementations
// are expected to cache; the resolver may ask repeatedly.
type MetadataLookup interface {
	Attribute(name string) (string, bool)
}

// Resolver evaluates fallthrough chains against the current
// invocation: its parsed args, property store, environment, and
// (optionally) the metadata service.
type Resolver struct {
	Args       ArgLookup
	Properties *properties.Store

	// Metadata is consulted only when non-nil; callers enable it per
	// the compute/use_metadata_defaults property.
	Metadata MetadataLookup

	// LookupEnv replaces os.LookupEnv in tests.
	LookupEnv func(string) (string, bool)
}

// Resolved is the outcome of one attribute resolution.
type Resolved struct {
	Value string
	// Active records that the winning source was explicitly asserted
	// by the user (command-line flag or environment variable), as
	// opposed to a latent default.
	Active bool
	Source Source
}

// ResolveAttribute walks the chain in order and returns the first
// value a source supplies. The bool reports whether any source did.
func (r *Resolver) ResolveAttribute(chain []Fallthrough) (Resolved, bool) {
	for _, ft := range chain {
		switch ft.Source {
		case SourceArg:
			if r.Args == nil {
				continue
			}
			if v, ok := r.Args.Value(ft.Flag); ok && v != "" {
				return Resolved{Value: v, Active: r.Args.Explicit(ft.Flag), Source: SourceArg}, true
			}
		case SourceProperty:
			if r.Properties == nil {
				continue
			}
			if v, ok := r.Properties.Get(ft.Property); ok {
				return Resolved{Value: v, Active: false, Source: SourceProperty}, true
			}
		case SourceEnv:
			lookup := r.LookupEnv
			if lookup == nil {
				lookup = os.LookupEnv
			}
			if v, ok := lookup(ft.EnvVar); ok && v != "" {
				return Resolved{Value: v, Active: true, Source: SourceEnv}, true
			}
		case SourceMetadata:
			if r.Metadata == nil {
				continue
			}
			if v, ok := r.Metadata.Attribute(ft.MetadataAttr); ok && v != "" {
				return Resolved{Value: v, Active: false, Source: SourceMetadata}, true
			}
		case SourceDerived:
			if ft.Derive == nil {
				continue
			}
			if v, ok := ft.Derive(); ok && v != "" {
				return Resolved{Value: v, Active: ft.DeriveActive, Source: SourceDerived}, true
			}
		}
	}
	return Resolved{}, false
}

// hints collects the guidance lines of a chain, for failure messages.
func hints(chain []Fallthrough) []string {
	var out []string
	for _, ft := range chain {
		if ft.Hint != "" {
			out = append(out, fmt.Sprintf("- %s", ft.Hint))
		}
	}
	return out
}
