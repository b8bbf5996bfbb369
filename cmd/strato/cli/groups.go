// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"

	"github.com/spf13/pflag"
)

// GroupKind selects the constraint a Group enforces.
type GroupKind int

const (
	// GroupRequired: at least one member flag must be supplied.
	GroupRequired GroupKind = iota
	// GroupExclusive: at most one member flag may be supplied.
	GroupExclusive
	// GroupModal: if any member flag is supplied, the modal flag must
	// be too.
	GroupModal
)

// Group is a cross-flag constraint. Groups are checked in declaration
// order: required groups, then exclusions, then modal rules, matching
// the fixed validation order.
type Group struct {
	Kind  GroupKind
	Flags []string

	// Modal is the flag the members depend on, for GroupModal.
	Modal string
}

// Validator is a custom per-verb rule run after group checks.
type Validator func(fs *pflag.FlagSet) error

func (g Group) check(fs *pflag.FlagSet) error {
	set := make([]string, 0, len(g.Flags))
	for _, name := range g.Flags {
		if fs.Changed(name) {
			set = append(set, name)
		}
	}
	switch g.Kind {
	case GroupRequired:
		if len(set) == 0 {
			return Argumentf("at least one of %s is required", flagList(g.Flags))
		}
	case GroupExclusive:
		if len(set) > 1 {
			return Argumentf("%s are mutually exclusive", flagList(set))
		}
	case GroupModal:
		if len(set) > 0 && !fs.Changed(g.Modal) {
			return Argumentf("--%s is required when %s is given", g.Modal, flagList(set))
		}
	}
	return nil
}

// RequireTogether builds a validator enforcing that the named flags
// are either all present or all absent.
func RequireTogether(flags ...string) Validator {
	return func(fs *pflag.FlagSet) error {
		count := 0
		for _, name := range flags {
			if fs.Changed(name) {
				count++
			}
		}
		if count != 0 && count != len(flags) {
			return Argumentf("%s must be specified together", flagList(flags))
		}
		return nil
	}
}

func flagList(names []string) string {
	withDashes := make([]string, len(names))
	for i, n := range names {
		withDashes[i] = "--" + n
	}
	return strings.Join(withDashes, ", ")
}
