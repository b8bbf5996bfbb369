// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package flagtypes

import (
	"fmt"
	"strings"
)

// Enum is a pflag.Value restricted to a fixed choice set. Matching is
// case-insensitive; the stored value is the canonical (declared) form.
type Enum struct {
	choices []string
	value   string
	set     bool
}

// NewEnum declares the choice set and an optional default (empty for
// none). Panics if the default is not a choice — that is a grammar
// bug, not user input.
func NewEnum(choices []string, def string) *Enum {
	e := &Enum{choices: choices}
	if def != "" {
		if err := e.Set(def); err != nil {
			panic(fmt.Sprintf("flagtypes.NewEnum: default %q: %v", def, err))
		}
		e.set = false
	}
	return e
}

// Set validates raw against the choice set.
func (e *Enum) Set(raw string) error {
	for _, choice := range e.choices {
		if strings.EqualFold(raw, choice) {
			e.value = choice
			e.set = true
			return nil
		}
	}
	return fmt.Errorf("invalid choice %q, expected one of [%s]", raw, strings.Join(e.choices, ", "))
}

// String returns the selected choice.
func (e *Enum) String() string { return e.value }

// Type names the value for help output.
func (e *Enum) Type() string { return strings.Join(e.choices, "|") }

// Value returns the selected (canonical) choice.
func (e *Enum) Value() string { return e.value }

// IsSet reports whether the flag was supplied (defaults don't count).
func (e *Enum) IsSet() bool { return e.set }
