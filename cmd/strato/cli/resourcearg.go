// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/strato-cloud/strato/lib/collection"
	"github.com/strato-cloud/strato/lib/properties"
	"github.com/strato-cloud/strato/lib/resource"
)

// ResourceArg is a composite argument: given the resource's name (a
// positional, a flag value, or a full URI) it builds fallthrough
// chains for the remaining attributes and runs the resolver. A
// multi-scope resource that ends up under-specified is completed by
// scope inference: metadata (via the resolver chains), the declared
// default scope, or an interactive menu.
type ResourceArg struct {
	// Name describes the resource in messages, e.g. "forwarding rule".
	Name string

	// Types are candidate collections in declaration order. The order
	// is the deterministic tie-break for latent resolution.
	Types []TypeCandidate

	// ScopeParams are the parameters that discriminate between scopes,
	// e.g. ["region"] for a regional-or-global resource. When none of
	// them is supplied by any source, scope inference runs before
	// resolution.
	ScopeParams []string

	// DefaultScope, when set, completes the reference before any
	// prompting.
	DefaultScope *ScopeOption

	// ScopeOptions produces the scope menu for interactive inference.
	// The options arrive in presentation order.
	ScopeOptions func(inv *Invocation) ([]ScopeOption, error)
}

// TypeCandidate is one collection the resource may live in, with the
// fallthrough chains of its non-key parameters.
type TypeCandidate struct {
	Collection string
	Attributes map[string][]resource.Fallthrough
}

// ScopeOption is one entry of the scope menu: choosing it pins the
// candidate type and forces its scope parameters.
type ScopeOption struct {
	Label  string
	Type   string
	Params map[string]string
}

// Fixed is a single-entry fallthrough chain carrying a known value.
// Active values participate in multi-type conflict detection.
func Fixed(value string, active bool) []resource.Fallthrough {
	return []resource.Fallthrough{{
		Source:       resource.SourceDerived,
		Derive:       func() (string, bool) { return value, value != "" },
		DeriveActive: active,
	}}
}

// Resolve turns the user-supplied name into a complete reference.
// Scope inference runs before resolution: a multi-scope resource whose
// scope no source supplies is completed by the default scope, by an
// interactive menu, or fails under-specified.
func (ra *ResourceArg) Resolve(inv *Invocation, name string) (*resource.Reference, error) {
	if strings.Contains(name, "://") {
		return ra.fromURI(inv, name)
	}

	if len(ra.ScopeParams) > 0 && !ra.scopeSupplied(inv) {
		if ra.DefaultScope != nil {
			return ra.withScope(inv, name, *ra.DefaultScope)
		}
		if ra.ScopeOptions == nil || !inv.Env.Console.Interactive || inv.Globals.Quiet {
			return nil, ra.underSpecified()
		}
		options, err := ra.ScopeOptions(inv)
		if err != nil {
			return nil, fmt.Errorf("listing scopes for %s %q: %w", ra.Name, name, err)
		}
		labels := make([]string, len(options))
		for i, o := range options {
			labels[i] = o.Label
		}
		choice, err := inv.Env.Console.PromptChoice(
			fmt.Sprintf("For which scope is %s [%s]?", ra.Name, name), labels)
		if err != nil {
			return nil, err
		}
		return ra.withScope(inv, name, options[choice])
	}

	spec, err := ra.spec(inv, name, nil, "")
	if err != nil {
		return nil, err
	}
	return inv.Resolver().Resolve(spec)
}

// scopeSupplied reports whether any source, active or latent, yields a
// scope parameter for any candidate type.
func (ra *ResourceArg) scopeSupplied(inv *Invocation) bool {
	resolver := inv.Resolver()
	for _, t := range ra.Types {
		for _, param := range ra.ScopeParams {
			chain, ok := t.Attributes[param]
			if !ok {
				continue
			}
			if _, resolved := resolver.ResolveAttribute(chain); resolved {
				return true
			}
		}
	}
	return false
}

// underSpecified describes the missing scope for non-interactive
// failure.
func (ra *ResourceArg) underSpecified() error {
	var hintLines []string
	seen := map[string]bool{}
	for _, t := range ra.Types {
		for _, param := range ra.ScopeParams {
			for _, ft := range t.Attributes[param] {
				if ft.Hint != "" && !seen[ft.Hint] {
					seen[ft.Hint] = true
					hintLines = append(hintLines, "- "+ft.Hint)
				}
			}
		}
	}
	return &resource.UnderSpecifiedError{
		Collection: ra.Types[0].Collection,
		Missing:    append([]string(nil), ra.ScopeParams...),
		Hints:      hintLines,
	}
}

// fromURI accepts a full self link, checking it names one of the
// candidate collections. A URI that parses into a sibling collection
// surfaces as a *collection.WrongCollectionError naming every accepted
// candidate.
func (ra *ResourceArg) fromURI(inv *Invocation, uri string) (*resource.Reference, error) {
	var wrong *collection.WrongCollectionError
	for _, t := range ra.Types {
		col, params, err := inv.Env.Registry.ParseExpect(uri, t.Collection)
		if err == nil {
			return resource.New(col, params)
		}
		if !errors.As(err, &wrong) {
			return nil, err
		}
	}
	want := make([]string, len(ra.Types))
	for i, t := range ra.Types {
		want[i] = t.Collection
	}
	return nil, &collection.WrongCollectionError{
		URI:  uri,
		Want: strings.Join(want, " or "),
		Got:  wrong.Got,
	}
}

// withScope re-resolves against a single pinned candidate with the
// scope parameters forced.
func (ra *ResourceArg) withScope(inv *Invocation, name string, scope ScopeOption) (*resource.Reference, error) {
	spec, err := ra.spec(inv, name, scope.Params, scope.Type)
	if err != nil {
		return nil, err
	}
	return inv.Resolver().Resolve(spec)
}

// spec assembles the resolver spec. The key parameter of each
// candidate gets the user-supplied name as an active fixed value;
// forced params override the declared chains. A non-empty only
// restricts the spec to that candidate.
func (ra *ResourceArg) spec(inv *Invocation, name string, forced map[string]string, only string) (resource.Spec, error) {
	var spec resource.Spec
	for _, t := range ra.Types {
		if only != "" && t.Collection != only {
			continue
		}
		col, err := inv.Env.Registry.Lookup(t.Collection)
		if err != nil {
			return resource.Spec{}, fmt.Errorf("resource argument %s: %w", ra.Name, err)
		}
		attrs := make(map[string][]resource.Fallthrough, len(t.Attributes)+1+len(forced))
		for param, chain := range t.Attributes {
			attrs[param] = chain
		}
		attrs[col.KeyParam()] = Fixed(name, true)
		for param, value := range forced {
			attrs[param] = Fixed(value, true)
		}
		spec.Types = append(spec.Types, resource.TypeSpec{Collection: col, Attributes: attrs})
	}
	if len(spec.Types) == 0 {
		return resource.Spec{}, fmt.Errorf("resource argument %s: no candidate type %q", ra.Name, only)
	}
	return spec, nil
}

// ProjectFallthroughs is the standard chain for the project attribute:
// the --project flag, then the core/project property (which the
// property store also reads from STRATO_CORE_PROJECT).
func ProjectFallthroughs() []resource.Fallthrough {
	return []resource.Fallthrough{
		{
			Source: resource.SourceArg,
			Flag:   "project",
			Hint:   "provide the flag --project on the command line",
		},
		{
			Source:   resource.SourceProperty,
			Property: properties.CoreProject,
			Hint:     "set the property core/project",
		},
	}
}
