// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"sort"

	"github.com/strato-cloud/strato/lib/collection"
)

// Spec declares how to resolve one resource argument: the candidate
// collection (or collections, for multi-type resources) and the
// fallthrough chain for each template parameter.
type Spec struct {
	// Types are tried in declaration order; the order is the
	// deterministic tie-break when only latent sources resolve.
	Types []TypeSpec
}

// TypeSpec is one candidate collection with per-attribute fallthroughs.
type TypeSpec struct {
	Collection *collection.Collection

	// Attributes maps each template parameter to its ordered
	// fallthrough chain.
	Attributes map[string][]Fallthrough
}

// candidateResolution is the outcome of trying one TypeSpec.
type candidateResolution struct {
	spec    TypeSpec
	values  map[string]string
	missing []string
	// activeSpecific lists the parameters that (a) resolved from an
	// active source and (b) are not shared by every candidate type.
	// These are what disambiguate and what conflict.
	activeSpecific []string
}

// Resolve evaluates the spec and returns a complete reference.
//
// For a single-type spec this is plain fallthrough resolution; failure
// is an *UnderSpecifiedError naming the missing attributes and the
// flags that would supply them.
//
// For multi-type specs the disambiguation contract is:
//
//  1. Candidates are tried in declaration order.
//  2. If exactly one candidate is complete with actively supplied
//     type-specific attributes, it is selected.
//  3. If several are, the actively supplied attributes conflict and
//     resolution fails with *ConflictingTypesError.
//  4. With no active candidate, the first complete candidate wins;
//     if none is complete, *UnderSpecifiedError.
//
// Latent defaults never participate in conflict detection.
func (r *Resolver) Resolve(spec Spec) (*Reference, error) {
	if len(spec.Types) == 0 {
		panic("resource: Resolve called with no candidate types")
	}

	shared := sharedParams(spec.Types)
	resolutions := make([]candidateResolution, 0, len(spec.Types))
	for _, ts := range spec.Types {
		resolutions = append(resolutions, r.resolveCandidate(ts, shared))
	}

	var actives, completes []candidateResolution
	for _, res := range resolutions {
		if len(res.missing) > 0 {
			continue
		}
		completes = append(completes, res)
		if len(res.activeSpecific) > 0 {
			actives = append(actives, res)
		}
	}

	if len(actives) == 1 {
		return New(actives[0].spec.Collection, actives[0].values)
	}
	if len(actives) > 1 {
		conflicting := map[string]bool{}
		for _, res := range actives {
			for _, attr := range res.activeSpecific {
				conflicting[attr] = true
			}
		}
		attrs := make([]string, 0, len(conflicting))
		for attr := range conflicting {
			attrs = append(attrs, attr)
		}
		sort.Strings(attrs)
		return nil, &ConflictingTypesError{Attributes: attrs}
	}
	if len(completes) > 0 {
		return New(completes[0].spec.Collection, completes[0].values)
	}

	// Nothing resolved fully; report the first candidate's gaps.
	first := resolutions[0]
	var hintLines []string
	for _, attr := range first.missing {
		hintLines = append(hintLines, hints(first.spec.Attributes[attr])...)
	}
	return nil, &UnderSpecifiedError{
		Collection: first.spec.Collection.Name,
		Missing:    first.missing,
		Hints:      hintLines,
	}
}

// resolveCandidate runs the fallthrough chains of one candidate type.
func (r *Resolver) resolveCandidate(ts TypeSpec, shared map[string]bool) candidateResolution {
	res := candidateResolution{spec: ts, values: map[string]string{}}
	for _, param := range ts.Collection.Params() {
		resolved, ok := r.ResolveAttribute(ts.Attributes[param])
		if !ok {
			res.missing = append(res.missing, param)
			continue
		}
		res.values[param] = resolved.Value
		if resolved.Active && !shared[param] {
			res.activeSpecific = append(res.activeSpecific, param)
		}
	}
	return res
}

// sharedParams returns the parameters present in every candidate type.
// With a single candidate no parameter is "specific", so active
// detection applies to all of them.
func sharedParams(types []TypeSpec) map[string]bool {
	if len(types) == 1 {
		return map[string]bool{}
	}
	counts := map[string]int{}
	for _, ts := range types {
		for _, p := range ts.Collection.Params() {
			counts[p]++
		}
	}
	shared := map[string]bool{}
	for p, n := range counts {
		if n == len(types) {
			shared[p] = true
		}
	}
	return shared
}
