// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"
	"maps"
	"sort"

	"github.com/strato-cloud/strato/lib/collection"
)

// Reference identifies one resource instance: a collection plus a
// parameter binding. The zero value is not valid; construct with New
// or FromURI.
//
// A Reference is either complete (every template parameter bound) or
// explicitly partial. SelfLink and RelativeName require completeness
// and fail with *UnderSpecifiedError otherwise.
type Reference struct {
	c      *collection.Collection
	params map[string]string
}

// New builds a reference from a collection and a (possibly partial)
// parameter binding. Unknown parameter names are an error.
func New(c *collection.Collection, params map[string]string) (*Reference, error) {
	known := make(map[string]bool, len(c.Params()))
	for _, p := range c.Params() {
		known[p] = true
	}
	bound := make(map[string]string, len(params))
	for name, value := range params {
		if !known[name] {
			return nil, fmt.Errorf("collection %s has no parameter %q", c.Name, name)
		}
		if value != "" {
			bound[name] = value
		}
	}
	return &Reference{c: c, params: bound}, nil
}

// FromURI parses a self link or relative name against the registry.
func FromURI(reg *collection.Registry, uri string) (*Reference, error) {
	c, params, err := reg.Parse(uri)
	if err != nil {
		return nil, err
	}
	return &Reference{c: c, params: params}, nil
}

// Collection returns the reference's collection.
func (r *Reference) Collection() *collection.Collection { return r.c }

// Param returns the bound value of the named parameter, or "".
func (r *Reference) Param(name string) string { return r.params[name] }

// Name returns the identifying (final) parameter value, or "".
func (r *Reference) Name() string { return r.params[r.c.KeyParam()] }

// Complete reports whether every template parameter is bound.
func (r *Reference) Complete() bool { return len(r.Missing()) == 0 }

// Missing returns the unbound parameter names in template order.
func (r *Reference) Missing() []string {
	var missing []string
	for _, p := range r.c.Params() {
		if r.params[p] == "" {
			missing = append(missing, p)
		}
	}
	return missing
}

// RelativeName returns the canonical path under the API root, e.g.
// "projects/atlantic/global/forwardingRules/fish".
func (r *Reference) RelativeName() (string, error) {
	if missing := r.Missing(); len(missing) > 0 {
		return "", &UnderSpecifiedError{Collection: r.c.Name, Missing: missing}
	}
	return r.c.RelativePath(r.params)
}

// SelfLink returns the full resource URI.
func (r *Reference) SelfLink() (string, error) {
	rel, err := r.RelativeName()
	if err != nil {
		return "", err
	}
	return r.c.BaseURL + rel, nil
}

// Params returns a copy of the bound parameters.
func (r *Reference) Params() map[string]string {
	return maps.Clone(r.params)
}

// Equal reports whether two references identify the same resource:
// same collection and same parameter binding.
func (r *Reference) Equal(other *Reference) bool {
	if other == nil {
		return false
	}
	return r.c.Name == other.c.Name && maps.Equal(r.params, other.params)
}

// String renders the relative name when complete, or a diagnostic form
// naming the missing attributes otherwise.
func (r *Reference) String() string {
	rel, err := r.RelativeName()
	if err == nil {
		return rel
	}
	missing := r.Missing()
	sort.Strings(missing)
	return fmt.Sprintf("%s[missing %v]", r.c.Name, missing)
}
