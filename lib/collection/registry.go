// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the immutable table of known collections.
type Registry struct {
	byName map[string]*Collection
	// ordered names for deterministic Parse resolution and listings.
	names []string
}

// Lookup returns the collection registered under name.
func (r *Registry) Lookup(name string) (*Collection, error) {
	c, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("unknown collection %q", name)
	}
	return c, nil
}

// Names returns all registered collection names, sorted.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Parse resolves a resource URI or relative name to its collection and
// parameter binding. Full URIs must start with a registered BaseURL;
// bare relative names (e.g. "projects/p/zones/z/instances/i") are
// matched against every collection's template.
func (r *Registry) Parse(uri string) (*Collection, map[string]string, error) {
	relative, restrict := r.splitBase(uri)
	for _, name := range r.names {
		c := r.byName[name]
		if restrict != "" && c.BaseURL != restrict {
			continue
		}
		if params, ok := c.match(relative); ok {
			return c, params, nil
		}
	}
	return nil, nil, fmt.Errorf("%q does not match any known collection", uri)
}

// ParseExpect parses uri and verifies it belongs to the named
// collection. A URI that parses into a sibling collection yields a
// *WrongCollectionError carrying the actual collection so callers can
// produce an intelligible message.
func (r *Registry) ParseExpect(uri, name string) (*Collection, map[string]string, error) {
	c, params, err := r.Parse(uri)
	if err != nil {
		return nil, nil, err
	}
	if c.Name != name {
		return nil, nil, &WrongCollectionError{URI: uri, Want: name, Got: c.Name}
	}
	return c, params, nil
}

// splitBase strips a registered BaseURL prefix from uri, returning the
// relative remainder and the matched base (or uri unchanged and "").
func (r *Registry) splitBase(uri string) (relative, base string) {
	if !strings.Contains(uri, "://") {
		return uri, ""
	}
	for _, name := range r.names {
		c := r.byName[name]
		if strings.HasPrefix(uri, c.BaseURL) {
			return strings.TrimPrefix(uri, c.BaseURL), c.BaseURL
		}
	}
	return uri, ""
}

// newRegistry compiles and indexes a manifest's collections.
func newRegistry(collections []*Collection) (*Registry, error) {
	r := &Registry{byName: make(map[string]*Collection, len(collections))}
	for _, c := range collections {
		if _, dup := r.byName[c.Name]; dup {
			return nil, fmt.Errorf("duplicate collection %q in manifest", c.Name)
		}
		if err := c.compile(); err != nil {
			return nil, err
		}
		r.byName[c.Name] = c
		r.names = append(r.names, c.Name)
	}
	sort.Strings(r.names)
	for _, c := range r.byName {
		if c.Parent == "" {
			continue
		}
		if _, ok := r.byName[c.Parent]; !ok {
			return nil, fmt.Errorf("collection %q names unknown parent %q", c.Name, c.Parent)
		}
	}
	return r, nil
}
