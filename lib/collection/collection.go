// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"fmt"
	"strings"
)

// Scope classifies where instances of a collection live.
type Scope string

const (
	// ScopeGlobal resources exist once per project (e.g. global
	// forwarding rules).
	ScopeGlobal Scope = "global"
	// ScopeRegional resources exist per region.
	ScopeRegional Scope = "regional"
	// ScopeZonal resources exist per zone.
	ScopeZonal Scope = "zonal"
	// ScopeParentless resources have no containing resource
	// (projects themselves).
	ScopeParentless Scope = "parentless"
)

// Collection describes one resource type: its URI template, the
// ordered parameters the template binds, its parent collection, and
// its scope. Collections are immutable after registry load.
type Collection struct {
	// Name is the collection identity, "service.segment" (e.g.
	// "compute.instances", "sql.databases").
	Name string

	// Service is the API service hosting the collection.
	Service string

	// Version is the API version segment (e.g. "v1").
	Version string

	// BaseURL is the API root the relative path is joined to, ending
	// in "/" (e.g. "https://compute.stratoapis.com/compute/v1/").
	BaseURL string

	// Path is the relative URI template. Parameters appear as
	// "{param}" segments: "projects/{project}/zones/{zone}/instances/{instance}".
	Path string

	// Parent names the containing collection, or "" for parentless
	// collections.
	Parent string

	// Scope is the placement kind of the collection's resources.
	Scope Scope

	// MaxPageSize is the documented cap on the pageSize hint for list
	// calls. Zero means the service default (500).
	MaxPageSize int

	segments []templateSegment
	params   []string
}

// templateSegment is one "/"-separated piece of a URI template: either
// a literal or a parameter placeholder.
type templateSegment struct {
	literal string
	param   string
}

// compile parses the Path template into segments. Called once by the
// registry at load time.
func (c *Collection) compile() error {
	if c.Path == "" {
		return fmt.Errorf("collection %q has an empty path template", c.Name)
	}
	for _, raw := range strings.Split(c.Path, "/") {
		if raw == "" {
			return fmt.Errorf("collection %q has an empty path segment", c.Name)
		}
		if strings.HasPrefix(raw, "{") && strings.HasSuffix(raw, "}") {
			name := raw[1 : len(raw)-1]
			if name == "" {
				return fmt.Errorf("collection %q has an unnamed parameter", c.Name)
			}
			c.segments = append(c.segments, templateSegment{param: name})
			c.params = append(c.params, name)
			continue
		}
		if strings.ContainsAny(raw, "{}") {
			return fmt.Errorf("collection %q has a malformed segment %q", c.Name, raw)
		}
		c.segments = append(c.segments, templateSegment{literal: raw})
	}
	if len(c.params) == 0 {
		return fmt.Errorf("collection %q binds no parameters", c.Name)
	}
	return nil
}

// Params returns the ordered parameter names of the URI template.
func (c *Collection) Params() []string {
	out := make([]string, len(c.params))
	copy(out, c.params)
	return out
}

// KeyParam returns the final (identifying) parameter name.
func (c *Collection) KeyParam() string {
	return c.params[len(c.params)-1]
}

// RelativePath builds the relative resource path from a complete
// parameter binding. Missing or empty parameters are an error naming
// the parameter.
func (c *Collection) RelativePath(params map[string]string) (string, error) {
	var b strings.Builder
	for i, seg := range c.segments {
		if i > 0 {
			b.WriteByte('/')
		}
		if seg.param == "" {
			b.WriteString(seg.literal)
			continue
		}
		value := params[seg.param]
		if value == "" {
			return "", fmt.Errorf("collection %s: missing parameter %q", c.Name, seg.param)
		}
		if strings.Contains(value, "/") {
			return "", fmt.Errorf("collection %s: parameter %q value %q contains '/'", c.Name, seg.param, value)
		}
		b.WriteString(value)
	}
	return b.String(), nil
}

// URI builds the full self link from a complete parameter binding.
func (c *Collection) URI(params map[string]string) (string, error) {
	rel, err := c.RelativePath(params)
	if err != nil {
		return "", err
	}
	return c.BaseURL + rel, nil
}

// ListURL builds the collection endpoint: the resource URI minus the
// identifying segment. List and insert calls go here. Only the
// non-key parameters are required.
func (c *Collection) ListURL(params map[string]string) (string, error) {
	var b strings.Builder
	b.WriteString(c.BaseURL)
	for i, seg := range c.segments[:len(c.segments)-1] {
		if i > 0 {
			b.WriteByte('/')
		}
		if seg.param == "" {
			b.WriteString(seg.literal)
			continue
		}
		value := params[seg.param]
		if value == "" {
			return "", fmt.Errorf("collection %s: missing parameter %q", c.Name, seg.param)
		}
		if strings.Contains(value, "/") {
			return "", fmt.Errorf("collection %s: parameter %q value %q contains '/'", c.Name, seg.param, value)
		}
		b.WriteString(value)
	}
	return b.String(), nil
}

// match attempts to bind a relative path against the template. Returns
// the parameter binding and true on a match.
func (c *Collection) match(relative string) (map[string]string, bool) {
	parts := strings.Split(relative, "/")
	if len(parts) != len(c.segments) {
		return nil, false
	}
	params := make(map[string]string, len(c.params))
	for i, seg := range c.segments {
		if parts[i] == "" {
			return nil, false
		}
		if seg.param != "" {
			params[seg.param] = parts[i]
			continue
		}
		if seg.literal != parts[i] {
			return nil, false
		}
	}
	return params, true
}
