// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package collection

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	_ "embed"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

//go:embed manifest.jsonc
var bundledManifest []byte

// manifest is the on-disk shape of the collection table.
type manifest struct {
	Collections []*Collection `json:"collections" yaml:"collections"`
}

// UnmarshalJSON decodes the manifest entry shape into a Collection.
func (c *Collection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name        string `json:"name"`
		Service     string `json:"service"`
		Version     string `json:"version"`
		BaseURL     string `json:"baseUrl"`
		Path        string `json:"path"`
		Parent      string `json:"parent"`
		Scope       Scope  `json:"scope"`
		MaxPageSize int    `json:"maxPageSize"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Service = raw.Service
	c.Version = raw.Version
	c.BaseURL = raw.BaseURL
	c.Path = raw.Path
	c.Parent = raw.Parent
	c.Scope = raw.Scope
	c.MaxPageSize = raw.MaxPageSize
	return nil
}

// UnmarshalYAML decodes the manifest entry shape into a Collection.
func (c *Collection) UnmarshalYAML(node *yaml.Node) error {
	var raw struct {
		Name        string `yaml:"name"`
		Service     string `yaml:"service"`
		Version     string `yaml:"version"`
		BaseURL     string `yaml:"baseUrl"`
		Path        string `yaml:"path"`
		Parent      string `yaml:"parent"`
		Scope       Scope  `yaml:"scope"`
		MaxPageSize int    `yaml:"maxPageSize"`
	}
	if err := node.Decode(&raw); err != nil {
		return err
	}
	c.Name = raw.Name
	c.Service = raw.Service
	c.Version = raw.Version
	c.BaseURL = raw.BaseURL
	c.Path = raw.Path
	c.Parent = raw.Parent
	c.Scope = raw.Scope
	c.MaxPageSize = raw.MaxPageSize
	return nil
}

// Load parses a manifest from data. JSON (with comments, per the
// bundled manifest) and YAML are both accepted; the format is sniffed
// from the first non-space byte.
func Load(data []byte) (*Registry, error) {
	var m manifest
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '/') {
		if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
			return nil, fmt.Errorf("parsing collection manifest: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("parsing collection manifest: %w", err)
		}
	}
	if len(m.Collections) == 0 {
		return nil, fmt.Errorf("collection manifest declares no collections")
	}
	return newRegistry(m.Collections)
}

// LoadFile reads and parses a manifest file.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading collection manifest: %w", err)
	}
	return Load(data)
}

var (
	defaultOnce     sync.Once
	defaultRegistry *Registry
	defaultErr      error
)

// Default returns the registry built from the bundled manifest. The
// bundled manifest is validated by tests, so a parse failure here is a
// packaging error; it panics rather than forcing every caller to
// handle an impossible error.
func Default() *Registry {
	defaultOnce.Do(func() {
		defaultRegistry, defaultErr = Load(bundledManifest)
	})
	if defaultErr != nil {
		panic(fmt.Sprintf("bundled collection manifest is invalid: %v", defaultErr))
	}
	return defaultRegistry
}
