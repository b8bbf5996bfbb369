// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package properties reads the CLI's typed configuration properties.
//
// The store is consumed, never written: property writes happen through
// explicit config commands outside this codebase. Values come from a
// YAML file of named sections, discovered via the STRATO_CONFIG
// environment variable or the --configuration flag, with per-attribute
// environment overrides of the form STRATO_<SECTION>_<KEY> taking
// precedence over the file.
package properties

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvConfigFile names the environment variable that locates the
// configuration file when --configuration is not given.
const EnvConfigFile = "STRATO_CONFIG"

// Key names one property: a section and a key within it.
type Key struct {
	Section string
	Name    string
}

// String returns the "section/key" display form.
func (k Key) String() string { return k.Section + "/" + k.Name }

// EnvVar returns the override variable for the key, e.g.
// STRATO_COMPUTE_ZONE for compute/zone.
func (k Key) EnvVar() string {
	upper := func(s string) string {
		return strings.ToUpper(strings.NewReplacer("-", "_", "/", "_").Replace(s))
	}
	return "STRATO_" + upper(k.Section) + "_" + upper(k.Name)
}

// Well-known property keys read by the core.
var (
	CoreProject         = Key{"core", "project"}
	CoreAccount         = Key{"core", "account"}
	CoreDisablePrompts  = Key{"core", "disable_prompts"}
	ComputeZone         = Key{"compute", "zone"}
	ComputeRegion       = Key{"compute", "region"}
	ComputeUseMetadata  = Key{"compute", "use_metadata_defaults"}
	AuthAccessTokenFile = Key{"auth", "access_token_file"}
	BillingQuotaProject = Key{"billing", "quota_project"}
)

// Private reports whether a property's value must never reach the
// structured log sink (credentials and credential pointers).
func Private(k Key) bool {
	switch k {
	case AuthAccessTokenFile:
		return true
	}
	return k.Section == "auth"
}

// Store is a read-only view of the property file plus environment
// overrides. The zero value is an empty store (env overrides still
// apply).
type Store struct {
	sections map[string]map[string]string
	// lookupEnv is swapped in tests.
	lookupEnv func(string) (string, bool)
}

// Empty returns a store with no file-backed values.
func Empty() *Store {
	return &Store{sections: map[string]map[string]string{}, lookupEnv: os.LookupEnv}
}

// Load reads the store from the file named by STRATO_CONFIG. A missing
// variable or missing file yields an empty store: the CLI runs without
// configuration, it just has fewer defaults to fall through to.
func Load() (*Store, error) {
	path, ok := os.LookupEnv(EnvConfigFile)
	if !ok || path == "" {
		return Empty(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the store from an explicit path.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Empty(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading configuration %s: %w", path, err)
	}
	return Parse(data)
}

// Parse builds a store from raw YAML of the shape
//
//	core:
//	  project: atlantic
//	compute:
//	  zone: atlantic-b
func Parse(data []byte) (*Store, error) {
	sections := map[string]map[string]string{}
	if err := yaml.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}
	return &Store{sections: sections, lookupEnv: os.LookupEnv}, nil
}

// Get returns the property value and whether it is set. Environment
// overrides win over file values.
func (s *Store) Get(k Key) (string, bool) {
	lookupEnv := s.lookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}
	if v, ok := lookupEnv(k.EnvVar()); ok && v != "" {
		return v, true
	}
	if section, ok := s.sections[k.Section]; ok {
		if v, ok := section[k.Name]; ok && v != "" {
			return v, true
		}
	}
	return "", false
}

// GetBool returns a boolean property; unset or unparseable is false.
func (s *Store) GetBool(k Key) bool {
	v, ok := s.Get(k)
	if !ok {
		return false
	}
	b, err := strconv.ParseBool(v)
	return err == nil && b
}

// Keys returns every set property key (file and known env overrides),
// sorted by section then name. Used by `strato config list`.
func (s *Store) Keys() []Key {
	seen := map[Key]bool{}
	var keys []Key
	for section, values := range s.sections {
		for name := range values {
			k := Key{section, name}
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	for _, k := range wellKnown {
		if _, ok := s.Get(k); ok && !seen[k] {
			seen[k] = true
			keys = append(keys, k)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Section != keys[j].Section {
			return keys[i].Section < keys[j].Section
		}
		return keys[i].Name < keys[j].Name
	})
	return keys
}

var wellKnown = []Key{
	CoreProject,
	CoreAccount,
	CoreDisablePrompts,
	ComputeZone,
	ComputeRegion,
	ComputeUseMetadata,
	AuthAccessTokenFile,
	BillingQuotaProject,
}
