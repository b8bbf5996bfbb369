// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package metadata queries the platform metadata service for instance
// attributes such as the local zone and region. Lookups are cached for
// the process lifetime; off-platform processes fail fast and the cache
// remembers the absence.
package metadata

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"
)

// DefaultEndpoint is the on-platform metadata service root.
const DefaultEndpoint = "http://metadata.strato.internal/v1/instance/"

// flavorHeader guards against accidental non-metadata servers
// answering the well-known address.
const flavorHeader = "Strato-Metadata"

// Client looks up instance attributes. The zero value is not usable;
// construct with New.
type Client struct {
	endpoint   string
	httpClient *http.Client

	mu    sync.Mutex
	cache map[string]cached
}

type cached struct {
	value string
	ok    bool
}

// Option adjusts a Client.
type Option func(*Client)

// WithEndpoint overrides the metadata service root (tests).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) { c.endpoint = endpoint }
}

// WithHTTPClient overrides the underlying client (tests).
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// New builds a metadata client. The request timeout is short: a
// process off the platform must not stall every resolution on an
// unreachable address.
func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: &http.Client{Timeout: 2 * time.Second},
		cache:      map[string]cached{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Attribute fetches one instance attribute, e.g. "zone" or "region".
// The bool reports whether the service answered with a value. Results,
// including failures, are cached.
func (c *Client) Attribute(name string) (string, bool) {
	c.mu.Lock()
	if hit, ok := c.cache[name]; ok {
		c.mu.Unlock()
		return hit.value, hit.ok
	}
	c.mu.Unlock()

	value, ok := c.fetch(name)

	c.mu.Lock()
	c.cache[name] = cached{value: value, ok: ok}
	c.mu.Unlock()
	return value, ok
}

func (c *Client) fetch(name string) (string, bool) {
	req, err := http.NewRequest(http.MethodGet, c.endpoint+name, nil)
	if err != nil {
		return "", false
	}
	req.Header.Set("Metadata-Flavor", flavorHeader)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Metadata-Flavor") != flavorHeader {
		return "", false
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return "", false
	}
	value := strings.TrimSpace(string(data))

	// The service reports placements as relative names; resolution
	// wants the bare zone or region.
	if i := strings.LastIndexByte(value, '/'); i >= 0 {
		value = value[i+1:]
	}
	return value, value != ""
}
