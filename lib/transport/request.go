// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package transport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Request is one platform API call: an HTTP method, an absolute URL,
// an optional JSON body, and a user-visible label for error reporting
// and progress display.
type Request struct {
	// Method is the HTTP verb. GET requests are retried on transient
	// failures; everything else is submitted exactly once.
	Method string

	// URL is the absolute request URL (typically a self link or a
	// collection URL built from the registry).
	URL string

	// Query is appended to the URL when non-nil.
	Query url.Values

	// Body is JSON-encoded when non-nil.
	Body any

	// Label names the affected resource in user-visible messages,
	// e.g. "instance fish".
	Label string
}

// fullURL joins URL and Query.
func (r *Request) fullURL() string {
	if len(r.Query) == 0 {
		return r.URL
	}
	sep := "?"
	if u, err := url.Parse(r.URL); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	return r.URL + sep + r.Query.Encode()
}

// Response is a successful (2xx) platform reply.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Decode unmarshals the JSON body into v.
func (r *Response) Decode(v any) error {
	if len(r.Body) == 0 {
		return fmt.Errorf("empty response body")
	}
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
