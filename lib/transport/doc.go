// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package transport is the HTTP surface between the CLI core and the
// platform APIs: JSON requests with bearer authentication from an
// injected token source, bounded retry with jittered exponential
// backoff for idempotent reads, and typed errors classified from the
// platform's error body shape.
//
// The command dispatcher does not own a transport; it receives a
// configured *Client (or any Doer) from the surrounding application.
// Authentication token acquisition lives entirely behind the
// oauth2.TokenSource.
package transport
