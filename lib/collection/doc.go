// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package collection holds the static registry of platform resource
// collections: the mapping from a collection name (e.g.
// "compute.instances") to its URI template, ordered parameters, parent
// collection, and scope kind.
//
// The registry is loaded once from the bundled manifest (or a caller
// supplied one) and is immutable afterwards. It does no network I/O;
// URI parsing and construction are pure string operations, so the
// round trip Parse(Build(c, params)) == (c, params) holds for every
// collection and complete parameter binding.
package collection
