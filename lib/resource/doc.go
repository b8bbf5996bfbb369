// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package resource provides parsed resource references and the
// fallthrough resolver that builds them.
//
// A Reference pairs a collection with a parameter binding and
// round-trips to and from self links and relative names. References
// may be partial; operations that need a complete binding return an
// *UnderSpecifiedError naming the missing attributes.
//
// The resolver walks an ordered list of fallthroughs per attribute
// (flag, property, environment, metadata service, derived from an
// anchor reference) and records whether the chosen source was active,
// i.e. explicitly asserted by the user. Active sources drive
// disambiguation when the same logical resource exists in several
// collections.
package resource
