// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock parameter instead of calling time.Now,
// time.After, or time.Sleep directly. Real() provides standard library
// behavior; Fake() provides a deterministic clock that advances only when
// Advance is called. The operation poller, the transport retry loop, and
// the progress tracker all take a Clock so their timing is testable
// without real sleeps.
//
// Typical test wiring:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	poller := operation.Poller{Clock: c, ...}
//	// ... start the poll in a goroutine ...
//	c.WaitForWaiters(1)       // poll loop is now sleeping
//	c.Advance(2 * time.Second) // fire its timer deterministically
package clock
