// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package operation

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/strato-cloud/strato/lib/clock"
)

// Poll backoff: 1s doubling to a 10s cap, with ±20% jitter.
const (
	initialPollInterval = time.Second
	maxPollInterval     = 10 * time.Second
)

// GetFunc fetches the latest state of the operation at selfLink.
type GetFunc func(ctx context.Context, selfLink string) (*Operation, error)

// Poller drives an operation to its terminal state.
type Poller struct {
	// Get fetches operation state; typically a thin wrapper over the
	// transport.
	Get GetFunc

	// Deadline bounds the whole poll. Zero means 600s.
	Deadline time.Duration

	// Clock defaults to the real clock.
	Clock clock.Clock

	// OnProgress, when set, sees the operation after every poll,
	// including the initial state and the terminal one.
	OnProgress func(*Operation)

	// Jitter is swapped in tests for determinism. Defaults to ±20%.
	Jitter func(time.Duration) time.Duration
}

// Wait polls until the operation is DONE, the deadline expires, or ctx
// is cancelled. A DONE operation with errors returns *Error; deadline
// expiry and cancellation return *CancelledError. Replaying Wait from
// any previously observed state reaches the same terminal state: the
// loop has no memory beyond the latest GET.
func (p *Poller) Wait(ctx context.Context, op *Operation) (*Operation, error) {
	clk := p.Clock
	if clk == nil {
		clk = clock.Real()
	}
	deadline := p.Deadline
	if deadline == 0 {
		deadline = 600 * time.Second
	}
	jitter := p.Jitter
	if jitter == nil {
		jitter = defaultJitter
	}

	start := clk.Now()
	interval := initialPollInterval

	if p.OnProgress != nil {
		p.OnProgress(op)
	}

	for {
		if op.Done() {
			if err := op.Err(); err != nil {
				return op, err
			}
			return op, nil
		}
		if clk.Now().Sub(start) >= deadline {
			return op, &CancelledError{Reason: fmt.Sprintf(
				"operation %s did not complete within %s", op.Name, deadline)}
		}

		select {
		case <-ctx.Done():
			return op, &CancelledError{Reason: fmt.Sprintf(
				"waiting for operation %s interrupted", op.Name)}
		case <-clk.After(jitter(interval)):
		}
		interval *= 2
		if interval > maxPollInterval {
			interval = maxPollInterval
		}

		latest, err := p.Get(ctx, op.SelfLink)
		if err != nil {
			if ctx.Err() != nil {
				return op, &CancelledError{Reason: fmt.Sprintf(
					"waiting for operation %s interrupted", op.Name)}
			}
			return op, fmt.Errorf("polling operation %s: %w", op.Name, err)
		}
		op = latest
		if p.OnProgress != nil {
			p.OnProgress(op)
		}
	}
}

func defaultJitter(d time.Duration) time.Duration {
	spread := 0.8 + 0.4*rand.Float64()
	return time.Duration(float64(d) * spread)
}
