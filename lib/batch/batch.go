// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package batch dispatches groups of platform requests concurrently
// and fuses paginated list calls across scopes into one sequence.
//
// MakeRequests is the bounded fan-out/fan-in primitive: responses come
// back in input order with nil sentinels where a request failed, and
// the failures land in an Errors sink the caller aggregates or
// tolerates. Lister fans a list template out over scopes, follows each
// scope's page tokens, and honors a global limit.
package batch

import (
	"context"

	"golang.org/x/sync/semaphore"

	"github.com/strato-cloud/strato/lib/transport"
)

// DefaultParallelism caps concurrent requests when the caller does not
// choose; matching the request count up to this bound.
const DefaultParallelism = 16

// MakeRequests submits the requests concurrently through the shared
// transport and returns the responses in input order. Failed entries
// are nil in the result and their errors are appended to sink. The
// caller decides whether to proceed or abort; the usual convention is
// sink.Aggregate() after dispatch.
//
// Parallelism is min(len(requests), parallelism); zero parallelism
// means DefaultParallelism. In-flight requests run to completion on
// context cancellation, but no new requests are started.
func MakeRequests(ctx context.Context, client transport.Doer, requests []*transport.Request, parallelism int, sink *Errors) []*transport.Response {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	if parallelism > len(requests) {
		parallelism = len(requests)
	}

	responses := make([]*transport.Response, len(requests))
	if len(requests) == 0 {
		return responses
	}

	sem := semaphore.NewWeighted(int64(parallelism))
	running := 0
	results := make(chan struct{}, len(requests))

	for i, req := range requests {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled before dispatch: record the cancellation for
			// this and all remaining requests once, then stop.
			sink.Add(ctx.Err())
			break
		}
		running++
		go func(i int, req *transport.Request) {
			defer sem.Release(1)
			resp, err := client.Do(ctx, req)
			if err != nil {
				sink.Add(err)
				results <- struct{}{}
				return
			}
			responses[i] = resp
			results <- struct{}{}
		}(i, req)
	}
	for ; running > 0; running-- {
		<-results
	}
	return responses
}
