// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/strato-cloud/strato/lib/transport"
)

// scriptedDoer answers requests from a URL-keyed script.
type scriptedDoer struct {
	responses map[string]*transport.Response
	errs      map[string]error
	calls     atomic.Int32
}

func (d *scriptedDoer) Do(ctx context.Context, req *transport.Request) (*transport.Response, error) {
	d.calls.Add(1)
	if err, ok := d.errs[req.URL]; ok {
		return nil, err
	}
	if resp, ok := d.responses[req.URL]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("unscripted request %s", req.URL)
}

func respBody(body string) *transport.Response {
	return &transport.Response{StatusCode: 200, Body: []byte(body)}
}

func TestMakeRequestsPreservesOrder(t *testing.T) {
	doer := &scriptedDoer{responses: map[string]*transport.Response{
		"u/a": respBody(`{"name":"a"}`),
		"u/b": respBody(`{"name":"b"}`),
		"u/c": respBody(`{"name":"c"}`),
	}}
	reqs := []*transport.Request{
		{Method: "GET", URL: "u/a"},
		{Method: "GET", URL: "u/b"},
		{Method: "GET", URL: "u/c"},
	}

	var sink Errors
	responses := MakeRequests(context.Background(), doer, reqs, 2, &sink)
	if len(responses) != 3 {
		t.Fatalf("len = %d, want 3 always", len(responses))
	}
	if !sink.Empty() {
		t.Fatalf("sink = %v", sink.All())
	}
	for i, want := range []string{"a", "b", "c"} {
		var body struct{ Name string }
		if err := responses[i].Decode(&body); err != nil {
			t.Fatalf("Decode[%d]: %v", i, err)
		}
		if body.Name != want {
			t.Errorf("responses[%d] = %q, want %q", i, body.Name, want)
		}
	}
}

func TestMakeRequestsPartialFailureSentinels(t *testing.T) {
	// S3: three inserts, the second fails with HTTP 400.
	doer := &scriptedDoer{
		responses: map[string]*transport.Response{
			"insert/1": respBody(`{"name":"op-1"}`),
			"insert/3": respBody(`{"name":"op-3"}`),
		},
		errs: map[string]error{
			"insert/2": &transport.HTTPError{StatusCode: 400, Message: "invalid machineType", Reason: "invalid"},
		},
	}
	reqs := []*transport.Request{
		{Method: "POST", URL: "insert/1"},
		{Method: "POST", URL: "insert/2"},
		{Method: "POST", URL: "insert/3"},
	}

	var sink Errors
	responses := MakeRequests(context.Background(), doer, reqs, 0, &sink)
	if len(responses) != 3 {
		t.Fatalf("len = %d, want 3", len(responses))
	}
	if responses[0] == nil || responses[2] == nil {
		t.Error("successful entries replaced by sentinels")
	}
	if responses[1] != nil {
		t.Error("failed entry is not a sentinel")
	}

	errs := sink.All()
	if len(errs) != 1 {
		t.Fatalf("sink = %v", errs)
	}
	var httpErr *transport.HTTPError
	if !errors.As(errs[0], &httpErr) || httpErr.Message != "invalid machineType" {
		t.Errorf("collected = %v", errs[0])
	}
}

func TestMakeRequestsEmpty(t *testing.T) {
	var sink Errors
	responses := MakeRequests(context.Background(), &scriptedDoer{}, nil, 0, &sink)
	if len(responses) != 0 || !sink.Empty() {
		t.Errorf("responses = %v, sink = %v", responses, sink.All())
	}
}

func TestErrorsAggregate(t *testing.T) {
	var sink Errors
	if sink.Aggregate() != nil {
		t.Error("empty sink aggregates to non-nil")
	}

	first := fmt.Errorf("first")
	sink.Add(first)
	if sink.Aggregate() != first {
		t.Error("single error not returned as-is")
	}

	sink.Add(fmt.Errorf("second"))
	aggregated := sink.Aggregate()
	var multi *MultiError
	if !errors.As(aggregated, &multi) || len(multi.Errors) != 2 {
		t.Fatalf("Aggregate = %v", aggregated)
	}
	if !strings.Contains(aggregated.Error(), "2 errors:") {
		t.Errorf("message = %q", aggregated.Error())
	}
}

func TestPartialFailureExitCode(t *testing.T) {
	err := &PartialFailureError{Succeeded: 2, Failed: 1, Cause: fmt.Errorf("boom")}
	if err.ExitCode() != 5 {
		t.Errorf("ExitCode = %d, want 5", err.ExitCode())
	}
	if !strings.Contains(err.Error(), "1 of 3") {
		t.Errorf("message = %q", err.Error())
	}
}
