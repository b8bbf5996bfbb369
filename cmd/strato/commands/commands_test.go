// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/lib/collection"
	"github.com/strato-cloud/strato/lib/console"
	"github.com/strato-cloud/strato/lib/properties"
	"github.com/strato-cloud/strato/lib/transport"
)

const computeBase = "https://compute.stratoapis.com/compute/v1/"

// fakeDoer routes requests through a handler and records every call.
type fakeDoer struct {
	handler func(req *transport.Request) (*transport.Response, error)

	mu    sync.Mutex
	calls []*transport.Request
}

func (d *fakeDoer) Do(_ context.Context, req *transport.Request) (*transport.Response, error) {
	d.mu.Lock()
	d.calls = append(d.calls, req)
	d.mu.Unlock()
	return d.handler(req)
}

func (d *fakeDoer) requests() []*transport.Request {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]*transport.Request(nil), d.calls...)
}

func (d *fakeDoer) saw(method, url string) bool {
	for _, req := range d.requests() {
		if req.Method == method && req.URL == url {
			return true
		}
	}
	return false
}

func jsonResponse(t *testing.T, v any) *transport.Response {
	t.Helper()
	body, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	return &transport.Response{StatusCode: 200, Body: body}
}

func itemsResponse(t *testing.T, items ...map[string]any) *transport.Response {
	t.Helper()
	if items == nil {
		items = []map[string]any{}
	}
	return jsonResponse(t, map[string]any{"items": items})
}

// outputs captures the three output surfaces of an invocation.
type outputs struct {
	out    bytes.Buffer
	errOut bytes.Buffer
	sink   bytes.Buffer
}

func testEnv(doer transport.Doer, stdin string) (*cli.Environment, *outputs) {
	o := &outputs{}
	env := &cli.Environment{
		Client:     doer,
		Properties: properties.Empty(),
		Registry:   collection.Default(),
		Console: &console.Attr{
			In:          strings.NewReader(stdin),
			Out:         &o.errOut,
			Interactive: stdin != "",
		},
		Out:     &o.out,
		LogSink: &o.sink,
	}
	return env, o
}

func execute(t *testing.T, env *cli.Environment, args ...string) error {
	t.Helper()
	return Root().Execute(env, args)
}
