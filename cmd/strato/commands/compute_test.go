// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/lib/batch"
	"github.com/strato-cloud/strato/lib/transport"
)

func TestInstancesListFansAcrossZones(t *testing.T) {
	zonesURL := computeBase + "projects/peach/zones"
	bURL := computeBase + "projects/peach/zones/atlantic-b/instances"
	cURL := computeBase + "projects/peach/zones/atlantic-c/instances"

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		switch req.URL {
		case zonesURL:
			return itemsResponse(t,
				map[string]any{"name": "atlantic-b"},
				map[string]any{"name": "atlantic-c"}), nil
		case bURL:
			return itemsResponse(t, map[string]any{
				"name":        "fish",
				"zone":        computeBase + "projects/peach/zones/atlantic-b",
				"machineType": computeBase + "projects/peach/zones/atlantic-b/machineTypes/m1-small",
				"status":      "RUNNING",
			}), nil
		case cURL:
			return itemsResponse(t), nil
		}
		t.Errorf("unexpected request %s %s", req.Method, req.URL)
		return nil, errors.New("unexpected request")
	}}

	env, o := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "list", "--project", "peach")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := o.out.String()
	if !strings.Contains(got, "NAME") || !strings.Contains(got, "MACHINE_TYPE") {
		t.Errorf("missing header:\n%s", got)
	}
	if !strings.Contains(got, "fish") || !strings.Contains(got, "atlantic-b") || !strings.Contains(got, "m1-small") {
		t.Errorf("missing row values:\n%s", got)
	}
	if !doer.saw(http.MethodGet, cURL) {
		t.Error("empty zone atlantic-c was not listed")
	}
}

func TestInstancesListZonesFlagSkipsZoneDiscovery(t *testing.T) {
	bURL := computeBase + "projects/peach/zones/atlantic-b/instances"
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		if req.URL != bURL {
			t.Errorf("unexpected request %s", req.URL)
			return nil, errors.New("unexpected request")
		}
		return itemsResponse(t), nil
	}}

	env, _ := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "list",
		"--project", "peach", "--zones", "atlantic-b")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(doer.requests()) != 1 {
		t.Errorf("requests = %d, want 1", len(doer.requests()))
	}
}

func TestInstancesCreateAsyncRendersOperationHandle(t *testing.T) {
	instancesURL := computeBase + "projects/peach/zones/atlantic-b/instances"
	opLink := computeBase + "projects/peach/zones/atlantic-b/operations/op-1"

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		if req.Method != http.MethodPost || req.URL != instancesURL {
			t.Errorf("unexpected request %s %s", req.Method, req.URL)
			return nil, errors.New("unexpected request")
		}
		return jsonResponse(t, map[string]any{
			"name":     "op-1",
			"selfLink": opLink,
			"status":   "PENDING",
		}), nil
	}}

	env, o := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "create", "fish",
		"--project", "peach", "--zone", "atlantic-b", "--async")
	if err != nil {
		t.Fatalf("create --async: %v", err)
	}
	if n := len(doer.requests()); n != 1 {
		t.Errorf("requests = %d, want just the insert", n)
	}
	got := o.out.String()
	if !strings.Contains(got, "op-1") || !strings.Contains(got, "PENDING") {
		t.Errorf("operation handle not rendered:\n%s", got)
	}
}

func TestInstancesCreateWaitsAndRendersInstance(t *testing.T) {
	instancesURL := computeBase + "projects/peach/zones/atlantic-b/instances"
	instanceLink := instancesURL + "/fish"
	opLink := computeBase + "projects/peach/zones/atlantic-b/operations/op-1"

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		switch {
		case req.Method == http.MethodPost && req.URL == instancesURL:
			body, ok := req.Body.(map[string]any)
			if !ok || body["name"] != "fish" {
				t.Errorf("insert body = %#v", req.Body)
			}
			machineType, _ := body["machineType"].(string)
			if !strings.HasSuffix(machineType, "/machineTypes/m1-small") {
				t.Errorf("machineType = %q", machineType)
			}
			return jsonResponse(t, map[string]any{
				"name":       "op-1",
				"selfLink":   opLink,
				"targetLink": instanceLink,
				"status":     "DONE",
			}), nil
		case req.Method == http.MethodGet && req.URL == instanceLink:
			return jsonResponse(t, map[string]any{
				"name":        "fish",
				"zone":        computeBase + "projects/peach/zones/atlantic-b",
				"machineType": computeBase + "projects/peach/zones/atlantic-b/machineTypes/m1-small",
				"status":      "RUNNING",
			}), nil
		}
		t.Errorf("unexpected request %s %s", req.Method, req.URL)
		return nil, errors.New("unexpected request")
	}}

	env, o := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "create", "fish",
		"--project", "peach", "--zone", "atlantic-b")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.Contains(o.errOut.String(), "Creating instance fish...DONE") {
		t.Errorf("progress line missing:\n%s", o.errOut.String())
	}
	if !strings.Contains(o.out.String(), "fish") || !strings.Contains(o.out.String(), "RUNNING") {
		t.Errorf("created instance not rendered:\n%s", o.out.String())
	}
}

func TestInstancesCreateLabelsAndDiskSize(t *testing.T) {
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		body, _ := req.Body.(map[string]any)
		labels, _ := body["labels"].(map[string]string)
		if labels["env"] != "prod" || labels["team"] != "infra" {
			t.Errorf("labels = %#v", body["labels"])
		}
		if body["diskSizeGb"] != uint64(100) {
			t.Errorf("diskSizeGb = %#v, want 100", body["diskSizeGb"])
		}
		return jsonResponse(t, map[string]any{
			"name":     "op-1",
			"selfLink": computeBase + "projects/peach/zones/atlantic-b/operations/op-1",
			"status":   "PENDING",
		}), nil
	}}

	env, _ := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "create", "fish",
		"--project", "peach", "--zone", "atlantic-b", "--async",
		"--labels", "env=prod,team=infra", "--boot-disk-size", "100GiB")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestInstancesCreateStartupScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "boot.sh")
	if err := os.WriteFile(script, []byte("#!/bin/sh\necho up\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		body, _ := req.Body.(map[string]any)
		meta, _ := body["metadata"].(map[string]any)
		items, _ := meta["items"].([]any)
		if len(items) != 1 {
			t.Fatalf("metadata items = %#v", meta)
		}
		item, _ := items[0].(map[string]any)
		if item["key"] != "startup-script" || item["value"] != "#!/bin/sh\necho up\n" {
			t.Errorf("startup script item = %#v", item)
		}
		return jsonResponse(t, map[string]any{
			"name":     "op-1",
			"selfLink": computeBase + "projects/peach/zones/atlantic-b/operations/op-1",
			"status":   "PENDING",
		}), nil
	}}

	env, _ := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "create", "fish",
		"--project", "peach", "--zone", "atlantic-b", "--async",
		"--startup-script", script)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
}

func TestInstancesCreateMachineTypeHint(t *testing.T) {
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		return nil, &transport.HTTPError{
			StatusCode: 400,
			Reason:     "invalid",
			Message:    "Machine type m1-enormous does not exist in zone atlantic-b",
			Label:      req.Label,
		}
	}}

	env, _ := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "create", "fish",
		"--project", "peach", "--zone", "atlantic-b", "--machine-type", "m1-enormous")
	if err == nil {
		t.Fatal("create succeeded with invalid machine type")
	}
	if !strings.Contains(err.Error(), "machine-types list --zones atlantic-b") {
		t.Errorf("error lacks follow-up hint: %v", err)
	}
	if cli.CodeFor(err) != 1 {
		t.Errorf("CodeFor = %d, want 1", cli.CodeFor(err))
	}
}

func TestInstancesCreatePartialFailure(t *testing.T) {
	instancesURL := computeBase + "projects/peach/zones/atlantic-b/instances"

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		body, _ := req.Body.(map[string]any)
		if body["name"] == "chips" {
			return nil, &transport.HTTPError{StatusCode: 409, Message: "already exists", Label: req.Label}
		}
		return jsonResponse(t, map[string]any{
			"name":       "op-1",
			"selfLink":   computeBase + "projects/peach/zones/atlantic-b/operations/op-1",
			"targetLink": instancesURL + "/fish",
			"status":     "DONE",
		}), nil
	}}

	env, _ := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "create", "fish", "chips",
		"--project", "peach", "--zone", "atlantic-b", "--async")
	var partial *batch.PartialFailureError
	if !errors.As(err, &partial) {
		t.Fatalf("err = %v, want PartialFailureError", err)
	}
	if partial.Succeeded != 1 || partial.Failed != 1 {
		t.Errorf("partial = %d/%d, want 1/1", partial.Succeeded, partial.Failed)
	}
	if cli.CodeFor(err) != 5 {
		t.Errorf("CodeFor = %d, want 5", cli.CodeFor(err))
	}
}

func TestInstancesDeleteDeclinedPromptAborts(t *testing.T) {
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		t.Errorf("request sent despite declined prompt: %s %s", req.Method, req.URL)
		return nil, errors.New("unexpected request")
	}}

	env, o := testEnv(doer, "n\n")
	err := execute(t, env, "compute", "instances", "delete", "fish",
		"--project", "peach", "--zone", "atlantic-b")
	if err == nil || !strings.Contains(err.Error(), "aborted") {
		t.Fatalf("err = %v, want abort", err)
	}
	if !strings.Contains(o.errOut.String(), "will be deleted") {
		t.Errorf("prompt missing:\n%s", o.errOut.String())
	}
}

func TestInstancesDeleteQuietProceeds(t *testing.T) {
	instanceLink := computeBase + "projects/peach/zones/atlantic-b/instances/fish"
	opLink := computeBase + "projects/peach/zones/atlantic-b/operations/op-9"

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		if req.Method != http.MethodDelete || req.URL != instanceLink {
			t.Errorf("unexpected request %s %s", req.Method, req.URL)
			return nil, errors.New("unexpected request")
		}
		return jsonResponse(t, map[string]any{
			"name":       "op-9",
			"selfLink":   opLink,
			"targetLink": instanceLink,
			"status":     "DONE",
		}), nil
	}}

	env, o := testEnv(doer, "")
	err := execute(t, env, "compute", "instances", "delete", "fish",
		"--project", "peach", "--zone", "atlantic-b", "--quiet")
	if err != nil {
		t.Fatalf("delete --quiet: %v", err)
	}
	if !doer.saw(http.MethodDelete, instanceLink) {
		t.Error("DELETE was not sent")
	}
	if !strings.Contains(o.errOut.String(), "Deleted ["+instanceLink+"]") {
		t.Errorf("deletion notice missing:\n%s", o.errOut.String())
	}
}

func TestForwardingRulesListMixesRegionalAndGlobal(t *testing.T) {
	regionsURL := computeBase + "projects/peach/regions"
	atlanticURL := computeBase + "projects/peach/regions/atlantic/forwardingRules"
	indianURL := computeBase + "projects/peach/regions/indian/forwardingRules"
	globalURL := computeBase + "projects/peach/global/forwardingRules"

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		switch req.URL {
		case regionsURL:
			return itemsResponse(t,
				map[string]any{"name": "atlantic"},
				map[string]any{"name": "indian"}), nil
		case atlanticURL:
			return itemsResponse(t, map[string]any{"name": "web", "IPAddress": "10.0.0.1"}), nil
		case indianURL:
			return itemsResponse(t), nil
		case globalURL:
			return itemsResponse(t, map[string]any{"name": "edge", "IPAddress": "10.0.0.2"}), nil
		}
		t.Errorf("unexpected request %s", req.URL)
		return nil, errors.New("unexpected request")
	}}

	env, o := testEnv(doer, "")
	err := execute(t, env, "compute", "forwarding-rules", "list", "--project", "peach")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	got := o.out.String()
	if !strings.Contains(got, "web") || !strings.Contains(got, "edge") {
		t.Errorf("rows missing:\n%s", got)
	}
}

func TestForwardingRulesDescribeGlobalFlag(t *testing.T) {
	ruleLink := computeBase + "projects/peach/global/forwardingRules/edge"
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		if req.URL != ruleLink {
			t.Errorf("unexpected request %s", req.URL)
			return nil, errors.New("unexpected request")
		}
		return jsonResponse(t, map[string]any{"name": "edge"}), nil
	}}

	env, o := testEnv(doer, "")
	err := execute(t, env, "compute", "forwarding-rules", "describe", "edge",
		"--project", "peach", "--global")
	if err != nil {
		t.Fatalf("describe --global: %v", err)
	}
	if !strings.Contains(o.out.String(), "edge") {
		t.Errorf("record missing:\n%s", o.out.String())
	}
}

func TestForwardingRulesDescribePromptsForScope(t *testing.T) {
	regionsURL := computeBase + "projects/peach/regions"
	ruleLink := computeBase + "projects/peach/regions/atlantic/forwardingRules/web"

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		switch req.URL {
		case regionsURL:
			return itemsResponse(t,
				map[string]any{"name": "indian"},
				map[string]any{"name": "atlantic"}), nil
		case ruleLink:
			return jsonResponse(t, map[string]any{"name": "web", "region": "atlantic"}), nil
		}
		t.Errorf("unexpected request %s", req.URL)
		return nil, errors.New("unexpected request")
	}}

	// Choice 2 picks "region: atlantic": global leads the menu and the
	// regions follow in sorted order.
	env, o := testEnv(doer, "2\n")
	err := execute(t, env, "compute", "forwarding-rules", "describe", "web",
		"--project", "peach")
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	prompt := o.errOut.String()
	if !strings.Contains(prompt, "[1] global") || !strings.Contains(prompt, "[2] region: atlantic") {
		t.Errorf("menu order wrong:\n%s", prompt)
	}
	if !doer.saw(http.MethodGet, ruleLink) {
		t.Error("regional rule was not fetched")
	}
}

func TestForwardingRulesDescribeNonInteractiveUnderSpecified(t *testing.T) {
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		t.Errorf("unexpected request %s", req.URL)
		return nil, errors.New("unexpected request")
	}}

	env, _ := testEnv(doer, "")
	err := execute(t, env, "compute", "forwarding-rules", "describe", "web",
		"--project", "peach")
	if err == nil {
		t.Fatal("describe resolved without a scope")
	}
	if cli.CodeFor(err) != 2 {
		t.Errorf("CodeFor = %d, want 2", cli.CodeFor(err))
	}
}

func TestZonesListRendersTable(t *testing.T) {
	zonesURL := computeBase + "projects/peach/zones"
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		if req.URL != zonesURL {
			t.Errorf("unexpected request %s", req.URL)
			return nil, errors.New("unexpected request")
		}
		return itemsResponse(t, map[string]any{
			"name":   "atlantic-b",
			"region": computeBase + "projects/peach/regions/atlantic",
			"status": "UP",
		}), nil
	}}

	env, o := testEnv(doer, "")
	if err := execute(t, env, "compute", "zones", "list", "--project", "peach"); err != nil {
		t.Fatalf("list: %v", err)
	}
	got := o.out.String()
	if !strings.Contains(got, "atlantic-b") || !strings.Contains(got, "atlantic") {
		t.Errorf("zone row missing:\n%s", got)
	}
}
