// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/lib/transport"
)

const sqlBase = "https://sql.stratoapis.com/sql/v1/"

func TestDatabasesListRequiresInstance(t *testing.T) {
	env, _ := testEnv(&fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		t.Errorf("unexpected request %s", req.URL)
		return nil, errors.New("unexpected request")
	}}, "")
	err := execute(t, env, "sql", "databases", "list", "--project", "peach")
	if err == nil || !strings.Contains(err.Error(), "--instance") {
		t.Fatalf("err = %v, want missing --instance", err)
	}
	if cli.CodeFor(err) != 2 {
		t.Errorf("CodeFor = %d, want 2", cli.CodeFor(err))
	}
}

func TestDatabasesList(t *testing.T) {
	listURL := sqlBase + "projects/peach/instances/primary/databases"
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		if req.URL != listURL {
			t.Errorf("unexpected request %s", req.URL)
			return nil, errors.New("unexpected request")
		}
		return itemsResponse(t, map[string]any{
			"name":      "orders",
			"charset":   "utf8mb4",
			"collation": "utf8mb4_general_ci",
		}), nil
	}}

	env, o := testEnv(doer, "")
	err := execute(t, env, "sql", "databases", "list",
		"--project", "peach", "--instance", "primary")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(o.out.String(), "orders") || !strings.Contains(o.out.String(), "utf8mb4") {
		t.Errorf("row missing:\n%s", o.out.String())
	}
}

func TestDatabasesCloneWaitsAndRendersClone(t *testing.T) {
	cloneURL := sqlBase + "projects/peach/instances/primary/databases/orders/clone"
	opLink := sqlBase + "projects/peach/operations/op-7"
	targetLink := sqlBase + "projects/peach/instances/primary/databases/orders-copy"

	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		switch {
		case req.Method == http.MethodPost && req.URL == cloneURL:
			body, _ := req.Body.(map[string]any)
			cloneContext, _ := body["cloneContext"].(map[string]any)
			if cloneContext["destinationDbName"] != "orders-copy" {
				t.Errorf("cloneContext = %#v", cloneContext)
			}
			if _, ok := cloneContext["binLogCoordinates"]; ok {
				t.Error("GA clone sent binary-log coordinates")
			}
			return jsonResponse(t, map[string]any{
				"name":       "op-7",
				"selfLink":   opLink,
				"targetLink": targetLink,
				"status":     "DONE",
			}), nil
		case req.Method == http.MethodGet && req.URL == targetLink:
			return jsonResponse(t, map[string]any{"name": "orders-copy", "charset": "utf8mb4"}), nil
		}
		t.Errorf("unexpected request %s %s", req.Method, req.URL)
		return nil, errors.New("unexpected request")
	}}

	env, o := testEnv(doer, "")
	err := execute(t, env, "sql", "databases", "clone", "orders", "orders-copy",
		"--project", "peach", "--instance", "primary")
	if err != nil {
		t.Fatalf("clone: %v", err)
	}
	if !strings.Contains(o.out.String(), "orders-copy") {
		t.Errorf("clone not rendered:\n%s", o.out.String())
	}
	if !strings.Contains(o.errOut.String(), "Cloning database orders-copy...DONE") {
		t.Errorf("progress missing:\n%s", o.errOut.String())
	}
}

func TestDatabasesCloneBetaSendsBinLogCoordinates(t *testing.T) {
	cloneURL := sqlBase + "projects/peach/instances/primary/databases/orders/clone"
	doer := &fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		body, _ := req.Body.(map[string]any)
		cloneContext, _ := body["cloneContext"].(map[string]any)
		coords, ok := cloneContext["binLogCoordinates"].(map[string]any)
		if !ok {
			t.Fatalf("cloneContext = %#v, want binLogCoordinates", cloneContext)
		}
		if coords["binLogFileName"] != "mysql-bin.000003" || coords["binLogPosition"] != int64(4211) {
			t.Errorf("coords = %#v", coords)
		}
		if req.URL != cloneURL {
			t.Errorf("unexpected URL %s", req.URL)
		}
		return jsonResponse(t, map[string]any{
			"name":     "op-8",
			"selfLink": sqlBase + "projects/peach/operations/op-8",
			"status":   "DONE",
		}), nil
	}}

	env, _ := testEnv(doer, "")
	err := execute(t, env, "beta", "sql", "databases", "clone", "orders", "orders-copy",
		"--project", "peach", "--instance", "primary",
		"--bin-log-file-name", "mysql-bin.000003", "--bin-log-position", "4211")
	if err != nil {
		t.Fatalf("beta clone: %v", err)
	}
}

func TestDatabasesCloneBinLogFlagsUnknownOnGA(t *testing.T) {
	env, _ := testEnv(&fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		return nil, errors.New("unexpected request")
	}}, "")
	err := execute(t, env, "sql", "databases", "clone", "orders", "orders-copy",
		"--project", "peach", "--instance", "primary",
		"--bin-log-file-name", "mysql-bin.000003")
	if err == nil || !strings.Contains(err.Error(), "unknown flag") {
		t.Fatalf("err = %v, want unknown flag", err)
	}
	if cli.CodeFor(err) != 2 {
		t.Errorf("CodeFor = %d, want 2", cli.CodeFor(err))
	}
}

func TestDatabasesCloneBinLogFlagsRequireTogether(t *testing.T) {
	env, _ := testEnv(&fakeDoer{handler: func(req *transport.Request) (*transport.Response, error) {
		return nil, errors.New("unexpected request")
	}}, "")
	err := execute(t, env, "beta", "sql", "databases", "clone", "orders", "orders-copy",
		"--project", "peach", "--instance", "primary",
		"--bin-log-file-name", "mysql-bin.000003")
	if err == nil || !strings.Contains(err.Error(), "together") {
		t.Fatalf("err = %v, want require-together violation", err)
	}
	if cli.CodeFor(err) != 2 {
		t.Errorf("CodeFor = %d, want 2", cli.CodeFor(err))
	}
}
