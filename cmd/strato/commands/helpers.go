// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/lib/batch"
	"github.com/strato-cloud/strato/lib/console"
	"github.com/strato-cloud/strato/lib/operation"
	"github.com/strato-cloud/strato/lib/properties"
	"github.com/strato-cloud/strato/lib/resource"
	"github.com/strato-cloud/strato/lib/transport"
)

// activeProject resolves the project for the invocation: the --project
// flag, then the core/project property.
func activeProject(inv *cli.Invocation) (string, error) {
	if res, ok := inv.Resolver().ResolveAttribute(cli.ProjectFallthroughs()); ok {
		return res.Value, nil
	}
	return "", &resource.UnderSpecifiedError{
		Collection: "projects",
		Missing:    []string{"project"},
		Hints: []string{
			"- provide the flag --project on the command line",
			"- set the property core/project",
		},
	}
}

// zoneFallthroughs is the standard chain for the zone attribute.
func zoneFallthroughs() []resource.Fallthrough {
	return []resource.Fallthrough{
		{
			Source: resource.SourceArg,
			Flag:   "zone",
			Hint:   "provide the flag --zone on the command line",
		},
		{
			Source:   resource.SourceProperty,
			Property: properties.ComputeZone,
			Hint:     "set the property compute/zone",
		},
		{
			Source:       resource.SourceMetadata,
			MetadataAttr: "zone",
			Hint:         "enable metadata defaults with compute/use_metadata_defaults",
		},
	}
}

// regionFallthroughs is the standard chain for the region attribute.
func regionFallthroughs() []resource.Fallthrough {
	return []resource.Fallthrough{
		{
			Source: resource.SourceArg,
			Flag:   "region",
			Hint:   "provide the flag --region on the command line",
		},
		{
			Source:   resource.SourceProperty,
			Property: properties.ComputeRegion,
			Hint:     "set the property compute/region",
		},
		{
			Source:       resource.SourceMetadata,
			MetadataAttr: "region",
			Hint:         "enable metadata defaults with compute/use_metadata_defaults",
		},
	}
}

// fetch GETs the resource behind a complete reference.
func fetch(inv *cli.Invocation, ref *resource.Reference) (map[string]any, error) {
	link, err := ref.SelfLink()
	if err != nil {
		return nil, err
	}
	return fetchURL(inv, link, ref.Collection().Name+" "+ref.Name())
}

// fetchURL GETs a self link and decodes the record.
func fetchURL(inv *cli.Invocation, url, label string) (map[string]any, error) {
	resp, err := inv.Env.Client.Do(inv.Env.Context(), &transport.Request{
		Method: http.MethodGet,
		URL:    url,
		Label:  label,
	})
	if err != nil {
		return nil, err
	}
	var record map[string]any
	if err := resp.Decode(&record); err != nil {
		return nil, err
	}
	return record, nil
}

// listTarget is one scope of a fan-in list: the scope identity plus
// the collection URL to page through.
type listTarget struct {
	scope batch.Scope
	url   string
}

// fanList fuses the targets' paginated list calls into one record
// slice. The fetch-side limit is only passed down when no post-fetch
// filtering or sorting will run, since those need the full result.
// Scope-level failures degrade to console warnings.
func fanList(inv *cli.Invocation, pageSize int, targets []listTarget) ([]map[string]any, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	urls := make(map[batch.Scope]string, len(targets))
	scopes := make([]batch.Scope, len(targets))
	for i, t := range targets {
		scopes[i] = t.scope
		urls[t.scope] = t.url
	}
	limit := 0
	if inv.Globals.Filter == "" && len(inv.Globals.SortBy) == 0 {
		limit = inv.Globals.Limit
	}
	lister := &batch.Lister{
		Client:   inv.Env.Client,
		Scopes:   scopes,
		PageSize: pageSize,
		Limit:    limit,
		Request: func(s batch.Scope) *transport.Request {
			return &transport.Request{
				Method: http.MethodGet,
				URL:    urls[s],
				Label:  "listing " + s.String(),
			}
		},
	}
	records, warnings, err := lister.Run(inv.Env.Context())
	if err != nil {
		return nil, err
	}
	if inv.Env.Console != nil {
		for _, w := range warnings {
			inv.Env.Console.Warnf("%s", w)
		}
	}
	return records, nil
}

// scopedTargets builds one list target per scope for a collection,
// binding the scope-specific parameters. Returns the collection's page
// size cap alongside.
func scopedTargets(inv *cli.Invocation, collectionName string, scopes []batch.Scope, bind func(batch.Scope) map[string]string) (int, []listTarget, error) {
	col, err := inv.Env.Registry.Lookup(collectionName)
	if err != nil {
		return 0, nil, err
	}
	targets := make([]listTarget, 0, len(scopes))
	for _, s := range scopes {
		u, err := col.ListURL(bind(s))
		if err != nil {
			return 0, nil, err
		}
		targets = append(targets, listTarget{scope: s, url: u})
	}
	return col.MaxPageSize, targets, nil
}

// scopeNames lists a placement collection (zones, regions) and returns
// the sorted resource names. The user's --limit never applies here.
func scopeNames(inv *cli.Invocation, collectionName, project string) ([]string, error) {
	col, err := inv.Env.Registry.Lookup(collectionName)
	if err != nil {
		return nil, err
	}
	u, err := col.ListURL(map[string]string{"project": project})
	if err != nil {
		return nil, err
	}
	lister := &batch.Lister{
		Client:   inv.Env.Client,
		Scopes:   []batch.Scope{{Kind: batch.ScopeGlobal}},
		PageSize: col.MaxPageSize,
		Request: func(batch.Scope) *transport.Request {
			return &transport.Request{
				Method: http.MethodGet,
				URL:    u,
				Label:  "listing " + collectionName,
			}
		},
	}
	records, _, err := lister.Run(inv.Env.Context())
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(records))
	for _, r := range records {
		if name, ok := r["name"].(string); ok && name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// pendingOp is a submitted long-running operation: the typed handle
// for polling, the raw record for --async rendering, and the label
// naming the affected resource.
type pendingOp struct {
	op    *operation.Operation
	raw   map[string]any
	label string
}

// decodeOperation reads an operation handle out of a mutation reply.
func decodeOperation(resp *transport.Response, label string) (*pendingOp, error) {
	op, err := operation.FromResponse(resp)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := resp.Decode(&raw); err != nil {
		return nil, err
	}
	return &pendingOp{op: op, raw: raw, label: label}, nil
}

// operationGetter adapts the transport to the poller's GetFunc.
func operationGetter(inv *cli.Invocation) operation.GetFunc {
	return func(ctx context.Context, selfLink string) (*operation.Operation, error) {
		resp, err := inv.Env.Client.Do(ctx, &transport.Request{
			Method: http.MethodGet,
			URL:    selfLink,
			Label:  "operation",
		})
		if err != nil {
			return nil, err
		}
		return operation.FromResponse(resp)
	}
}

// waitAll polls every pending operation to its terminal state with one
// tracker line per operation. A zero deadline means the poller
// default. Returns the final states in input order (the last observed
// state where polling itself failed) and the per-operation failures.
func waitAll(inv *cli.Invocation, verb string, pending []*pendingOp, deadline time.Duration) ([]*operation.Operation, []error) {
	var tracker *console.Tracker
	if inv.Env.Console != nil {
		tracker = console.NewTracker(inv.Env.Console)
	}
	get := operationGetter(inv)
	finals := make([]*operation.Operation, len(pending))
	var sink batch.Errors

	group, ctx := errgroup.WithContext(inv.Env.Context())
	group.SetLimit(batch.DefaultParallelism)
	for i, p := range pending {
		i, p := i, p
		var task *console.Task
		if tracker != nil {
			task = tracker.Start(fmt.Sprintf("%s %s", verb, p.label))
		}
		group.Go(func() error {
			poller := &operation.Poller{
				Get:      get,
				Clock:    inv.Env.Clock,
				Deadline: deadline,
				OnProgress: func(op *operation.Operation) {
					if task != nil {
						task.Update(string(op.Status))
					}
					if tracker != nil {
						tracker.Tick()
					}
				},
			}
			final, err := poller.Wait(ctx, p.op)
			finals[i] = final
			if err != nil {
				if task != nil {
					task.Done("FAILED")
				}
				sink.Add(err)
				return nil
			}
			if task != nil {
				task.Done("DONE")
			}
			return nil
		})
	}
	group.Wait()
	return finals, sink.All()
}

// renderPending prints the submitted operation handles, the --async
// result surface.
func renderPending(inv *cli.Invocation, pending []*pendingOp) error {
	if len(pending) == 1 {
		return inv.RenderResult(pending[0].raw)
	}
	records := make([]map[string]any, len(pending))
	for i, p := range pending {
		records[i] = p.raw
	}
	return inv.RenderList(records)
}

// runOperation drives one submitted operation: under --async the
// handle is rendered and the command returns, otherwise the operation
// is polled to DONE and, when renderTarget is set, the target resource
// is fetched and rendered.
func runOperation(inv *cli.Invocation, verb string, p *pendingOp, renderTarget bool) error {
	if inv.Globals.Async {
		return renderPending(inv, []*pendingOp{p})
	}
	finals, failures := waitAll(inv, verb, []*pendingOp{p}, 0)
	if len(failures) > 0 {
		return failures[0]
	}
	if renderTarget && finals[0].TargetLink != "" {
		record, err := fetchURL(inv, finals[0].TargetLink, p.label)
		if err != nil {
			return err
		}
		return inv.RenderResult(record)
	}
	return nil
}

// finishBatch folds a multi-resource verb's failures into the result
// error: nil when clean, the aggregate when everything failed, and a
// partial-failure error when successes and failures are mixed.
func finishBatch(total int, failures []error) error {
	if len(failures) == 0 {
		return nil
	}
	var agg batch.Errors
	for _, e := range failures {
		agg.Add(e)
	}
	cause := agg.Aggregate()
	if len(failures) < total {
		return &batch.PartialFailureError{
			Succeeded: total - len(failures),
			Failed:    len(failures),
			Cause:     cause,
		}
	}
	return cause
}

// opRecord flattens an operation handle into a renderable record.
func opRecord(op *operation.Operation) map[string]any {
	record := map[string]any{
		"name":       op.Name,
		"selfLink":   op.SelfLink,
		"targetLink": op.TargetLink,
		"status":     string(op.Status),
	}
	if op.OperationType != "" {
		record["operationType"] = op.OperationType
	}
	if op.InsertTime != "" {
		record["insertTime"] = op.InsertTime
	}
	if op.StartTime != "" {
		record["startTime"] = op.StartTime
	}
	if op.EndTime != "" {
		record["endTime"] = op.EndTime
	}
	if op.Error != nil && len(op.Error.Errors) > 0 {
		items := make([]any, len(op.Error.Errors))
		for i, item := range op.Error.Errors {
			items[i] = map[string]any{"code": item.Code, "message": item.Message}
		}
		record["error"] = map[string]any{"errors": items}
	}
	return record
}

// requireArgs enforces an exact positional count.
func requireArgs(inv *cli.Invocation, n int, what string) error {
	if len(inv.Args) != n {
		return cli.Argumentf("%s takes exactly %d argument(s): %s", inv.Command.Name, n, what)
	}
	return nil
}

// relativeNames renders the references for confirmation prompts.
func relativeNames(refs []*resource.Reference) []string {
	out := make([]string, len(refs))
	for i, ref := range refs {
		rel, err := ref.RelativeName()
		if err != nil {
			rel = ref.Name()
		}
		out[i] = rel
	}
	return out
}

// joinLines formats a bulleted list for prompts.
func joinLines(items []string) string {
	return " - " + strings.Join(items, "\n - ")
}
