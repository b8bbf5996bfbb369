// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/strato-cloud/strato/lib/transport"
)

// ScopeKind distinguishes the list targets a multi-scope fan-in covers.
type ScopeKind string

const (
	ScopeGlobal  ScopeKind = "global"
	ScopeZones   ScopeKind = "zones"
	ScopeRegions ScopeKind = "regions"
)

// Scope is one list target: global, or a named zone or region.
type Scope struct {
	Kind ScopeKind
	// Name is the zone or region name; empty for global.
	Name string
}

// String renders "global", "zone:atlantic-b", or "region:atlantic".
func (s Scope) String() string {
	switch s.Kind {
	case ScopeGlobal:
		return "global"
	case ScopeZones:
		return "zone:" + s.Name
	default:
		return "region:" + s.Name
	}
}

// listPage is the platform's paginated list reply shape.
type listPage struct {
	Items         []map[string]any `json:"items"`
	NextPageToken string           `json:"nextPageToken"`
}

// Lister fuses paginated list calls across scopes into one record
// sequence. Cross-scope ordering is unspecified beyond being grouped
// by scope in declaration order; callers wanting an order sort the
// materialized result.
type Lister struct {
	Client transport.Doer

	// Request builds the base request for a scope. The lister adds
	// pageToken and maxResults query parameters.
	Request func(scope Scope) *transport.Request

	Scopes []Scope

	// PageSize is the per-page hint; the caller caps it at the
	// collection's documented maximum. Zero omits the hint.
	PageSize int

	// Limit bounds the total records returned. Zero means all.
	Limit int

	// Parallelism bounds concurrent scope fetches; zero means
	// DefaultParallelism.
	Parallelism int
}

// Run fetches all scopes. Scope-level failures (a 404 region, a
// temporarily failing zone) become warnings; the result is the
// surviving scopes' records. Only when every scope fails does Run
// return an error.
func (l *Lister) Run(ctx context.Context) (records []map[string]any, warnings []string, err error) {
	if len(l.Scopes) == 0 {
		return nil, nil, fmt.Errorf("lister: no scopes given")
	}

	parallelism := l.Parallelism
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}

	perScope := make([][]map[string]any, len(l.Scopes))
	scopeErrs := make([]error, len(l.Scopes))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(parallelism)

	// fetched counts records across scopes so token-following stops
	// once the global limit is satisfiable.
	var mu sync.Mutex
	fetched := 0
	enough := func() bool {
		if l.Limit <= 0 {
			return false
		}
		mu.Lock()
		defer mu.Unlock()
		return fetched >= l.Limit
	}

	for i, scope := range l.Scopes {
		i, scope := i, scope
		group.Go(func() error {
			items, err := l.fetchScope(groupCtx, scope, &mu, &fetched, enough)
			perScope[i] = items
			scopeErrs[i] = err
			// Scope failures are collected, not propagated: one bad
			// scope must not cancel its siblings.
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	failures := 0
	var collected Errors
	for i, scope := range l.Scopes {
		if scopeErrs[i] == nil {
			records = append(records, perScope[i]...)
			continue
		}
		failures++
		collected.Add(scopeErrs[i])
		warnings = append(warnings, fmt.Sprintf("listing %s: %v", scope, scopeErrs[i]))
	}
	if failures == len(l.Scopes) {
		return nil, nil, fmt.Errorf("all scopes failed: %w", collected.Aggregate())
	}
	if l.Limit > 0 && len(records) > l.Limit {
		records = records[:l.Limit]
	}
	return records, warnings, nil
}

// fetchScope follows one scope's page-token chain.
func (l *Lister) fetchScope(ctx context.Context, scope Scope, mu *sync.Mutex, fetched *int, enough func() bool) ([]map[string]any, error) {
	var items []map[string]any
	pageToken := ""
	for {
		if enough() {
			return items, nil
		}
		req := l.Request(scope)
		query := url.Values{}
		for k, vs := range req.Query {
			query[k] = vs
		}
		if l.PageSize > 0 {
			query.Set("maxResults", strconv.Itoa(l.PageSize))
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}
		req.Query = query

		resp, err := l.Client.Do(ctx, req)
		if err != nil {
			return nil, err
		}
		var page listPage
		if err := resp.Decode(&page); err != nil {
			return nil, err
		}
		items = append(items, page.Items...)

		mu.Lock()
		*fetched += len(page.Items)
		mu.Unlock()

		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}
