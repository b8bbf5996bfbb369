// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/strato-cloud/strato/lib/clock"
	"github.com/strato-cloud/strato/lib/collection"
	"github.com/strato-cloud/strato/lib/console"
	"github.com/strato-cloud/strato/lib/properties"
	"github.com/strato-cloud/strato/lib/render"
	"github.com/strato-cloud/strato/lib/resource"
	"github.com/strato-cloud/strato/lib/transport"
)

// Environment carries the process-wide dependencies: the dispatcher
// does not own a transport or a clock, it receives them here. Tests
// substitute fakes.
type Environment struct {
	Ctx        context.Context
	Clock      clock.Clock
	Client     transport.Doer
	Properties *properties.Store
	Console    *console.Attr
	Registry   *collection.Registry
	Logger     *slog.Logger

	// Out receives result output. Defaults to stdout.
	Out io.Writer

	// LogSink, when set, receives a copy of non-private result output.
	LogSink io.Writer

	// Metadata is the platform metadata service, consulted for
	// resource defaults only when the user opted in.
	Metadata resource.MetadataLookup
}

func (e *Environment) Context() context.Context {
	if e.Ctx == nil {
		return context.Background()
	}
	return e.Ctx
}

func (e *Environment) ResultOut() io.Writer {
	if e.Out == nil {
		return os.Stdout
	}
	return e.Out
}

// Invocation is one parsed command execution: the merged flag set, the
// global flag values, the remaining positionals, and the environment.
type Invocation struct {
	Env     *Environment
	Command *Command
	Track   Track
	Flags   *pflag.FlagSet
	Globals *GlobalFlags
	Args    []string
}

// Format returns the effective output format: the --format override,
// the verb's default, or yaml.
func (inv *Invocation) Format() string {
	if inv.Globals.Format != "" {
		return inv.Globals.Format
	}
	if inv.Command.DefaultFormat != "" {
		return inv.Command.DefaultFormat
	}
	return "yaml"
}

func (inv *Invocation) renderOptions(single bool) render.Options {
	opts := render.Options{
		Out:     inv.Env.ResultOut(),
		LogSink: inv.Env.LogSink,
		Single:  single,
	}
	if attr := inv.Env.Console; attr != nil {
		opts.TTY = attr.Interactive
		opts.Profile = attr.Profile
	}
	return opts
}

// RenderList runs the output pipeline for a list verb: --filter, then
// --sort-by, then --limit, then the renderer.
func (inv *Invocation) RenderList(records []map[string]any) error {
	records, err := render.Filter(records, inv.Globals.Filter)
	if err != nil {
		return Argumentf("%v", err)
	}
	render.SortBy(records, inv.Globals.SortBy)
	if limit := inv.Globals.Limit; limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	r, err := render.New(inv.Format(), inv.renderOptions(false))
	if err != nil {
		return Argumentf("%v", err)
	}
	for _, record := range records {
		if err := r.Add(record); err != nil {
			return err
		}
	}
	return r.Finish()
}

// RenderResult prints a single record, such as a describe response or
// an operation handle.
func (inv *Invocation) RenderResult(record any) error {
	r, err := render.New(inv.Format(), inv.renderOptions(true))
	if err != nil {
		return Argumentf("%v", err)
	}
	if err := r.Add(record); err != nil {
		return err
	}
	return r.Finish()
}

// Resolver builds a fallthrough resolver bound to this invocation's
// parsed flags, properties, environment, and (if enabled) metadata.
func (inv *Invocation) Resolver() *resource.Resolver {
	r := &resource.Resolver{
		Args:       flagArgs{inv.Flags},
		Properties: inv.Env.Properties,
	}
	if inv.Env.Metadata != nil && inv.metadataEnabled() {
		r.Metadata = inv.Env.Metadata
	}
	return r
}

func (inv *Invocation) metadataEnabled() bool {
	if inv.Env.Properties == nil {
		return false
	}
	return inv.Env.Properties.GetBool(properties.ComputeUseMetadata)
}

// flagArgs adapts a parsed pflag set to the resolver's args namespace.
type flagArgs struct {
	fs *pflag.FlagSet
}

func (a flagArgs) Value(name string) (string, bool) {
	f := a.fs.Lookup(name)
	if f == nil {
		return "", false
	}
	return f.Value.String(), true
}

func (a flagArgs) Explicit(name string) bool {
	return a.fs.Changed(name)
}
