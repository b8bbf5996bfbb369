// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"log/slog"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/strato-cloud/strato/lib/flagtypes"
)

// GlobalFlags are recognized at every depth of the command tree.
type GlobalFlags struct {
	Project       string
	Quiet         bool
	Format        string
	Filter        string
	Limit         int
	SortBy        []string
	Async         bool
	Configuration string

	verbosity *flagtypes.Enum
}

// VerbosityLevel maps the --verbosity flag to a slog level.
func (g *GlobalFlags) VerbosityLevel() slog.Level {
	switch g.verbosity.Value() {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// Verbosity returns the flag's string value.
func (g *GlobalFlags) Verbosity() string { return g.verbosity.Value() }

func registerGlobals(fs *pflag.FlagSet) *GlobalFlags {
	g := &GlobalFlags{
		verbosity: flagtypes.NewEnum([]string{"debug", "info", "warning", "error"}, "warning"),
	}
	fs.StringVar(&g.Project, "project", "", "Project for this invocation. Overrides the core/project property.")
	fs.BoolVar(&g.Quiet, "quiet", false, "Disable interactive prompts; every prompt takes its default answer.")
	fs.StringVar(&g.Format, "format", "", `Output format expression, e.g. "table(name, zone)" or "json".`)
	fs.StringVar(&g.Filter, "filter", "", "key=value clauses that listed records must match.")
	fs.Var(&limitValue{n: &g.Limit}, "limit", "Maximum number of records to list. Must be positive.")
	fs.StringSliceVar(&g.SortBy, "sort-by", nil, "Sort keys for listed records; prefix a key with ~ to reverse.")
	fs.BoolVar(&g.Async, "async", false, "Return immediately after submitting a long-running operation.")
	fs.Var(g.verbosity, "verbosity", "Log verbosity: debug, info, warning, or error.")
	fs.StringVar(&g.Configuration, "configuration", "", "Path of the properties file to load.")
	return g
}

// limitValue is a pflag.Value for --limit: zero and negative limits
// are rejected at parse time.
type limitValue struct {
	n *int
}

func (l *limitValue) Set(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fmt.Errorf("%q is not an integer", s)
	}
	if n <= 0 {
		return fmt.Errorf("--limit must be a positive integer, got %d", n)
	}
	*l.n = n
	return nil
}

func (l *limitValue) String() string {
	if l.n == nil || *l.n == 0 {
		return ""
	}
	return strconv.Itoa(*l.n)
}

func (l *limitValue) Type() string { return "int" }
