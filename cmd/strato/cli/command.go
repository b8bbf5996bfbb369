// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"
)

// Track is a command's release track. A path may carry one variant per
// track; dispatch picks the variant matching the requested track and
// falls back to GA.
type Track int

const (
	TrackGA Track = iota
	TrackBeta
	TrackAlpha
)

func (t Track) String() string {
	switch t {
	case TrackBeta:
		return "BETA"
	case TrackAlpha:
		return "ALPHA"
	default:
		return "GA"
	}
}

// Command represents a CLI command or subcommand.
type Command struct {
	// Name is the command name as typed by the user (e.g., "compute",
	// "instances").
	Name string

	// Summary is a one-line description shown in the parent's help
	// listing.
	Summary string

	// Description is a detailed multi-line description shown in the
	// command's own help output.
	Description string

	// Usage is the usage string (e.g., "strato compute instances list
	// [flags]"). If empty, it is synthesized from the command path.
	Usage string

	// Examples are shown in the help output after the description.
	Examples []Example

	// Track is the command's release track. GA commands are reachable
	// from every track; BETA and ALPHA variants only via their prefix.
	Track Track

	// Flags declares this command's flags into the merged flag set.
	// Ancestor flags are declared first, so a verb sees the whole
	// grammar of its path. If nil, the command adds no flags.
	Flags func(fs *pflag.FlagSet)

	// Groups are cross-flag constraints checked after parsing, before
	// Validators.
	Groups []Group

	// Validators run after group checks, in order. They implement
	// per-verb rules that the group grammar cannot express.
	Validators []Validator

	// DefaultFormat is the output format used when --format is not
	// given. Empty means "yaml".
	DefaultFormat string

	// Subcommands are nested commands dispatched by the first
	// positional arg.
	Subcommands []*Command

	// Run executes the command. Exactly one of Run or Subcommands
	// should be set.
	Run func(inv *Invocation) error

	// parent is set during dispatch to build the full command path.
	parent *Command
}

// Example is a usage example shown in help output.
type Example struct {
	// Description explains what the example does.
	Description string
	// Command is the literal command line.
	Command string
}

// Execute parses args and dispatches through the command tree. It is
// the entry point for the root command. A leading "beta" or "alpha"
// word selects the release track for the whole path.
func (c *Command) Execute(env *Environment, args []string) error {
	track := TrackGA
	if len(args) > 0 {
		switch args[0] {
		case "beta":
			track, args = TrackBeta, args[1:]
		case "alpha":
			track, args = TrackAlpha, args[1:]
		}
	}
	return c.execute(env, track, args)
}

func (c *Command) execute(env *Environment, track Track, args []string) error {
	if len(args) > 0 && isHelpFlag(args[0]) {
		c.PrintHelp(env.ErrOut())
		return nil
	}

	// Dispatch to a subcommand by name, honoring the release track.
	if len(c.Subcommands) > 0 && len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		name := args[0]
		if sub := c.findVariant(name, track); sub != nil {
			sub.parent = c
			return sub.execute(env, track, args[1:])
		}

		// Unknown subcommand: suggest the closest match.
		suggestion := suggestCommand(name, c.Subcommands)
		if suggestion != "" {
			return Argumentf("unknown command %q (did you mean %q?)\n\nRun '%s --help' for usage.",
				name, suggestion, c.fullName())
		}
		return Argumentf("unknown command %q\n\nRun '%s --help' for usage.",
			name, c.fullName())
	}

	if len(c.Subcommands) > 0 && c.Run == nil {
		c.PrintHelp(env.ErrOut())
		if len(args) == 0 {
			return Argumentf("subcommand required")
		}
		return Argumentf("subcommand required (got flag %q)", args[0])
	}

	// Leaf: assemble the merged flag grammar and parse.
	fs := pflag.NewFlagSet(c.fullName(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	globals := registerGlobals(fs)
	c.declareFlags(fs)

	if err := fs.Parse(args); err != nil {
		errMsg := err.Error()
		if strings.Contains(errMsg, "unknown flag") {
			if suggestion := suggestFlag(args, c.freshFlagSet()); suggestion != "" {
				return Argumentf("%s (did you mean %s?)\n\nRun '%s --help' for usage.",
					errMsg, suggestion, c.fullName())
			}
		}
		return Argumentf("%s\n\nRun '%s --help' for usage.", errMsg, c.fullName())
	}

	if err := c.validate(fs); err != nil {
		return err
	}

	if c.Run == nil {
		c.PrintHelp(env.ErrOut())
		return fmt.Errorf("no action defined for %q", c.fullName())
	}

	inv := &Invocation{
		Env:     env,
		Command: c,
		Track:   track,
		Flags:   fs,
		Globals: globals,
		Args:    fs.Args(),
	}
	if env.Console != nil {
		env.Console.Quiet = globals.Quiet
	}
	return c.Run(inv)
}

// findVariant picks the subcommand for name at the requested track,
// falling back to the GA variant. BETA and ALPHA commands are
// invisible outside their track.
func (c *Command) findVariant(name string, track Track) *Command {
	var ga *Command
	for _, sub := range c.Subcommands {
		if sub.Name != name {
			continue
		}
		if sub.Track == track {
			return sub
		}
		if sub.Track == TrackGA {
			ga = sub
		}
	}
	return ga
}

// declareFlags walks root to leaf so a verb inherits its ancestors'
// grammar.
func (c *Command) declareFlags(fs *pflag.FlagSet) {
	if c.parent != nil {
		c.parent.declareFlags(fs)
	}
	if c.Flags != nil {
		c.Flags(fs)
	}
}

func (c *Command) freshFlagSet() *pflag.FlagSet {
	fs := pflag.NewFlagSet(c.fullName(), pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	registerGlobals(fs)
	c.declareFlags(fs)
	return fs
}

// validate runs group constraints (required, mutual exclusion, modal)
// and then custom validators, ancestors first. The first violation
// wins; all violations map to the argument-error exit code.
func (c *Command) validate(fs *pflag.FlagSet) error {
	if c.parent != nil {
		if err := c.parent.validate(fs); err != nil {
			return err
		}
	}
	for _, g := range c.Groups {
		if err := g.check(fs); err != nil {
			return err
		}
	}
	for _, v := range c.Validators {
		if err := v(fs); err != nil {
			return err
		}
	}
	return nil
}

// PrintHelp writes structured help output to w.
func (c *Command) PrintHelp(w io.Writer) {
	name := c.fullName()

	if c.Description != "" {
		fmt.Fprintf(w, "%s\n\n", c.Description)
	} else if c.Summary != "" {
		fmt.Fprintf(w, "%s\n\n", c.Summary)
	}

	if c.Usage != "" {
		fmt.Fprintf(w, "Usage:\n  %s\n", c.Usage)
	} else if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "Usage:\n  %s <command> [flags]\n", name)
	} else {
		fmt.Fprintf(w, "Usage:\n  %s [flags]\n", name)
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nCommands:\n")
		tw := tabwriter.NewWriter(w, 2, 0, 3, ' ', 0)
		seen := map[string]bool{}
		for _, sub := range c.Subcommands {
			if seen[sub.Name] {
				continue
			}
			seen[sub.Name] = true
			summary := sub.Summary
			if sub.Track != TrackGA {
				summary = fmt.Sprintf("(%s) %s", sub.Track, summary)
			}
			fmt.Fprintf(tw, "  %s\t%s\n", sub.Name, summary)
		}
		tw.Flush()
	}

	flagSet := c.freshFlagSet()
	var flagHelp strings.Builder
	flagSet.SetOutput(&flagHelp)
	flagSet.PrintDefaults()
	if flagHelp.Len() > 0 {
		fmt.Fprintf(w, "\nFlags:\n%s", flagHelp.String())
	}

	if len(c.Examples) > 0 {
		fmt.Fprintf(w, "\nExamples:\n")
		for _, example := range c.Examples {
			if example.Description != "" {
				fmt.Fprintf(w, "  # %s\n", example.Description)
			}
			fmt.Fprintf(w, "  %s\n", example.Command)
			if example.Description != "" {
				fmt.Fprintln(w)
			}
		}
	}

	if len(c.Subcommands) > 0 {
		fmt.Fprintf(w, "\nRun '%s <command> --help' for more information on a command.\n", name)
	}
}

// fullName returns the complete command path (e.g., "strato compute
// instances list").
func (c *Command) fullName() string {
	if c.parent == nil {
		return c.Name
	}
	return c.parent.fullName() + " " + c.Name
}

// isHelpFlag returns true for common help flag variants.
func isHelpFlag(arg string) bool {
	return arg == "-h" || arg == "--help" || arg == "help"
}

// ErrOut is where help and diagnostics go.
func (e *Environment) ErrOut() io.Writer {
	if e.Console != nil && e.Console.Out != nil {
		return e.Console.Out
	}
	return os.Stderr
}
