// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/lib/properties"
)

func configCommand() *cli.Command {
	return &cli.Command{
		Name:    "config",
		Summary: "View the active client configuration.",
		Subcommands: []*cli.Command{
			configList(),
		},
	}
}

func configList() *cli.Command {
	return &cli.Command{
		Name:          "list",
		Summary:       "List the properties of the active configuration.",
		Usage:         "strato config list [--show-secrets] [flags]",
		DefaultFormat: "table(section, property, value)",
		Flags: func(fs *pflag.FlagSet) {
			fs.Bool("show-secrets", false, "Show private property values instead of masking them.")
		},
		Run: func(inv *cli.Invocation) error {
			show, _ := inv.Flags.GetBool("show-secrets")
			if show && inv.Globals.Format == "" {
				// Revealed secrets must not reach the log sink.
				inv.Globals.Format = "table[private](section, property, value)"
			}
			var records []map[string]any
			for _, k := range inv.Env.Properties.Keys() {
				value, _ := inv.Env.Properties.Get(k)
				if properties.Private(k) && !show {
					value = "*****"
				}
				records = append(records, map[string]any{
					"section":  k.Section,
					"property": k.Name,
					"value":    value,
				})
			}
			return inv.RenderList(records)
		},
	}
}
