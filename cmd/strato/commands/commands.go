// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands assembles the strato command tree: the compute and
// sql surface groups, the operations verbs, and the configuration
// views. Each verb resolves its resource arguments through the shared
// registry, talks to the platform through the environment's transport,
// and hands results to the invocation's output pipeline.
package commands

import (
	"github.com/strato-cloud/strato/cmd/strato/cli"
)

// Root builds the strato command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name:        "strato",
		Summary:     "Unified command-line interface for the Strato cloud platform.",
		Description: "strato manages Strato cloud platform resources: list, describe,\ncreate, and delete them, and follow the long-running operations\nmutations produce.",
		Subcommands: []*cli.Command{
			computeCommand(),
			sqlCommand(),
			operationsCommand(),
			configCommand(),
		},
	}
}
