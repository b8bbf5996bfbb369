// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"net/http"

	"github.com/spf13/pflag"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/lib/batch"
	"github.com/strato-cloud/strato/lib/resource"
	"github.com/strato-cloud/strato/lib/transport"
)

func sqlCommand() *cli.Command {
	return &cli.Command{
		Name:    "sql",
		Summary: "Manage managed database resources.",
		Subcommands: []*cli.Command{
			sqlDatabasesCommand(),
		},
	}
}

func sqlDatabasesCommand() *cli.Command {
	return &cli.Command{
		Name:    "databases",
		Summary: "Manage databases within a database instance.",
		Flags: func(fs *pflag.FlagSet) {
			fs.String("instance", "", "Database instance to operate on.")
		},
		Groups: []cli.Group{
			{Kind: cli.GroupRequired, Flags: []string{"instance"}},
		},
		Subcommands: []*cli.Command{
			sqlDatabasesList(),
			sqlDatabasesClone(cli.TrackGA),
			sqlDatabasesClone(cli.TrackBeta),
		},
	}
}

func sqlDatabasesList() *cli.Command {
	return &cli.Command{
		Name:          "list",
		Summary:       "List the databases of an instance.",
		Usage:         "strato sql databases list --instance=INSTANCE [flags]",
		DefaultFormat: "table(name, charset, collation)",
		Run: func(inv *cli.Invocation) error {
			project, err := activeProject(inv)
			if err != nil {
				return err
			}
			instance, _ := inv.Flags.GetString("instance")
			pageSize, targets, err := scopedTargets(inv, "sql.databases",
				[]batch.Scope{{Kind: batch.ScopeGlobal}},
				func(batch.Scope) map[string]string {
					return map[string]string{"project": project, "instance": instance}
				})
			if err != nil {
				return err
			}
			records, err := fanList(inv, pageSize, targets)
			if err != nil {
				return err
			}
			return inv.RenderList(records)
		},
	}
}

// sqlDatabasesClone builds the clone verb for a track. The beta
// variant additionally accepts binary-log coordinates for
// point-in-time clones.
func sqlDatabasesClone(track cli.Track) *cli.Command {
	cmd := &cli.Command{
		Name:    "clone",
		Track:   track,
		Summary: "Clone a database within its instance.",
		Usage:   "strato sql databases clone SOURCE DESTINATION --instance=INSTANCE [flags]",
		Examples: []cli.Example{{
			Description: "Clone the orders database",
			Command:     "strato sql databases clone orders orders-copy --instance=primary",
		}},
		Run: func(inv *cli.Invocation) error {
			if err := requireArgs(inv, 2, "the source and destination database names"); err != nil {
				return err
			}
			return runDatabaseClone(inv)
		},
	}
	if track == cli.TrackBeta {
		cmd.Flags = func(fs *pflag.FlagSet) {
			fs.String("bin-log-file-name", "", "Binary log file to clone up to.")
			fs.Int64("bin-log-position", 0, "Position within the binary log file.")
		}
		cmd.Validators = []cli.Validator{
			cli.RequireTogether("bin-log-file-name", "bin-log-position"),
		}
	}
	return cmd
}

func runDatabaseClone(inv *cli.Invocation) error {
	source, destination := inv.Args[0], inv.Args[1]
	project, err := activeProject(inv)
	if err != nil {
		return err
	}
	instance, _ := inv.Flags.GetString("instance")

	databases, err := inv.Env.Registry.Lookup("sql.databases")
	if err != nil {
		return err
	}
	ref, err := resource.New(databases, map[string]string{
		"project":  project,
		"instance": instance,
		"database": source,
	})
	if err != nil {
		return err
	}
	link, err := ref.SelfLink()
	if err != nil {
		return err
	}

	cloneContext := map[string]any{"destinationDbName": destination}
	if inv.Track == cli.TrackBeta {
		if file, _ := inv.Flags.GetString("bin-log-file-name"); file != "" {
			position, _ := inv.Flags.GetInt64("bin-log-position")
			cloneContext["binLogCoordinates"] = map[string]any{
				"binLogFileName": file,
				"binLogPosition": position,
			}
		}
	}

	resp, err := inv.Env.Client.Do(inv.Env.Context(), &transport.Request{
		Method: http.MethodPost,
		URL:    link + "/clone",
		Body:   map[string]any{"cloneContext": cloneContext},
		Label:  "database " + source,
	})
	if err != nil {
		return err
	}
	p, err := decodeOperation(resp, "database "+destination)
	if err != nil {
		return err
	}
	return runOperation(inv, "Cloning", p, true)
}
