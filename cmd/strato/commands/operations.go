// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/lib/flagtypes"
	"github.com/strato-cloud/strato/lib/resource"
)

// operationCollections are the collections an operation URI may name.
var operationCollections = map[string]bool{
	"compute.zoneOperations":   true,
	"compute.regionOperations": true,
	"compute.globalOperations": true,
	"sql.operations":           true,
}

func operationsCommand() *cli.Command {
	return &cli.Command{
		Name:    "operations",
		Summary: "Inspect and wait on long-running operations.",
		Subcommands: []*cli.Command{
			operationsDescribe(),
			operationsWait(),
		},
	}
}

func operationFlags(fs *pflag.FlagSet) {
	fs.String("zone", "", "Zone of the operation.")
	fs.String("region", "", "Region of the operation.")
	fs.Bool("global", false, "The operation is global.")
}

var operationScopeGroup = cli.Group{
	Kind:  cli.GroupExclusive,
	Flags: []string{"zone", "region", "global"},
}

// operationRef turns the positional into a complete reference: a full
// self link is accepted as-is, a bare name is scoped by --zone,
// --region, or (the default) the global operations collection.
func operationRef(inv *cli.Invocation, name string) (*resource.Reference, error) {
	if strings.Contains(name, "://") {
		ref, err := resource.FromURI(inv.Env.Registry, name)
		if err != nil {
			return nil, err
		}
		if !operationCollections[ref.Collection().Name] {
			return nil, cli.Argumentf("%q is a %s resource, not an operation",
				name, ref.Collection().Name)
		}
		return ref, nil
	}

	project, err := activeProject(inv)
	if err != nil {
		return nil, err
	}
	zone, _ := inv.Flags.GetString("zone")
	region, _ := inv.Flags.GetString("region")

	params := map[string]string{"project": project, "operation": name}
	collectionName := "compute.globalOperations"
	switch {
	case zone != "":
		collectionName = "compute.zoneOperations"
		params["zone"] = zone
	case region != "":
		collectionName = "compute.regionOperations"
		params["region"] = region
	}
	col, err := inv.Env.Registry.Lookup(collectionName)
	if err != nil {
		return nil, err
	}
	return resource.New(col, params)
}

func operationsDescribe() *cli.Command {
	return &cli.Command{
		Name:    "describe",
		Summary: "Show an operation's current state.",
		Usage:   "strato operations describe OPERATION [--zone=ZONE | --region=REGION | --global] [flags]",
		Flags:   operationFlags,
		Groups:  []cli.Group{operationScopeGroup},
		Run: func(inv *cli.Invocation) error {
			if err := requireArgs(inv, 1, "the operation name or self link"); err != nil {
				return err
			}
			ref, err := operationRef(inv, inv.Args[0])
			if err != nil {
				return err
			}
			record, err := fetch(inv, ref)
			if err != nil {
				return err
			}
			return inv.RenderResult(record)
		},
	}
}

func operationsWait() *cli.Command {
	var timeout flagtypes.Duration
	return &cli.Command{
		Name:    "wait",
		Summary: "Poll an operation to completion, then show its target.",
		Usage:   "strato operations wait OPERATION [--zone=ZONE | --region=REGION | --global] [flags]",
		Flags: func(fs *pflag.FlagSet) {
			operationFlags(fs)
			fs.Var(&timeout, "timeout", `How long to wait before giving up, e.g. "90s" or "1h".`)
		},
		Groups: []cli.Group{operationScopeGroup},
		Run: func(inv *cli.Invocation) error {
			if err := requireArgs(inv, 1, "the operation name or self link"); err != nil {
				return err
			}
			ref, err := operationRef(inv, inv.Args[0])
			if err != nil {
				return err
			}
			link, err := ref.SelfLink()
			if err != nil {
				return err
			}
			op, err := operationGetter(inv)(inv.Env.Context(), link)
			if err != nil {
				return err
			}
			finals, failures := waitAll(inv, "Waiting for",
				[]*pendingOp{{op: op, label: "operation " + op.Name}}, timeout.Value())
			if len(failures) > 0 {
				return failures[0]
			}
			final := finals[0]
			if final.TargetLink != "" {
				record, err := fetchURL(inv, final.TargetLink, "operation target")
				if err != nil {
					return err
				}
				return inv.RenderResult(record)
			}
			return inv.RenderResult(opRecord(final))
		},
	}
}
