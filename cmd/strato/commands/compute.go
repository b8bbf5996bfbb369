// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/pflag"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/lib/batch"
	"github.com/strato-cloud/strato/lib/flagtypes"
	"github.com/strato-cloud/strato/lib/resource"
	"github.com/strato-cloud/strato/lib/transport"
)

func computeCommand() *cli.Command {
	return &cli.Command{
		Name:    "compute",
		Summary: "Manage compute resources.",
		Subcommands: []*cli.Command{
			instancesCommand(),
			forwardingRulesCommand(),
			machineTypesCommand(),
			zonesCommand(),
			regionsCommand(),
		},
	}
}

// instanceArg resolves instance names against the zonal instances
// collection. Missing attributes fail with the chain hints.
func instanceArg() *cli.ResourceArg {
	return &cli.ResourceArg{
		Name: "instance",
		Types: []cli.TypeCandidate{{
			Collection: "compute.instances",
			Attributes: map[string][]resource.Fallthrough{
				"project": cli.ProjectFallthroughs(),
				"zone":    zoneFallthroughs(),
			},
		}},
	}
}

func instancesCommand() *cli.Command {
	return &cli.Command{
		Name:    "instances",
		Summary: "Manage virtual machine instances.",
		Subcommands: []*cli.Command{
			instancesList(),
			instancesDescribe(),
			instancesCreate(),
			instancesDelete(),
		},
	}
}

func instancesList() *cli.Command {
	return &cli.Command{
		Name:          "list",
		Summary:       "List virtual machine instances.",
		Usage:         "strato compute instances list [--zones=ZONE,...] [flags]",
		DefaultFormat: "table(name, zone.basename(), machineType.basename(), status)",
		Flags: func(fs *pflag.FlagSet) {
			fs.StringSlice("zones", nil, "Zones to list; all zones of the project when omitted.")
		},
		Run: func(inv *cli.Invocation) error {
			project, err := activeProject(inv)
			if err != nil {
				return err
			}
			zones, _ := inv.Flags.GetStringSlice("zones")
			if len(zones) == 0 {
				zones, err = scopeNames(inv, "compute.zones", project)
				if err != nil {
					return fmt.Errorf("listing zones: %w", err)
				}
			}
			scopes := make([]batch.Scope, len(zones))
			for i, z := range zones {
				scopes[i] = batch.Scope{Kind: batch.ScopeZones, Name: z}
			}
			pageSize, targets, err := scopedTargets(inv, "compute.instances", scopes,
				func(s batch.Scope) map[string]string {
					return map[string]string{"project": project, "zone": s.Name}
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

func instancesDescribe() *cli.Command {
	return &cli.Command{
		Name:    "describe",
		Summary: "Show one instance's full state.",
		Usage:   "strato compute instances describe NAME [--zone=ZONE] [flags]",
		Flags: func(fs *pflag.FlagSet) {
			fs.String("zone", "", "Zone of the instance.")
		},
		Run: func(inv *cli.Invocation) error {
			if err := requireArgs(inv, 1, "the instance name"); err != nil {
				return err
			}
			ref, err := instanceArg().Resolve(inv, inv.Args[0])
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

func instancesCreate() *cli.Command {
	var labels flagtypes.KeyValue
	var bootDiskSize flagtypes.ByteSize
	var startupScript flagtypes.FileContents
	return &cli.Command{
		Name:          "create",
		Summary:       "Create one or more instances.",
		Usage:         "strato compute instances create NAME [NAME ...] --zone=ZONE [flags]",
		DefaultFormat: "table(name, zone.basename(), machineType.basename(), status)",
		Flags: func(fs *pflag.FlagSet) {
			fs.String("zone", "", "Zone to create the instances in.")
			fs.String("machine-type", "m1-small", "Machine type for the new instances.")
			fs.String("image", "", "Boot image for the new instances.")
			fs.Var(&labels, "labels", "Labels to attach, as key=value pairs.")
			fs.Var(&bootDiskSize, "boot-disk-size", `Boot disk size, e.g. "100GB".`)
			fs.Var(&startupScript, "startup-script", "File whose contents run on first boot.")
		},
		Examples: []cli.Example{{
			Description: "Create two instances in one zone",
			Command:     "strato compute instances create fish chips --zone=atlantic-b",
		}},
		Run: func(inv *cli.Invocation) error {
			return runInstancesCreate(inv, &labels, &bootDiskSize, &startupScript)
		},
	}
}

func runInstancesCreate(inv *cli.Invocation, labels *flagtypes.KeyValue, bootDiskSize *flagtypes.ByteSize, startupScript *flagtypes.FileContents) error {
	if len(inv.Args) == 0 {
		return cli.Argumentf("create requires at least one instance name")
	}
	arg := instanceArg()
	refs := make([]*resource.Reference, len(inv.Args))
	for i, name := range inv.Args {
		ref, err := arg.Resolve(inv, name)
		if err != nil {
			return err
		}
		refs[i] = ref
	}

	machineType, _ := inv.Flags.GetString("machine-type")
	image, _ := inv.Flags.GetString("image")
	machineTypes, err := inv.Env.Registry.Lookup("compute.machineTypes")
	if err != nil {
		return err
	}

	requests := make([]*transport.Request, len(refs))
	for i, ref := range refs {
		machineTypeURL, err := machineTypes.URI(map[string]string{
			"project":     ref.Param("project"),
			"zone":        ref.Param("zone"),
			"machineType": machineType,
		})
		if err != nil {
			return err
		}
		endpoint, err := ref.Collection().ListURL(ref.Params())
		if err != nil {
			return err
		}
		body := map[string]any{
			"name":        ref.Name(),
			"machineType": machineTypeURL,
		}
		if image != "" {
			body["image"] = image
		}
		if labels.IsSet() {
			body["labels"] = labels.Map()
		}
		if bootDiskSize.IsSet() {
			// The API takes whole gigabytes.
			body["diskSizeGb"] = bootDiskSize.Bytes() >> 30
		}
		if startupScript.IsSet() {
			body["metadata"] = map[string]any{
				"items": []any{map[string]any{
					"key":   "startup-script",
					"value": startupScript.Contents(),
				}},
			}
		}
		requests[i] = &transport.Request{
			Method: http.MethodPost,
			URL:    endpoint,
			Body:   body,
			Label:  "instance " + ref.Name(),
		}
	}

	var sink batch.Errors
	responses := batch.MakeRequests(inv.Env.Context(), inv.Env.Client, requests, 0, &sink)
	var pending []*pendingOp
	for i, resp := range responses {
		if resp == nil {
			continue
		}
		p, err := decodeOperation(resp, requests[i].Label)
		if err != nil {
			sink.Add(err)
			continue
		}
		pending = append(pending, p)
	}
	var failures []error
	for _, submitErr := range sink.All() {
		failures = append(failures, hintMachineType(submitErr, refs[0].Param("zone")))
	}

	if inv.Globals.Async {
		if len(pending) > 0 {
			if err := renderPending(inv, pending); err != nil {
				return err
			}
		}
		return finishBatch(len(refs), failures)
	}

	finals, waitFailures := waitAll(inv, "Creating", pending, 0)
	failures = append(failures, waitFailures...)
	var created []map[string]any
	for _, op := range finals {
		if op == nil || !op.Done() || op.Failed() || op.TargetLink == "" {
			continue
		}
		record, err := fetchURL(inv, op.TargetLink, "created instance")
		if err != nil {
			failures = append(failures, err)
			continue
		}
		created = append(created, record)
	}
	if len(created) > 0 {
		if err := inv.RenderList(created); err != nil {
			return err
		}
	}
	return finishBatch(len(refs), failures)
}

// hintMachineType appends the follow-up verb to machine-type
// rejections so the user can discover valid types.
func hintMachineType(err error, zone string) error {
	var httpErr *transport.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 400 {
		return err
	}
	if !strings.Contains(strings.ToLower(httpErr.Message), "machine type") {
		return err
	}
	return fmt.Errorf("%w\nUse 'strato compute machine-types list --zones %s' to see available machine types.", err, zone)
}

func instancesDelete() *cli.Command {
	return &cli.Command{
		Name:    "delete",
		Summary: "Delete one or more instances.",
		Usage:   "strato compute instances delete NAME [NAME ...] [--zone=ZONE] [flags]",
		Flags: func(fs *pflag.FlagSet) {
			fs.String("zone", "", "Zone of the instances.")
		},
		Run: func(inv *cli.Invocation) error {
			if len(inv.Args) == 0 {
				return cli.Argumentf("delete requires at least one instance name")
			}
			arg := instanceArg()
			refs := make([]*resource.Reference, len(inv.Args))
			for i, name := range inv.Args {
				ref, err := arg.Resolve(inv, name)
				if err != nil {
					return err
				}
				refs[i] = ref
			}

			if inv.Env.Console != nil {
				ok, err := inv.Env.Console.PromptYesNo(fmt.Sprintf(
					"The following instances will be deleted:\n%s\nDo you want to continue?",
					joinLines(relativeNames(refs))), true)
				if err != nil {
					return err
				}
				if !ok {
					return errors.New("deletion aborted by user")
				}
			}

			requests := make([]*transport.Request, len(refs))
			for i, ref := range refs {
				link, err := ref.SelfLink()
				if err != nil {
					return err
				}
				requests[i] = &transport.Request{
					Method: http.MethodDelete,
					URL:    link,
					Label:  "instance " + ref.Name(),
				}
			}
			var sink batch.Errors
			responses := batch.MakeRequests(inv.Env.Context(), inv.Env.Client, requests, 0, &sink)
			var pending []*pendingOp
			for i, resp := range responses {
				if resp == nil {
					continue
				}
				p, err := decodeOperation(resp, requests[i].Label)
				if err != nil {
					sink.Add(err)
					continue
				}
				pending = append(pending, p)
			}
			failures := sink.All()

			if inv.Globals.Async {
				if len(pending) > 0 {
					if err := renderPending(inv, pending); err != nil {
						return err
					}
				}
				return finishBatch(len(refs), failures)
			}

			finals, waitFailures := waitAll(inv, "Deleting", pending, 0)
			failures = append(failures, waitFailures...)
			if inv.Env.Console != nil {
				for _, op := range finals {
					if op != nil && op.Done() && !op.Failed() && op.TargetLink != "" {
						fmt.Fprintf(inv.Env.Console.Out, "Deleted [%s].\n", op.TargetLink)
					}
				}
			}
			return finishBatch(len(refs), failures)
		},
	}
}

// forwardingRuleArg resolves names that may live in the regional or
// the global forwarding-rule collection. When no source supplies a
// region, scope inference offers global plus the project's regions.
func forwardingRuleArg() *cli.ResourceArg {
	return &cli.ResourceArg{
		Name: "forwarding rule",
		Types: []cli.TypeCandidate{
			{
				Collection: "compute.forwardingRules",
				Attributes: map[string][]resource.Fallthrough{
					"project": cli.ProjectFallthroughs(),
					"region":  regionFallthroughs(),
				},
			},
			{
				Collection: "compute.globalForwardingRules",
				Attributes: map[string][]resource.Fallthrough{
					"project": cli.ProjectFallthroughs(),
				},
			},
		},
		ScopeParams:  []string{"region"},
		ScopeOptions: forwardingRuleScopes,
	}
}

func forwardingRuleScopes(inv *cli.Invocation) ([]cli.ScopeOption, error) {
	project, err := activeProject(inv)
	if err != nil {
		return nil, err
	}
	regions, err := scopeNames(inv, "compute.regions", project)
	if err != nil {
		return nil, err
	}
	options := []cli.ScopeOption{{Label: "global", Type: "compute.globalForwardingRules"}}
	for _, r := range regions {
		options = append(options, cli.ScopeOption{
			Label:  "region: " + r,
			Type:   "compute.forwardingRules",
			Params: map[string]string{"region": r},
		})
	}
	return options, nil
}

var globalForwardingScope = cli.ScopeOption{Label: "global", Type: "compute.globalForwardingRules"}

func forwardingRulesCommand() *cli.Command {
	return &cli.Command{
		Name:    "forwarding-rules",
		Summary: "Manage regional and global forwarding rules.",
		Subcommands: []*cli.Command{
			forwardingRulesList(),
			forwardingRulesDescribe(),
			forwardingRulesCreate(),
		},
	}
}

func forwardingRulesList() *cli.Command {
	return &cli.Command{
		Name:          "list",
		Summary:       "List forwarding rules across regions and the global scope.",
		Usage:         "strato compute forwarding-rules list [--regions=REGION,...] [--global] [flags]",
		DefaultFormat: "table(name, region.basename(), IPAddress, target.basename())",
		Flags: func(fs *pflag.FlagSet) {
			fs.StringSlice("regions", nil, "Regions to list; all regions when omitted.")
			fs.Bool("global", false, "Include (or with no --regions, restrict to) the global scope.")
		},
		Run: func(inv *cli.Invocation) error {
			project, err := activeProject(inv)
			if err != nil {
				return err
			}
			global, _ := inv.Flags.GetBool("global")
			regions, _ := inv.Flags.GetStringSlice("regions")
			includeGlobal := global
			switch {
			case global && len(regions) == 0:
				// Only the global scope.
			case len(regions) > 0:
				// Explicit regions, plus global when asked.
			default:
				regions, err = scopeNames(inv, "compute.regions", project)
				if err != nil {
					return fmt.Errorf("listing regions: %w", err)
				}
				includeGlobal = true
			}

			regional, err := inv.Env.Registry.Lookup("compute.forwardingRules")
			if err != nil {
				return err
			}
			var targets []listTarget
			if includeGlobal {
				globalCol, err := inv.Env.Registry.Lookup("compute.globalForwardingRules")
				if err != nil {
					return err
				}
				u, err := globalCol.ListURL(map[string]string{"project": project})
				if err != nil {
					return err
				}
				targets = append(targets, listTarget{scope: batch.Scope{Kind: batch.ScopeGlobal}, url: u})
			}
			for _, r := range regions {
				u, err := regional.ListURL(map[string]string{"project": project, "region": r})
				if err != nil {
					return err
				}
				targets = append(targets, listTarget{
					scope: batch.Scope{Kind: batch.ScopeRegions, Name: r},
					url:   u,
				})
			}
			records, err := fanList(inv, regional.MaxPageSize, targets)
			if err != nil {
				return err
			}
			return inv.RenderList(records)
		},
	}
}

func forwardingRulesDescribe() *cli.Command {
	return &cli.Command{
		Name:    "describe",
		Summary: "Show one forwarding rule's full state.",
		Usage:   "strato compute forwarding-rules describe NAME [--region=REGION | --global] [flags]",
		Flags: func(fs *pflag.FlagSet) {
			fs.String("region", "", "Region of the forwarding rule.")
			fs.Bool("global", false, "The forwarding rule is global.")
		},
		Groups: []cli.Group{
			{Kind: cli.GroupExclusive, Flags: []string{"region", "global"}},
		},
		Run: func(inv *cli.Invocation) error {
			if err := requireArgs(inv, 1, "the forwarding rule name"); err != nil {
				return err
			}
			arg := forwardingRuleArg()
			if global, _ := inv.Flags.GetBool("global"); global {
				scope := globalForwardingScope
				arg.DefaultScope = &scope
			}
			ref, err := arg.Resolve(inv, inv.Args[0])
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

func forwardingRulesCreate() *cli.Command {
	return &cli.Command{
		Name:    "create",
		Summary: "Create a forwarding rule.",
		Usage:   "strato compute forwarding-rules create NAME (--region=REGION | --global) [flags]",
		Flags: func(fs *pflag.FlagSet) {
			fs.String("region", "", "Region to create the forwarding rule in.")
			fs.Bool("global", false, "Create a global forwarding rule.")
			fs.String("target", "", "Target the rule forwards traffic to.")
			fs.String("ip-protocol", "TCP", "IP protocol the rule matches.")
		},
		Groups: []cli.Group{
			{Kind: cli.GroupExclusive, Flags: []string{"region", "global"}},
		},
		Run: func(inv *cli.Invocation) error {
			if err := requireArgs(inv, 1, "the forwarding rule name"); err != nil {
				return err
			}
			arg := forwardingRuleArg()
			if global, _ := inv.Flags.GetBool("global"); global {
				scope := globalForwardingScope
				arg.DefaultScope = &scope
			}
			ref, err := arg.Resolve(inv, inv.Args[0])
			if err != nil {
				return err
			}
			endpoint, err := ref.Collection().ListURL(ref.Params())
			if err != nil {
				return err
			}
			target, _ := inv.Flags.GetString("target")
			protocol, _ := inv.Flags.GetString("ip-protocol")
			body := map[string]any{"name": ref.Name(), "IPProtocol": protocol}
			if target != "" {
				body["target"] = target
			}
			resp, err := inv.Env.Client.Do(inv.Env.Context(), &transport.Request{
				Method: http.MethodPost,
				URL:    endpoint,
				Body:   body,
				Label:  "forwarding rule " + ref.Name(),
			})
			if err != nil {
				return err
			}
			p, err := decodeOperation(resp, "forwarding rule "+ref.Name())
			if err != nil {
				return err
			}
			return runOperation(inv, "Creating", p, true)
		},
	}
}

func machineTypesCommand() *cli.Command {
	return &cli.Command{
		Name:    "machine-types",
		Summary: "List the machine types offered per zone.",
		Subcommands: []*cli.Command{{
			Name:          "list",
			Summary:       "List machine types.",
			Usage:         "strato compute machine-types list [--zones=ZONE,...] [flags]",
			DefaultFormat: "table(name, zone.basename(), guestCpus, memoryMb)",
			Flags: func(fs *pflag.FlagSet) {
				fs.StringSlice("zones", nil, "Zones to list; all zones of the project when omitted.")
			},
			Run: func(inv *cli.Invocation) error {
				project, err := activeProject(inv)
				if err != nil {
					return err
				}
				zones, _ := inv.Flags.GetStringSlice("zones")
				if len(zones) == 0 {
					zones, err = scopeNames(inv, "compute.zones", project)
					if err != nil {
						return fmt.Errorf("listing zones: %w", err)
					}
				}
				scopes := make([]batch.Scope, len(zones))
				for i, z := range zones {
					scopes[i] = batch.Scope{Kind: batch.ScopeZones, Name: z}
				}
				pageSize, targets, err := scopedTargets(inv, "compute.machineTypes", scopes,
					func(s batch.Scope) map[string]string {
						return map[string]string{"project": project, "zone": s.Name}
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
		}},
	}
}

func zonesCommand() *cli.Command {
	return &cli.Command{
		Name:    "zones",
		Summary: "List the zones of a project.",
		Subcommands: []*cli.Command{{
			Name:          "list",
			Summary:       "List zones.",
			DefaultFormat: "table(name, region.basename(), status)",
			Run: func(inv *cli.Invocation) error {
				return runPlacementList(inv, "compute.zones")
			},
		}},
	}
}

func regionsCommand() *cli.Command {
	return &cli.Command{
		Name:    "regions",
		Summary: "List the regions of a project.",
		Subcommands: []*cli.Command{{
			Name:          "list",
			Summary:       "List regions.",
			DefaultFormat: "table(name, status)",
			Run: func(inv *cli.Invocation) error {
				return runPlacementList(inv, "compute.regions")
			},
		}},
	}
}

// runPlacementList lists a project-wide placement collection.
func runPlacementList(inv *cli.Invocation, collectionName string) error {
	project, err := activeProject(inv)
	if err != nil {
		return err
	}
	pageSize, targets, err := scopedTargets(inv, collectionName,
		[]batch.Scope{{Kind: batch.ScopeGlobal}},
		func(batch.Scope) map[string]string {
			return map[string]string{"project": project}
		})
	if err != nil {
		return err
	}
	records, err := fanList(inv, pageSize, targets)
	if err != nil {
		return err
	}
	return inv.RenderList(records)
}
