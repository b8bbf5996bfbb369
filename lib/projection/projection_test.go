// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package projection

import (
	"reflect"
	"strings"
	"testing"
)

func mustParse(t *testing.T, expr string) *Projection {
	t.Helper()
	proj, err := Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q): %v", expr, err)
	}
	return proj
}

func TestParseLabels(t *testing.T) {
	proj := mustParse(t, "(name, machineType.basename(), networkInterfaces[0].natIP)")
	want := []string{"NAME", "MACHINE_TYPE", "NAT_IP"}
	if got := proj.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("Labels = %v, want %v", got, want)
	}
}

func TestParseNodeAttributes(t *testing.T) {
	proj := mustParse(t, "(machineType.basename():label=TYPE:align=right, name:wrap)")
	if proj.Nodes[0].Label != "TYPE" {
		t.Errorf("label = %q", proj.Nodes[0].Label)
	}
	if proj.Nodes[0].Align != AlignRight {
		t.Errorf("align = %v", proj.Nodes[0].Align)
	}
	if !proj.Nodes[1].Wrap {
		t.Error("wrap attribute not set")
	}
}

func TestParseProjectionAttributes(t *testing.T) {
	proj := mustParse(t, `[no-pad, null="(unset)", private](name)`)
	if !proj.Attrs.NoPad || !proj.Attrs.Private {
		t.Errorf("attrs = %+v", proj.Attrs)
	}
	if proj.Attrs.Null != "(unset)" {
		t.Errorf("null = %q", proj.Attrs.Null)
	}
}

func TestParseErrors(t *testing.T) {
	for _, expr := range []string{
		"",
		"(name",
		"(name.nosuchtransform())",
		"(name:nosuchattr=1)",
		"[nosuchprojattr](name)",
		"(name) trailing",
		`(name.format("unterminated)`,
	} {
		if _, err := Parse(expr); err == nil {
			t.Errorf("Parse(%q) succeeded", expr)
		}
	}
}

func TestEvaluateTableScenario(t *testing.T) {
	proj := mustParse(t, "(path.basename(), list.list(), size.size(-))")
	records := []map[string]any{
		{"path": "/dir/base.suffix", "size": float64(1099511753728), "list": []any{1.0, 2.0, 3.0, 4.0}},
		{"path": "", "size": float64(0), "list": []any{1.0, 2.0}},
	}
	want := [][]string{
		{"base.suffix", "1,2,3,4", "1.0 TiB"},
		{"", "1,2", "-"},
	}
	for i, record := range records {
		if got := proj.Row(record); !reflect.DeepEqual(got, want[i]) {
			t.Errorf("Row(%d) = %v, want %v", i, got, want[i])
		}
	}
}

func TestEvaluatePaths(t *testing.T) {
	record := map[string]any{
		"disks": []any{
			map[string]any{"device": "sda", "sizeGb": 10.0},
			map[string]any{"device": "sdb", "sizeGb": 20.0},
		},
		"meta": map[string]any{"zone": "atlantic-a"},
	}
	tests := []struct {
		expr string
		want any
	}{
		{"(disks[0].device)", "sda"},
		{"(disks[1].sizeGb)", 20.0},
		{"(disks[*].device)", []any{"sda", "sdb"}},
		{"(disks[].device)", []any{"sda", "sdb"}},
		{"(meta.zone)", "atlantic-a"},
		{"(meta.missing)", nil},
		{"(disks[5].device)", nil},
		{"(meta[0])", nil},
	}
	for _, tt := range tests {
		got := mustParse(t, tt.expr).Evaluate(record)[0]
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s = %v, want %v", tt.expr, got, tt.want)
		}
	}
}

func TestEvaluationIsPure(t *testing.T) {
	proj := mustParse(t, "(disks[*].device.map().len())")
	record := map[string]any{"disks": []any{
		map[string]any{"device": "sda"},
		map[string]any{"device": "nvme0"},
	}}
	first := proj.Row(record)
	second := proj.Row(record)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("repeated evaluation diverged: %v then %v", first, second)
	}
	if !reflect.DeepEqual(first, []string{"3,5"}) {
		t.Errorf("Row = %v", first)
	}
}

func TestTransforms(t *testing.T) {
	tests := []struct {
		name string
		expr string
		rec  map[string]any
		want any
	}{
		{"basename strips dirs", "(u.basename())", map[string]any{"u": "projects/p/zones/z"}, "z"},
		{"basename trailing slash", "(u.basename())", map[string]any{"u": "a/b/"}, "b"},
		{"list custom separator", `(l.list(separator=";"))`, map[string]any{"l": []any{"a", "b"}}, "a;b"},
		{"list scalar passthrough", "(l.list())", map[string]any{"l": "x"}, "x"},
		{"size auto", "(s.size())", map[string]any{"s": 2048.0}, "2.0 KiB"},
		{"size zero auto", "(s.size())", map[string]any{"s": 0.0}, "0 B"},
		{"size undefined dash", "(s.size(-))", map[string]any{}, "-"},
		{"yesno literal", "(b.yesno(Y,N))", map[string]any{"b": true}, "Y"},
		{"yesno falsy default", "(b.yesno(Y))", map[string]any{"b": false}, ""},
		{"yesno truthy passthrough", "(b.yesno())", map[string]any{"b": "up"}, "up"},
		{"len string", "(s.len())", map[string]any{"s": "abcd"}, 4},
		{"len list", "(s.len())", map[string]any{"s": []any{1.0, 2.0}}, 2},
		{"len undefined", "(s.len())", map[string]any{}, 0},
		{"iso", "(t.iso())", map[string]any{"t": "2026-08-28T10:00:00.500Z"}, "2026-08-28T10:00:00Z"},
		{"iso non-time passthrough", "(t.iso())", map[string]any{"t": "soon"}, "soon"},
		{
			"format positional",
			`(r.format("{0}:{1}", [0], [1]))`,
			map[string]any{"r": []any{"host", 8080.0}},
			"host:8080",
		},
		{
			"format keyed",
			`(r.format("{0}/{1}", zone, name))`,
			map[string]any{"r": map[string]any{"zone": "z", "name": "n"}},
			"z/n",
		},
		{
			"resolution",
			"(r.resolution())",
			map[string]any{"r": map[string]any{"width": 1920.0, "height": 1080.0}},
			"1920 x 1080",
		},
		{
			"resolution transpose",
			"(r.resolution(unknown, 1))",
			map[string]any{"r": map[string]any{"x": 3.0, "y": 4.0}},
			"4 x 3",
		},
		{"resolution undefined", "(r.resolution(none))", map[string]any{"r": "flat"}, "none"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mustParse(t, tt.expr).Evaluate(tt.rec)[0]
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Evaluate = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestColorTransform(t *testing.T) {
	proj := mustParse(t, "(status.color(red=DOWN, yellow=DEGRADED, green=UP))")

	got := proj.Evaluate(map[string]any{"status": "DOWN"})[0]
	styled, ok := got.(Styled)
	if !ok || styled.Color != "red" {
		t.Fatalf("Evaluate = %#v, want red Styled", got)
	}
	if String(styled) != "DOWN" {
		t.Errorf("String = %q", String(styled))
	}

	// UP is a substring of neither remaining pattern first; green wins.
	got = proj.Evaluate(map[string]any{"status": "UP"})[0]
	if styled, ok := got.(Styled); !ok || styled.Color != "green" {
		t.Errorf("Evaluate = %#v, want green Styled", got)
	}

	// No pattern match passes the value through unstyled.
	got = proj.Evaluate(map[string]any{"status": "UNKNOWN"})[0]
	if _, ok := got.(Styled); ok {
		t.Errorf("unmatched value was styled: %#v", got)
	}
}

func TestMapTransform(t *testing.T) {
	proj := mustParse(t, "(urls.map().basename())")
	record := map[string]any{"urls": []any{"a/b", "c/d"}}
	got := proj.Evaluate(record)[0]
	if !reflect.DeepEqual(got, []any{"b", "d"}) {
		t.Errorf("Evaluate = %#v", got)
	}

	proj = mustParse(t, "(grid.map(2).len())")
	record = map[string]any{"grid": []any{
		[]any{"ab", "c"},
		[]any{"defg"},
	}}
	got = proj.Evaluate(record)[0]
	want := []any{[]any{2, 1}, []any{4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Evaluate = %#v, want %#v", got, want)
	}
}

func TestAlwaysSetsFlag(t *testing.T) {
	proj := mustParse(t, "(status.always().color(red=FAIL))")
	if !proj.Nodes[0].Always {
		t.Error("always() did not mark the node")
	}
	if len(proj.Nodes[0].Transforms) != 1 {
		t.Errorf("Transforms = %v", proj.Nodes[0].Transforms)
	}
}

func TestRegisterDuplicatePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("duplicate Register did not panic")
		}
	}()
	Register("basename", transformBasename)
}

func TestDefaultLabelDerivation(t *testing.T) {
	tests := []struct{ expr, want string }{
		{"(name)", "NAME"},
		{"(machineType)", "MACHINE_TYPE"},
		{"(a.b.natIP)", "NAT_IP"},
		{"(disks[0].sizeGb)", "SIZE_GB"},
	}
	for _, tt := range tests {
		proj := mustParse(t, tt.expr)
		if got := proj.Nodes[0].Label; got != tt.want {
			t.Errorf("%s label = %q, want %q", tt.expr, got, tt.want)
		}
	}
}

func TestParseQuotedLiterals(t *testing.T) {
	proj := mustParse(t, `(name:label="IN USE", sep.list(separator=", "))`)
	if proj.Nodes[0].Label != "IN USE" {
		t.Errorf("label = %q", proj.Nodes[0].Label)
	}
	got := proj.Evaluate(map[string]any{"sep": []any{"a", "b"}})[1]
	if got != "a, b" {
		t.Errorf("list = %q", got)
	}
}

func TestStringFormatting(t *testing.T) {
	tests := []struct {
		v    any
		want string
	}{
		{nil, ""},
		{"s", "s"},
		{true, "true"},
		{42.0, "42"},
		{1.5, "1.5"},
		{[]any{1.0, "x"}, "1,x"},
	}
	for _, tt := range tests {
		if got := String(tt.v); got != tt.want {
			t.Errorf("String(%#v) = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestErrorMessagesNameOffsets(t *testing.T) {
	_, err := Parse("(name.bogus())")
	if err == nil || !strings.Contains(err.Error(), "bogus") {
		t.Errorf("err = %v", err)
	}
}
