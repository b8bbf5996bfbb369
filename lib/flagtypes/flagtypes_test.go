// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package flagtypes

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		err  bool
	}{
		{"15d", 15 * 24 * time.Hour, false},
		{"1h2m", time.Hour + 2*time.Minute, false},
		{"1d12h", 36 * time.Hour, false},
		{"90s", 90 * time.Second, false},
		{"", 0, true},
		{"d", 0, true},
		{"15x", 0, true},
	}
	for _, c := range cases {
		got, err := ParseDuration(c.in)
		if c.err {
			if err == nil {
				t.Errorf("ParseDuration(%q) succeeded, want error", c.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDuration(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDuration(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestByteSize(t *testing.T) {
	var b ByteSize
	if err := b.Set("100GB"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if b.Bytes() != 100_000_000_000 {
		t.Errorf("Bytes = %d, want 100000000000", b.Bytes())
	}
	if err := b.Set("1GiB"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if b.Bytes() != 1<<30 {
		t.Errorf("Bytes = %d, want %d", b.Bytes(), 1<<30)
	}
	if err := b.Set("fish"); err == nil {
		t.Error("Set(fish) succeeded")
	}
}

func TestKeyValueMergesAndOverrides(t *testing.T) {
	var kv KeyValue
	if err := kv.Set("env=prod,team=infra"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := kv.Set("env=staging"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	want := map[string]string{"env": "staging", "team": "infra"}
	if !reflect.DeepEqual(kv.Map(), want) {
		t.Errorf("Map = %v, want %v", kv.Map(), want)
	}
	if kv.String() != "env=staging,team=infra" {
		t.Errorf("String = %q", kv.String())
	}
	if err := kv.Set("=oops"); err == nil {
		t.Error("Set(=oops) succeeded")
	}
}

func TestStringListAccumulates(t *testing.T) {
	var l StringList
	if err := l.Set("a, b"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := l.Set("c"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !reflect.DeepEqual(l.Values(), []string{"a", "b", "c"}) {
		t.Errorf("Values = %v", l.Values())
	}
}

func TestEnum(t *testing.T) {
	e := NewEnum([]string{"PREMIUM", "STANDARD"}, "PREMIUM")
	if e.IsSet() {
		t.Error("default counts as set")
	}
	if err := e.Set("standard"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if e.Value() != "STANDARD" {
		t.Errorf("Value = %q, want canonical STANDARD", e.Value())
	}
	if err := e.Set("basic"); err == nil {
		t.Error("Set(basic) succeeded")
	}
}

func TestFileContents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "startup.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var f FileContents
	if err := f.Set(path); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if string(f.Contents()) != "#!/bin/sh\n" {
		t.Errorf("Contents = %q", f.Contents())
	}
	if err := f.Set(filepath.Join(dir, "missing")); err == nil {
		t.Error("Set(missing) succeeded")
	}
}

func TestFileContentsDashReadsStdin(t *testing.T) {
	orig := readAllStdin
	readAllStdin = func() ([]byte, error) { return []byte("from stdin\n"), nil }
	defer func() { readAllStdin = orig }()

	var f FileContents
	if err := f.Set("-"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if f.Contents() != "from stdin\n" {
		t.Errorf("Contents = %q", f.Contents())
	}
	if f.String() != "-" {
		t.Errorf("String = %q, want -", f.String())
	}
}
