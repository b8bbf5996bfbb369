// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package flagtypes

import (
	"fmt"
	"io"
	"os"
)

// FileContents is a pflag.Value taking a file path and capturing the
// file's contents at parse time: --startup-script boot.sh. Parse-time
// reads surface missing files as argument errors, before any request
// is sent. "-" reads stdin.
type FileContents struct {
	path     string
	contents string
	set      bool
}

// Set reads the named file.
func (f *FileContents) Set(path string) error {
	if path == "" {
		return fmt.Errorf("empty file path")
	}
	var data []byte
	var err error
	if path == "-" {
		data, err = readAllStdin()
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	f.path = path
	f.contents = string(data)
	f.set = true
	return nil
}

// String returns the file path, not the contents.
func (f *FileContents) String() string { return f.path }

// Type names the value for help output.
func (f *FileContents) Type() string { return "file" }

// Contents returns the captured file contents.
func (f *FileContents) Contents() string { return f.contents }

// IsSet reports whether the flag was supplied.
func (f *FileContents) IsSet() bool { return f.set }

// readAllStdin is a variable so tests can substitute input.
var readAllStdin = func() ([]byte, error) {
	return io.ReadAll(os.Stdin)
}
