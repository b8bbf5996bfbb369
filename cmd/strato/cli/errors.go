// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
)

// ArgumentError reports bad or conflicting command-line input: a flag
// that failed to parse, a violated group constraint, or a failed
// custom validation.
type ArgumentError struct {
	Msg string
}

func (e *ArgumentError) Error() string { return e.Msg }

// ExitCode maps argument problems to the argument-error exit status.
func (e *ArgumentError) ExitCode() int { return 2 }

// Argumentf builds an ArgumentError.
func Argumentf(format string, args ...any) error {
	return &ArgumentError{Msg: fmt.Sprintf(format, args...)}
}

// ExitError signals a non-zero exit code without printing an extra
// error message. A command returning ExitError has already written its
// own output.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. Main checks for this interface on
// returned errors to pick the process exit status.
func (e *ExitError) ExitCode() int {
	return e.Code
}

// CodeFor maps an error to a process exit code. Errors carrying an
// ExitCode method choose their own. A context cancellation that
// reached the dispatcher boundary untyped (an interrupted transport
// call, a cancelled batch) is a user cancellation. Anything else is
// the generic failure code.
func CodeFor(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return 1
}

// Silent reports whether the error has already produced its own
// user-visible output and main should not print it again.
func Silent(err error) bool {
	var exit *ExitError
	return errors.As(err, &exit)
}
