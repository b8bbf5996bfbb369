// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package resource

import (
	"fmt"
	"strings"
)

// UnderSpecifiedError reports a reference that could not be fully
// resolved. The message names the missing attributes; Hints, when
// present, name the flags that would supply them.
type UnderSpecifiedError struct {
	Collection string
	Missing    []string
	Hints      []string
}

func (e *UnderSpecifiedError) Error() string {
	msg := fmt.Sprintf("%s resource is underspecified: missing [%s]",
		e.Collection, strings.Join(e.Missing, ", "))
	if len(e.Hints) > 0 {
		msg += "\n" + strings.Join(e.Hints, "\n")
	}
	return msg
}

// ExitCode maps the error to the argument-error exit status.
func (e *UnderSpecifiedError) ExitCode() int { return 2 }

// ConflictingTypesError reports a multi-type resource whose candidate
// types were each pinned down by actively supplied, mutually exclusive
// attributes.
type ConflictingTypesError struct {
	Attributes []string
}

func (e *ConflictingTypesError) Error() string {
	return fmt.Sprintf("conflicting resource attributes given: [%s]; supply only one",
		strings.Join(e.Attributes, ", "))
}

// ExitCode maps the error to the argument-error exit status.
func (e *ConflictingTypesError) ExitCode() int { return 2 }
