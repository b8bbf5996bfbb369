// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package batch

import (
	"fmt"
	"strings"
	"sync"
)

// Errors is the sink MakeRequests appends failures to. Safe for
// concurrent use. The zero value is ready.
type Errors struct {
	mu   sync.Mutex
	errs []error
}

// Add appends an error. Nil errors are ignored.
func (e *Errors) Add(err error) {
	if err == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.errs = append(e.errs, err)
}

// Empty reports whether no errors were collected.
func (e *Errors) Empty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.errs) == 0
}

// All returns the collected errors in collection order.
func (e *Errors) All() []error {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]error, len(e.errs))
	copy(out, e.errs)
	return out
}

// Aggregate folds the collected errors into a single error: nil when
// empty, the sole error when there is one, a *MultiError otherwise.
func (e *Errors) Aggregate() error {
	errs := e.All()
	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	default:
		return &MultiError{Errors: errs}
	}
}

// MultiError aggregates several failures into one error value.
type MultiError struct {
	Errors []error
}

func (e *MultiError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	lines := make([]string, 0, len(e.Errors)+1)
	lines = append(lines, fmt.Sprintf("%d errors:", len(e.Errors)))
	for _, err := range e.Errors {
		lines = append(lines, " - "+err.Error())
	}
	return strings.Join(lines, "\n")
}

// Unwrap exposes the aggregated errors to errors.Is and errors.As.
func (e *MultiError) Unwrap() []error { return e.Errors }

// PartialFailureError reports a batch that had both successes and
// failures. The verb decides whether to re-raise or tolerate it.
type PartialFailureError struct {
	Succeeded int
	Failed    int
	Cause     error
}

func (e *PartialFailureError) Error() string {
	return fmt.Sprintf("%d of %d requests failed: %v", e.Failed, e.Succeeded+e.Failed, e.Cause)
}

// Unwrap returns the aggregated cause.
func (e *PartialFailureError) Unwrap() error { return e.Cause }

// ExitCode maps the error to the partial-failure exit status.
func (e *PartialFailureError) ExitCode() int { return 5 }
