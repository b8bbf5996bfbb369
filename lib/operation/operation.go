// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package operation models the platform's long-running operations and
// provides the reusable poll combinator verbs wait on.
//
// An operation is terminal exactly when its status is DONE. A DONE
// operation with a populated error block failed; without one it
// succeeded. The poller is parameterized by the getter, so any
// service's operation collection can reuse it.
package operation

import (
	"fmt"
	"strings"

	"github.com/strato-cloud/strato/lib/transport"
)

// Status is the operation lifecycle state.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusDone    Status = "DONE"
)

// Operation is a long-running server-side handle.
type Operation struct {
	Name          string     `json:"name"`
	SelfLink      string     `json:"selfLink"`
	TargetLink    string     `json:"targetLink"`
	OperationType string     `json:"operationType,omitempty"`
	Status        Status     `json:"status"`
	Error         *ErrorInfo `json:"error,omitempty"`
	InsertTime    string     `json:"insertTime,omitempty"`
	StartTime     string     `json:"startTime,omitempty"`
	EndTime       string     `json:"endTime,omitempty"`
}

// ErrorInfo is the operation-level error block.
type ErrorInfo struct {
	Errors []ErrorItem `json:"errors"`
}

// ErrorItem is one failure within an operation error block.
type ErrorItem struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Done reports whether the operation is terminal.
func (o *Operation) Done() bool { return o.Status == StatusDone }

// Failed reports whether the operation finished with errors.
func (o *Operation) Failed() bool {
	return o.Done() && o.Error != nil && len(o.Error.Errors) > 0
}

// Err returns the operation's failure as an *Error, or nil.
func (o *Operation) Err() error {
	if !o.Failed() {
		return nil
	}
	return &Error{Name: o.Name, Items: o.Error.Errors}
}

// FromResponse decodes an operation from a transport response.
func FromResponse(resp *transport.Response) (*Operation, error) {
	var op Operation
	if err := resp.Decode(&op); err != nil {
		return nil, fmt.Errorf("decoding operation: %w", err)
	}
	if op.Name == "" {
		return nil, fmt.Errorf("response is not an operation (no name)")
	}
	return &op, nil
}

// Error is a DONE operation's failure, aggregating its error items.
type Error struct {
	Name  string
	Items []ErrorItem
}

func (e *Error) Error() string {
	if len(e.Items) == 1 {
		return fmt.Sprintf("operation %s failed: %s", e.Name, e.Items[0].Message)
	}
	lines := make([]string, 0, len(e.Items)+1)
	lines = append(lines, fmt.Sprintf("operation %s failed with %d errors:", e.Name, len(e.Items)))
	for _, item := range e.Items {
		lines = append(lines, fmt.Sprintf(" - [%s] %s", item.Code, item.Message))
	}
	return strings.Join(lines, "\n")
}

// CancelledError reports a user interrupt or an expired deadline.
type CancelledError struct {
	Reason string
}

func (e *CancelledError) Error() string {
	if e.Reason == "" {
		return "operation cancelled"
	}
	return e.Reason
}

// ExitCode maps the error to the cancelled exit status.
func (e *CancelledError) ExitCode() int { return 130 }
