// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

package collection

import "fmt"

// WrongCollectionError reports a URI that parsed cleanly but into a
// different collection than the caller expected.
type WrongCollectionError struct {
	URI  string
	Want string
	Got  string
}

func (e *WrongCollectionError) Error() string {
	return fmt.Sprintf("%q is a %s resource, expected %s", e.URI, e.Got, e.Want)
}

// ExitCode maps the error to the argument-error exit status.
func (e *WrongCollectionError) ExitCode() int { return 2 }
