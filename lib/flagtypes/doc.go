// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package flagtypes provides the typed flag values the command surface
// builds its grammars from: durations with a day suffix ("15d"),
// byte sizes ("100GB"), key=value lists, comma lists, enums, and
// file-contents references. Every type implements pflag.Value so it
// plugs directly into a command's flag set.
package flagtypes
