// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Package console owns the interactive surface: terminal capability
// detection, yes/no and numbered-choice prompts, warnings, and the
// multi-line progress tracker. All user-visible interaction funnels
// through one Attr so output stays serialized.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Attr describes the console attached to this invocation.
type Attr struct {
	// In is the prompt input, normally stdin.
	In io.Reader

	// Out receives prompts, warnings, and progress, normally stderr.
	// Result output does not go here.
	Out io.Writer

	// Interactive is set when both In and Out are terminals.
	Interactive bool

	// Quiet suppresses prompts; every prompt takes its default.
	Quiet bool

	// Profile is the terminal's color capability.
	Profile termenv.Profile

	reader *bufio.Reader
}

// Detect builds an Attr for the process's real stdin and stderr. A
// dumb or absent terminal disables interaction and styling.
func Detect(quiet bool) *Attr {
	interactive := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
	profile := termenv.Ascii
	if interactive && os.Getenv("TERM") != "dumb" {
		profile = termenv.NewOutput(os.Stderr).ColorProfile()
	}
	if os.Getenv("CI") != "" {
		interactive = false
	}
	return &Attr{
		In:          os.Stdin,
		Out:         os.Stderr,
		Interactive: interactive,
		Quiet:       quiet,
		Profile:     profile,
	}
}

// CancelledError reports an interaction that could not proceed.
type CancelledError struct {
	Reason string
}

func (e *CancelledError) Error() string { return e.Reason }

// ExitCode maps the error to the cancelled exit status.
func (e *CancelledError) ExitCode() int { return 130 }

func (a *Attr) readLine() (string, error) {
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	line, err := a.reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if err != nil && line == "" {
		return "", err
	}
	return line, nil
}

// Warnf prints a warning line to the console sink.
func (a *Attr) Warnf(format string, args ...any) {
	fmt.Fprintf(a.Out, "WARNING: "+format+"\n", args...)
}

// Errorf prints an error line to the console sink.
func (a *Attr) Errorf(format string, args ...any) {
	fmt.Fprintf(a.Out, "ERROR: "+format+"\n", args...)
}

// PromptYesNo asks a yes/no question. A quiet or non-interactive
// console takes the default silently. An unparseable answer reprompts;
// end of input takes the default.
func (a *Attr) PromptYesNo(question string, def bool) (bool, error) {
	if !a.Interactive || a.Quiet {
		return def, nil
	}
	hint := "Y/n"
	if !def {
		hint = "y/N"
	}
	for {
		fmt.Fprintf(a.Out, "%s (%s)? ", question, hint)
		line, err := a.readLine()
		if err != nil {
			fmt.Fprintln(a.Out)
			return def, nil
		}
		switch strings.ToLower(line) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintf(a.Out, "Please answer 'y' or 'n'.\n")
	}
}

// PromptChoice presents numbered options and returns the chosen index.
// There is no safe default, so a quiet or non-interactive console
// cancels instead of guessing.
func (a *Attr) PromptChoice(message string, options []string) (int, error) {
	if !a.Interactive || a.Quiet {
		return 0, &CancelledError{Reason: fmt.Sprintf(
			"cannot prompt in a non-interactive session: %s", message)}
	}
	fmt.Fprintln(a.Out, message)
	for i, option := range options {
		fmt.Fprintf(a.Out, " [%d] %s\n", i+1, option)
	}
	for {
		fmt.Fprintf(a.Out, "Please enter your numeric choice: ")
		line, err := a.readLine()
		if err != nil {
			fmt.Fprintln(a.Out)
			return 0, &CancelledError{Reason: "choice prompt abandoned"}
		}
		n, convErr := strconv.Atoi(line)
		if convErr == nil && n >= 1 && n <= len(options) {
			return n - 1, nil
		}
		fmt.Fprintf(a.Out, "Please enter a value between 1 and %d.\n", len(options))
	}
}
