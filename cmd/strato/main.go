// Copyright 2026 The Strato Authors
// SPDX-License-Identifier: Apache-2.0

// Command strato is the command-line interface for the Strato cloud
// platform.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"golang.org/x/oauth2"

	"github.com/strato-cloud/strato/cmd/strato/cli"
	"github.com/strato-cloud/strato/cmd/strato/commands"
	"github.com/strato-cloud/strato/lib/clock"
	"github.com/strato-cloud/strato/lib/collection"
	"github.com/strato-cloud/strato/lib/console"
	"github.com/strato-cloud/strato/lib/metadata"
	"github.com/strato-cloud/strato/lib/properties"
	"github.com/strato-cloud/strato/lib/transport"
)

// envLogFile, when set, receives a copy of every non-private result.
const envLogFile = "STRATO_LOG_FILE"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil {
		if !cli.Silent(err) {
			fmt.Fprintln(os.Stderr, "ERROR:", err)
		}
		stop()
		os.Exit(cli.CodeFor(err))
	}
}

func run(ctx context.Context, args []string) error {
	store, err := loadProperties(args)
	if err != nil {
		return err
	}

	attr := console.Detect(scanBool(args, "--quiet"))
	logger := cli.NewLogger(scanLevel(args))

	tokenSource, err := loadTokenSource(store)
	if err != nil {
		return err
	}
	client := transport.NewClient(transport.Options{
		TokenSource: tokenSource,
		Observe: func(req *transport.Request, resp *transport.Response, err error) {
			if err != nil {
				logger.Debug("request failed", "method", req.Method, "url", req.URL, "error", err)
				return
			}
			logger.Debug("request", "method", req.Method, "url", req.URL, "status", resp.StatusCode)
		},
	})

	env := &cli.Environment{
		Ctx:        ctx,
		Clock:      clock.Real(),
		Client:     client,
		Properties: store,
		Console:    attr,
		Registry:   collection.Default(),
		Logger:     logger,
		Out:        os.Stdout,
		Metadata:   metadata.New(),
	}
	if path := os.Getenv(envLogFile); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		env.LogSink = f
	}

	return commands.Root().Execute(env, args)
}

// loadProperties honors an early --configuration before the command
// tree has parsed any flags: the property store must exist while
// flags are still being resolved.
func loadProperties(args []string) (*properties.Store, error) {
	if path := scanValue(args, "--configuration"); path != "" {
		return properties.LoadFile(path)
	}
	return properties.Load()
}

// loadTokenSource reads the static bearer token the auth property
// points at. Absent property means unauthenticated requests.
func loadTokenSource(store *properties.Store) (oauth2.TokenSource, error) {
	path, ok := store.Get(properties.AuthAccessTokenFile)
	if !ok || path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading access token file: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return nil, fmt.Errorf("access token file %s is empty", path)
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}), nil
}

// scanValue pre-scans raw argv for one global flag's value. Used for
// the flags the environment needs before dispatch parses properly.
func scanValue(args []string, flag string) string {
	for i, a := range args {
		if a == flag && i+1 < len(args) {
			return args[i+1]
		}
		if strings.HasPrefix(a, flag+"=") {
			return a[len(flag)+1:]
		}
	}
	return ""
}

func scanBool(args []string, flag string) bool {
	for _, a := range args {
		if a == flag || a == flag+"=true" {
			return true
		}
	}
	return false
}

func scanLevel(args []string) slog.Level {
	switch scanValue(args, "--verbosity") {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
