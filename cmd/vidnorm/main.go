// Package main provides the CLI entry point for vidnorm.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/eucVeteran/video-normalization-pipeline/internal/errors"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.IsCancelled(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		cancel()
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit status. Setup errors that stop
// a run before any file is touched exit 2.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	kind, ok := errors.KindOf(err)
	if !ok {
		return 1
	}
	switch kind {
	case errors.KindCancelled:
		return 130
	case errors.KindConfig, errors.KindPath, errors.KindNoFilesFound, errors.KindLocked:
		return 2
	default:
		return 1
	}
}
