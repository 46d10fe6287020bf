// Command bazaar serves the supplier and vendor auth screens.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/bazaarhq/bazaar/internal/logging"
)

const (
	exitCodeFailure  = 1
	exitCodeCanceled = 130
)

func main() {
	if code := runMain(Execute, os.Stderr); code != 0 {
		os.Exit(code)
	}
}

func runMain(execute func() error, stderr io.Writer) int {
	err := execute()
	if err == nil {
		return 0
	}
	return exitCodeForError(err, stderr)
}

// exitCodeForError reports err on stderr and picks the process exit code. auth-check uses
// exitError to tell a refused credential apart from a broken setup.
func exitCodeForError(err error, stderr io.Writer) int {
	var ee *exitError
	switch {
	case errors.As(err, &ee):
		if !ee.silent {
			cause := err
			if ee.err != nil {
				cause = ee.err
			}
			emitCommandError(cause, "command failed", ee.code, stderr)
		}
		return ee.code
	case errors.Is(err, context.Canceled):
		emitCommandError(err, "command canceled", exitCodeCanceled, stderr)
		return exitCodeCanceled
	default:
		emitCommandError(err, "command failed", exitCodeFailure, stderr)
		return exitCodeFailure
	}
}

// emitCommandError logs through slog for serve and migrate and prints plain text otherwise.
func emitCommandError(err error, message string, exitCode int, stderr io.Writer) {
	execCtx := currentCommandExecutionContext()
	if execCtx.UsesStructuredLog {
		cfg, cfgErr := logging.LoadConfigFromEnv()
		if cfgErr != nil {
			cfg = logging.DefaultConfig()
		}
		logging.NewLogger(cfg, stderr, execCtx.CommandPath).Error(message, "exit_code", exitCode, "error", err)
		return
	}
	if exitCode == exitCodeCanceled {
		fmt.Fprintln(stderr, "canceled")
		return
	}
	fmt.Fprintln(stderr, err)
}
