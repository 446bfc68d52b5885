// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

// Package syscmd runs the external system tools provisioning depends on.
package syscmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Runner executes a [Command]. [Run] is the canonical implementation, tests
// substitute their own.
type Runner func(ctx context.Context, cmd Command) error

// Command is a single external command invocation.
type Command struct {
	// Path is the command to run. It is looked up in PATH if not absolute.
	Path string

	// Args are the arguments passed to the command.
	Args []string

	// Env are additional environment variables in "key=value" format. They
	// are appended to the current process environment.
	Env []string
}

// String returns the command in a loggable single-line form.
func (c Command) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Run executes the command and waits for it to terminate.
//
// Command output is forwarded line-wise to [slog]: stdout with level debug,
// stderr with level warn. If the command terminates with a non-zero exit
// code, an [*ExitError] is returned.
func Run(ctx context.Context, command Command) error {
	cmd := exec.CommandContext(ctx, command.Path, command.Args...)
	cmd.Env = append(os.Environ(), command.Env...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("stdout pipe: %w", err)
	}

	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", command.Path, err)
	}

	// Both pipes must be drained before Wait is called.
	eg := errgroup.Group{}
	eg.Go(logLines(stdout, command.Path, slog.LevelDebug))
	eg.Go(logLines(stderr, command.Path, slog.LevelWarn))

	pumpErr := eg.Wait()

	if err := cmd.Wait(); err != nil {
		// CommandContext kills the process on cancellation. That must not
		// surface as a tool failure with an exit code.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("run %s: %w", command.Path, ctxErr)
		}

		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return errors.Join(&ExitError{
				Cmd:      command.String(),
				ExitCode: exitErr.ExitCode(),
			}, pumpErr)
		}

		return errors.Join(fmt.Errorf("run %s: %w", command.Path, err), pumpErr)
	}

	return pumpErr
}

func logLines(r io.Reader, cmd string, level slog.Level) func() error {
	return func() error {
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			slog.Log(context.Background(), level, scanner.Text(),
				slog.String("cmd", cmd))
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("read %s output: %w", cmd, err)
		}

		return nil
	}
}
