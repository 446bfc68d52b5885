// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

// Package provision runs the provisioning step sequence.
package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// ErrPanic is returned if a step panicked.
var ErrPanic = errors.New("step panicked")

// Func does the work of a single [Step].
type Func func(ctx context.Context, state *State) error

// Step is a named provisioning step.
type Step struct {
	// Name identifies the step in logs and errors.
	Name string

	// Func is run when the step executes.
	Func Func
}

// State is shared between the steps of a single run.
type State struct {
	cleanupFns []func() error
}

// Cleanup registers a function that runs at the end of the run, regardless
// of its outcome. Cleanups run in reverse registration order.
func (s *State) Cleanup(fn func() error) {
	s.cleanupFns = append(s.cleanupFns, fn)
}

func (s *State) doCleanup() {
	for idx := len(s.cleanupFns) - 1; idx >= 0; idx-- {
		if err := s.cleanupFns[idx](); err != nil {
			slog.Error("Cleanup failed", slog.Any("error", err))
		}
	}
}

// Run executes the steps in order and halts on the first failure. Panics in
// steps are recovered into errors. Registered cleanups always run, in
// reverse order, after the last step.
func Run(ctx context.Context, steps []Step) error {
	state := new(State)
	defer state.doCleanup()

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("provisioning aborted: %w", err)
		}

		slog.Info("Running step", slog.String("step", step.Name))

		if err := runStep(ctx, state, step); err != nil {
			return fmt.Errorf("step %s: %w", step.Name, err)
		}
	}

	return nil
}

func runStep(ctx context.Context, state *State, step Step) (err error) {
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}

		if recoveredErr, ok := rec.(error); ok {
			err = fmt.Errorf("%w: %w", ErrPanic, recoveredErr)
		} else {
			err = fmt.Errorf("%w: %v", ErrPanic, rec)
		}
	}()

	return step.Func(ctx, state)
}
