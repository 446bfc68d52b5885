// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package provision_test

import (
	"context"
	"errors"
	"testing"

	"github.com/baseup/baseup/internal/provision"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedStep(name string, log *[]string, err error) provision.Step {
	return provision.Step{
		Name: name,
		Func: func(_ context.Context, _ *provision.State) error {
			*log = append(*log, name)
			return err
		},
	}
}

func TestRun(t *testing.T) {
	errStep := errors.New("step failed")

	t.Run("all steps in order", func(t *testing.T) {
		var log []string

		steps := []provision.Step{
			namedStep("first", &log, nil),
			namedStep("second", &log, nil),
			namedStep("third", &log, nil),
		}

		err := provision.Run(context.Background(), steps)
		require.NoError(t, err)
		assert.Equal(t, []string{"first", "second", "third"}, log)
	})

	t.Run("halts on first failure", func(t *testing.T) {
		var log []string

		steps := []provision.Step{
			namedStep("first", &log, nil),
			namedStep("second", &log, errStep),
			namedStep("third", &log, nil),
		}

		err := provision.Run(context.Background(), steps)
		require.ErrorIs(t, err, errStep)
		assert.ErrorContains(t, err, "step second")
		assert.Equal(t, []string{"first", "second"}, log)
	})

	t.Run("panic recovered", func(t *testing.T) {
		steps := []provision.Step{
			{
				Name: "panicking",
				Func: func(_ context.Context, _ *provision.State) error {
					panic("boom")
				},
			},
		}

		err := provision.Run(context.Background(), steps)
		require.ErrorIs(t, err, provision.ErrPanic)
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		var log []string

		steps := []provision.Step{
			namedStep("first", &log, nil),
		}

		err := provision.Run(ctx, steps)
		require.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, log)
	})
}

func TestRunCleanup(t *testing.T) {
	errStep := errors.New("step failed")

	t.Run("reverse order on success", func(t *testing.T) {
		var log []string

		steps := []provision.Step{
			{
				Name: "registering",
				Func: func(_ context.Context, state *provision.State) error {
					state.Cleanup(func() error {
						log = append(log, "cleanup-one")
						return nil
					})
					state.Cleanup(func() error {
						log = append(log, "cleanup-two")
						return nil
					})

					return nil
				},
			},
			namedStep("after", &log, nil),
		}

		err := provision.Run(context.Background(), steps)
		require.NoError(t, err)
		assert.Equal(t, []string{"after", "cleanup-two", "cleanup-one"}, log)
	})

	t.Run("runs after failure", func(t *testing.T) {
		var log []string

		steps := []provision.Step{
			{
				Name: "registering",
				Func: func(_ context.Context, state *provision.State) error {
					state.Cleanup(func() error {
						log = append(log, "cleanup")
						return nil
					})

					return nil
				},
			},
			namedStep("failing", &log, errStep),
		}

		err := provision.Run(context.Background(), steps)
		require.ErrorIs(t, err, errStep)
		assert.Equal(t, []string{"failing", "cleanup"}, log)
	})
}
