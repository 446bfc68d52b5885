// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package syscmd_test

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/baseup/baseup/internal/syscmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRun(t *testing.T) {
	tests := []struct {
		name             string
		command          syscmd.Command
		expectedErr      error
		expectedExitCode int
	}{
		{
			name: "success",
			command: syscmd.Command{
				Path: "true",
			},
		},
		{
			name: "success with output",
			command: syscmd.Command{
				Path: "echo",
				Args: []string{"some", "output"},
			},
		},
		{
			name: "extra env",
			command: syscmd.Command{
				Path: "sh",
				Args: []string{"-c", "test \"$SYSCMD_TEST\" = set"},
				Env:  []string{"SYSCMD_TEST=set"},
			},
		},
		{
			name: "non-zero exit code",
			command: syscmd.Command{
				Path: "sh",
				Args: []string{"-c", "exit 42"},
			},
			expectedErr:      &syscmd.ExitError{},
			expectedExitCode: 42,
		},
		{
			name: "not found",
			command: syscmd.Command{
				Path: "this-command-does-not-exist",
			},
			expectedErr: exec.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := syscmd.Run(context.Background(), tt.command)
			if tt.expectedErr != nil {
				require.ErrorIs(t, err, tt.expectedErr)

				var exitErr *syscmd.ExitError
				if errors.As(err, &exitErr) {
					assert.Equal(t, tt.expectedExitCode, exitErr.ExitCode)
				}

				return
			}

			require.NoError(t, err)
		})
	}
}

func TestRunCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := syscmd.Run(ctx, syscmd.Command{
		Path: "sleep",
		Args: []string{"10"},
	})
	require.ErrorIs(t, err, context.Canceled)

	var exitErr *syscmd.ExitError
	assert.False(t, errors.As(err, &exitErr),
		"cancellation must not look like a tool failure")
}

func TestCommandString(t *testing.T) {
	command := syscmd.Command{
		Path: "apt-get",
		Args: []string{"--assume-yes", "update"},
	}
	assert.Equal(t, "apt-get --assume-yes update", command.String())
}
