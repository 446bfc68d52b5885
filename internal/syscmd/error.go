// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package syscmd

import "fmt"

// ExitError is returned if a command terminated with a non-zero exit code.
type ExitError struct {
	// Cmd is the command line that failed.
	Cmd string

	// ExitCode is the exit code of the terminated command.
	ExitCode int
}

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("command %q exited with code %d", e.Cmd, e.ExitCode)
}

// Is implements the anonymous interface consumed by [errors.Is].
func (e *ExitError) Is(other error) bool {
	_, ok := other.(*ExitError)
	return ok
}
