// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package apt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/baseup/baseup/internal/artifact"
)

const (
	policyPath = "/usr/sbin/policy-rc.d"
	policyMode = 0o755
)

// Exit code 101 tells invoke-rc.d that service actions are forbidden.
const policyContent = `#!/bin/sh
# Installed by baseup for the duration of the provisioning run. Suppresses
# service starts triggered by package installation inside the container.
exit 101
`

// PolicyFile is the policy-rc.d script that suppresses service startup.
func PolicyFile() artifact.File {
	return artifact.File{
		Path:    policyPath,
		Mode:    policyMode,
		Content: []byte(policyContent),
	}
}

// DisableServices installs policy-rc.d beneath the given root directory and
// returns a restore function that brings the previous state back: a
// pre-existing script is restored, otherwise the file is removed.
func DisableServices(root string) (func() error, error) {
	path := filepath.Join(root, policyPath)

	previous, err := os.ReadFile(path)

	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		previous = nil
	default:
		return nil, fmt.Errorf("read existing policy-rc.d: %w", err)
	}

	if err := PolicyFile().Write(root); err != nil {
		return nil, err
	}

	restore := func() error {
		if previous == nil {
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("remove policy-rc.d: %w", err)
			}

			return nil
		}

		if err := os.WriteFile(path, previous, policyMode); err != nil {
			return fmt.Errorf("restore policy-rc.d: %w", err)
		}

		return nil
	}

	return restore, nil
}
