// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

// Package apt performs package manager housekeeping on Debian based
// container images.
package apt

import (
	"context"
	"fmt"

	"github.com/baseup/baseup/internal/syscmd"
)

// Options passed to every apt-get call:
//   - force-confold keeps existing configuration files on upgrades,
//   - force-unsafe-io makes dpkg skip fsync, image builds are throwaway
//     anyway,
//   - assume-yes and quiet suit unattended runs.
var aptGetArgs = []string{
	"--option=Dpkg::Options::=--force-confold",
	"--option=Dpkg::Options::=--force-unsafe-io",
	"--assume-yes",
	"--quiet",
}

var nonInteractiveEnv = []string{"DEBIAN_FRONTEND=noninteractive"}

func aptGet(subCommand string, extraArgs ...string) syscmd.Command {
	args := append([]string{}, aptGetArgs...)
	args = append(args, subCommand)
	args = append(args, extraArgs...)

	return syscmd.Command{
		Path: "apt-get",
		Args: args,
		Env:  nonInteractiveEnv,
	}
}

// Update refreshes the package lists.
func Update(ctx context.Context, run syscmd.Runner) error {
	if err := run(ctx, aptGet("update")); err != nil {
		return fmt.Errorf("apt update: %w", err)
	}

	return nil
}

// DistUpgrade upgrades all installed packages, installing or removing
// packages where dependencies require it.
func DistUpgrade(ctx context.Context, run syscmd.Runner) error {
	if err := run(ctx, aptGet("dist-upgrade")); err != nil {
		return fmt.Errorf("apt dist-upgrade: %w", err)
	}

	return nil
}

// Install installs the given packages. It is a no-op for an empty list.
func Install(ctx context.Context, run syscmd.Runner, packages ...string) error {
	if len(packages) == 0 {
		return nil
	}

	if err := run(ctx, aptGet("install", packages...)); err != nil {
		return fmt.Errorf("apt install: %w", err)
	}

	return nil
}
