// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// version is set at build time via ldflags. It falls back to the module
// version recorded in the build info.
var version string

func versionString() string {
	if version != "" {
		return version
	}

	if info, ok := debug.ReadBuildInfo(); ok {
		return info.Main.Version
	}

	return "(unknown)"
}

func newVersionCommand(cfg IO) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the baseup version",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(cfg.Out, "baseup %s\n", versionString())
		},
	}
}
