// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

// Package cmd implements the baseup command line interface.
package cmd

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
)

// IO provides input and output streams for the command tree.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

func newRootCommand(cfg IO) *cobra.Command {
	var debug bool

	root := &cobra.Command{
		Use:   "baseup",
		Short: "Provision the base system of a Linux container",
		Long: `baseup applies a base system configuration to a freshly
launched Linux container: it brings network interfaces up, creates the
default system user with its SSH keys and performs package manager
housekeeping.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			setupLogging(cfg.Err, debug)
		},
	}

	root.PersistentFlags().BoolVar(&debug, "debug", false,
		"enable debug logging")

	root.SetIn(cfg.In)
	root.SetOut(cfg.Out)
	root.SetErr(cfg.Err)

	root.AddCommand(
		newApplyCommand(),
		newExportCommand(cfg),
		newConfigCommand(cfg),
		newVersionCommand(cfg),
	)

	return root
}

// Execute is the main entry point for the CLI. It returns the process exit
// code.
func Execute(ctx context.Context, args []string, cfg IO) int {
	root := newRootCommand(cfg)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		slog.Error(err.Error())
		return 1
	}

	return 0
}
