// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/baseup/baseup/internal/config"
	"github.com/baseup/baseup/internal/provision"
)

// ErrNotRoot is returned when apply runs without root privileges.
var ErrNotRoot = errors.New("must run as root")

func newApplyCommand() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply the base system configuration to this host",
		Long: `Apply brings the configured network interface up, creates the
default user with its SSH authorized keys and runs the apt housekeeping
steps. It must run as root inside the container it provisions.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if os.Geteuid() != 0 {
				return ErrNotRoot
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			opts := provision.DefaultOptions()

			steps := provision.Steps(cfg, opts)

			if err := provision.Run(cmd.Context(), steps); err != nil {
				return fmt.Errorf("apply: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to the configuration file")

	return cmd
}
