// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/baseup/baseup/internal/config"
)

func newConfigCommand(cfg IO) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Config loads the configuration file, merges defaults and
environment overrides and prints the result as YAML.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}

			return conf.Encode(cfg.Out)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to the configuration file")

	return cmd
}
