// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/baseup/baseup/internal/config"
	"github.com/baseup/baseup/internal/provision"
)

func newExportCommand(cfg IO) *cobra.Command {
	var (
		configPath string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the provisioning artifacts as a CPIO archive",
		Long: `Export renders the configuration files apply would install, like
the apt filter snippets and the authorized_keys file, and writes them as a
CPIO archive suitable for unpacking into an image root.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}

			files, err := provision.Artifacts(conf)
			if err != nil {
				return err
			}

			var out io.Writer = cfg.Out

			if outputPath != "" {
				file, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outputPath, err)
				}
				defer file.Close()

				out = file
			}

			if err := files.WriteCPIO(out); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "",
		"path to the configuration file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"write the archive to this file instead of stdout")

	return cmd
}
