// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

//go:build integration

package provision_test

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/baseup/baseup/internal/config"
	"github.com/baseup/baseup/internal/provision"
)

// TestArtifactsInContainer installs the rendered configuration files into a
// plain Debian container and checks that apt and dpkg accept them.
func TestArtifactsInContainer(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx,
		testcontainers.GenericContainerRequest{
			ContainerRequest: testcontainers.ContainerRequest{
				Image:      "debian:bookworm-slim",
				Cmd:        []string{"sleep", "infinity"},
				WaitingFor: wait.ForExec([]string{"true"}),
			},
			Started: true,
		},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = container.Terminate(context.Background())
	})

	cfg := config.Default()
	cfg.User.AuthorizedKeys = []string{
		"ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA ci@host",
	}

	files, err := provision.Artifacts(cfg)
	require.NoError(t, err)

	for _, file := range files {
		err := container.CopyToContainer(
			ctx, file.Content, file.Path, int64(file.Mode),
		)
		require.NoError(t, err)
	}

	t.Run("policy-rc.d blocks service startup", func(t *testing.T) {
		rc, _, err := container.Exec(ctx, []string{
			"sh", "/usr/sbin/policy-rc.d",
		})
		require.NoError(t, err)
		assert.Equal(t, 101, rc)
	})

	t.Run("dpkg accepts the nodoc filter", func(t *testing.T) {
		// dpkg rejects unknown directives in dpkg.cfg.d on any invocation.
		rc, out, err := container.Exec(ctx, []string{
			"dpkg", "--audit",
		})
		require.NoError(t, err)

		output, err := io.ReadAll(out)
		require.NoError(t, err)

		assert.Equal(t, 0, rc, string(output))
	})

	t.Run("apt accepts the translations filter", func(t *testing.T) {
		rc, out, err := container.Exec(ctx, []string{
			"apt-config", "dump", "Acquire::Languages",
		})
		require.NoError(t, err)

		output, err := io.ReadAll(out)
		require.NoError(t, err)

		require.Equal(t, 0, rc, string(output))
		assert.Contains(t, string(output), `Acquire::Languages:: "none"`)
	})

	t.Run("authorized keys installed", func(t *testing.T) {
		rc, out, err := container.Exec(ctx, []string{
			"cat", "/home/worker/.ssh/authorized_keys",
		})
		require.NoError(t, err)

		output, err := io.ReadAll(out)
		require.NoError(t, err)

		require.Equal(t, 0, rc, string(output))
		assert.True(t, strings.Contains(string(output), "ssh-ed25519"))
	})
}
