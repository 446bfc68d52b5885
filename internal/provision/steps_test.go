// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package provision_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/baseup/baseup/internal/config"
	"github.com/baseup/baseup/internal/provision"
	"github.com/baseup/baseup/internal/syscmd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	commands []syscmd.Command
}

func (r *recordingRunner) run(_ context.Context, cmd syscmd.Command) error {
	r.commands = append(r.commands, cmd)
	return nil
}

func (r *recordingRunner) commandLines() []string {
	lines := make([]string, len(r.commands))
	for idx, cmd := range r.commands {
		lines[idx] = cmd.String()
	}

	return lines
}

func testOptions(t *testing.T) (provision.Options, *recordingRunner) {
	t.Helper()

	runner := &recordingRunner{}
	opts := provision.Options{
		Root: t.TempDir(),
		Run:  runner.run,
	}

	return opts, runner
}

func TestWithAptSetup(t *testing.T) {
	t.Run("all filters", func(t *testing.T) {
		opts, _ := testOptions(t)
		cfg := config.Default().Apt

		step := provision.WithAptSetup(cfg, opts)

		err := provision.Run(context.Background(), []provision.Step{step})
		require.NoError(t, err)

		assert.FileExists(t,
			filepath.Join(opts.Root, "etc/dpkg/dpkg.cfg.d/01-baseup-nodoc"))
		assert.FileExists(t,
			filepath.Join(opts.Root, "etc/apt/apt.conf.d/99-baseup-notranslations"))

		// Service suppression is restored by the cleanup chain after the run.
		assert.NoFileExists(t,
			filepath.Join(opts.Root, "usr/sbin/policy-rc.d"))
	})

	t.Run("policy-rc.d present during the run", func(t *testing.T) {
		opts, runner := testOptions(t)
		cfg := config.Default().Apt

		var presentDuringRun bool

		steps := []provision.Step{
			provision.WithAptSetup(cfg, opts),
			{
				Name: "probe",
				Func: func(_ context.Context, _ *provision.State) error {
					_, err := os.Stat(
						filepath.Join(opts.Root, "usr/sbin/policy-rc.d"))
					presentDuringRun = err == nil

					return nil
				},
			},
		}

		err := provision.Run(context.Background(), steps)
		require.NoError(t, err)
		assert.True(t, presentDuringRun)
		assert.Empty(t, runner.commands)
	})

	t.Run("filters disabled", func(t *testing.T) {
		opts, _ := testOptions(t)
		cfg := config.Apt{}

		step := provision.WithAptSetup(cfg, opts)

		err := provision.Run(context.Background(), []provision.Step{step})
		require.NoError(t, err)

		assert.NoFileExists(t,
			filepath.Join(opts.Root, "etc/dpkg/dpkg.cfg.d/01-baseup-nodoc"))
		assert.NoFileExists(t,
			filepath.Join(opts.Root, "etc/apt/apt.conf.d/99-baseup-notranslations"))
	})
}

func TestWithAptHousekeeping(t *testing.T) {
	t.Run("full housekeeping", func(t *testing.T) {
		opts, runner := testOptions(t)
		cfg := config.Default().Apt
		cfg.Packages = []string{"openssh-server"}

		step := provision.WithAptHousekeeping(cfg, opts)

		err := provision.Run(context.Background(), []provision.Step{step})
		require.NoError(t, err)

		require.Len(t, runner.commands, 3)
		assert.Contains(t, runner.commandLines()[0], "update")
		assert.Contains(t, runner.commandLines()[1], "dist-upgrade")
		assert.Contains(t, runner.commandLines()[2], "install openssh-server")
	})

	t.Run("everything disabled", func(t *testing.T) {
		opts, runner := testOptions(t)

		step := provision.WithAptHousekeeping(config.Apt{}, opts)

		err := provision.Run(context.Background(), []provision.Step{step})
		require.NoError(t, err)
		assert.Empty(t, runner.commands)
	})
}

func TestWithDefaultUser(t *testing.T) {
	opts, runner := testOptions(t)

	cfg := config.Default().User
	cfg.Name = "baseup_test_user"
	cfg.AuthorizedKeys = []string{
		"ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA a@host",
	}
	cfg.UID = os.Getuid()
	cfg.GID = os.Getgid()

	if cfg.UID == 0 {
		// Running as root: keep the configured IDs, the chown works anyway.
		cfg.UID = 1000
		cfg.GID = 1000
	}

	step := provision.WithDefaultUser(cfg, opts)

	err := provision.Run(context.Background(), []provision.Step{step})
	require.NoError(t, err)

	require.Len(t, runner.commands, 2)
	assert.Equal(t, "groupadd", runner.commands[0].Path)
	assert.Equal(t, "useradd", runner.commands[1].Path)

	assert.FileExists(t, filepath.Join(opts.Root,
		"home", "baseup_test_user", ".ssh", "authorized_keys"))
}

func TestSteps(t *testing.T) {
	opts, _ := testOptions(t)

	steps := provision.Steps(config.Default(), opts)

	names := make([]string, len(steps))
	for idx, step := range steps {
		names[idx] = step.Name
	}

	assert.Equal(t, []string{
		"network",
		"apt-setup",
		"apt-housekeeping",
		"default-user",
	}, names)
}

func TestArtifacts(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		set, err := provision.Artifacts(config.Default())
		require.NoError(t, err)

		assert.Equal(t, []string{
			"/etc/apt/apt.conf.d/99-baseup-notranslations",
			"/etc/dpkg/dpkg.cfg.d/01-baseup-nodoc",
			"/usr/sbin/policy-rc.d",
		}, set.Paths())
	})

	t.Run("with authorized keys", func(t *testing.T) {
		cfg := config.Default()
		cfg.User.AuthorizedKeys = []string{
			"ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA a@host",
		}

		set, err := provision.Artifacts(cfg)
		require.NoError(t, err)

		assert.Contains(t, set.Paths(), "/home/worker/.ssh/authorized_keys")
	})

	t.Run("invalid key", func(t *testing.T) {
		cfg := config.Default()
		cfg.User.AuthorizedKeys = []string{"not a key"}

		_, err := provision.Artifacts(cfg)
		require.Error(t, err)
	})
}
