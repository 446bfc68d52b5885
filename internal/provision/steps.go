// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package provision

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baseup/baseup/internal/account"
	"github.com/baseup/baseup/internal/apt"
	"github.com/baseup/baseup/internal/artifact"
	"github.com/baseup/baseup/internal/config"
	"github.com/baseup/baseup/internal/initsys"
	"github.com/baseup/baseup/internal/network"
	"github.com/baseup/baseup/internal/syscmd"
)

// Options carry the run-wide dependencies of the canonical step sequence.
type Options struct {
	// Root is the file system root artifacts are written beneath. "/" for a
	// real run.
	Root string

	// Run executes external commands. [syscmd.Run] for a real run.
	Run syscmd.Runner

	// DetectInit classifies the init system. [initsys.DetectHost] for a
	// real run.
	DetectInit func() (initsys.System, error)
}

// DefaultOptions are the options for provisioning the local system.
func DefaultOptions() Options {
	return Options{
		Root:       "/",
		Run:        syscmd.Run,
		DetectInit: initsys.DetectHost,
	}
}

// Steps assembles the canonical provisioning sequence for the given
// configuration: network bring-up, package manager housekeeping, default
// user. Order matters: the network must be up before apt can fetch, and the
// service suppression must be in place before packages are installed.
func Steps(cfg config.Config, opts Options) []Step {
	return []Step{
		WithNetwork(cfg.Network, opts),
		WithAptSetup(cfg.Apt, opts),
		WithAptHousekeeping(cfg.Apt, opts),
		WithDefaultUser(cfg.User, opts),
	}
}

// WithNetwork returns the step that brings the loopback and the configured
// interface up.
func WithNetwork(cfg config.Network, opts Options) Step {
	return Step{
		Name: "network",
		Func: func(ctx context.Context, _ *State) error {
			if err := network.LoopbackUp(); err != nil {
				return fmt.Errorf("loopback: %w", err)
			}

			system, err := opts.DetectInit()
			if err != nil {
				return fmt.Errorf("detect init system: %w", err)
			}

			slog.Debug("Detected init system",
				slog.String("system", system.String()))

			netCfg := network.Config{
				Interface:  cfg.Interface,
				RetryDelay: time.Duration(cfg.RetryDelaySeconds) * time.Second,
			}

			return network.Up(ctx, system, netCfg)
		},
	}
}

// WithAptSetup returns the step that puts the package manager filters in
// place: the documentation and translation suppression files and the
// temporary service suppression. The latter registers its restoration as a
// cleanup.
func WithAptSetup(cfg config.Apt, opts Options) Step {
	return Step{
		Name: "apt-setup",
		Func: func(_ context.Context, state *State) error {
			if cfg.SuppressDocs {
				if err := apt.NodocFile().Write(opts.Root); err != nil {
					return err
				}
			}

			if cfg.SuppressTranslations {
				if err := apt.NoTranslationsFile().Write(opts.Root); err != nil {
					return err
				}
			}

			if cfg.DisableServices {
				restore, err := apt.DisableServices(opts.Root)
				if err != nil {
					return err
				}

				state.Cleanup(restore)
			}

			return nil
		},
	}
}

// WithAptHousekeeping returns the step that refreshes, upgrades and
// installs packages.
func WithAptHousekeeping(cfg config.Apt, opts Options) Step {
	return Step{
		Name: "apt-housekeeping",
		Func: func(ctx context.Context, _ *State) error {
			if cfg.Update {
				if err := apt.Update(ctx, opts.Run); err != nil {
					return err
				}
			}

			if cfg.Upgrade {
				if err := apt.DistUpgrade(ctx, opts.Run); err != nil {
					return err
				}
			}

			return apt.Install(ctx, opts.Run, cfg.Packages...)
		},
	}
}

// WithDefaultUser returns the step that creates the default user's primary
// group, the user itself and its authorized SSH keys.
func WithDefaultUser(cfg config.User, opts Options) Step {
	usr := account.User{
		Name:       cfg.Name,
		UID:        cfg.UID,
		GID:        cfg.GID,
		Shell:      cfg.Shell,
		Groups:     cfg.Groups,
		Password:   cfg.Password,
		CreateHome: cfg.CreateHome,
	}

	return Step{
		Name: "default-user",
		Func: func(ctx context.Context, _ *State) error {
			err := account.EnsureGroup(ctx, opts.Run, cfg.Name, cfg.GID)
			if err != nil {
				return err
			}

			if err := account.EnsureUser(ctx, opts.Run, usr); err != nil {
				return err
			}

			keys, err := account.CollectKeys(keySources(cfg))
			if err != nil {
				return err
			}

			return account.InstallAuthorizedKeys(opts.Root, usr, keys)
		},
	}
}

func keySources(cfg config.User) account.KeySources {
	return account.KeySources{
		Keys: cfg.AuthorizedKeys,
		Dir:  cfg.AuthorizedKeyDir,
	}
}

// Artifacts renders the configuration file payloads a run with the given
// configuration would write, for export into an archive.
func Artifacts(cfg config.Config) (artifact.Set, error) {
	var set artifact.Set

	if cfg.Apt.SuppressDocs {
		set.Add(apt.NodocFile())
	}

	if cfg.Apt.SuppressTranslations {
		set.Add(apt.NoTranslationsFile())
	}

	if cfg.Apt.DisableServices {
		set.Add(apt.PolicyFile())
	}

	keys, err := account.CollectKeys(keySources(cfg.User))
	if err != nil {
		return nil, err
	}

	usr := account.User{Name: cfg.User.Name, UID: cfg.User.UID, GID: cfg.User.GID}
	if file, ok := account.AuthorizedKeysFile(usr, keys); ok {
		set.Add(file)
	}

	return set, nil
}
