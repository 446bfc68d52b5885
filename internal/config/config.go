// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

// Package config defines the provisioning configuration and its loading.
package config

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const envPrefix = "BASEUP"

// Network configures network interface bring-up.
type Network struct {
	// Interface is the name of the network interface to bring up.
	Interface string `mapstructure:"interface" yaml:"interface"`

	// RetryDelaySeconds is the delay before the single bring-up retry. Some
	// container images have a boot timing race where the interface is not
	// ready yet when provisioning starts.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" yaml:"retry_delay_seconds"`
}

// User configures the default system user.
type User struct {
	// Name is the login name of the default user.
	Name string `mapstructure:"name" yaml:"name"`

	// UID is the numeric user ID.
	UID int `mapstructure:"uid" yaml:"uid"`

	// GID is the numeric ID of the user's primary group. Defaults to UID.
	GID int `mapstructure:"gid" yaml:"gid"`

	// Shell is the login shell.
	Shell string `mapstructure:"shell" yaml:"shell"`

	// Groups are supplementary groups the user is added to. They must
	// already exist on the target system.
	Groups []string `mapstructure:"groups" yaml:"groups,omitempty"`

	// Password is the pre-hashed password in crypt(3) format. If empty, the
	// password is locked.
	Password string `mapstructure:"password" yaml:"password,omitempty"`

	// CreateHome determines if the home directory is created.
	CreateHome bool `mapstructure:"create_home" yaml:"create_home"`

	// AuthorizedKeys are SSH public keys in authorized_keys format that are
	// installed for the user.
	AuthorizedKeys []string `mapstructure:"authorized_keys" yaml:"authorized_keys,omitempty"`

	// AuthorizedKeyDir is a directory whose *.pub files are installed for
	// the user in addition to AuthorizedKeys.
	AuthorizedKeyDir string `mapstructure:"authorized_key_dir" yaml:"authorized_key_dir,omitempty"`
}

// Apt configures package manager housekeeping.
type Apt struct {
	// Update determines if the package lists are refreshed.
	Update bool `mapstructure:"update" yaml:"update"`

	// Upgrade determines if a full dist-upgrade is performed.
	Upgrade bool `mapstructure:"upgrade" yaml:"upgrade"`

	// Packages are additional packages to install.
	Packages []string `mapstructure:"packages" yaml:"packages,omitempty"`

	// SuppressDocs installs a dpkg filter that keeps documentation, manual
	// and info pages out of the image.
	SuppressDocs bool `mapstructure:"suppress_docs" yaml:"suppress_docs"`

	// SuppressTranslations stops apt from downloading translation files.
	SuppressTranslations bool `mapstructure:"suppress_translations" yaml:"suppress_translations"`

	// DisableServices suppresses service startup by the package manager for
	// the duration of the provisioning run.
	DisableServices bool `mapstructure:"disable_services" yaml:"disable_services"`
}

// Config is the complete provisioning configuration.
type Config struct {
	Network Network `mapstructure:"network" yaml:"network"`
	User    User    `mapstructure:"user" yaml:"user"`
	Apt     Apt     `mapstructure:"apt" yaml:"apt"`
}

// Default returns the configuration used when no values are set.
func Default() Config {
	return Config{
		Network: Network{
			Interface:         "eth0",
			RetryDelaySeconds: 5,
		},
		User: User{
			Name:       "worker",
			UID:        1000,
			GID:        1000,
			Shell:      "/bin/bash",
			CreateHome: true,
		},
		Apt: Apt{
			Update:               true,
			Upgrade:              true,
			SuppressDocs:         true,
			SuppressTranslations: true,
			DisableServices:      true,
		},
	}
}

// Load reads the configuration file at the given path and merges it over the
// defaults. Environment variables with the BASEUP_ prefix override file
// values. An empty path loads defaults and environment only.
func Load(path string) (Config, error) {
	v := viper.New()

	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)

		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config

	err := v.UnmarshalExact(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.User.GID == 0 {
		cfg.User.GID = cfg.User.UID
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// setDefaults registers every configuration key. AutomaticEnv only
// considers keys viper already knows, so even keys without a meaningful
// default get their zero value registered.
func setDefaults(v *viper.Viper, defaults Config) {
	v.SetDefault("network.interface", defaults.Network.Interface)
	v.SetDefault("network.retry_delay_seconds", defaults.Network.RetryDelaySeconds)
	v.SetDefault("user.name", defaults.User.Name)
	v.SetDefault("user.uid", defaults.User.UID)
	// GID stays zero here so an unset value inherits the UID in Load.
	v.SetDefault("user.gid", 0)
	v.SetDefault("user.shell", defaults.User.Shell)
	v.SetDefault("user.groups", []string{})
	v.SetDefault("user.password", "")
	v.SetDefault("user.create_home", defaults.User.CreateHome)
	v.SetDefault("user.authorized_keys", []string{})
	v.SetDefault("user.authorized_key_dir", "")
	v.SetDefault("apt.update", defaults.Apt.Update)
	v.SetDefault("apt.upgrade", defaults.Apt.Upgrade)
	v.SetDefault("apt.packages", []string{})
	v.SetDefault("apt.suppress_docs", defaults.Apt.SuppressDocs)
	v.SetDefault("apt.suppress_translations", defaults.Apt.SuppressTranslations)
	v.SetDefault("apt.disable_services", defaults.Apt.DisableServices)
}

// Encode writes the configuration as YAML.
func (c Config) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("close encoder: %w", err)
	}

	return nil
}

// Validation errors.
var (
	ErrEmptyInterface  = errors.New("network interface name must not be empty")
	ErrEmptyUserName   = errors.New("user name must not be empty")
	ErrInvalidUserName = errors.New("user name contains invalid characters")
	ErrRootUser        = errors.New("default user must not be root")
	ErrNegativeDelay   = errors.New("retry delay must not be negative")
)

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if c.Network.Interface == "" {
		return ErrEmptyInterface
	}

	if c.Network.RetryDelaySeconds < 0 {
		return ErrNegativeDelay
	}

	if c.User.Name == "" {
		return ErrEmptyUserName
	}

	if !validUserName(c.User.Name) {
		return fmt.Errorf("%w: %q", ErrInvalidUserName, c.User.Name)
	}

	if c.User.UID == 0 || c.User.GID == 0 || c.User.Name == "root" {
		return ErrRootUser
	}

	return nil
}

// validUserName checks the portable login name syntax from useradd(8).
func validUserName(name string) bool {
	for idx, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r == '_':
		case idx > 0 && (r >= '0' && r <= '9' || r == '-'):
		case idx > 0 && idx == len(name)-1 && r == '$':
		default:
			return false
		}
	}

	return true
}
