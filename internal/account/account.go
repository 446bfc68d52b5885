// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

// Package account provisions the default system user.
package account

import (
	"context"
	"errors"
	"fmt"
	"os/user"
	"strconv"
	"strings"

	"github.com/baseup/baseup/internal/syscmd"
)

// User describes the default system user to create.
type User struct {
	// Name is the login name.
	Name string

	// UID and GID are the numeric user ID and primary group ID.
	UID int
	GID int

	// Shell is the login shell.
	Shell string

	// Groups are supplementary groups. They must already exist.
	Groups []string

	// Password is the pre-hashed password in crypt(3) format. If empty, the
	// password stays locked.
	Password string

	// CreateHome determines if the home directory is created.
	CreateHome bool
}

// Home returns the home directory path of the user.
func (u User) Home() string {
	return "/home/" + u.Name
}

// ErrGroupMismatch is returned if a group exists with a different GID than
// the configured one.
var ErrGroupMismatch = errors.New("group exists with different GID")

// EnsureGroup creates the group with the given name and GID unless it
// already exists. An existing group with a different GID is an error.
func EnsureGroup(ctx context.Context, run syscmd.Runner, name string, gid int) error {
	existing, err := user.LookupGroup(name)
	if err == nil {
		if existing.Gid != strconv.Itoa(gid) {
			return fmt.Errorf("%w: %s has GID %s, want %d",
				ErrGroupMismatch, name, existing.Gid, gid)
		}

		return nil
	}

	var unknownErr user.UnknownGroupError
	if !errors.As(err, &unknownErr) {
		return fmt.Errorf("lookup group %s: %w", name, err)
	}

	cmd := syscmd.Command{
		Path: "groupadd",
		Args: []string{"--gid", strconv.Itoa(gid), name},
	}

	if err := run(ctx, cmd); err != nil {
		return fmt.Errorf("create group %s: %w", name, err)
	}

	return nil
}

// EnsureUser creates the user unless it already exists. An existing user is
// left untouched so repeated provisioning runs are idempotent.
func EnsureUser(ctx context.Context, run syscmd.Runner, usr User) error {
	_, err := user.Lookup(usr.Name)
	if err == nil {
		return nil
	}

	var unknownErr user.UnknownUserError
	if !errors.As(err, &unknownErr) {
		return fmt.Errorf("lookup user %s: %w", usr.Name, err)
	}

	cmd := syscmd.Command{
		Path: "useradd",
		Args: useraddArgs(usr),
	}

	if err := run(ctx, cmd); err != nil {
		return fmt.Errorf("create user %s: %w", usr.Name, err)
	}

	return nil
}

func useraddArgs(usr User) []string {
	args := []string{
		"--uid", strconv.Itoa(usr.UID),
		"--gid", strconv.Itoa(usr.GID),
		"--shell", usr.Shell,
	}

	if usr.CreateHome {
		args = append(args, "--create-home")
	} else {
		args = append(args, "--no-create-home")
	}

	if len(usr.Groups) > 0 {
		args = append(args, "--groups", strings.Join(usr.Groups, ","))
	}

	if usr.Password != "" {
		args = append(args, "--password", usr.Password)
	}

	return append(args, usr.Name)
}
