// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

// Package initsys identifies the init system owning PID 1.
//
// Containers come up with either a full init system (systemd) or a minimal
// single-purpose init. Some provisioning steps, most notably network
// interface bring-up, depend on which one is in charge.
package initsys

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// System is the type of init system owning PID 1.
type System int

const (
	// Unknown means the init system could not be classified.
	Unknown System = iota
	// Systemd means PID 1 is systemd.
	Systemd
	// Minimal means PID 1 is some other, minimal init.
	Minimal
)

// String implements [fmt.Stringer].
func (s System) String() string {
	switch s {
	case Systemd:
		return "systemd"
	case Minimal:
		return "minimal"
	default:
		return "unknown"
	}
}

// ErrEmptyCmdline is returned if the command line of PID 1 is empty.
var ErrEmptyCmdline = errors.New("PID 1 command line is empty")

const pidOneCmdline = "proc/1/cmdline"

// ReadLinkFS is a [fs.FS] with an additional method for reading the target
// of a symbolic link.
//
// Replace with [fs.ReadLinkFS] once available (planned for 1.25). See
// https://github.com/golang/go/issues/49580
type ReadLinkFS interface {
	fs.FS

	ReadLink(name string) (string, error)
}

// Detect classifies the init system by inspecting the command line of PID 1
// in the given file system. The file system is expected to be rooted at /
// with procfs mounted at proc.
func Detect(fsys fs.FS) (System, error) {
	cmdline, err := fs.ReadFile(fsys, pidOneCmdline)
	if err != nil {
		return Unknown, fmt.Errorf("read PID 1 cmdline: %w", err)
	}

	// Arguments in /proc/<pid>/cmdline are NUL separated.
	argv0, _, _ := bytes.Cut(cmdline, []byte{0})
	if len(argv0) == 0 {
		return Unknown, ErrEmptyCmdline
	}

	if isSystemd(fsys, string(argv0)) {
		return Systemd, nil
	}

	return Minimal, nil
}

// isSystemd covers /lib/systemd/systemd as well as /sbin/init, which is a
// symlink to systemd on distributions that ship it.
func isSystemd(fsys fs.FS, argv0 string) bool {
	if strings.Contains(argv0, "systemd") {
		return true
	}

	// An init symlink keeps its own name in the command line, so follow it.
	rlFS, ok := fsys.(ReadLinkFS)
	if !ok {
		return false
	}

	link, err := rlFS.ReadLink(strings.TrimPrefix(argv0, "/"))
	if err != nil {
		return false
	}

	return strings.Contains(link, "systemd")
}

// DetectHost is [Detect] on the host's root file system.
func DetectHost() (System, error) {
	return Detect(hostFS{os.DirFS("/")})
}

type hostFS struct {
	fs.FS
}

// ReadLink implements [ReadLinkFS].
func (hostFS) ReadLink(name string) (string, error) {
	return os.Readlink(filepath.Join("/", name)) //nolint:wrapcheck
}
