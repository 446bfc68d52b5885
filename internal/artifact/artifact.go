// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package artifact

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const defaultDirMode = 0o755

// File is a single configuration file payload.
//
// Files are rendered by the provisioning steps and either written to the
// target file system directly or streamed into an export archive.
type File struct {
	// Path is the absolute target path of the file.
	Path string

	// Mode is the file mode bits of the file.
	Mode fs.FileMode

	// UID and GID are the numeric owner of the file.
	UID int
	GID int

	// DirMode, if non-zero, is applied to the immediate parent directory,
	// which is then also owned by UID and GID. Deeper parents keep the
	// default mode and owner.
	DirMode fs.FileMode

	// Content is the full file content.
	Content []byte
}

// Set is a collection of [File]s, ordered by target path.
type Set []File

// Add appends the given file and keeps the set sorted by path.
func (s *Set) Add(file File) {
	*s = append(*s, file)

	slices.SortFunc(*s, func(a, b File) int {
		return strings.Compare(a.Path, b.Path)
	})
}

// Paths returns the target paths of all files in the set.
func (s Set) Paths() []string {
	paths := make([]string, len(s))
	for idx, file := range s {
		paths[idx] = file.Path
	}

	return paths
}

// Write writes the file beneath the given root directory.
//
// Missing parent directories are created. Ownership is applied to the file
// only, not to pre-existing directories.
func (f File) Write(root string) error {
	path := filepath.Join(root, f.Path)
	dir := filepath.Dir(path)

	err := os.MkdirAll(dir, defaultDirMode)
	if err != nil {
		return fmt.Errorf("mkdir for %s: %w", f.Path, err)
	}

	if f.DirMode != 0 {
		// MkdirAll mode bits are masked by umask, and the directory may
		// pre-exist with different bits.
		if err := os.Chmod(dir, f.DirMode); err != nil {
			return fmt.Errorf("chmod %s: %w", dir, err)
		}

		if f.UID != 0 || f.GID != 0 {
			if err := os.Chown(dir, f.UID, f.GID); err != nil {
				return fmt.Errorf("chown %s: %w", dir, err)
			}
		}
	}

	err = os.WriteFile(path, f.Content, f.Mode)
	if err != nil {
		return fmt.Errorf("write %s: %w", f.Path, err)
	}

	// Mode bits given to WriteFile are masked by umask on creation.
	err = os.Chmod(path, f.Mode)
	if err != nil {
		return fmt.Errorf("chmod %s: %w", f.Path, err)
	}

	// Provisioning runs as root, so fresh files are root owned already and
	// only files handed over to another owner need a chown.
	if f.UID != 0 || f.GID != 0 {
		err = os.Chown(path, f.UID, f.GID)
		if err != nil {
			return fmt.Errorf("chown %s: %w", f.Path, err)
		}
	}

	return nil
}

// WriteAll writes all files of the set beneath the given root directory.
func (s Set) WriteAll(root string) error {
	for _, file := range s {
		if err := file.Write(root); err != nil {
			return err
		}
	}

	return nil
}
