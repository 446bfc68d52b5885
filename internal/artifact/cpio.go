// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package artifact

import (
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/cavaliergopher/cpio"
)

const numLinks = 2

// WriteCPIO streams the set into a newc format cpio archive.
//
// Directory entries are written before the files they contain so extraction
// with --make-directories is not required. Paths are archive-relative, the
// leading slash is stripped. Owners are numeric.
func (s Set) WriteCPIO(w io.Writer) error {
	writer := cpio.NewWriter(w)

	if err := writeDirectories(writer, s); err != nil {
		return err
	}

	for _, file := range s {
		if err := writeRegular(writer, file); err != nil {
			return err
		}
	}

	if err := writer.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}

	return nil
}

func writeDirectories(writer *cpio.Writer, files Set) error {
	seen := map[string]bool{}
	owned := map[string]File{}

	var dirs []string

	for _, file := range files {
		parent := path.Dir(archivePath(file.Path))

		// Non-default parent modes, like 0700 for .ssh, must survive the
		// round trip through the archive.
		if file.DirMode != 0 {
			owned[parent] = file
		}

		for dir := parent; dir != "."; dir = path.Dir(dir) {
			if seen[dir] {
				continue
			}

			seen[dir] = true

			dirs = append(dirs, dir)
		}
	}

	// Parents sort before their children.
	sort.Strings(dirs)

	for _, dir := range dirs {
		header := &cpio.Header{
			Name:  dir,
			Mode:  cpio.TypeDir | defaultDirMode,
			Links: numLinks,
		}

		if file, ok := owned[dir]; ok {
			header.Mode = cpio.TypeDir | cpio.FileMode(file.DirMode.Perm())
			header.Uid = file.UID
			header.Guid = file.GID
		}

		if err := writer.WriteHeader(header); err != nil {
			return fmt.Errorf("write header for %s: %w", dir, err)
		}
	}

	return nil
}

func writeRegular(writer *cpio.Writer, file File) error {
	header := &cpio.Header{
		Name: archivePath(file.Path),
		Mode: cpio.TypeReg | cpio.FileMode(file.Mode.Perm()),
		Size: int64(len(file.Content)),
		Uid:  file.UID,
		Guid: file.GID,
	}

	if err := writer.WriteHeader(header); err != nil {
		return fmt.Errorf("write header for %s: %w", file.Path, err)
	}

	if _, err := writer.Write(file.Content); err != nil {
		return fmt.Errorf("write body for %s: %w", file.Path, err)
	}

	return nil
}

func archivePath(p string) string {
	return strings.TrimPrefix(path.Clean(p), "/")
}
