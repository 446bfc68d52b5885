// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package account

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/crypto/ssh"

	"github.com/baseup/baseup/internal/artifact"
)

const (
	sshDirMode  = 0o700
	authKeyMode = 0o600
)

// ErrInvalidKey is returned for a line that does not parse as an SSH public
// key in authorized_keys format.
var ErrInvalidKey = errors.New("invalid authorized key")

// KeySources name where authorized keys are taken from.
type KeySources struct {
	// Keys are inline authorized_keys lines.
	Keys []string

	// Dir is a directory whose *.pub files are collected. Empty means none.
	Dir string
}

// CollectKeys gathers, validates and deduplicates authorized keys from the
// given sources. Inline keys come first, file keys follow in lexicographic
// file name order. A nil slice is returned if no source is configured.
func CollectKeys(sources KeySources) ([]string, error) {
	var keys []string

	for _, key := range sources.Keys {
		parsed, err := parseKeys(key, "inline key")
		if err != nil {
			return nil, err
		}

		keys = append(keys, parsed...)
	}

	if sources.Dir != "" {
		fileKeys, err := collectKeyFiles(sources.Dir)
		if err != nil {
			return nil, err
		}

		keys = append(keys, fileKeys...)
	}

	return dedup(keys), nil
}

func collectKeyFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.pub"))
	if err != nil {
		return nil, fmt.Errorf("glob key files: %w", err)
	}

	slices.Sort(files)

	var keys []string

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return nil, fmt.Errorf("read key file: %w", err)
		}

		parsed, err := parseKeys(string(content), file)
		if err != nil {
			return nil, err
		}

		keys = append(keys, parsed...)
	}

	return keys, nil
}

// parseKeys validates all key lines in the given blob. Blank lines and
// comments are dropped.
func parseKeys(blob, source string) ([]string, error) {
	var keys []string

	for _, line := range strings.Split(blob, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(line)); err != nil {
			return nil, fmt.Errorf("%w in %s: %w", ErrInvalidKey, source, err)
		}

		keys = append(keys, line)
	}

	return keys, nil
}

func dedup(keys []string) []string {
	seen := make(map[string]bool, len(keys))

	return slices.DeleteFunc(keys, func(key string) bool {
		if seen[key] {
			return true
		}

		seen[key] = true

		return false
	})
}

// AuthorizedKeysFile renders the authorized_keys file artifact for the
// user. It returns false if there are no keys to install.
func AuthorizedKeysFile(usr User, keys []string) (artifact.File, bool) {
	if len(keys) == 0 {
		return artifact.File{}, false
	}

	file := artifact.File{
		Path:    filepath.Join(usr.Home(), ".ssh", "authorized_keys"),
		Mode:    authKeyMode,
		UID:     usr.UID,
		GID:     usr.GID,
		DirMode: sshDirMode,
		Content: []byte(strings.Join(keys, "\n") + "\n"),
	}

	return file, true
}

// InstallAuthorizedKeys writes the authorized_keys file for the user
// beneath the given root directory, creating ~/.ssh with the expected mode
// and ownership. It is a no-op if there are no keys.
func InstallAuthorizedKeys(root string, usr User, keys []string) error {
	file, ok := AuthorizedKeysFile(usr, keys)
	if !ok {
		return nil
	}

	return file.Write(root)
}
