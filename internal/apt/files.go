// SPDX-FileCopyrightText: 2025 The baseup authors
//
// SPDX-License-Identifier: MIT

package apt

import "github.com/baseup/baseup/internal/artifact"

const (
	confFileMode = 0o644

	nodocPath   = "/etc/dpkg/dpkg.cfg.d/01-baseup-nodoc"
	noTransPath = "/etc/apt/apt.conf.d/99-baseup-notranslations"
)

// Copyright files are kept for license compliance.
const nodocContent = `path-exclude /usr/share/doc/*
path-include /usr/share/doc/*/copyright
path-exclude /usr/share/man/*
path-exclude /usr/share/groff/*
path-exclude /usr/share/info/*
path-exclude /usr/share/lintian/*
`

const noTransContent = `Acquire::Languages "none";
`

// NodocFile is the dpkg filter that keeps documentation, manual and info
// pages out of the image. It applies to packages installed after the file
// is in place, not retroactively.
func NodocFile() artifact.File {
	return artifact.File{
		Path:    nodocPath,
		Mode:    confFileMode,
		Content: []byte(nodocContent),
	}
}

// NoTranslationsFile stops apt from downloading package list translations.
func NoTranslationsFile() artifact.File {
	return artifact.File{
		Path:    noTransPath,
		Mode:    confFileMode,
		Content: []byte(noTransContent),
	}
}
