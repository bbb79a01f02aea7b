// Copyright 2025 cbuild Authors.
// All rights reserved

// Package profile contains types for cbuild configuration profiles.
package profile

import (
	"github.com/crossplane/crossplane-runtime/pkg/errors"
)

const (
	// DefaultName is the default profile name.
	DefaultName = "default"

	// DefaultArch is the architecture assumed when a profile does not set
	// one explicitly.
	DefaultArch = "x86_64"
)

// A Profile describes one build environment: its target architecture,
// whether it cross-compiles, where its roots live on disk, and which
// repositories and signing key it resolves and installs against.
type Profile struct {
	// Arch is the target architecture, e.g. "x86_64" or "aarch64".
	Arch string `json:"arch,omitempty"`

	// Cross is true when this profile cross-compiles for Arch from a
	// different host architecture.
	Cross bool `json:"cross,omitempty"`

	// BuildRoot is the host build root (chroot) this profile operates in.
	BuildRoot string `json:"buildRoot,omitempty"`

	// Sysroot is the target root used for cross-target installs. Required
	// when Cross is true.
	Sysroot string `json:"sysroot,omitempty"`

	// Repos is the repository priority list, highest priority first, as
	// used for availability and install queries.
	Repos []string `json:"repos,omitempty"`

	// SourceRoots is the template source root priority list probed when
	// resolving a package name to its template.
	SourceRoots []string `json:"sourceRoots,omitempty"`

	// Mirror is the base URL the toolchain bootstrapper fetches the
	// static package-manager binary archive from.
	Mirror string `json:"mirror,omitempty"`

	// KeyPath is the signing key used for installs. Empty means installs
	// run with --allow-untrusted.
	KeyPath string `json:"keyPath,omitempty"`
}

// Validate returns an error if the profile is invalid.
func (p Profile) Validate() error {
	if p.Arch == "" {
		return errors.New("profile must specify an architecture")
	}
	if p.Cross && p.Sysroot == "" {
		return errors.New("cross profile must specify a sysroot")
	}
	return nil
}
