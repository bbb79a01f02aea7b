// Copyright 2025 cbuild Authors.
// All rights reserved

package main

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
	"github.com/distrocore/cbuild/internal/depcore/apkcli"
	"github.com/distrocore/cbuild/internal/depcore/install"
	"github.com/distrocore/cbuild/internal/depcore/planner"
	"github.com/distrocore/cbuild/internal/depcore/template"
	"github.com/distrocore/cbuild/internal/profile"
)

// autoSubpackageSuffixes is the default suffix table template.Cache strips
// when a bare probe misses (e.g. "foo-dev" falls back to "foo"'s recipe).
var autoSubpackageSuffixes = []string{"-dev", "-doc", "-static", "-lang", "-openrc", "-bash-completion"}

// collaborators bundles the concrete depcore wiring shared by resolve and
// build: one real apk(.static) subprocess driver backing both the planner
// and the installer, and an installer to converge the profile's build root.
type collaborators struct {
	planner   *planner.Planner
	installer *install.Installer
}

func newCollaborators(prof profile.Profile, namesOnly bool) *collaborators {
	fs := afero.NewOsFs()
	cli := apkcli.New(apkBinary(prof), fs)
	manifest := template.NewManifestLoader(fs)
	cache := template.New(fs, prof.SourceRoots, autoSubpackageSuffixes, manifest)
	locks := depcore.NewArchLocks(stateDir(prof))

	p := &planner.Planner{
		Cache:     cache,
		PM:        cli,
		Locks:     locks,
		NamesOnly: namesOnly,
	}

	installer := &install.Installer{
		PM:      cli,
		Locks:   locks,
		FS:      fs,
		KeyPath: prof.KeyPath,
	}

	return &collaborators{planner: p, installer: installer}
}

// apkBinary is where toolchain bootstrap stages apk.static within a
// profile's build root.
func apkBinary(prof profile.Profile) string {
	return filepath.Join(prof.BuildRoot, "usr/bin/apk.static")
}

// stateDir roots the per-architecture lock files used by depcore.Locks.
func stateDir(prof profile.Profile) string {
	return filepath.Join(prof.BuildRoot, "var/cbuild")
}

// buildContext assembles the dependency-bearing fields of a BuildContext
// for pkgName from its manifest, layering in the profile and stage the CLI
// invocation is running under.
func buildContext(prof profile.Profile, sourceRoots []string, pkgName string, stage int, depCheck bool) (depcore.BuildContext, error) {
	fs := afero.NewOsFs()
	manifest := template.NewManifestLoader(fs)

	var lastErr error
	for _, root := range sourceRoots {
		bctx, err := manifest.BuildContext(pkgName, root)
		if err == nil {
			bctx.Stage = stage
			bctx.Profile = depcore.Profile{Arch: prof.Arch, Cross: prof.Cross, Sysroot: prof.Sysroot}
			bctx.DepCheck = depCheck
			bctx.StateDir = stateDir(prof)
			bctx.BuildRoot = prof.BuildRoot
			return bctx, nil
		}
		lastErr = err
	}
	return depcore.BuildContext{}, lastErr
}
