// Copyright 2025 cbuild Authors.
// All rights reserved

// Package install writes the world file and invokes the package manager
// to converge a build environment onto a resolved dependency set.
package install

import (
	"context"
	"path/filepath"
	"sort"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
)

// Mode selects which of the three install paths (spec §4.H) a call takes.
type Mode int

const (
	// ModeNative is the default stage > 0 path: rewrite the world file
	// from worldBase + pkglist, then fix.
	ModeNative Mode = iota
	// ModeStage0 invokes "add --usermode --no-scripts" against the build
	// root directly, with no world rewrite.
	ModeStage0
	// ModeCrossTarget invokes "add --root <sysroot> --no-scripts" inside
	// the chroot at the target arch.
	ModeCrossTarget
)

// PackageManager is the subset of the package-manager CLI the installer
// drives. Invoked under the arch lock matching the operation's target.
type PackageManager interface {
	// Add runs "add" against root/arch with pkglist, allowUntrusted and
	// usermode as flags; chroot selects call vs call_chroot.
	Add(ctx context.Context, root, arch string, pkglist []string, allowUntrusted, usermode, chroot bool) (stdout, stderr string, exitCode int, err error)
	// Fix runs "fix" against root to converge it to the just-written
	// world file.
	Fix(ctx context.Context, root string) (stdout, stderr string, exitCode int, err error)
}

// DiagSink receives install diagnostics, matching depcore.DiagSink.
type DiagSink = depcore.DiagSink

// Installer implements spec §4.H: the three install-path dispatcher.
type Installer struct {
	PM      PackageManager
	Locks   depcore.Locks
	FS      afero.Fs
	Sink    DiagSink
	KeyPath string // signing key path; empty means --allow-untrusted
}

const worldRelPath = "etc/apk/world"

// InstallFromRepo converges root (and, in cross mode, sysroot) onto
// pkglist under mode.
func (i *Installer) InstallFromRepo(ctx context.Context, root, arch string, pkglist []string, worldBase []string, mode Mode) error {
	unlock := i.Locks.Lock(arch)
	defer unlock()

	switch mode {
	case ModeStage0:
		stdout, stderr, code, err := i.PM.Add(ctx, root, "", pkglist, i.KeyPath == "", true, false)
		return i.checkExit(stderr, stdout, code, err)

	case ModeCrossTarget:
		stdout, stderr, code, err := i.PM.Add(ctx, root, arch, pkglist, i.KeyPath == "", false, true)
		return i.checkExit(stderr, stdout, code, err)

	default: // ModeNative
		world := make([]string, 0, len(worldBase)+len(pkglist))
		world = append(world, worldBase...)
		world = append(world, pkglist...)
		if err := i.writeWorld(root, world); err != nil {
			return errors.Wrap(err, "rewriting world file")
		}
		stdout, stderr, code, err := i.PM.Fix(ctx, root)
		return i.checkExit(stderr, stdout, code, err)
	}
}

// writeWorld atomically rewrites <root>/etc/apk/world to contain entries,
// one per line, superseding any previous contents.
func (i *Installer) writeWorld(root string, entries []string) error {
	path := filepath.Join(root, worldRelPath)
	tmp := path + ".tmp"

	content := ""
	for _, e := range entries {
		content += e + "\n"
	}

	if err := i.FS.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	if err := afero.WriteFile(i.FS, tmp, []byte(content), 0o644); err != nil {
		return err
	}
	return i.FS.Rename(tmp, path)
}

func (i *Installer) checkExit(stderr, stdout string, code int, err error) error {
	if err != nil {
		return errors.Wrap(err, depcore.ErrInstallFailed.Error())
	}
	if code != 0 {
		if i.Sink != nil {
			if stderr != "" {
				i.Sink.Log(stderr)
			}
			if stdout != "" {
				i.Sink.Log(stdout)
			}
		}
		return errors.Wrapf(depcore.ErrInstallFailed, "package manager exited with code %d", code)
	}
	return nil
}

// MergeSorted merges host and target binpkg dep lists into a single
// deduplicated, sorted slice, as the orchestrator does before the final
// native install call.
func MergeSorted(lists ...[]string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, list := range lists {
		for _, e := range list {
			if seen[e] {
				continue
			}
			seen[e] = true
			out = append(out, e)
		}
	}
	sort.Strings(out)
	return out
}
