// Copyright 2025 cbuild Authors.
// All rights reserved

// Package apkcli drives the real apk(.static) binary as a subprocess,
// implementing the repo.PackageManager and install.PackageManager
// collaborator contracts against it.
package apkcli

import (
	"bytes"
	"context"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/spf13/afero"

	"github.com/distrocore/cbuild/internal/depcore"
)

// CLI wraps the apk(.static) binary at BinPath, invoked under FS for
// reading a build root's configured repository list.
type CLI struct {
	BinPath string
	FS      afero.Fs
}

// New returns a CLI driving the binary at binPath.
func New(binPath string, fs afero.Fs) *CLI {
	return &CLI{BinPath: binPath, FS: fs}
}

const repositoriesRelPath = "etc/apk/repositories"

// Search runs "search --from none -e -a <names...>" under root/arch and
// returns the raw output lines plus root's configured repository list.
func (c *CLI) Search(ctx context.Context, names []string, root, arch string) ([]string, []string, int, error) {
	args := []string{"search", "--from", "none", "-e", "-a"}
	args = append(args, rootArchArgs(root, arch)...)
	args = append(args, names...)

	stdout, _, code, err := c.run(ctx, args...)
	if err != nil {
		return nil, nil, code, err
	}

	repos, err := c.repositories(root)
	if err != nil {
		return nil, nil, code, err
	}
	return splitLines(stdout), repos, code, nil
}

// SearchOne runs a single-name search scoped to one repository URI and
// returns the bare version strings it found.
func (c *CLI) SearchOne(ctx context.Context, name, repoURI, root, arch string) ([]string, error) {
	args := []string{"search", "--repository", repoURI, "--from", "none", "-e", "-a"}
	args = append(args, rootArchArgs(root, arch)...)
	args = append(args, name)

	stdout, _, _, err := c.run(ctx, args...)
	if err != nil {
		return nil, err
	}

	var versions []string
	for _, line := range splitLines(stdout) {
		if _, ver, ok := depcore.GetNamever(line); ok {
			versions = append(versions, ver)
		}
	}
	return versions, nil
}

// Add runs "add" against root/arch with pkglist, selecting the usermode or
// chroot call form and --allow-untrusted as requested.
func (c *CLI) Add(ctx context.Context, root, arch string, pkglist []string, allowUntrusted, usermode, chroot bool) (string, string, int, error) {
	args := []string{"add", "--no-scripts", "--root", root}
	if usermode {
		args = append(args, "--usermode")
	}
	if chroot && arch != "" {
		args = append(args, "--arch", arch)
	}
	if allowUntrusted {
		args = append(args, "--allow-untrusted")
	}
	args = append(args, pkglist...)

	stdout, stderr, code, err := c.run(ctx, args...)
	return stdout, stderr, code, err
}

// Fix runs "fix" against root to converge it to the just-written world file.
func (c *CLI) Fix(ctx context.Context, root string) (string, string, int, error) {
	return c.run(ctx, "fix", "--root", root)
}

func rootArchArgs(root, arch string) []string {
	var args []string
	if root != "" {
		args = append(args, "--root", root)
	}
	if arch != "" {
		args = append(args, "--arch", arch)
	}
	return args
}

func (c *CLI) repositories(root string) ([]string, error) {
	path := filepath.Join(root, repositoriesRelPath)
	exists, err := afero.Exists(c.FS, path)
	if err != nil {
		return nil, errors.Wrap(err, "checking repositories file")
	}
	if !exists {
		return nil, nil
	}

	raw, err := afero.ReadFile(c.FS, path)
	if err != nil {
		return nil, errors.Wrap(err, "reading repositories file")
	}

	var repos []string
	for _, line := range splitLines(string(raw)) {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		repos = append(repos, line)
	}
	return repos, nil
}

func (c *CLI) run(ctx context.Context, args ...string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, c.BinPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	code := 0
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
			err = nil
		}
	}
	if err != nil {
		return stdout.String(), stderr.String(), code, errors.Wrapf(err, "running apk %s", strings.Join(args, " "))
	}
	return stdout.String(), stderr.String(), code, nil
}

func splitLines(s string) []string {
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
