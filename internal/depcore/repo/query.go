// Copyright 2025 cbuild Authors.
// All rights reserved

// Package repo queries the package manager for the versions a prioritized
// repository set currently offers, and decides whether that offer already
// satisfies a constraint.
package repo

import (
	"context"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/depcore"
)

// Snapshot maps a package name to the versions a search returned for it,
// in append order: the highest-priority repository's hits first, the
// lowest-priority repository's hits last.
type Snapshot map[string][]string

// PackageManager is the subset of the package-manager CLI the repository
// query and installer need. Verbs are invoked as documented subprocess
// contracts, never shelled out to directly by callers of this package.
type PackageManager interface {
	// Search runs "search --from none -e -a <names...>" under root/arch and
	// returns the raw "name-version" lines it printed, the ordered list of
	// repository URIs it consulted (highest priority first), and its exit
	// code.
	Search(ctx context.Context, names []string, root, arch string) (lines []string, repos []string, exitCode int, err error)
	// SearchOne runs a single-name search scoped to one repository URI, used
	// by the availability resolver's masking tie-break.
	SearchOne(ctx context.Context, name, repoURI, root, arch string) (versions []string, err error)
}

// QueryVersions queries pm for the versions currently offered for names
// under root/arch. An empty names list is a no-op: no subprocess is
// invoked and a nil snapshot is returned. If pm's exit code signals
// "nothing found for any name" (conventionally, exitCode >= len(names)),
// a nil snapshot is also returned.
//
// arch is passed to pm.Search as-is (empty means "the host's implicit
// native arch," omitting apk's --arch flag). lockArch is what the search
// is locked under when arch is empty, so a host-root search serializes
// against the host-root installer operations locked under the host's
// resolved arch rather than under a separate "" lock key.
func QueryVersions(ctx context.Context, pm PackageManager, locks depcore.Locks, names []string, root, arch, lockArch string) (Snapshot, []string, error) {
	if len(names) == 0 {
		return nil, nil, nil
	}

	lockKey := arch
	if lockKey == "" {
		lockKey = lockArch
	}

	unlock := locks.Lock(lockKey)
	lines, repos, exitCode, err := pm.Search(ctx, names, root, arch)
	unlock()
	if err != nil {
		return nil, nil, errors.Wrap(err, "querying repository versions")
	}
	if exitCode >= len(names) {
		return nil, nil, nil
	}

	snap := make(Snapshot)
	for _, line := range lines {
		name, version, ok := depcore.GetNamever(line)
		if !ok {
			continue
		}
		snap[name] = append(snap[name], version)
	}
	return snap, repos, nil
}
