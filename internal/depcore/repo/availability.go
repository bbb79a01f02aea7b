// Copyright 2025 cbuild Authors.
// All rights reserved

package repo

import (
	"context"

	"github.com/distrocore/cbuild/internal/depcore"
)

// IsAvailable decides whether the already-captured snapshot satisfies
// name<op>ver, consulting repos/pm only to break a multi-version tie.
//
// Returns the version string the installer should pin to, and ok=false if
// no satisfying version is available (either because name is altogether
// absent from snapshot, or because a higher-priority repository's
// unsatisfying version masks a lower-priority repository's satisfying
// one -- this is the core's intentional masking semantics).
func IsAvailable(ctx context.Context, pm PackageManager, name string, op depcore.Op, ver string, snapshot Snapshot, repos []string, root, arch string) (string, bool, error) {
	if snapshot == nil {
		return "", false, nil
	}
	pvers, ok := snapshot[name]
	if !ok {
		return "", false, nil
	}

	if op == depcore.OpNone {
		// No constraint: the manager's own installation pick, the last
		// (lowest-priority) entry the search returned.
		return pvers[len(pvers)-1], true, nil
	}

	matching := make([]string, 0, len(pvers))
	for i := len(pvers) - 1; i >= 0; i-- {
		ok, err := depcore.PkgMatch(name+"-"+pvers[i], name+string(op)+ver)
		if err != nil {
			return "", false, err
		}
		if ok {
			matching = append(matching, pvers[i])
		}
	}
	if len(matching) == 0 {
		return "", false, nil
	}
	if len(pvers) == 1 {
		return matching[0], true, nil
	}

	// More than one candidate: query each repository in priority order.
	// The first repository with any hit for name is authoritative,
	// regardless of whether its top hit satisfies the constraint -- an
	// unsatisfying higher-priority version masks a satisfying
	// lower-priority one.
	for _, repoURI := range repos {
		versions, err := pm.SearchOne(ctx, name, repoURI, root, arch)
		if err != nil {
			return "", false, err
		}
		if len(versions) == 0 {
			continue
		}
		top := versions[0]
		ok, err := depcore.PkgMatch(name+"-"+top, name+string(op)+ver)
		if err != nil {
			return "", false, err
		}
		if ok {
			return top, true, nil
		}
		return "", false, nil
	}
	return "", false, nil
}
