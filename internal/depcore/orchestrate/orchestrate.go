// Copyright 2025 cbuild Authors.
// All rights reserved

// Package orchestrate drives recursive sub-builds for a planner's missing
// template set, then hands the resolved package list to the installer.
package orchestrate

import (
	"context"

	"github.com/distrocore/cbuild/internal/async"
	"github.com/distrocore/cbuild/internal/depcore"
	"github.com/distrocore/cbuild/internal/depcore/install"
)

// Builder invokes a recursive sub-build for a missing template. A nil
// error with skip=true means the child signaled it should be skipped; the
// orchestrator swallows that locally and moves on.
type Builder interface {
	Build(ctx context.Context, ref PendingBuild) (skip bool, err error)
}

// PendingBuild is one flattened work-queue item: what the original
// recursive Builder.build call on the source language's stack would have
// captured as closure state.
type PendingBuild struct {
	Step        int
	Ref         string // the full template name to build
	DepMap      map[string]string
	Chost       string // "cross" for host-missing deps of a cross build, otherwise "hostdep"
	NoUpdate    bool
	UpdateCheck bool
	Maintainer  string
}

// Plan is the subset of a planner.Result the orchestrator consumes.
type Plan struct {
	HostMissing      []string
	TargetMissing    []string
	HostBinpkgDeps   []string
	TargetBinpkgDeps []string
}

// Orchestrator runs the missing-template work queue (§4.I) and performs
// the final install call(s).
type Orchestrator struct {
	Builder   Builder
	Installer *install.Installer
	WorldBase []string
	// Events, if non-nil, receives a started/success/failure event per
	// sub-build and per install call, for a caller to drive a progress
	// display (see async.WrapWithSuccessSpinners). SendEvent is a no-op on
	// a nil channel, so this may be left unset.
	Events async.EventChannel
}

// Run builds every template in plan.HostMissing then plan.TargetMissing,
// then installs the merged, deduplicated, sorted binpkg set. Returns
// missing=true iff at least one child build actually ran (as opposed to
// every entry resolving via a skip signal).
func (o *Orchestrator) Run(ctx context.Context, bctx depcore.BuildContext, plan Plan, cross bool, hostRoot, hostArch, targetRoot string) (bool, error) {
	missing := false

	runAll := func(refs []string, chost string) error {
		for _, ref := range refs {
			pb := PendingBuild{
				Step:     bctx.Stage,
				Ref:      ref,
				Chost:    chost,
				NoUpdate: !missing, // set until a child build has actually run
			}
			o.Events.SendEvent(ref, async.EventStatusStarted)
			skip, err := o.Builder.Build(ctx, pb)
			if err != nil {
				o.Events.SendEvent(ref, async.EventStatusFailure)
				return err
			}
			o.Events.SendEvent(ref, async.EventStatusSuccess)
			if skip {
				continue
			}
			missing = true
		}
		return nil
	}

	hostChost := "hostdep"
	if cross {
		hostChost = "cross"
	}
	if err := runAll(plan.HostMissing, hostChost); err != nil {
		return missing, err
	}
	if err := runAll(plan.TargetMissing, "hostdep"); err != nil {
		return missing, err
	}

	hostMode := install.ModeNative
	if bctx.Stage == 0 {
		hostMode = install.ModeStage0
	}

	// Target deps only join the host install when the build isn't cross:
	// in a cross build they belong solely in the sysroot, installed below
	// under the target arch's lock.
	var hostTargetDeps []string
	if !cross {
		hostTargetDeps = plan.TargetBinpkgDeps
	}

	const hostInstallEvent = "install: host root"
	o.Events.SendEvent(hostInstallEvent, async.EventStatusStarted)
	switch {
	case len(plan.HostBinpkgDeps) > 0 || len(hostTargetDeps) > 0:
		merged := install.MergeSorted(plan.HostBinpkgDeps, hostTargetDeps)
		if err := o.Installer.InstallFromRepo(ctx, hostRoot, hostArch, merged, o.WorldBase, hostMode); err != nil {
			o.Events.SendEvent(hostInstallEvent, async.EventStatusFailure)
			return missing, err
		}
	default:
		if err := o.Installer.InstallFromRepo(ctx, hostRoot, hostArch, nil, o.WorldBase, hostMode); err != nil {
			o.Events.SendEvent(hostInstallEvent, async.EventStatusFailure)
			return missing, err
		}
	}
	o.Events.SendEvent(hostInstallEvent, async.EventStatusSuccess)

	if cross && len(plan.TargetBinpkgDeps) > 0 {
		const targetInstallEvent = "install: sysroot"
		o.Events.SendEvent(targetInstallEvent, async.EventStatusStarted)
		if err := o.Installer.InstallFromRepo(ctx, targetRoot, bctx.Arch, plan.TargetBinpkgDeps, o.WorldBase, install.ModeCrossTarget); err != nil {
			o.Events.SendEvent(targetInstallEvent, async.EventStatusFailure)
			return missing, err
		}
		o.Events.SendEvent(targetInstallEvent, async.EventStatusSuccess)
	}

	return missing, nil
}
