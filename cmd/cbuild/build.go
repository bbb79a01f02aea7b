// Copyright 2025 cbuild Authors.
// All rights reserved

package main

import (
	"context"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/async"
	"github.com/distrocore/cbuild/internal/clictx"
	"github.com/distrocore/cbuild/internal/config"
	"github.com/distrocore/cbuild/internal/depcore/orchestrate"
	"github.com/distrocore/cbuild/internal/upterm"
)

// buildCmd resolves pkgName's dependencies and converges the active
// profile's build root onto the resolved set. A dependency that is missing
// from every repository is handed to unbuildableMissing, which fails the
// run before anything is installed. Running the package's own build script is
// out of scope here: the orchestrator's Builder only handles the missing
// dependencies it discovers, never the package named on the command line.
type buildCmd struct {
	PkgName string `arg:"" help:"Name of the package whose dependencies should be resolved and installed." required:""`

	RunCheck bool `help:"Pull checkdepends into the host dependency set as check() would run." name:"run-check"`
	DepCheck bool `default:"true" help:"Resolve version-constrained dependencies against the repository." name:"dep-check"`
	Stage    int  `help:"Bootstrap stage index; stage 0 skips world-file rewriting semantics." name:"stage"`
}

// unbuildableMissing is the orchestrate.Builder used by buildCmd: it never
// satisfies a missing dependency itself, since evaluating and running a
// recipe's build script is out of scope for this tool. Orchestrator.Run
// stops at the first Builder error, so only the first template that would
// have to be built from source is reported by name.
type unbuildableMissing struct{}

func (unbuildableMissing) Build(_ context.Context, ref orchestrate.PendingBuild) (bool, error) {
	return false, errors.Errorf("%q must be built from source but building packages is out of scope for this tool; install or stage it manually first", ref.Ref)
}

func (c *buildCmd) Run(ctx context.Context, cctx *clictx.Context, printer upterm.Printer, quiet config.QuietFlag) error {
	prof := cctx.Profile
	if prof.BuildRoot == "" {
		return errors.New("no active build profile; run `cbuild profile create` or pass --profile")
	}

	bctx, err := buildContext(prof, prof.SourceRoots, c.PkgName, c.Stage, c.DepCheck)
	if err != nil {
		return errors.Wrapf(err, "loading build manifest for %q", c.PkgName)
	}
	bctx.RunCheck = c.RunCheck

	coll := newCollaborators(prof, false)
	result, err := coll.planner.Plan(ctx, bctx, c.PkgName)
	if err != nil {
		return errors.Wrapf(err, "resolving %q", c.PkgName)
	}

	plan := orchestrate.Plan{
		HostMissing:      result.HostMissing,
		TargetMissing:    result.TargetMissing,
		HostBinpkgDeps:   result.HostBinpkgDeps,
		TargetBinpkgDeps: result.TargetBinpkgDeps,
	}

	targetRoot := prof.Sysroot
	if targetRoot == "" {
		targetRoot = prof.BuildRoot
	}

	asyncWrapper := async.WrapWithSuccessSpinners
	if bool(quiet) {
		asyncWrapper = async.IgnoreEvents
	}

	if err := asyncWrapper(func(ch async.EventChannel) error {
		orch := &orchestrate.Orchestrator{
			Builder:   unbuildableMissing{},
			Installer: coll.installer,
			Events:    ch,
		}
		_, err := orch.Run(ctx, bctx, plan, prof.Cross, prof.BuildRoot, prof.Arch, targetRoot)
		return err
	}); err != nil {
		return errors.Wrapf(err, "converging build root for %q", c.PkgName)
	}

	return printer.PrintTemplate(result, resolveTemplate)
}
