// Copyright 2025 cbuild Authors.
// All rights reserved

package main

import (
	"context"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/clictx"
	"github.com/distrocore/cbuild/internal/upterm"
)

// resolveCmd runs the planner against a package without building or
// installing anything: it reports what a build would need to fetch from a
// repository and what it would have to build from source.
type resolveCmd struct {
	PkgName string `arg:"" help:"Name of the package to resolve." required:""`

	NamesOnly bool `help:"Only classify and print declared dependency names; skip the repository query." name:"names-only"`
	RunCheck  bool `help:"Pull checkdepends into the host dependency set as check() would run." name:"run-check"`
	DepCheck  bool `default:"true" help:"Resolve version-constrained dependencies against the repository." name:"dep-check"`
	Stage     int  `help:"Bootstrap stage index; stage 0 skips world-file rewriting semantics." name:"stage"`
}

func (c *resolveCmd) Run(ctx context.Context, cctx *clictx.Context, printer upterm.Printer) error {
	if cctx.Profile.BuildRoot == "" {
		return errors.New("no active build profile; run `cbuild profile create` or pass --profile")
	}

	bctx, err := buildContext(cctx.Profile, cctx.Profile.SourceRoots, c.PkgName, c.Stage, c.DepCheck)
	if err != nil {
		return errors.Wrapf(err, "loading build manifest for %q", c.PkgName)
	}
	bctx.RunCheck = c.RunCheck

	coll := newCollaborators(cctx.Profile, c.NamesOnly)
	result, err := coll.planner.Plan(ctx, bctx, c.PkgName)
	if err != nil {
		return errors.Wrapf(err, "resolving %q", c.PkgName)
	}

	if c.NamesOnly {
		return printer.PrintTemplate(result, namesOnlyTemplate)
	}
	return printer.PrintTemplate(result, resolveTemplate)
}

const namesOnlyTemplate = `Host: {{.HostNames}}
Target: {{.TargetNames}}
Runtime: {{range .RuntimePairs}}{{.Origin}}->{{.Dep}} {{end}}
`

const resolveTemplate = `Host missing (build from source): {{.HostMissing}}
Target missing (build from source): {{.TargetMissing}}
Host from repository: {{.HostBinpkgDeps}}
Target from repository: {{.TargetBinpkgDeps}}
{{range .Events}}{{.}}
{{end}}`
