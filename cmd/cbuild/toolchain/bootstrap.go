// Copyright 2025 cbuild Authors.
// All rights reserved

package toolchain

import (
	"context"
	"net/http"

	"github.com/pterm/pterm"
	"github.com/spf13/afero"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/clictx"
	"github.com/distrocore/cbuild/internal/depcore/bootstrap"
)

type bootstrapCmd struct {
	Constraint string `help:"Semver constraint selecting among the mirror's advertised apk-tools-static-bin releases; empty accepts the newest." name:"constraint"`
}

// Run ensures <buildRoot>/usr/bin/apk.static exists for the active profile.
func (c *bootstrapCmd) Run(ctx context.Context, cctx *clictx.Context, p pterm.TextPrinter) error {
	prof := cctx.Profile
	if prof.BuildRoot == "" {
		return errors.New("active profile has no build root configured")
	}
	if prof.Mirror == "" {
		return errors.New("active profile has no mirror configured")
	}

	fetcher := bootstrap.NewHTTPFetcher(&http.Client{})
	index := bootstrap.NewJSONIndexReader(fetcher)
	b := bootstrap.New(fetcher, index, afero.NewOsFs())

	if err := b.EnsureStaticPM(ctx, prof.BuildRoot, prof.Mirror, prof.Arch, c.Constraint); err != nil {
		return errors.Wrap(err, "bootstrapping static package manager")
	}

	p.Printfln("Static package manager staged into %q", prof.BuildRoot)
	return nil
}
