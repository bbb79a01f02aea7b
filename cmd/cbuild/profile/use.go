// Copyright 2025 cbuild Authors.
// All rights reserved

package profile

import (
	"github.com/pterm/pterm"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/clictx"
)

type useCmd struct {
	Name string `arg:"" help:"Name of the profile to use." required:""`
}

// Run executes the use command.
func (c *useCmd) Run(cctx *clictx.Context, p pterm.TextPrinter) error {
	if err := cctx.Cfg.SetDefaultProfile(c.Name); err != nil {
		return err
	}

	if err := cctx.CfgSrc.UpdateConfig(cctx.Cfg); err != nil {
		return errors.Wrap(err, "unable to update profile")
	}

	p.Printfln("Using profile %q", c.Name)
	return nil
}
