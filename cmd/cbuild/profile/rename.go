// Copyright 2025 cbuild Authors.
// All rights reserved

package profile

import (
	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/clictx"
)

type renameCmd struct {
	From string `arg:"" help:"Name of the profile to rename." required:""`
	To   string `arg:"" help:"New name for the profile."      required:""`
}

func (c *renameCmd) Run(cctx *clictx.Context) error {
	if err := cctx.Cfg.RenameProfile(c.From, c.To); err != nil {
		return err
	}

	return errors.Wrap(cctx.CfgSrc.UpdateConfig(cctx.Cfg), "unable to rename profile")
}
