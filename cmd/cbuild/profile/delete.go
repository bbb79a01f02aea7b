// Copyright 2025 cbuild Authors.
// All rights reserved

package profile

import (
	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/distrocore/cbuild/internal/clictx"
)

type deleteCmd struct {
	Name string `arg:"" help:"Name of the profile to delete." required:""`
}

func (c *deleteCmd) Run(cctx *clictx.Context) error {
	if err := cctx.Cfg.DeleteProfile(c.Name); err != nil {
		return err
	}

	return errors.Wrap(cctx.CfgSrc.UpdateConfig(cctx.Cfg), "unable to delete profile")
}
